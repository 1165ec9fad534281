package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// TextCodeUpstream marks errors caused by the identity service transport,
// as opposed to an auth decision the service actually made.
const TextCodeUpstream = "UPSTREAM_ERROR"

const defaultTimeout = 10 * time.Second

// Config configures the identity service client.
type Config struct {
	// BaseURL is the identity service root, e.g. https://example.com/api.
	BaseURL string

	// HTTPClient is optional; a default client with a 10s timeout is used
	// when nil.
	HTTPClient *http.Client

	// Timeout applies to the default client only.
	Timeout time.Duration
}

// Client calls the external identity service.
type Client struct {
	baseURL string
	http    *http.Client
}

// AuthResult is the authenticate response: verified plus the issued token.
type AuthResult struct {
	Verified bool   `json:"verified"`
	Token    string `json:"token,omitempty"`
}

// VerifyResult is the verify response. Valid false with a populated Error
// is a normal outcome, not a Go error; callers must not assume verify only
// fails via error.
type VerifyResult struct {
	Valid    bool   `json:"valid"`
	User     string `json:"user,omitempty"`
	IssuedAt int64  `json:"iat,omitempty"`
	Exp      int64  `json:"exp,omitempty"`
	Error    string `json:"error,omitempty"`
}

// New creates an identity service client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("identity: base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}, nil
}

type credentials struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

// Authenticate exchanges credentials for a token. A transport failure or a
// non-success status from the service surfaces as an upstream-classified
// error; a clean "not verified" answer comes back as AuthResult.
func (c *Client) Authenticate(ctx context.Context, user, pass string) (AuthResult, error) {
	payload, err := json.Marshal(credentials{User: user, Pass: pass})
	if err != nil {
		return AuthResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "identity: encode credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth-user", bytes.NewReader(payload))
	if err != nil {
		return AuthResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "identity: build authenticate request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return AuthResult{}, upstreamError(err, "identity: authenticate call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return AuthResult{}, upstreamError(
			fmt.Errorf("unexpected status %d", resp.StatusCode),
			"identity: authentication failed",
		)
	}

	var result AuthResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return AuthResult{}, upstreamError(err, "identity: decode authenticate response")
	}

	return result, nil
}

// Verify checks a token with the identity service. Any non-success HTTP
// outcome is reported as VerifyResult{Valid: false} with a nil error; only
// transport failures (service unreachable, context cancelled) return an
// error.
func (c *Client) Verify(ctx context.Context, token string) (VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify-token", nil)
	if err != nil {
		return VerifyResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "identity: build verify request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return VerifyResult{}, upstreamError(err, "identity: verify call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VerifyResult{Valid: false, Error: "token verification failed"}, nil
	}

	var result VerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return VerifyResult{}, upstreamError(err, "identity: decode verify response")
	}

	return result, nil
}

func upstreamError(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, msg).
		WithTextCode(TextCodeUpstream).
		WithCode(goerrors.CodeInternal)
}
