package authgate

import (
	"context"
	"fmt"

	"github.com/tlsunbound/authgate/identity"
)

// TokenCookieName is the single cookie carrying the bearer token.
const TokenCookieName = "auth_token"

// DefaultCookieMaxAge caps the cookie lifetime independently of the token's
// own embedded expiry.
const DefaultCookieMaxAge = 3600

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options
type Config interface {
	GetCookieName() string
	GetCookieMaxAge() int
	GetCookieSecure() bool
	GetCookieHTTPOnly() bool
}

// IdentityClient is the remote identity service surface the endpoints need.
// Each call is a single round trip; resilience stays with the caller.
type IdentityClient interface {
	Authenticate(ctx context.Context, user, pass string) (identity.AuthResult, error)
	Verify(ctx context.Context, token string) (identity.VerifyResult, error)
}

// DefaultLogger returns the fallback stdout logger.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
