package gateware

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tlsunbound/authgate/identity"
)

type stubVerifier struct {
	result identity.VerifyResult
	err    error
	calls  int
}

func (s *stubVerifier) Verify(ctx context.Context, token string) (identity.VerifyResult, error) {
	s.calls++
	return s.result, s.err
}

// pathMock overrides Path() from the base MockContext.
type pathMock struct {
	*router.MockContext
	path string
}

func (m *pathMock) Path() string {
	return m.path
}

func newGateContext(path string) *pathMock {
	return &pathMock{
		MockContext: router.NewMockContext(),
		path:        path,
	}
}

func runGate(cfg Config, ctx router.Context) error {
	next := func(c router.Context) error {
		return c.Next()
	}
	return New(cfg)(next)(ctx)
}

func TestGatePassesPublicRoutes(t *testing.T) {
	verifier := &stubVerifier{}

	for _, path := range []string{"/auth", "/verify", "/logout", "/db-test"} {
		ctx := newGateContext(path)

		err := runGate(Config{Verifier: verifier}, ctx)
		require.NoError(t, err)
		require.True(t, ctx.NextCalled, "expected pass-through for %s", path)
	}

	require.Zero(t, verifier.calls)
}

func TestGateSkipsExcludedRoutes(t *testing.T) {
	verifier := &stubVerifier{}

	for _, path := range []string{"/public/app.css", "/assets/logo.svg", "/favicon.ico"} {
		ctx := newGateContext(path)

		err := runGate(Config{Verifier: verifier}, ctx)
		require.NoError(t, err)
		require.True(t, ctx.NextCalled)
	}

	require.Zero(t, verifier.calls)
}

func TestGateRejectsMissingToken(t *testing.T) {
	ctx := newGateContext("/example")

	var body map[string]any
	ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]any)
	}).Return(nil)

	err := runGate(Config{Verifier: &stubVerifier{}}, ctx)
	require.NoError(t, err)
	require.False(t, ctx.NextCalled)
	require.Equal(t, "Authentication required", body["error"])
}

func TestGateRejectsInvalidTokenAndClearsCookie(t *testing.T) {
	verifier := &stubVerifier{result: identity.VerifyResult{Valid: false}}

	ctx := newGateContext("/example")
	ctx.CookiesM["auth_token"] = "dead-token"
	ctx.On("Context").Return(context.Background())
	ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
		return c.Name == "auth_token" && c.Value == "" && c.MaxAge == -1
	})).Return()

	var body map[string]any
	ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]any)
	}).Return(nil)

	err := runGate(Config{Verifier: verifier}, ctx)
	require.NoError(t, err)
	require.False(t, ctx.NextCalled)
	require.Equal(t, "Invalid or expired token", body["error"])
	require.Equal(t, 1, verifier.calls)

	ctx.AssertExpectations(t)
}

func TestGateKeepsCookieOnVerifierFailure(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("connection refused")}

	ctx := newGateContext("/example")
	ctx.CookiesM["auth_token"] = "maybe-good"
	ctx.On("Context").Return(context.Background())

	var body map[string]any
	ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]any)
	}).Return(nil)

	err := runGate(Config{Verifier: verifier}, ctx)
	require.NoError(t, err)
	require.Equal(t, "Invalid or expired token", body["error"])

	// no Cookie expectation was set, AssertExpectations would fail on an
	// unexpected cookie write
	ctx.AssertExpectations(t)
}

func TestGatePassesValidToken(t *testing.T) {
	verifier := &stubVerifier{result: identity.VerifyResult{Valid: true, User: "alice"}}

	ctx := newGateContext("/example")
	ctx.CookiesM["auth_token"] = "good-token"
	ctx.On("Context").Return(context.Background())

	err := runGate(Config{Verifier: verifier}, ctx)
	require.NoError(t, err)
	require.True(t, ctx.NextCalled)
}

func TestGateFilterSkipsMiddleware(t *testing.T) {
	verifier := &stubVerifier{}

	ctx := newGateContext("/example")

	cfg := Config{
		Verifier: verifier,
		Filter: func(c router.Context) bool {
			return c.Path() == "/example"
		},
	}

	err := runGate(cfg, ctx)
	require.NoError(t, err)
	require.True(t, ctx.NextCalled)
	require.Zero(t, verifier.calls)
}

func TestGateCustomRoutes(t *testing.T) {
	verifier := &stubVerifier{}

	cfg := Config{
		Verifier:     verifier,
		PublicRoutes: []string{"/health"},
	}

	ctx := newGateContext("/health")
	require.NoError(t, runGate(cfg, ctx))
	require.True(t, ctx.NextCalled)

	ctx = newGateContext("/auth")
	ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Return(nil)
	require.NoError(t, runGate(cfg, ctx))
	require.False(t, ctx.NextCalled)
}

func TestGetDefaultConfigRequiresVerifier(t *testing.T) {
	require.Panics(t, func() {
		GetDefaultConfig(Config{})
	})
}

func TestGateCustomErrorHandler(t *testing.T) {
	var handled error

	cfg := Config{
		Verifier: &stubVerifier{},
		ErrorHandler: func(c router.Context, err error) error {
			handled = err
			return nil
		},
	}

	ctx := newGateContext("/example")

	require.NoError(t, runGate(cfg, ctx))
	require.ErrorIs(t, handled, ErrAuthRequired)
}
