package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var cfg AppConfig

	require.Equal(t, ":8080", cfg.GetServer().GetAddress())
	require.Equal(t, "./views", cfg.GetServer().GetViews())
	require.Equal(t, 10*time.Second, cfg.GetIdentity().GetTimeout())
	require.NotEmpty(t, cfg.GetPersistence().GetDSN())
}

func TestIdentityTimeoutExpression(t *testing.T) {
	i := Identity{TimeoutExpression: "30s"}
	require.Equal(t, 30*time.Second, i.GetTimeout())

	i = Identity{TimeoutExpression: "bogus"}
	require.Panics(t, func() { i.GetTimeout() })
}

func TestValidateRequiresIdentityBaseURL(t *testing.T) {
	var cfg AppConfig
	require.Error(t, cfg.Validate())

	cfg.Identity.BaseURL = "http://localhost:3000"
	require.NoError(t, cfg.Validate())
}

func TestCookieGetters(t *testing.T) {
	cfg := AppConfig{Cookie: Cookie{
		Name:     "auth_token",
		MaxAge:   3600,
		Secure:   true,
		HTTPOnly: false,
	}}

	require.Equal(t, "auth_token", cfg.GetCookieName())
	require.Equal(t, 3600, cfg.GetCookieMaxAge())
	require.True(t, cfg.GetCookieSecure())
	require.False(t, cfg.GetCookieHTTPOnly())
}
