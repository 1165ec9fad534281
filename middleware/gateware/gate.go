// Package gateware provides an edge middleware that classifies incoming
// requests as public or protected and verifies the bearer token cookie on
// protected ones against the identity backend.
package gateware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-router"

	"github.com/tlsunbound/authgate/identity"
)

var (
	ErrAuthRequired = errors.New("authentication required")
	ErrTokenInvalid = errors.New("invalid or expired token")
)

var (
	defaultPublicRoutes  = []string{"/auth", "/verify", "/logout", "/db-test"}
	defaultExcludeRoutes = []string{"/public/", "/assets/", "/favicon.ico"}
)

// TokenVerifier checks a raw bearer token without import cycles.
// This mirrors the identity client's Verify method.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (identity.VerifyResult, error)
}

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler

	// PublicRoutes are path prefixes served without a token.
	PublicRoutes []string

	// ExcludeRoutes are path prefixes the gate never inspects,
	// static assets and framework files.
	ExcludeRoutes []string

	// CookieName holds the bearer token (default: "auth_token")
	CookieName string

	// Verifier is required for token verification
	Verifier TokenVerifier
}

func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			path := ctx.Path()
			if cfg.isExcluded(path) || cfg.isPublic(path) {
				return ctx.Next()
			}

			token := ctx.Cookies(cfg.CookieName, "")
			if token == "" {
				return cfg.ErrorHandler(ctx, ErrAuthRequired)
			}

			result, err := cfg.Verifier.Verify(ctx.Context(), token)
			if err != nil {
				// the backend was unreachable, the token might still be
				// good so the cookie stays put
				return cfg.ErrorHandler(ctx, ErrTokenInvalid)
			}

			if !result.Valid {
				expireTokenCookie(ctx, cfg.CookieName)
				return cfg.ErrorHandler(ctx, ErrTokenInvalid)
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			if errors.Is(err, ErrAuthRequired) {
				return c.JSON(router.StatusUnauthorized, map[string]any{
					"error": "Authentication required",
				})
			}
			return c.JSON(router.StatusUnauthorized, map[string]any{
				"error": "Invalid or expired token",
			})
		}
	}

	if cfg.Verifier == nil {
		panic("AUTH: gate middleware configuration: Verifier is required.")
	}

	if cfg.CookieName == "" {
		cfg.CookieName = "auth_token"
	}

	if cfg.PublicRoutes == nil {
		cfg.PublicRoutes = defaultPublicRoutes
	}

	if cfg.ExcludeRoutes == nil {
		cfg.ExcludeRoutes = defaultExcludeRoutes
	}

	return cfg
}

func (cfg *Config) isPublic(path string) bool {
	return hasAnyPrefix(path, cfg.PublicRoutes)
}

func (cfg *Config) isExcluded(path string) bool {
	return hasAnyPrefix(path, cfg.ExcludeRoutes)
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func expireTokenCookie(ctx router.Context, name string) {
	ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: false,
		SameSite: "Strict",
	})
}
