package authgate

import (
	"strings"
	"time"

	"github.com/goliatone/go-router"
)

// TokenCookies manages the auth_token cookie from the trusted (server)
// side of the boundary. The untrusted side only gets ReadTokenHeader.
type TokenCookies struct {
	name     string
	maxAge   int
	secure   bool
	httpOnly bool
}

// NewTokenCookies builds the cookie manager from config. HTTPOnly defaults
// off so the client session manager can detect cookie presence before
// spending a verify round trip; this is inherited behavior, not an
// oversight.
func NewTokenCookies(cfg Config) *TokenCookies {
	t := &TokenCookies{
		name:   TokenCookieName,
		maxAge: DefaultCookieMaxAge,
	}

	if cfg == nil {
		return t
	}

	if name := cfg.GetCookieName(); name != "" {
		t.name = name
	}

	if maxAge := cfg.GetCookieMaxAge(); maxAge > 0 {
		t.maxAge = maxAge
	}

	t.secure = cfg.GetCookieSecure()
	t.httpOnly = cfg.GetCookieHTTPOnly()

	return t
}

func (t *TokenCookies) Name() string {
	return t.name
}

// Write sets the token cookie. Subsequent requests from the same client
// carry it automatically.
func (t *TokenCookies) Write(c router.Context, token string) {
	c.Cookie(&router.Cookie{
		Name:     t.name,
		Value:    token,
		Path:     "/",
		MaxAge:   t.maxAge,
		Expires:  time.Now().Add(time.Duration(t.maxAge) * time.Second),
		HTTPOnly: t.httpOnly,
		Secure:   t.secure,
		SameSite: "Strict",
	})
}

// Read returns the token carried by the request, or "" when absent. It
// never fails; a present value says nothing about validity.
func (t *TokenCookies) Read(c router.Context) string {
	return c.Cookies(t.name, "")
}

// Delete removes the cookie immediately.
func (t *TokenCookies) Delete(c router.Context) {
	c.Cookie(ClearCookie(t.name))
}

// ClearCookie produces the deletion cookie for name: empty value, expiry in
// the past. Shared with the gate so it can clean up dead tokens without a
// TokenCookies instance.
func ClearCookie(name string) *router.Cookie {
	return &router.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		SameSite: "Strict",
	}
}

// ReadTokenHeader extracts the named cookie from a raw Cookie header
// string. This is the untrusted-context read: no request object, no cookie
// jar, just the header text a script would see.
func ReadTokenHeader(header, name string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if value, ok := strings.CutPrefix(part, name+"="); ok {
			return value
		}
	}
	return ""
}
