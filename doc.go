// Package authgate implements the authentication layer of the site: the
// token cookie lifecycle, the login/logout/verify HTTP endpoints, and the
// shared types consumed by the request gate and the client session manager.
//
// Token handling:
//   - Tokens are opaque bearer strings issued and verified by the external
//     identity service. This package never parses them; validity is only
//     established through identity.Client.Verify. A present cookie does not
//     imply a valid session.
//   - TokenCookies owns the single auth_token cookie: root path, strict
//     same-site, one hour max-age. The cookie is intentionally readable by
//     browser script so the client session manager can skip a verify round
//     trip when no cookie exists; see the CookieHTTPOnly config knob.
//
// Request gate:
//   - middleware/gateware classifies paths against a static public
//     allow-list and rejects protected requests whose cookie is absent or
//     fails remote verification. It is the single enforcement point; claims
//     are not propagated to downstream handlers.
//
// Client session:
//   - session.Manager mirrors the browser-side auth provider: one instance
//     per page load, mount/route-change/periodic re-validation, and a login
//     modal overlay driven by expiry.
package authgate
