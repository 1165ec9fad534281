// Package session implements the client side of the authentication
// lifecycle: a per-page-load state machine that re-validates the session
// on mount, on route changes, and on a periodic timer, and that drives a
// login modal overlay when an authenticated session expires.
package session
