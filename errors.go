package authgate

import (
	goerrors "github.com/goliatone/go-errors"

	"github.com/tlsunbound/authgate/identity"
)

const (
	textCodeMissingCredentials = "MISSING_CREDENTIALS"
	textCodeInvalidCredentials = "INVALID_CREDENTIALS"
	textCodeTokenMissing       = "TOKEN_MISSING"
	textCodeTokenInvalid       = "TOKEN_INVALID"
)

// ErrMissingCredentials is returned when a login payload lacks a user name
// or password.
var ErrMissingCredentials = goerrors.New("username and password are required", goerrors.CategoryValidation).
	WithTextCode(textCodeMissingCredentials).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidCredentials is returned when the identity service rejects a
// login attempt.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMissing is returned when a protected request carries no token
// cookie.
var ErrTokenMissing = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMissing).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenInvalid is returned when the identity service reports a token as
// invalid or expired.
var ErrTokenInvalid = goerrors.New("invalid or expired token", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// WrapUpstream classifies a failed call to the external identity service.
// These surface as 500s or {valid:false} depending on the endpoint, never
// with upstream detail in the response body.
func WrapUpstream(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, msg).
		WithTextCode(identity.TextCodeUpstream).
		WithCode(goerrors.CodeInternal)
}

// IsUpstreamError reports whether err came from the identity service
// transport rather than an auth decision.
func IsUpstreamError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == identity.TextCodeUpstream
	}
	return false
}

// IsAuthError reports whether err is one of the 401-mapped sentinels.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryAuth
	}
	return false
}
