package authgate

import (
	"time"

	"github.com/tlsunbound/authgate/identity"
)

// AuthUser is the in-memory session identity: the claims relayed by a
// successful verify call. It is never persisted; reload rebuilds it by
// re-running verification.
type AuthUser struct {
	User     string `json:"user"`
	IssuedAt int64  `json:"iat"`
	Exp      int64  `json:"exp"`
}

// ExpiresAt returns the token expiry as reported by the identity service.
// Zero when the service did not relay one.
func (u AuthUser) ExpiresAt() time.Time {
	if u.Exp == 0 {
		return time.Time{}
	}
	return time.Unix(u.Exp, 0)
}

// UserFromVerify builds the session identity from a verify response.
// Returns ok=false when the response does not establish a valid session.
func UserFromVerify(res identity.VerifyResult) (*AuthUser, bool) {
	if !res.Valid {
		return nil, false
	}
	return &AuthUser{
		User:     res.User,
		IssuedAt: res.IssuedAt,
		Exp:      res.Exp,
	}, true
}
