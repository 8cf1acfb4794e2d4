// Package session holds the lifecycle-scoped identity of a signed-in user.
// A Session is constructed once after login and passed explicitly to every
// component that needs it; nothing in this module reads ambient auth state.
package session

import (
	"errors"
	"time"

	"github.com/dinesync/tablemap/utils"
)

type Session struct {
	Token     string
	UserID    uint
	CompanyID uint
	Role      string
	ExpiresAt time.Time
}

// FromToken builds a Session from a bearer token issued by the server.
// The token is introspected, not verified; verification is the server's job
// on every request.
func FromToken(token string) (*Session, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	claims, err := utils.DecodeClaims(token)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Token:     token,
		UserID:    claims.UserID,
		CompanyID: claims.CompanyID,
		Role:      claims.Role,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Expired reports whether the session token has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
