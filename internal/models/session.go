// Package models holds the data types shared by the CampusHub client and
// the identity server.
package models

import "time"

// TokenTypeBearer is the only token type issued by the identity authority.
const TokenTypeBearer = "bearer"

// User is the identity record carried by a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the token bundle issued by the identity provider. It is proof
// that User is currently authenticated.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}
