package domain

import "time"

// UserToken is an opaque bearer credential issued to a signed-in device.
// Tokens are never mutated after issuance except to set RevokedAt.
type UserToken struct {
	ID        string     `bson:"_id" json:"id"`
	Token     string     `bson:"token" json:"token"`
	UserID    string     `bson:"user_id" json:"user_id"`
	IssuedAt  time.Time  `bson:"issued_at" json:"issued_at"`
	ExpiresAt time.Time  `bson:"expires_at" json:"expires_at"`
	RevokedAt *time.Time `bson:"revoked_at,omitempty" json:"revoked_at,omitempty"`
}

// Valid reports whether the token is usable: not revoked and not past its
// expiry.
func (t *UserToken) Valid(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
