package models

import "time"

// RevokedToken is a denylist entry for a refresh token, kept until the
// token would have expired anyway.
type RevokedToken struct {
	JTI       string    `db:"jti"`
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	RevokedAt time.Time `db:"revoked_at"`
}

// TokenPair is what a successful login hands back.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
