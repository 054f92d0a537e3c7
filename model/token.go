// file: model/token.go

package model

import "time"

// RefreshToken is a ledger row: one per refresh token issued at login.
type RefreshToken struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	Token      string    `json:"-"`
	ExpireTime time.Time `json:"expire_time"`
	CreatedAt  time.Time `json:"created_at"`
}

// Expired reports whether the row is logically dead at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpireTime)
}

// BlacklistedToken records a revoked token id. ExpiresAt mirrors the
// token's own exp claim; after it the entry is only kept until purged.
type BlacklistedToken struct {
	JTI       string    `json:"jti"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
