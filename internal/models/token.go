package models

import "time"

// Token represents an access token row. A user owns at most one live row.
type Token struct {
	ID        int64     `json:"id" db:"id"`
	Token     string    `json:"access_token" db:"token"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the token expired strictly before now.
func IsExpired(t *Token, now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
