package models

import "time"

// User represents a user record in the database
type User struct {
	ID           int64     `json:"id" db:"id"`             // Primary key
	Username     string    `json:"username" db:"username"` // Unique username, immutable
	Name         string    `json:"name" db:"name"`         // Display name
	Email        string    `json:"email" db:"email"`       // User email
	PasswordHash string    `json:"-" db:"password_hash"`   // Bcrypt hash, never serialized
	CreatedAt    time.Time `json:"-" db:"created_at"`      // Creation timestamp
	UpdatedAt    time.Time `json:"-" db:"updated_at"`      // Last update timestamp
}
