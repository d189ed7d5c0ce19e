package model

import "time"

// Roles carried in the users table and the access token's role claim.
// ADMIN is staff: payments, members, items and roles. USER may only use
// the kiosk.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User mirrors a row of the `users` table.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken mirrors a row of the `refresh_tokens` table. Only the
// SHA-256 hash of the token handed to the client is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
