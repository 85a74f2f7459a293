// Package model defines domain entities for the application.
package model

import "time"

// Role constants for user authorization.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account that owns brand profiles and generated content.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize
	Role         string     `json:"role"`
	Tier         string     `json:"tier"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthContext holds authenticated request context.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID    string
	Email     string
	Role      string
	Tier      string
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin checks if the auth context carries the admin role.
func (a *AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}
