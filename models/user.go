package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered site member
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Username     *string   `json:"username,omitempty" db:"username"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName prefers the chosen username over the full name
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.FullName()
}
