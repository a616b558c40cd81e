package entity

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by the repository when no row matches.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when the unique email constraint is hit.
	ErrEmailTaken = errors.New("email already exists")
)

// User represents an account row in the `users` table. PasswordHash is
// written only through the password hasher and never leaves the service.
type User struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Phone        *string   `db:"phone"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	CreatedBy    *int64    `db:"created_by"`
	UpdatedBy    *int64    `db:"updated_by"`
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// SearchFilter narrows a user listing. Empty strings disable a filter.
type SearchFilter struct {
	Keyword string
	Email   string
	Limit   int
	Offset  int
}
