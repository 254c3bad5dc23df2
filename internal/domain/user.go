package domain

import (
	"context"
	"strings"
	"time"
)

// User represents a registered Tripnosis account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository defines persistence operations for users.
//
// Create must behave as an atomic insert-if-absent keyed on the normalized
// email: it returns ErrDuplicateEmail when a record with the same email
// already exists and ErrPersistence when the durable write fails. A failed
// Create leaves the repository unchanged.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// NormalizeEmail returns the canonical lookup form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
