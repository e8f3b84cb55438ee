// Package repository persists API accounts and spinner configurations.
package repository

import (
	"context"
	"time"

	"github.com/okian/spinner/internal/domain/model"
)

// User is an API account.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// Store provides read/write access to accounts and their spinners.
type Store interface {
	// CreateUser registers email with a bcrypt hash of password.
	// Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, email, password string) (User, error)

	// VerifyPassword returns the user when the password matches.
	// Returns ErrInvalidCredentials otherwise, including for unknown emails.
	VerifyPassword(ctx context.Context, email, password string) (User, error)

	// UserByID returns ErrNotFound for unknown ids.
	UserByID(ctx context.Context, id string) (User, error)

	// ListSpinners returns owner's spinners in creation order.
	ListSpinners(ctx context.Context, ownerID string) ([]model.WheelConfiguration, error)

	// GetSpinner returns ErrNotFound when id is unknown or owned by someone else.
	GetSpinner(ctx context.Context, ownerID, id string) (model.WheelConfiguration, error)

	// CreateSpinner assigns a new id and stores cfg with its segments.
	CreateSpinner(ctx context.Context, ownerID string, cfg model.WheelConfiguration) (model.WheelConfiguration, error)

	// UpdateSpinner replaces the spinner and its segments.
	UpdateSpinner(ctx context.Context, ownerID string, cfg model.WheelConfiguration) (model.WheelConfiguration, error)

	DeleteSpinner(ctx context.Context, ownerID, id string) error
}
