package repository

import (
	"context"

	"cleem-api/internal/domain"
)

// UserRepository defines the interface for user data operations.
//
// Lookup methods return (nil, nil) when no row matches; "not found" is a
// value, not an error.
type UserRepository interface {
	// GetByID retrieves a user by local id
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByGoogleID retrieves a user by the provider subject identifier
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)

	// Create inserts a new user with a fresh local id. A unique-constraint
	// violation (concurrent first sign-in, duplicate email) is reported as a
	// conflict AppError.
	Create(ctx context.Context, googleID, email string, name, picture *string) (*domain.User, error)

	// UpdateProfile overwrites the mutable display fields and refreshes
	// updated_at and last_login. id, google_id and created_at never change.
	UpdateProfile(ctx context.Context, userID string, name, picture *string) (*domain.User, error)

	// SetActive flips the is_active flag. Deactivation is the only
	// revocation mechanism for outstanding sessions.
	SetActive(ctx context.Context, userID string, active bool) error

	// InTx runs fn against a copy of the repository bound to one
	// transaction, committing on nil and rolling back otherwise.
	InTx(ctx context.Context, fn func(UserRepository) error) error
}
