package user

import "context"

// Service defines the interface for user business logic
type Service interface {
	// Register creates a new account with a hashed password
	Register(ctx context.Context, email, password, name string) (*User, error)

	// Authenticate verifies credentials and returns the user
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdateProfile updates mutable profile fields
	UpdateProfile(ctx context.Context, id, name string) (*User, error)
}
