package user

import (
	"context"

	"github.com/plannerhq/planner/internal/domain/billing"
)

// Repository defines the interface for user data access
type Repository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByBillingCustomerID retrieves a user by the billing provider's
	// customer id
	GetByBillingCustomerID(ctx context.Context, customerID string) (*User, error)

	// Update updates a user
	Update(ctx context.Context, user *User) error

	// UpdateEntitlement applies a single conditional entitlement write
	// scoped by the resolution key and returns the number of rows matched.
	// Zero rows is not an error; it means the key resolved nothing.
	UpdateEntitlement(ctx context.Context, key billing.ResolutionKey, update EntitlementUpdate) (int64, error)

	// Delete deletes a user
	Delete(ctx context.Context, id string) error

	// List retrieves all users with pagination
	List(ctx context.Context, limit, offset int) ([]*User, int64, error)

	// ListWithSubscription retrieves users holding a billing subscription
	// reference, for the reconciliation sweep.
	ListWithSubscription(ctx context.Context, limit int) ([]*User, error)
}
