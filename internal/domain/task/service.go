package task

import "context"

// Service defines the interface for task business logic
type Service interface {
	// Create creates a task for the user, enforcing the free plan limit
	Create(ctx context.Context, userID string, t *Task) (*Task, error)

	// Get retrieves a task
	Get(ctx context.Context, userID, id string) (*Task, error)

	// List retrieves a user's tasks
	List(ctx context.Context, userID string, limit, offset int) ([]*Task, int64, error)

	// Update updates a task
	Update(ctx context.Context, userID string, t *Task) (*Task, error)

	// Delete deletes a task
	Delete(ctx context.Context, userID, id string) error
}
