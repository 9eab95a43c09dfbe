package task

import "context"

// Repository defines the interface for task data access
type Repository interface {
	// Create creates a new task
	Create(ctx context.Context, t *Task) error

	// GetByID retrieves a task by ID, scoped to its owner
	GetByID(ctx context.Context, userID, id string) (*Task, error)

	// ListByUser retrieves a user's tasks with pagination
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Task, int64, error)

	// Update updates a task
	Update(ctx context.Context, t *Task) error

	// Delete deletes a task, scoped to its owner
	Delete(ctx context.Context, userID, id string) error

	// CountByUser counts a user's tasks
	CountByUser(ctx context.Context, userID string) (int64, error)
}
