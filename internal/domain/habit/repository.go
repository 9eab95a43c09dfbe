package habit

import "context"

// Repository defines the interface for habit data access
type Repository interface {
	// Create creates a new habit
	Create(ctx context.Context, h *Habit) error

	// GetByID retrieves a habit by ID, scoped to its owner
	GetByID(ctx context.Context, userID, id string) (*Habit, error)

	// ListByUser retrieves a user's habits
	ListByUser(ctx context.Context, userID string) ([]*Habit, error)

	// Update updates a habit
	Update(ctx context.Context, h *Habit) error

	// Delete deletes a habit and its check-ins, scoped to its owner
	Delete(ctx context.Context, userID, id string) error

	// CountByUser counts a user's habits
	CountByUser(ctx context.Context, userID string) (int64, error)

	// AddCheckIn records a check-in for a day; recording the same day twice
	// is a no-op
	AddCheckIn(ctx context.Context, c *CheckIn) error

	// ListCheckIns lists check-ins for a habit, most recent day first
	ListCheckIns(ctx context.Context, habitID string, limit int) ([]*CheckIn, error)
}
