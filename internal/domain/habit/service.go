package habit

import "context"

// Service defines the interface for habit business logic
type Service interface {
	// Create creates a habit for the user, enforcing the free plan limit
	Create(ctx context.Context, userID string, h *Habit) (*Habit, error)

	// Get retrieves a habit
	Get(ctx context.Context, userID, id string) (*Habit, error)

	// List retrieves a user's habits
	List(ctx context.Context, userID string) ([]*Habit, error)

	// Update updates a habit
	Update(ctx context.Context, userID string, h *Habit) (*Habit, error)

	// Delete deletes a habit
	Delete(ctx context.Context, userID, id string) error

	// CheckIn records a completion for the given day (YYYY-MM-DD)
	CheckIn(ctx context.Context, userID, id, day string) error

	// GetStreak computes current and longest daily streaks for a habit
	GetStreak(ctx context.Context, userID, id string) (*Streak, error)
}
