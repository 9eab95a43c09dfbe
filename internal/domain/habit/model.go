package habit

import "time"

// Habit represents a recurring habit being tracked
type Habit struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Cadence     string    `json:"cadence"` // daily or weekly
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Cadence values
const (
	CadenceDaily  = "daily"
	CadenceWeekly = "weekly"
)

// CheckIn records one completion of a habit on a calendar day.
type CheckIn struct {
	HabitID   string    `json:"habit_id"`
	Day       string    `json:"day"` // YYYY-MM-DD
	CheckedAt time.Time `json:"checked_at"`
}

// Streak summarises consecutive completion of a habit.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// FreePlanLimit is the maximum number of habits on the free plan.
const FreePlanLimit = 3
