package dto

import "github.com/plannerhq/planner/internal/domain/habit"

// CreateHabitRequest represents a habit creation request
type CreateHabitRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty"`
	Cadence     string `json:"cadence,omitempty" validate:"omitempty,oneof=daily weekly"`
}

// UpdateHabitRequest represents a habit update request
type UpdateHabitRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty"`
	Cadence     *string `json:"cadence,omitempty" validate:"omitempty,oneof=daily weekly"`
}

// CheckInRequest represents a habit check-in request
type CheckInRequest struct {
	Day string `json:"day,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// HabitWithStreak pairs a habit with its streak summary
type HabitWithStreak struct {
	Habit  *habit.Habit  `json:"habit"`
	Streak *habit.Streak `json:"streak"`
}
