package dto

import (
	"time"

	"github.com/plannerhq/planner/internal/domain/task"
)

// CreateTaskRequest represents a task creation request
type CreateTaskRequest struct {
	Title   string     `json:"title" validate:"required,max=500"`
	Notes   string     `json:"notes,omitempty"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest represents a task update request
type UpdateTaskRequest struct {
	Title   *string    `json:"title,omitempty" validate:"omitempty,max=500"`
	Notes   *string    `json:"notes,omitempty"`
	DueDate *time.Time `json:"due_date,omitempty"`
	Done    *bool      `json:"done,omitempty"`
}

// TaskListResponse represents a paginated task list
type TaskListResponse struct {
	Tasks  []*task.Task `json:"tasks"`
	Total  int64        `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}
