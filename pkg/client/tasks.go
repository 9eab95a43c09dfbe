package client

import (
	"context"
	"fmt"
	"time"
)

// TaskService accesses task endpoints
type TaskService struct {
	client *Client
}

// Tasks returns the task service
func (c *Client) Tasks() *TaskService {
	return &TaskService{client: c}
}

// CreateTaskRequest represents a task creation request
type CreateTaskRequest struct {
	Title   string     `json:"title"`
	Notes   string     `json:"notes,omitempty"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest represents a task update request
type UpdateTaskRequest struct {
	Title   *string    `json:"title,omitempty"`
	Notes   *string    `json:"notes,omitempty"`
	DueDate *time.Time `json:"due_date,omitempty"`
	Done    *bool      `json:"done,omitempty"`
}

// Create creates a new task
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	var t Task
	if err := s.client.doRequest(ctx, "POST", "/api/v1/tasks", req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// List retrieves a page of tasks
func (s *TaskService) List(ctx context.Context, limit, offset int) (*TaskList, error) {
	path := fmt.Sprintf("/api/v1/tasks?limit=%d&offset=%d", limit, offset)
	var list TaskList
	if err := s.client.doRequest(ctx, "GET", path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Get retrieves a task by ID
func (s *TaskService) Get(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := s.client.doRequest(ctx, "GET", "/api/v1/tasks/"+id, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update updates a task
func (s *TaskService) Update(ctx context.Context, id string, req UpdateTaskRequest) (*Task, error) {
	var t Task
	if err := s.client.doRequest(ctx, "PUT", "/api/v1/tasks/"+id, req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete deletes a task
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.client.doRequest(ctx, "DELETE", "/api/v1/tasks/"+id, nil, nil)
}
