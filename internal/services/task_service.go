package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plannerhq/planner/internal/cache"
	"github.com/plannerhq/planner/internal/domain/task"
	"github.com/plannerhq/planner/internal/domain/user"
	"github.com/plannerhq/planner/internal/pkg/errors"
	"github.com/plannerhq/planner/internal/pkg/logger"
)

// TaskService implements task.Service
type TaskService struct {
	repo   task.Repository
	users  user.Repository
	cache  *cache.Cache
	logger *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(repo task.Repository, users user.Repository, c *cache.Cache, log *logger.Logger) task.Service {
	return &TaskService{
		repo:   repo,
		users:  users,
		cache:  c,
		logger: log,
	}
}

func taskListCacheKey(userID string) string {
	return cache.Key("tasks", userID)
}

// Create creates a task for the user, enforcing the free plan limit
func (s *TaskService) Create(ctx context.Context, userID string, t *task.Task) (*task.Task, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !u.IsPro() {
		count, err := s.repo.CountByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if count >= task.FreePlanLimit {
			return nil, errors.PlanLimitError(
				fmt.Sprintf("Free plan is limited to %d tasks. Upgrade to Pro for unlimited tasks.", task.FreePlanLimit))
		}
	}

	t.ID = uuid.New().String()
	t.UserID = userID
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return nil, errors.BadRequest("Task title is required")
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create task")
		return nil, err
	}

	s.cache.Del(ctx, taskListCacheKey(userID))
	return t, nil
}

// Get retrieves a task
func (s *TaskService) Get(ctx context.Context, userID, id string) (*task.Task, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List retrieves a user's tasks, serving the first page from cache when
// possible
func (s *TaskService) List(ctx context.Context, userID string, limit, offset int) ([]*task.Task, int64, error) {
	if offset == 0 {
		var cached []*task.Task
		if ok := s.cache.Get(ctx, taskListCacheKey(userID), &cached); ok && len(cached) <= limit {
			return cached, int64(len(cached)), nil
		}
	}

	tasks, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	if offset == 0 && total <= int64(limit) {
		s.cache.Set(ctx, taskListCacheKey(userID), tasks, 10*time.Minute)
	}

	return tasks, total, nil
}

// Update updates a task
func (s *TaskService) Update(ctx context.Context, userID string, t *task.Task) (*task.Task, error) {
	existing, err := s.repo.GetByID(ctx, userID, t.ID)
	if err != nil {
		return nil, err
	}

	existing.Title = strings.TrimSpace(t.Title)
	if existing.Title == "" {
		return nil, errors.BadRequest("Task title is required")
	}
	existing.Notes = t.Notes
	existing.DueDate = t.DueDate
	existing.Done = t.Done

	if err := s.repo.Update(ctx, existing); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update task")
		return nil, err
	}

	s.cache.Del(ctx, taskListCacheKey(userID))
	return existing, nil
}

// Delete deletes a task
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.Del(ctx, taskListCacheKey(userID))
	return nil
}
