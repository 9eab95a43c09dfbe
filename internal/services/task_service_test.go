package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/plannerhq/planner/internal/cache"
	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/domain/task"
	"github.com/plannerhq/planner/internal/domain/user"
	"github.com/plannerhq/planner/internal/pkg/errors"
	"github.com/plannerhq/planner/internal/repository/postgres"
	"github.com/plannerhq/planner/internal/testutil"
)

func noopCache() *cache.Cache {
	return cache.New(config.RedisConfig{Enabled: false}, testLogger())
}

func setupTaskService(t *testing.T) (task.Service, task.Repository, user.Repository) {
	t.Helper()
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.CleanupDB(db) })

	taskRepo := postgres.NewTaskRepository(db)
	userRepo := postgres.NewUserRepository(db)
	svc := NewTaskService(taskRepo, userRepo, noopCache(), testLogger())
	return svc, taskRepo, userRepo
}

func seedServiceUser(t *testing.T, repo user.Repository, id, plan string) *user.User {
	t.Helper()
	u := &user.User{
		ID:           id,
		Email:        id + "@example.com",
		PasswordHash: "x",
		Role:         user.RoleUser,
		Plan:         plan,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and owner", func(t *testing.T) {
		svc, _, userRepo := setupTaskService(t)
		seedServiceUser(t, userRepo, "user-1", user.PlanFree)

		created, err := svc.Create(ctx, "user-1", &task.Task{Title: "  Write report  "})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if created.ID == "" {
			t.Error("Create() did not assign an id")
		}
		if created.UserID != "user-1" {
			t.Errorf("UserID = %q, want user-1", created.UserID)
		}
		if created.Title != "Write report" {
			t.Errorf("Title = %q, want trimmed title", created.Title)
		}
	})

	t.Run("rejects empty title", func(t *testing.T) {
		svc, _, userRepo := setupTaskService(t)
		seedServiceUser(t, userRepo, "user-1", user.PlanFree)

		_, err := svc.Create(ctx, "user-1", &task.Task{Title: "   "})
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrCodeBadRequest {
			t.Errorf("Create() error = %v, want bad request", err)
		}
	})
}

func TestTaskService_Create_PlanLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("free plan is capped", func(t *testing.T) {
		svc, taskRepo, userRepo := setupTaskService(t)
		seedServiceUser(t, userRepo, "user-1", user.PlanFree)

		for i := 0; i < task.FreePlanLimit; i++ {
			err := taskRepo.Create(ctx, &task.Task{
				ID:     fmt.Sprintf("t-%d", i),
				UserID: "user-1",
				Title:  fmt.Sprintf("Task %d", i),
			})
			if err != nil {
				t.Fatalf("seed task %d: %v", i, err)
			}
		}

		_, err := svc.Create(ctx, "user-1", &task.Task{Title: "One too many"})
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrCodePlanLimit {
			t.Fatalf("Create() error = %v, want %s", err, errors.ErrCodePlanLimit)
		}
	})

	t.Run("pro plan is not capped", func(t *testing.T) {
		svc, taskRepo, userRepo := setupTaskService(t)
		seedServiceUser(t, userRepo, "user-2", user.PlanPro)

		for i := 0; i < task.FreePlanLimit; i++ {
			err := taskRepo.Create(ctx, &task.Task{
				ID:     fmt.Sprintf("t-%d", i),
				UserID: "user-2",
				Title:  fmt.Sprintf("Task %d", i),
			})
			if err != nil {
				t.Fatalf("seed task %d: %v", i, err)
			}
		}

		if _, err := svc.Create(ctx, "user-2", &task.Task{Title: "Still fine"}); err != nil {
			t.Errorf("Create() error = %v, want nil for pro user", err)
		}
	})
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()
	svc, _, userRepo := setupTaskService(t)
	seedServiceUser(t, userRepo, "user-1", user.PlanFree)

	created, err := svc.Create(ctx, "user-1", &task.Task{Title: "Draft"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	created.Title = "Draft v2"
	created.Done = true
	updated, err := svc.Update(ctx, "user-1", created)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Draft v2" || !updated.Done {
		t.Errorf("Update() = %+v, want title and done applied", updated)
	}

	got, err := svc.Get(ctx, "user-1", created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Done {
		t.Error("Get() after update: Done = false, want true")
	}
}

func TestTaskService_List_ScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc, _, userRepo := setupTaskService(t)
	seedServiceUser(t, userRepo, "user-1", user.PlanFree)
	seedServiceUser(t, userRepo, "user-2", user.PlanFree)

	if _, err := svc.Create(ctx, "user-1", &task.Task{Title: "Mine"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, "user-2", &task.Task{Title: "Theirs"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tasks, total, err := svc.List(ctx, "user-1", 50, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || len(tasks) != 1 {
		t.Fatalf("List() total = %d, len = %d, want 1 and 1", total, len(tasks))
	}
	if tasks[0].Title != "Mine" {
		t.Errorf("List()[0].Title = %q, want Mine", tasks[0].Title)
	}
}
