package services

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/plannerhq/planner/internal/domain/user"
	"github.com/plannerhq/planner/internal/pkg/errors"
	"github.com/plannerhq/planner/internal/testutil"
)

// low bcrypt cost keeps the hashing tests fast
const testBCryptCost = 4

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a free plan account", func(t *testing.T) {
		repo := testutil.NewMockUserRepository()
		svc := NewUserService(repo, testBCryptCost, testLogger())

		u, err := svc.Register(ctx, "alice@example.com", "s3cretpass", "Alice")
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if u.Plan != user.PlanFree {
			t.Errorf("Plan = %q, want free", u.Plan)
		}
		if u.Role != user.RoleUser {
			t.Errorf("Role = %q, want user", u.Role)
		}
		if u.PasswordHash == "s3cretpass" || u.PasswordHash == "" {
			t.Error("password was not hashed")
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		repo := testutil.NewMockUserRepository()
		svc := NewUserService(repo, testBCryptCost, testLogger())

		if _, err := svc.Register(ctx, "alice@example.com", "s3cretpass", "Alice"); err != nil {
			t.Fatalf("first Register() error = %v", err)
		}

		_, err := svc.Register(ctx, "alice@example.com", "otherpass", "Alice B")
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrCodeConflict {
			t.Errorf("second Register() error = %v, want conflict", err)
		}
	})
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewMockUserRepository()
	svc := NewUserService(repo, testBCryptCost, testLogger())

	if _, err := svc.Register(ctx, "bob@example.com", "s3cretpass", "Bob"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		u, err := svc.Authenticate(ctx, "bob@example.com", "s3cretpass")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if u.Email != "bob@example.com" {
			t.Errorf("Email = %q, want bob@example.com", u.Email)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "bob@example.com", "wrong")
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrCodeUnauthorized {
			t.Errorf("Authenticate() error = %v, want unauthorized", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@example.com", "s3cretpass")
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrCodeUnauthorized {
			t.Errorf("Authenticate() error = %v, want unauthorized", err)
		}
	})
}
