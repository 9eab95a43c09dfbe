package postgres

import (
	"context"
	"testing"

	"github.com/plannerhq/planner/internal/domain/billing"
	"github.com/plannerhq/planner/internal/domain/user"
	"github.com/plannerhq/planner/internal/testutil"
)

func strPtr(s string) *string { return &s }

func seedUser(t *testing.T, repo user.Repository, u *user.User) *user.User {
	t.Helper()
	if u.Role == "" {
		u.Role = user.RoleUser
	}
	if u.Plan == "" {
		u.Plan = user.PlanFree
	}
	if u.PasswordHash == "" {
		u.PasswordHash = "x"
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return u
}

func TestUserRepository_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *user.User
		wantErr bool
	}{
		{
			name: "create user successfully",
			user: &user.User{
				ID:           "user-1",
				Email:        "test@example.com",
				PasswordHash: "hash",
				Role:         user.RoleUser,
				Plan:         user.PlanFree,
			},
			wantErr: false,
		},
		{
			name: "duplicate email fails",
			user: &user.User{
				ID:           "user-2",
				Email:        "test@example.com",
				PasswordHash: "hash",
				Role:         user.RoleUser,
				Plan:         user.PlanFree,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if (err != nil) != tt.wantErr {
				t.Errorf("Create() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserRepository_GetByBillingCustomerID(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, repo, &user.User{
		ID:                "user-1",
		Email:             "a@example.com",
		BillingCustomerID: strPtr("cus_123"),
	})

	got, err := repo.GetByBillingCustomerID(ctx, "cus_123")
	if err != nil {
		t.Fatalf("GetByBillingCustomerID() error = %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("ID = %q, want user-1", got.ID)
	}

	if _, err := repo.GetByBillingCustomerID(ctx, "cus_missing"); err == nil {
		t.Error("GetByBillingCustomerID() expected error for unknown customer")
	}
}

func TestUserRepository_UpdateEntitlement(t *testing.T) {
	ctx := context.Background()

	t.Run("by user id sets plan and references", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		defer testutil.CleanupDB(db)
		repo := NewUserRepository(db)

		seedUser(t, repo, &user.User{ID: "user-1", Email: "a@example.com"})

		rows, err := repo.UpdateEntitlement(ctx,
			billing.ResolutionKey{Kind: billing.ByUserID, ID: "user-1"},
			user.EntitlementUpdate{
				Plan:                  user.PlanPro,
				BillingCustomerID:     strPtr("cus_123"),
				BillingSubscriptionID: strPtr("sub_abc"),
			})
		if err != nil {
			t.Fatalf("UpdateEntitlement() error = %v", err)
		}
		if rows != 1 {
			t.Errorf("rows = %d, want 1", rows)
		}

		got, _ := repo.GetByID(ctx, "user-1")
		if got.Plan != user.PlanPro {
			t.Errorf("Plan = %q, want %q", got.Plan, user.PlanPro)
		}
		if got.BillingCustomerID == nil || *got.BillingCustomerID != "cus_123" {
			t.Errorf("BillingCustomerID = %v, want cus_123", got.BillingCustomerID)
		}
		if got.BillingSubscriptionID == nil || *got.BillingSubscriptionID != "sub_abc" {
			t.Errorf("BillingSubscriptionID = %v, want sub_abc", got.BillingSubscriptionID)
		}
	})

	t.Run("by billing customer id downgrades and clears subscription", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		defer testutil.CleanupDB(db)
		repo := NewUserRepository(db)

		seedUser(t, repo, &user.User{
			ID:                    "user-1",
			Email:                 "a@example.com",
			Plan:                  user.PlanPro,
			BillingCustomerID:     strPtr("cus_123"),
			BillingSubscriptionID: strPtr("sub_abc"),
		})

		rows, err := repo.UpdateEntitlement(ctx,
			billing.ResolutionKey{Kind: billing.ByBillingCustomerID, ID: "cus_123"},
			user.EntitlementUpdate{
				Plan:                user.PlanFree,
				ClearSubscriptionID: true,
			})
		if err != nil {
			t.Fatalf("UpdateEntitlement() error = %v", err)
		}
		if rows != 1 {
			t.Errorf("rows = %d, want 1", rows)
		}

		got, _ := repo.GetByID(ctx, "user-1")
		if got.Plan != user.PlanFree {
			t.Errorf("Plan = %q, want %q", got.Plan, user.PlanFree)
		}
		if got.BillingSubscriptionID != nil {
			t.Errorf("BillingSubscriptionID = %v, want nil", got.BillingSubscriptionID)
		}
		// Customer id stays as the historical link.
		if got.BillingCustomerID == nil || *got.BillingCustomerID != "cus_123" {
			t.Errorf("BillingCustomerID = %v, want retained cus_123", got.BillingCustomerID)
		}
	})

	t.Run("unset fields are left unchanged", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		defer testutil.CleanupDB(db)
		repo := NewUserRepository(db)

		seedUser(t, repo, &user.User{
			ID:                    "user-1",
			Email:                 "a@example.com",
			BillingCustomerID:     strPtr("cus_123"),
			BillingSubscriptionID: strPtr("sub_abc"),
		})

		_, err := repo.UpdateEntitlement(ctx,
			billing.ResolutionKey{Kind: billing.ByUserID, ID: "user-1"},
			user.EntitlementUpdate{Plan: user.PlanPro})
		if err != nil {
			t.Fatalf("UpdateEntitlement() error = %v", err)
		}

		got, _ := repo.GetByID(ctx, "user-1")
		if got.BillingCustomerID == nil || *got.BillingCustomerID != "cus_123" {
			t.Errorf("BillingCustomerID = %v, want unchanged cus_123", got.BillingCustomerID)
		}
		if got.BillingSubscriptionID == nil || *got.BillingSubscriptionID != "sub_abc" {
			t.Errorf("BillingSubscriptionID = %v, want unchanged sub_abc", got.BillingSubscriptionID)
		}
	})

	t.Run("unmatched key reports zero rows without error", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		defer testutil.CleanupDB(db)
		repo := NewUserRepository(db)

		rows, err := repo.UpdateEntitlement(ctx,
			billing.ResolutionKey{Kind: billing.ByBillingCustomerID, ID: "cus_missing"},
			user.EntitlementUpdate{Plan: user.PlanPro})
		if err != nil {
			t.Fatalf("UpdateEntitlement() error = %v", err)
		}
		if rows != 0 {
			t.Errorf("rows = %d, want 0", rows)
		}
	})
}

func TestUserRepository_ListWithSubscription(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, repo, &user.User{ID: "user-1", Email: "a@example.com"})
	seedUser(t, repo, &user.User{
		ID:                    "user-2",
		Email:                 "b@example.com",
		Plan:                  user.PlanPro,
		BillingCustomerID:     strPtr("cus_2"),
		BillingSubscriptionID: strPtr("sub_2"),
	})

	users, err := repo.ListWithSubscription(ctx, 10)
	if err != nil {
		t.Fatalf("ListWithSubscription() error = %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
	if users[0].ID != "user-2" {
		t.Errorf("ID = %q, want user-2", users[0].ID)
	}
}
