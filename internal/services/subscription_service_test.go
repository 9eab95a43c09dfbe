package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/plannerhq/planner/internal/domain/billing"
	"github.com/plannerhq/planner/internal/domain/user"
	"github.com/plannerhq/planner/internal/pkg/logger"
	"github.com/plannerhq/planner/internal/testutil"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func strPtr(s string) *string { return &s }

func newTestUser(id string) *user.User {
	return &user.User{
		ID:    id,
		Email: id + "@example.com",
		Role:  user.RoleUser,
		Plan:  user.PlanFree,
	}
}

func TestApplyEvent_OrderPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("with external customer id links customer and upgrades", func(t *testing.T) {
		repo := testutil.NewMockUserRepository()
		u := newTestUser("user-1")
		repo.Users[u.ID] = u

		svc := NewSubscriptionService(repo, testutil.NewMockBillingProvider(), testLogger())
		svc.ApplyEvent(ctx, billing.Event{
			Kind:               billing.EventOrderPaid,
			CustomerID:         "cus_123",
			CustomerExternalID: "user-1",
			OrderID:            "ord_1",
		})

		if u.Plan != user.PlanPro {
			t.Errorf("Plan = %q, want %q", u.Plan, user.PlanPro)
		}
		if u.BillingCustomerID == nil || *u.BillingCustomerID != "cus_123" {
			t.Errorf("BillingCustomerID = %v, want cus_123", u.BillingCustomerID)
		}

		if len(repo.EntitlementWrites) != 1 {
			t.Fatalf("got %d entitlement writes, want 1", len(repo.EntitlementWrites))
		}
		if got := repo.EntitlementWrites[0].Key; got.Kind != billing.ByUserID || got.ID != "user-1" {
			t.Errorf("resolution key = %+v, want ByUserID user-1", got)
		}
	})

	t.Run("without external customer id resolves by customer id", func(t *testing.T) {
		repo := testutil.NewMockUserRepository()
		u := newTestUser("user-2")
		u.BillingCustomerID = strPtr("cus_456")
		repo.Users[u.ID] = u

		svc := NewSubscriptionService(repo, testutil.NewMockBillingProvider(), testLogger())
		svc.ApplyEvent(ctx, billing.Event{
			Kind:       billing.EventOrderPaid,
			CustomerID: "cus_456",
			OrderID:    "ord_2",
		})

		if u.Plan != user.PlanPro {
			t.Errorf("Plan = %q, want %q", u.Plan, user.PlanPro)
		}
		if got := repo.EntitlementWrites[0].Key; got.Kind != billing.ByBillingCustomerID || got.ID != "cus_456" {
			t.Errorf("resolution key = %+v, want ByBillingCustomerID cus_456", got)
		}
		// The customer id is already the join key; the write must not assert it.
		if repo.EntitlementWrites[0].Update.BillingCustomerID != nil {
			t.Error("customer id branch must not set BillingCustomerID")
		}
	})

	t.Run("unknown customer is logged and swallowed", func(t *testing.T) {
		repo := testutil.NewMockUserRepository()

		svc := NewSubscriptionService(repo, testutil.NewMockBillingProvider(), testLogger())
		svc.ApplyEvent(ctx, billing.Event{
			Kind:       billing.EventOrderPaid,
			CustomerID: "cus_ghost",
		})

		if len(repo.EntitlementWrites) != 1 {
			t.Fatalf("got %d entitlement writes, want 1", len(repo.EntitlementWrites))
		}
	})
}

func TestApplyEvent_SubscriptionCreated(t *testing.T) {
	ctx := context.Background()

	repo := testutil.NewMockUserRepository()
	u := newTestUser("user-1")
	repo.Users[u.ID] = u

	svc := NewSubscriptionService(repo, testutil.NewMockBillingProvider(), testLogger())
	svc.ApplyEvent(ctx, billing.Event{
		Kind:               billing.EventSubscriptionCreated,
		CustomerID:         "cus_123",
		CustomerExternalID: "user-1",
		SubscriptionID:     "sub_abc",
	})

	if u.Plan != user.PlanPro {
		t.Errorf("Plan = %q, want %q", u.Plan, user.PlanPro)
	}
	if u.BillingCustomerID == nil || *u.BillingCustomerID != "cus_123" {
		t.Errorf("BillingCustomerID = %v, want cus_123", u.BillingCustomerID)
	}
	if u.BillingSubscriptionID == nil || *u.BillingSubscriptionID != "sub_abc" {
		t.Errorf("BillingSubscriptionID = %v, want sub_abc", u.BillingSubscriptionID)
	}
}

func TestApplyEvent_SubscriptionRevoked(t *testing.T) {
	ctx := context.Background()

	t.Run("downgrades by customer id and retains customer link", func(t *testing.T) {
		repo := testutil.NewMockUserRepository()
		u := newTestUser("user-1")
		u.Plan = user.PlanPro
		u.BillingCustomerID = strPtr("cus_123")
		u.BillingSubscriptionID = strPtr("sub_abc")
		repo.Users[u.ID] = u

		svc := NewSubscriptionService(repo, testutil.NewMockBillingProvider(), testLogger())
		svc.ApplyEvent(ctx, billing.Event{
			Kind:               billing.EventSubscriptionRevoked,
			CustomerID:         "cus_123",
			CustomerExternalID: "user-1",
			SubscriptionID:     "sub_abc",
		})

		if u.Plan != user.PlanFree {
			t.Errorf("Plan = %q, want %q", u.Plan, user.PlanFree)
		}
		if u.BillingSubscriptionID != nil {
			t.Errorf("BillingSubscriptionID = %v, want nil", u.BillingSubscriptionID)
		}
		if u.BillingCustomerID == nil || *u.BillingCustomerID != "cus_123" {
			t.Errorf("BillingCustomerID = %v, want retained cus_123", u.BillingCustomerID)
		}

		// Even though the event carries the external id, revocation keys by
		// the provider customer id.
		if got := repo.EntitlementWrites[0].Key; got.Kind != billing.ByBillingCustomerID || got.ID != "cus_123" {
			t.Errorf("resolution key = %+v, want ByBillingCustomerID cus_123", got)
		}
	})

	t.Run("without external customer id is skipped entirely", func(t *testing.T) {
		repo := testutil.NewMockUserRepository()
		u := newTestUser("user-1")
		u.Plan = user.PlanPro
		u.BillingCustomerID = strPtr("cus_123")
		u.BillingSubscriptionID = strPtr("sub_abc")
		repo.Users[u.ID] = u
		before := *u

		svc := NewSubscriptionService(repo, testutil.NewMockBillingProvider(), testLogger())
		svc.ApplyEvent(ctx, billing.Event{
			Kind:           billing.EventSubscriptionRevoked,
			CustomerID:     "cus_123",
			SubscriptionID: "sub_abc",
		})

		if len(repo.EntitlementWrites) != 0 {
			t.Fatalf("got %d entitlement writes, want 0", len(repo.EntitlementWrites))
		}
		if !reflect.DeepEqual(*u, before) {
			t.Errorf("user mutated: got %+v, want %+v", *u, before)
		}
	})
}

func TestApplyEvent_SubscriptionCanceled_IsNoOp(t *testing.T) {
	ctx := context.Background()

	repo := testutil.NewMockUserRepository()
	u := newTestUser("user-1")
	u.Plan = user.PlanPro
	u.BillingCustomerID = strPtr("cus_123")
	u.BillingSubscriptionID = strPtr("sub_abc")
	repo.Users[u.ID] = u
	before := *u

	svc := NewSubscriptionService(repo, testutil.NewMockBillingProvider(), testLogger())
	svc.ApplyEvent(ctx, billing.Event{
		Kind:               billing.EventSubscriptionCanceled,
		CustomerID:         "cus_123",
		CustomerExternalID: "user-1",
		SubscriptionID:     "sub_abc",
	})

	if len(repo.EntitlementWrites) != 0 {
		t.Fatalf("got %d entitlement writes, want 0", len(repo.EntitlementWrites))
	}
	if !reflect.DeepEqual(*u, before) {
		t.Errorf("access must be retained until revocation: got %+v, want %+v", *u, before)
	}
}

func TestApplyEvent_Idempotent(t *testing.T) {
	ctx := context.Background()

	repo := testutil.NewMockUserRepository()
	u := newTestUser("user-1")
	repo.Users[u.ID] = u

	svc := NewSubscriptionService(repo, testutil.NewMockBillingProvider(), testLogger())
	event := billing.Event{
		Kind:               billing.EventSubscriptionCreated,
		CustomerID:         "cus_123",
		CustomerExternalID: "user-1",
		SubscriptionID:     "sub_abc",
	}

	svc.ApplyEvent(ctx, event)
	after := *u

	svc.ApplyEvent(ctx, event)
	if !reflect.DeepEqual(*u, after) {
		t.Errorf("re-applying the same event changed state: got %+v, want %+v", *u, after)
	}
}

func TestSyncFromProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("active subscription upgrades and stores references", func(t *testing.T) {
		repo := testutil.NewMockUserRepository()
		u := newTestUser("user-1")
		repo.Users[u.ID] = u

		provider := testutil.NewMockBillingProvider()
		provider.Subscriptions["user-1"] = []billing.Subscription{
			{ID: "sub_abc", Status: "active", CustomerID: "cus_123", ProductID: "prod_pro"},
		}

		svc := NewSubscriptionService(repo, provider, testLogger())
		result := svc.SyncFromProvider(ctx, "user-1")

		if !result.Success {
			t.Fatalf("Success = false, error = %q", result.Error)
		}
		if result.Plan != user.PlanPro {
			t.Errorf("Plan = %q, want %q", result.Plan, user.PlanPro)
		}
		if result.Subscription == nil || result.Subscription.ID != "sub_abc" {
			t.Errorf("Subscription = %+v, want sub_abc", result.Subscription)
		}

		if u.Plan != user.PlanPro {
			t.Errorf("stored plan = %q, want %q", u.Plan, user.PlanPro)
		}
		if u.BillingCustomerID == nil || *u.BillingCustomerID != "cus_123" {
			t.Errorf("BillingCustomerID = %v, want cus_123", u.BillingCustomerID)
		}
		if u.BillingSubscriptionID == nil || *u.BillingSubscriptionID != "sub_abc" {
			t.Errorf("BillingSubscriptionID = %v, want sub_abc", u.BillingSubscriptionID)
		}
	})

	t.Run("no active subscription downgrades but keeps customer id", func(t *testing.T) {
		repo := testutil.NewMockUserRepository()
		u := newTestUser("user-1")
		u.Plan = user.PlanPro
		u.BillingCustomerID = strPtr("cus_123")
		u.BillingSubscriptionID = strPtr("sub_abc")
		repo.Users[u.ID] = u

		svc := NewSubscriptionService(repo, testutil.NewMockBillingProvider(), testLogger())
		result := svc.SyncFromProvider(ctx, "user-1")

		if !result.Success {
			t.Fatalf("Success = false, error = %q", result.Error)
		}
		if result.Plan != user.PlanFree {
			t.Errorf("Plan = %q, want %q", result.Plan, user.PlanFree)
		}
		if result.Subscription != nil {
			t.Errorf("Subscription = %+v, want nil for free plan", result.Subscription)
		}

		if u.Plan != user.PlanFree {
			t.Errorf("stored plan = %q, want %q", u.Plan, user.PlanFree)
		}
		if u.BillingSubscriptionID != nil {
			t.Errorf("BillingSubscriptionID = %v, want nil", u.BillingSubscriptionID)
		}
		if u.BillingCustomerID == nil || *u.BillingCustomerID != "cus_123" {
			t.Errorf("BillingCustomerID = %v, want retained cus_123", u.BillingCustomerID)
		}
	})

	t.Run("provider failure leaves entitlement untouched", func(t *testing.T) {
		repo := testutil.NewMockUserRepository()
		u := newTestUser("user-1")
		u.Plan = user.PlanPro
		u.BillingCustomerID = strPtr("cus_123")
		u.BillingSubscriptionID = strPtr("sub_abc")
		repo.Users[u.ID] = u
		before := *u

		provider := testutil.NewMockBillingProvider()
		provider.Err = errors.New("provider unreachable")

		svc := NewSubscriptionService(repo, provider, testLogger())
		result := svc.SyncFromProvider(ctx, "user-1")

		if result.Success {
			t.Error("Success = true, want false on provider failure")
		}
		if result.Error == "" {
			t.Error("Error is empty, want provider error message")
		}
		if len(repo.EntitlementWrites) != 0 {
			t.Fatalf("got %d entitlement writes, want 0 on provider failure", len(repo.EntitlementWrites))
		}
		if !reflect.DeepEqual(*u, before) {
			t.Errorf("failed sync must never downgrade: got %+v, want %+v", *u, before)
		}
	})

	t.Run("store failure surfaces as unsuccessful result", func(t *testing.T) {
		repo := testutil.NewMockUserRepository()
		repo.EntitlementError = errors.New("database gone")
		u := newTestUser("user-1")
		repo.Users[u.ID] = u

		provider := testutil.NewMockBillingProvider()
		provider.Subscriptions["user-1"] = []billing.Subscription{
			{ID: "sub_abc", CustomerID: "cus_123"},
		}

		svc := NewSubscriptionService(repo, provider, testLogger())
		result := svc.SyncFromProvider(ctx, "user-1")

		if result.Success {
			t.Error("Success = true, want false on store failure")
		}
	})

	t.Run("repeated syncs converge to the same state", func(t *testing.T) {
		repo := testutil.NewMockUserRepository()
		u := newTestUser("user-1")
		repo.Users[u.ID] = u

		provider := testutil.NewMockBillingProvider()
		provider.Subscriptions["user-1"] = []billing.Subscription{
			{ID: "sub_abc", CustomerID: "cus_123"},
		}

		svc := NewSubscriptionService(repo, provider, testLogger())
		svc.SyncFromProvider(ctx, "user-1")
		after := *u

		svc.SyncFromProvider(ctx, "user-1")
		if !reflect.DeepEqual(*u, after) {
			t.Errorf("repeated sync changed state: got %+v, want %+v", *u, after)
		}
	})
}

func TestResolutionKey(t *testing.T) {
	tests := []struct {
		name  string
		event billing.Event
		want  billing.ResolutionKey
	}{
		{
			name:  "external id wins",
			event: billing.Event{CustomerID: "cus_1", CustomerExternalID: "user-1"},
			want:  billing.ResolutionKey{Kind: billing.ByUserID, ID: "user-1"},
		},
		{
			name:  "falls back to customer id",
			event: billing.Event{CustomerID: "cus_1"},
			want:  billing.ResolutionKey{Kind: billing.ByBillingCustomerID, ID: "cus_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.ResolutionKey(); got != tt.want {
				t.Errorf("ResolutionKey() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
