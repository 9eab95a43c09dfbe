package integration

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plannerhq/planner/internal/api/handlers"
	"github.com/plannerhq/planner/internal/api/middleware"
	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/domain/user"
	"github.com/plannerhq/planner/internal/pkg/logger"
	"github.com/plannerhq/planner/internal/providers"
	"github.com/plannerhq/planner/internal/repository/postgres"
	"github.com/plannerhq/planner/internal/services"
	"github.com/plannerhq/planner/internal/testutil"
)

const webhookKey = "integration-test-secret"

func webhookSecret() string {
	return "whsec_" + base64.StdEncoding.EncodeToString([]byte(webhookKey))
}

func signWebhook(id, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookKey))
	fmt.Fprintf(mac, "%s.%s.", id, timestamp)
	mac.Write(body)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, h *handlers.BillingHandler, deliveryID string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/billing", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("webhook-id", deliveryID)
	req.Header.Set("webhook-timestamp", timestamp)
	req.Header.Set("webhook-signature", signWebhook(deliveryID, timestamp, body))

	rr := httptest.NewRecorder()
	h.Webhook(rr, req)
	return rr
}

// TestBillingWebhookLifecycle drives a user through the full entitlement
// flow: purchase webhook -> pro, stored subscription state, revocation
// webhook -> free.
func TestBillingWebhookLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	log := logger.New(logger.Config{Level: "error", Format: "json"})
	cfg := &config.Config{}
	cfg.Billing.WebhookSecret = webhookSecret()

	userRepo := postgres.NewUserRepository(db)
	billingService := services.NewSubscriptionService(userRepo, testutil.NewMockBillingProvider(), log)
	userService := services.NewUserService(userRepo, 4, log)
	polar := providers.NewPolarClient(log, "", "sandbox")

	billingHandler := handlers.NewBillingHandler(billingService, userService, polar, cfg, log)

	u, err := userService.Register(context.Background(), "carol@example.com", "s3cretpass", "Carol")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Step 1: order.paid webhook upgrades the user and links the customer
	t.Run("Order Paid", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{
			"type": "order.paid",
			"data": map[string]interface{}{
				"id": "ord_1",
				"customer": map[string]interface{}{
					"id":          "cus_integration",
					"external_id": u.ID,
				},
			},
		})

		rr := postWebhook(t, billingHandler, "msg_1", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("webhook status %d, body: %s", rr.Code, rr.Body.String())
		}

		got, err := userRepo.GetByID(context.Background(), u.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Plan != user.PlanPro {
			t.Errorf("plan = %q, want pro", got.Plan)
		}
		if got.BillingCustomerID == nil || *got.BillingCustomerID != "cus_integration" {
			t.Errorf("billing customer id = %v, want cus_integration", got.BillingCustomerID)
		}
	})

	// Step 2: subscription.created records the subscription reference
	t.Run("Subscription Created", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{
			"type": "subscription.created",
			"data": map[string]interface{}{
				"id": "sub_integration",
				"customer": map[string]interface{}{
					"id":          "cus_integration",
					"external_id": u.ID,
				},
			},
		})

		rr := postWebhook(t, billingHandler, "msg_2", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("webhook status %d, body: %s", rr.Code, rr.Body.String())
		}

		got, err := userRepo.GetByID(context.Background(), u.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.BillingSubscriptionID == nil || *got.BillingSubscriptionID != "sub_integration" {
			t.Errorf("billing subscription id = %v, want sub_integration", got.BillingSubscriptionID)
		}
	})

	// Step 3: the stored state is visible through the subscription endpoint
	t.Run("Get Subscription", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/subscription", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, u.ID))

		rr := httptest.NewRecorder()
		billingHandler.Subscription(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("subscription status %d, body: %s", rr.Code, rr.Body.String())
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		data := response["data"].(map[string]interface{})
		if data["plan"] != user.PlanPro {
			t.Errorf("plan = %v, want pro", data["plan"])
		}
	})

	// Step 4: subscription.revoked downgrades and clears the subscription
	t.Run("Subscription Revoked", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{
			"type": "subscription.revoked",
			"data": map[string]interface{}{
				"id": "sub_integration",
				"customer": map[string]interface{}{
					"id":          "cus_integration",
					"external_id": u.ID,
				},
			},
		})

		rr := postWebhook(t, billingHandler, "msg_3", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("webhook status %d, body: %s", rr.Code, rr.Body.String())
		}

		got, err := userRepo.GetByID(context.Background(), u.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Plan != user.PlanFree {
			t.Errorf("plan = %q, want free", got.Plan)
		}
		if got.BillingSubscriptionID != nil {
			t.Errorf("billing subscription id = %v, want nil", got.BillingSubscriptionID)
		}
		if got.BillingCustomerID == nil {
			t.Error("billing customer id was cleared, want it retained")
		}
	})

	// Step 5: a tampered signature is rejected before any state change
	t.Run("Rejects Bad Signature", func(t *testing.T) {
		body := []byte(`{"type":"order.paid","data":{"id":"ord_2","customer":{"id":"cus_other"}}}`)

		timestamp := fmt.Sprintf("%d", time.Now().Unix())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/billing", bytes.NewReader(body))
		req.Header.Set("webhook-id", "msg_4")
		req.Header.Set("webhook-timestamp", timestamp)
		req.Header.Set("webhook-signature", "v1,AAAA")

		rr := httptest.NewRecorder()
		billingHandler.Webhook(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("webhook status %d, want 400", rr.Code)
		}
	})
}
