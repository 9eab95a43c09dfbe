package providers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/plannerhq/planner/internal/domain/billing"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

func testSecret() string {
	return "whsec_" + base64.StdEncoding.EncodeToString([]byte(testSecretKey))
}

func signBody(t *testing.T, id, timestamp string, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(testSecretKey))
	fmt.Fprintf(mac, "%s.%s.", id, timestamp)
	mac.Write(body)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func validHeaders(t *testing.T, body []byte) map[string]string {
	t.Helper()
	id := "msg_1"
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	return map[string]string{
		"webhook-id":        id,
		"webhook-timestamp": ts,
		"webhook-signature": signBody(t, id, ts, body),
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"type":"order.paid","data":{"id":"ord_1"}}`)

	t.Run("valid signature passes", func(t *testing.T) {
		if err := VerifyWebhookSignature(testSecret(), validHeaders(t, body), body); err != nil {
			t.Errorf("VerifyWebhookSignature() error = %v", err)
		}
	})

	t.Run("tampered body fails", func(t *testing.T) {
		headers := validHeaders(t, body)
		if err := VerifyWebhookSignature(testSecret(), headers, []byte(`{"type":"order.paid"}`)); err == nil {
			t.Error("expected error for tampered body")
		}
	})

	t.Run("missing headers fail", func(t *testing.T) {
		if err := VerifyWebhookSignature(testSecret(), map[string]string{}, body); err == nil {
			t.Error("expected error for missing headers")
		}
	})

	t.Run("stale timestamp fails", func(t *testing.T) {
		id := "msg_1"
		ts := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)
		headers := map[string]string{
			"webhook-id":        id,
			"webhook-timestamp": ts,
			"webhook-signature": signBody(t, id, ts, body),
		}
		if err := VerifyWebhookSignature(testSecret(), headers, body); err == nil {
			t.Error("expected error for stale timestamp")
		}
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		other := "whsec_" + base64.StdEncoding.EncodeToString([]byte("another-secret-another-secret-ab"))
		if err := VerifyWebhookSignature(other, validHeaders(t, body), body); err == nil {
			t.Error("expected error for wrong secret")
		}
	})

	t.Run("raw secret that parses as base64 still verifies", func(t *testing.T) {
		// "abcd1234" is valid base64, but here it is the key itself.
		rawKey := "abcd1234"
		id := "msg_1"
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		mac := hmac.New(sha256.New, []byte(rawKey))
		fmt.Fprintf(mac, "%s.%s.", id, ts)
		mac.Write(body)
		headers := map[string]string{
			"webhook-id":        id,
			"webhook-timestamp": ts,
			"webhook-signature": "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil)),
		}
		if err := VerifyWebhookSignature("whsec_"+rawKey, headers, body); err != nil {
			t.Errorf("VerifyWebhookSignature() error = %v", err)
		}
	})

	t.Run("second signature entry is accepted", func(t *testing.T) {
		headers := validHeaders(t, body)
		headers["webhook-signature"] = "v1,Zm9v " + headers["webhook-signature"]
		if err := VerifyWebhookSignature(testSecret(), headers, body); err != nil {
			t.Errorf("VerifyWebhookSignature() error = %v", err)
		}
	})
}

func TestParseWebhookEvent(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantOK   bool
		wantErr  bool
		wantKind billing.EventKind
		check    func(t *testing.T, e billing.Event)
	}{
		{
			name:     "order paid",
			body:     `{"type":"order.paid","data":{"id":"ord_1","customer":{"id":"cus_1","external_id":"user-1"}}}`,
			wantOK:   true,
			wantKind: billing.EventOrderPaid,
			check: func(t *testing.T, e billing.Event) {
				if e.OrderID != "ord_1" {
					t.Errorf("OrderID = %q, want ord_1", e.OrderID)
				}
				if e.CustomerID != "cus_1" || e.CustomerExternalID != "user-1" {
					t.Errorf("customer = %q/%q, want cus_1/user-1", e.CustomerID, e.CustomerExternalID)
				}
			},
		},
		{
			name:     "subscription created",
			body:     `{"type":"subscription.created","data":{"id":"sub_1","customer":{"id":"cus_1"}}}`,
			wantOK:   true,
			wantKind: billing.EventSubscriptionCreated,
			check: func(t *testing.T, e billing.Event) {
				if e.SubscriptionID != "sub_1" {
					t.Errorf("SubscriptionID = %q, want sub_1", e.SubscriptionID)
				}
				if e.CustomerExternalID != "" {
					t.Errorf("CustomerExternalID = %q, want empty", e.CustomerExternalID)
				}
			},
		},
		{
			name:     "subscription revoked",
			body:     `{"type":"subscription.revoked","data":{"id":"sub_1","customer":{"id":"cus_1","external_id":"user-1"}}}`,
			wantOK:   true,
			wantKind: billing.EventSubscriptionRevoked,
		},
		{
			name:     "subscription canceled",
			body:     `{"type":"subscription.canceled","data":{"id":"sub_1","customer":{"id":"cus_1"}}}`,
			wantOK:   true,
			wantKind: billing.EventSubscriptionCanceled,
		},
		{
			name:   "unhandled type",
			body:   `{"type":"benefit.granted","data":{"id":"ben_1"}}`,
			wantOK: false,
		},
		{
			name:    "malformed payload",
			body:    `{"type":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, ok, err := ParseWebhookEvent([]byte(tt.body))

			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWebhookEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok || err != nil {
				return
			}
			if event.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", event.Kind, tt.wantKind)
			}
			if tt.check != nil {
				tt.check(t, event)
			}
		})
	}
}
