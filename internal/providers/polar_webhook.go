package providers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/plannerhq/planner/internal/domain/billing"
)

// Polar signs webhooks with the Standard Webhooks scheme: HMAC-SHA256 over
// "{id}.{timestamp}.{body}" with the base64-decoded secret, carried in the
// webhook-id, webhook-timestamp and webhook-signature headers.

const webhookTimestampTolerance = 5 * time.Minute

// VerifyWebhookSignature checks the signature headers against the raw body.
func VerifyWebhookSignature(secret string, headers map[string]string, body []byte) error {
	id := headers["webhook-id"]
	timestamp := headers["webhook-timestamp"]
	signatures := headers["webhook-signature"]
	if id == "" || timestamp == "" || signatures == "" {
		return fmt.Errorf("missing webhook signature headers")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid webhook timestamp: %w", err)
	}
	age := time.Since(time.Unix(ts, 0))
	if age > webhookTimestampTolerance || age < -webhookTimestampTolerance {
		return fmt.Errorf("webhook timestamp outside tolerance")
	}

	keys, err := webhookSecretKeys(secret)
	if err != nil {
		return err
	}

	expected := make([][]byte, 0, len(keys))
	for _, key := range keys {
		mac := hmac.New(sha256.New, key)
		fmt.Fprintf(mac, "%s.%s.", id, timestamp)
		mac.Write(body)
		expected = append(expected, mac.Sum(nil))
	}

	// The header may carry several space-separated "v1,<base64>" entries.
	for _, part := range strings.Fields(signatures) {
		versioned := strings.SplitN(part, ",", 2)
		if len(versioned) != 2 || versioned[0] != "v1" {
			continue
		}
		sig, err := base64.StdEncoding.DecodeString(versioned[1])
		if err != nil {
			continue
		}
		for _, want := range expected {
			if hmac.Equal(sig, want) {
				return nil
			}
		}
	}

	return fmt.Errorf("no matching webhook signature")
}

// webhookSecretKeys returns the candidate HMAC keys for a secret. Secrets are
// normally base64-encoded key material after the whsec_ prefix, but some are
// issued as raw strings, and a raw string can also happen to be valid base64.
// Both readings are candidates; verification accepts whichever matches.
func webhookSecretKeys(secret string) ([][]byte, error) {
	trimmed := strings.TrimPrefix(secret, "whsec_")
	if trimmed == "" {
		return nil, fmt.Errorf("empty webhook secret")
	}

	keys := [][]byte{}
	if decoded, err := base64.StdEncoding.DecodeString(trimmed); err == nil {
		keys = append(keys, decoded)
	}
	keys = append(keys, []byte(trimmed))
	return keys, nil
}

// polarWebhookPayload mirrors the provider's webhook envelope.
type polarWebhookPayload struct {
	Type string           `json:"type"`
	Data polarWebhookData `json:"data"`
}

type polarWebhookData struct {
	ID       string        `json:"id"`
	Customer polarCustomer `json:"customer"`
}

// ParseWebhookEvent maps a verified webhook body into a billing event.
// Unhandled event types return ok=false.
func ParseWebhookEvent(body []byte) (billing.Event, bool, error) {
	var payload polarWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return billing.Event{}, false, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	event := billing.Event{
		CustomerID:         payload.Data.Customer.ID,
		CustomerExternalID: payload.Data.Customer.ExternalID,
	}

	switch payload.Type {
	case string(billing.EventOrderPaid):
		event.Kind = billing.EventOrderPaid
		event.OrderID = payload.Data.ID
	case string(billing.EventSubscriptionCreated):
		event.Kind = billing.EventSubscriptionCreated
		event.SubscriptionID = payload.Data.ID
	case string(billing.EventSubscriptionRevoked):
		event.Kind = billing.EventSubscriptionRevoked
		event.SubscriptionID = payload.Data.ID
	case string(billing.EventSubscriptionCanceled):
		event.Kind = billing.EventSubscriptionCanceled
		event.SubscriptionID = payload.Data.ID
	default:
		return billing.Event{}, false, nil
	}

	return event, true, nil
}
