package services

import (
	"context"
	"time"

	"github.com/plannerhq/planner/internal/domain/billing"
	"github.com/plannerhq/planner/internal/domain/user"
	"github.com/plannerhq/planner/internal/pkg/logger"
	"github.com/plannerhq/planner/internal/pkg/metrics"
)

// SubscriptionService implements billing.Service. It is the single writer of
// plan, billing customer id and billing subscription id: webhook events and
// pull syncs both land here. Every write is an unconditional field set
// scoped by an identity predicate, so re-applying the same event re-asserts
// the same state and concurrent writers converge last-write-wins.
type SubscriptionService struct {
	users    user.Repository
	provider billing.Provider
	logger   *logger.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(users user.Repository, provider billing.Provider, log *logger.Logger) billing.Service {
	return &SubscriptionService{
		users:    users,
		provider: provider,
		logger:   log,
	}
}

// ApplyEvent maps a webhook event into an entitlement write. Resolution
// misses and store errors are logged and swallowed; the webhook transport
// acknowledges delivery either way so the provider does not retry forever.
func (s *SubscriptionService) ApplyEvent(ctx context.Context, event billing.Event) {
	key := event.ResolutionKey()

	switch event.Kind {
	case billing.EventOrderPaid:
		update := user.EntitlementUpdate{Plan: user.PlanPro}
		if key.Kind == billing.ByUserID {
			// The customer id is only learned here when the event told us
			// which user it belongs to; on the customer-id branch it is
			// already the join key.
			customerID := event.CustomerID
			update.BillingCustomerID = &customerID
		}
		s.apply(ctx, event, key, update)

	case billing.EventSubscriptionCreated:
		subscriptionID := event.SubscriptionID
		update := user.EntitlementUpdate{
			Plan:                  user.PlanPro,
			BillingSubscriptionID: &subscriptionID,
		}
		if key.Kind == billing.ByUserID {
			customerID := event.CustomerID
			update.BillingCustomerID = &customerID
		}
		s.apply(ctx, event, key, update)

	case billing.EventSubscriptionRevoked:
		// Revocation only acts on events that carry an external customer id,
		// and even then the write is keyed by the provider customer id. The
		// customer id is retained as a historical reference.
		if event.CustomerExternalID == "" {
			s.logger.WithFields(map[string]interface{}{
				"customer_id":     event.CustomerID,
				"subscription_id": event.SubscriptionID,
			}).Warn("Subscription revoked event without external customer id, skipping")
			metrics.RecordBillingEvent(string(event.Kind), "skipped")
			return
		}
		key = billing.ResolutionKey{Kind: billing.ByBillingCustomerID, ID: event.CustomerID}
		s.apply(ctx, event, key, user.EntitlementUpdate{
			Plan:                user.PlanFree,
			ClearSubscriptionID: true,
		})

	case billing.EventSubscriptionCanceled:
		// Marks intent to cancel at period end, not loss of access; a
		// subscription.revoked event follows at the period boundary.
		s.logger.WithFields(map[string]interface{}{
			"customer_id":     event.CustomerID,
			"subscription_id": event.SubscriptionID,
		}).Info("Subscription canceled, access retained until revoked")
		metrics.RecordBillingEvent(string(event.Kind), "noop")

	default:
		s.logger.Warnf("Unhandled billing event kind: %s", event.Kind)
		metrics.RecordBillingEvent(string(event.Kind), "unhandled")
	}
}

// apply issues the single conditional entitlement update for an event.
func (s *SubscriptionService) apply(ctx context.Context, event billing.Event, key billing.ResolutionKey, update user.EntitlementUpdate) {
	rows, err := s.users.UpdateEntitlement(ctx, key, update)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"event": string(event.Kind),
			"key":   key.ID,
		}).ErrorWithErr(err, "Failed to apply billing event")
		metrics.RecordBillingEvent(string(event.Kind), "error")
		return
	}

	if rows == 0 {
		s.logger.WithFields(map[string]interface{}{
			"event":       string(event.Kind),
			"key":         key.ID,
			"customer_id": event.CustomerID,
		}).Warn("Billing event matched no user")
		metrics.RecordBillingEvent(string(event.Kind), "miss")
		return
	}

	s.logger.WithFields(map[string]interface{}{
		"event": string(event.Kind),
		"key":   key.ID,
		"plan":  update.Plan,
	}).Info("Applied billing event")
	metrics.RecordBillingEvent(string(event.Kind), "applied")
}

// SyncFromProvider pulls the user's active subscription from the billing
// provider and writes the entitlement accordingly. A provider failure leaves
// the store untouched: an unreachable provider means "entitlement unknown",
// never "downgrade to free".
func (s *SubscriptionService) SyncFromProvider(ctx context.Context, userID string) billing.SyncResult {
	start := time.Now()
	s.logger.Debugf("Syncing subscription for user %s", userID)

	subs, err := s.provider.ListActiveSubscriptions(ctx, userID, 1)
	if err != nil {
		s.logger.With("user_id", userID).ErrorWithErr(err, "Failed to list subscriptions from provider")
		metrics.RecordSubscriptionSync("pull", "provider_error", time.Since(start))
		return billing.SyncResult{Success: false, Error: err.Error()}
	}

	key := billing.ResolutionKey{Kind: billing.ByUserID, ID: userID}

	if len(subs) > 0 {
		sub := subs[0]
		customerID := sub.CustomerID
		subscriptionID := sub.ID
		if _, err := s.users.UpdateEntitlement(ctx, key, user.EntitlementUpdate{
			Plan:                  user.PlanPro,
			BillingCustomerID:     &customerID,
			BillingSubscriptionID: &subscriptionID,
		}); err != nil {
			s.logger.With("user_id", userID).ErrorWithErr(err, "Failed to store pro entitlement")
			metrics.RecordSubscriptionSync("pull", "store_error", time.Since(start))
			return billing.SyncResult{Success: false, Error: err.Error()}
		}

		s.logger.WithFields(map[string]interface{}{
			"user_id":         userID,
			"subscription_id": sub.ID,
		}).Info("Synced subscription, user is pro")
		metrics.RecordSubscriptionSync("pull", "pro", time.Since(start))
		return billing.SyncResult{Success: true, Plan: user.PlanPro, Subscription: &sub}
	}

	// No active subscription: downgrade but keep the historical customer id.
	if _, err := s.users.UpdateEntitlement(ctx, key, user.EntitlementUpdate{
		Plan:                user.PlanFree,
		ClearSubscriptionID: true,
	}); err != nil {
		s.logger.With("user_id", userID).ErrorWithErr(err, "Failed to store free entitlement")
		metrics.RecordSubscriptionSync("pull", "store_error", time.Since(start))
		return billing.SyncResult{Success: false, Error: err.Error()}
	}

	s.logger.Infof("Synced subscription for user %s, no active subscription", userID)
	metrics.RecordSubscriptionSync("pull", "free", time.Since(start))
	return billing.SyncResult{Success: true, Plan: user.PlanFree, Subscription: nil}
}
