package billing

import "context"

// Provider is the read-only surface of the billing provider consumed by the
// reconciler. Mutations (checkout, cancellation) happen on provider-hosted
// pages and never go through this interface.
type Provider interface {
	// ListActiveSubscriptions returns up to limit active subscriptions for
	// the customer whose external id equals our user id.
	ListActiveSubscriptions(ctx context.Context, externalCustomerID string, limit int) ([]Subscription, error)
}
