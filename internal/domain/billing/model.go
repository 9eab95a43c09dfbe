package billing

import "time"

// EventKind identifies a billing provider webhook event type.
type EventKind string

// Webhook event kinds delivered by the provider.
const (
	EventOrderPaid            EventKind = "order.paid"
	EventSubscriptionCreated  EventKind = "subscription.created"
	EventSubscriptionRevoked  EventKind = "subscription.revoked"
	EventSubscriptionCanceled EventKind = "subscription.canceled"
)

// Event is a verified, parsed webhook event from the billing provider.
type Event struct {
	Kind EventKind
	// CustomerID is the provider's customer record id.
	CustomerID string
	// CustomerExternalID is our user id when the provider has it linked,
	// empty otherwise.
	CustomerExternalID string
	OrderID            string
	SubscriptionID     string
}

// ResolutionKind says which identity space a key belongs to.
type ResolutionKind int

const (
	// ByUserID keys the entitlement row by our own user id.
	ByUserID ResolutionKind = iota
	// ByBillingCustomerID keys the entitlement row by the provider's customer id.
	ByBillingCustomerID
)

// ResolutionKey locates the entitlement row an event applies to. It is
// computed once per event instead of re-checking field presence in every
// branch.
type ResolutionKey struct {
	Kind ResolutionKind
	ID   string
}

// ResolutionKey resolves the target identity for the event: the external
// customer id wins when present, otherwise the provider customer id.
func (e Event) ResolutionKey() ResolutionKey {
	if e.CustomerExternalID != "" {
		return ResolutionKey{Kind: ByUserID, ID: e.CustomerExternalID}
	}
	return ResolutionKey{Kind: ByBillingCustomerID, ID: e.CustomerID}
}

// Subscription is the provider's record of a subscription as returned by
// the list API.
type Subscription struct {
	ID               string     `json:"id"`
	Status           string     `json:"status"`
	CustomerID       string     `json:"customer_id"`
	ProductID        string     `json:"product_id"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

// SyncResult is the outcome of a pull sync against the provider. A failed
// sync means "entitlement unknown" and must never be read as a downgrade.
type SyncResult struct {
	Success      bool          `json:"success"`
	Plan         string        `json:"plan,omitempty"`
	Subscription *Subscription `json:"subscription"`
	Error        string        `json:"error,omitempty"`
}
