package dto

// PlanDTO represents a subscription plan
type PlanDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Currency  string   `json:"currency"`
	Interval  string   `json:"interval"` // month, year
	Features  []string `json:"features"`
	IsCurrent bool     `json:"isCurrent"`
}

// SubscriptionDTO represents the stored entitlement state for a user
type SubscriptionDTO struct {
	Plan                  string  `json:"plan"`
	BillingCustomerID     *string `json:"billingCustomerId,omitempty"`
	BillingSubscriptionID *string `json:"billingSubscriptionId,omitempty"`
}

// CheckoutResponse carries the provider-hosted checkout URL
type CheckoutResponse struct {
	URL string `json:"url"`
}

// PortalResponse carries the provider-hosted customer portal URL
type PortalResponse struct {
	URL string `json:"url"`
}

// WebhookAck is the body returned to the billing provider after a
// webhook delivery is accepted
type WebhookAck struct {
	Received bool `json:"received"`
}
