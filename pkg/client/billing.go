package client

import "context"

// BillingService accesses subscription and billing endpoints
type BillingService struct {
	client *Client
}

// Billing returns the billing service
func (c *Client) Billing() *BillingService {
	return &BillingService{client: c}
}

// GetSubscription retrieves the stored entitlement state
func (s *BillingService) GetSubscription(ctx context.Context) (*SubscriptionState, error) {
	var state SubscriptionState
	if err := s.client.doRequest(ctx, "GET", "/api/v1/billing/subscription", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Sync reconciles the entitlement against the billing provider
func (s *BillingService) Sync(ctx context.Context) (*SyncResult, error) {
	var result SyncResult
	if err := s.client.doRequest(ctx, "POST", "/api/v1/billing/sync", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListPlans lists available subscription plans
func (s *BillingService) ListPlans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if err := s.client.doRequest(ctx, "GET", "/api/v1/billing/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Checkout starts a checkout session for the pro plan
func (s *BillingService) Checkout(ctx context.Context) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := s.client.doRequest(ctx, "POST", "/api/v1/billing/checkout", nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// Portal retrieves a customer portal URL
func (s *BillingService) Portal(ctx context.Context) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := s.client.doRequest(ctx, "GET", "/api/v1/billing/portal", nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
