package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/plannerhq/planner/internal/domain/billing"
	"github.com/plannerhq/planner/internal/pkg/errors"
	"github.com/plannerhq/planner/internal/pkg/logger"
)

// Polar API base URLs
const (
	polarProductionURL = "https://api.polar.sh"
	polarSandboxURL    = "https://sandbox-api.polar.sh"
)

// PolarClient integrates with the Polar billing API. Only read calls are
// made; checkout and cancellation run on Polar-hosted pages.
type PolarClient struct {
	logger      *logger.Logger
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewPolarClient creates a new Polar API client. server is "sandbox" or
// "production".
func NewPolarClient(log *logger.Logger, accessToken, server string) *PolarClient {
	baseURL := polarSandboxURL
	if server == "production" {
		baseURL = polarProductionURL
	}

	return &PolarClient{
		logger:      log,
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Polar API response structures
type polarListResponse struct {
	Items      []polarSubscription `json:"items"`
	Pagination polarPagination     `json:"pagination"`
}

type polarPagination struct {
	TotalCount int `json:"total_count"`
	MaxPage    int `json:"max_page"`
}

type polarSubscription struct {
	ID               string        `json:"id"`
	Status           string        `json:"status"`
	ProductID        string        `json:"product_id"`
	CurrentPeriodEnd *time.Time    `json:"current_period_end"`
	Customer         polarCustomer `json:"customer"`
}

type polarCustomer struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
}

// ListActiveSubscriptions implements billing.Provider. It asks Polar for
// active subscriptions whose external customer id equals our user id.
func (c *PolarClient) ListActiveSubscriptions(ctx context.Context, externalCustomerID string, limit int) ([]billing.Subscription, error) {
	params := url.Values{}
	params.Set("external_customer_id", externalCustomerID)
	params.Set("active", "true")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("page", "1")

	reqURL := fmt.Sprintf("%s/v1/subscriptions?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.BillingProviderError("Billing provider is unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.BillingProviderError("Failed to read billing provider response", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(map[string]interface{}{
			"status":               resp.StatusCode,
			"external_customer_id": externalCustomerID,
		}).Warn("Polar subscriptions list returned non-200")
		return nil, errors.BillingProviderError(
			"Billing provider request failed",
			fmt.Errorf("polar returned status %d: %s", resp.StatusCode, string(body)))
	}

	var list polarListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse polar response: %w", err)
	}

	subs := make([]billing.Subscription, 0, len(list.Items))
	for _, item := range list.Items {
		subs = append(subs, billing.Subscription{
			ID:               item.ID,
			Status:           item.Status,
			CustomerID:       item.Customer.ID,
			ProductID:        item.ProductID,
			CurrentPeriodEnd: item.CurrentPeriodEnd,
		})
	}

	return subs, nil
}

// CheckoutURL returns the Polar-hosted checkout link for a product.
func (c *PolarClient) CheckoutURL(productID, externalCustomerID, successURL string) string {
	params := url.Values{}
	params.Set("products", productID)
	if externalCustomerID != "" {
		params.Set("customer_external_id", externalCustomerID)
	}
	if successURL != "" {
		params.Set("success_url", successURL)
	}
	return fmt.Sprintf("%s/v1/checkout-links/redirect?%s", c.baseURL, params.Encode())
}

// PortalURL returns the Polar-hosted customer portal link.
func (c *PolarClient) PortalURL(externalCustomerID string) string {
	params := url.Values{}
	params.Set("customer_external_id", externalCustomerID)
	return fmt.Sprintf("%s/v1/customer-portal?%s", c.baseURL, params.Encode())
}
