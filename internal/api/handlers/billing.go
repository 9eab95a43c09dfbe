package handlers

import (
	"io"
	"net/http"

	"github.com/plannerhq/planner/internal/api/dto"
	"github.com/plannerhq/planner/internal/api/middleware"
	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/domain/billing"
	"github.com/plannerhq/planner/internal/domain/user"
	"github.com/plannerhq/planner/internal/pkg/errors"
	"github.com/plannerhq/planner/internal/pkg/logger"
	"github.com/plannerhq/planner/internal/pkg/metrics"
	"github.com/plannerhq/planner/internal/pkg/utils"
	"github.com/plannerhq/planner/internal/providers"
)

// maxWebhookBody bounds webhook payload reads.
const maxWebhookBody = 1 << 20

// BillingHandler handles billing and subscription requests
type BillingHandler struct {
	billingService billing.Service
	userService    user.Service
	polar          *providers.PolarClient
	config         *config.Config
	logger         *logger.Logger
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(
	billingService billing.Service,
	userService user.Service,
	polar *providers.PolarClient,
	cfg *config.Config,
	log *logger.Logger,
) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		userService:    userService,
		polar:          polar,
		config:         cfg,
		logger:         log,
	}
}

// Webhook receives billing provider webhook deliveries
// @Summary Billing webhook
// @Description Receive and apply a billing provider event
// @Tags Billing
// @Accept json
// @Produce json
// @Success 200 {object} dto.WebhookAck "Event accepted"
// @Failure 400 {object} utils.ErrorResponse "Invalid signature or body"
// @Failure 503 {object} utils.ErrorResponse "Webhook secret not configured"
// @Router /webhooks/billing [post]
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.config.Billing.WebhookSecret == "" {
		h.logger.Error("Webhook received but no webhook secret is configured")
		utils.WriteError(w, errors.ServiceUnavailable("Billing webhooks are not configured"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Failed to read request body"))
		return
	}

	headers := map[string]string{
		"webhook-id":        r.Header.Get("webhook-id"),
		"webhook-timestamp": r.Header.Get("webhook-timestamp"),
		"webhook-signature": r.Header.Get("webhook-signature"),
	}

	if err := providers.VerifyWebhookSignature(h.config.Billing.WebhookSecret, headers, body); err != nil {
		h.logger.WithError(err).Warn("Webhook signature verification failed")
		metrics.RecordBillingEvent("unknown", "rejected")
		utils.WriteError(w, errors.BadRequest("Invalid webhook signature"))
		return
	}

	event, ok, err := providers.ParseWebhookEvent(body)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid webhook payload"))
		return
	}

	// Delivery is acknowledged once the signature checks out. Unhandled
	// event types and resolution misses still return 200 so the provider
	// does not retry them forever.
	if ok {
		h.billingService.ApplyEvent(r.Context(), event)
	} else {
		metrics.RecordBillingEvent("unknown", "unhandled")
	}

	utils.WriteJSON(w, http.StatusOK, dto.WebhookAck{Received: true})
}

// Sync reconciles the caller's entitlement against the billing provider
// @Summary Sync subscription
// @Description Pull the user's subscription state from the billing provider
// @Tags Billing
// @Produce json
// @Success 200 {object} billing.SyncResult "Sync outcome"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /billing/sync [post]
func (h *BillingHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	result := h.billingService.SyncFromProvider(r.Context(), userID)
	utils.WriteJSON(w, http.StatusOK, result)
}

// Subscription returns the caller's stored entitlement state
// @Summary Get subscription
// @Description Get the stored entitlement state for the current user
// @Tags Billing
// @Produce json
// @Success 200 {object} dto.SubscriptionDTO "Entitlement state"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /billing/subscription [get]
func (h *BillingHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	u, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			utils.WriteError(w, appErr)
			return
		}
		utils.WriteError(w, errors.Internal("Failed to get user", err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.SubscriptionDTO{
		Plan:                  u.Plan,
		BillingCustomerID:     u.BillingCustomerID,
		BillingSubscriptionID: u.BillingSubscriptionID,
	})
}

// Plans lists available subscription plans
// @Summary List plans
// @Description List available subscription plans
// @Tags Billing
// @Produce json
// @Success 200 {array} dto.PlanDTO "Available plans"
// @Security BearerAuth
// @Router /billing/plans [get]
func (h *BillingHandler) Plans(w http.ResponseWriter, r *http.Request) {
	currentPlan := user.PlanFree
	if userID, ok := middleware.GetUserID(r); ok {
		if u, err := h.userService.GetByID(r.Context(), userID); err == nil {
			currentPlan = u.Plan
		}
	}

	plans := []dto.PlanDTO{
		{
			ID:       user.PlanFree,
			Name:     "Free",
			Price:    0,
			Currency: "usd",
			Interval: "month",
			Features: []string{
				"Up to 20 tasks",
				"Up to 3 habits",
			},
			IsCurrent: currentPlan == user.PlanFree,
		},
		{
			ID:       user.PlanPro,
			Name:     "Pro",
			Price:    8,
			Currency: "usd",
			Interval: "month",
			Features: []string{
				"Unlimited tasks",
				"Unlimited habits",
				"Habit streak insights",
			},
			IsCurrent: currentPlan == user.PlanPro,
		},
	}

	utils.WriteSuccess(w, http.StatusOK, plans)
}

// Checkout returns a provider-hosted checkout URL for the pro plan
// @Summary Start checkout
// @Description Get a provider-hosted checkout URL for the pro plan
// @Tags Billing
// @Produce json
// @Success 200 {object} dto.CheckoutResponse "Checkout URL"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /billing/checkout [post]
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	if h.config.Billing.ProProductID == "" {
		utils.WriteError(w, errors.ServiceUnavailable("Billing is not configured"))
		return
	}

	url := h.polar.CheckoutURL(h.config.Billing.ProProductID, userID, h.config.Billing.SuccessURL)
	utils.WriteSuccess(w, http.StatusOK, dto.CheckoutResponse{URL: url})
}

// Portal returns a provider-hosted customer portal URL
// @Summary Customer portal
// @Description Get a provider-hosted customer portal URL
// @Tags Billing
// @Produce json
// @Success 200 {object} dto.PortalResponse "Portal URL"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /billing/portal [get]
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.PortalResponse{URL: h.polar.PortalURL(userID)})
}
