package user

import "time"

// User represents a user in the system
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"` // Not exposed in JSON
	Role         string    `json:"role"`
	Plan         string    `json:"plan"`
	// BillingCustomerID links the row to the billing provider's customer
	// record. Once set it is never cleared by the reconciler.
	BillingCustomerID *string `json:"billing_customer_id,omitempty"`
	// BillingSubscriptionID is non-nil while an active paid subscription was
	// present at last sync.
	BillingSubscriptionID *string   `json:"billing_subscription_id,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Plan tiers
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsPro reports whether the user holds the paid plan.
func (u *User) IsPro() bool {
	return u.Plan == PlanPro
}

// EntitlementUpdate is the set of entitlement fields a single reconciler
// write asserts. Nil pointer fields are left unchanged;
// ClearSubscriptionID sets the subscription reference to null.
type EntitlementUpdate struct {
	Plan                  string
	BillingCustomerID     *string
	BillingSubscriptionID *string
	ClearSubscriptionID   bool
}
