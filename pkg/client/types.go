package client

import "time"

// User represents a user in the system
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	Plan  string `json:"plan"`
}

// Task represents a planner task
type Task struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TaskList is a page of tasks
type TaskList struct {
	Tasks  []Task `json:"tasks"`
	Total  int64  `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// Habit represents a tracked habit
type Habit struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Cadence     string    `json:"cadence"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Streak summarises consecutive completion of a habit
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// HabitWithStreak pairs a habit with its streak summary
type HabitWithStreak struct {
	Habit  *Habit  `json:"habit"`
	Streak *Streak `json:"streak"`
}

// Subscription is the provider's record of a subscription
type Subscription struct {
	ID               string     `json:"id"`
	Status           string     `json:"status"`
	CustomerID       string     `json:"customer_id"`
	ProductID        string     `json:"product_id"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

// SyncResult is the outcome of a subscription sync
type SyncResult struct {
	Success      bool          `json:"success"`
	Plan         string        `json:"plan,omitempty"`
	Subscription *Subscription `json:"subscription"`
	Error        string        `json:"error,omitempty"`
}

// SubscriptionState is the stored entitlement state for a user
type SubscriptionState struct {
	Plan                  string  `json:"plan"`
	BillingCustomerID     *string `json:"billingCustomerId,omitempty"`
	BillingSubscriptionID *string `json:"billingSubscriptionId,omitempty"`
}

// Plan describes a subscription tier
type Plan struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Currency  string   `json:"currency"`
	Interval  string   `json:"interval"`
	Features  []string `json:"features"`
	IsCurrent bool     `json:"isCurrent"`
}
