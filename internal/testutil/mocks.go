package testutil

import (
	"context"
	"fmt"

	"github.com/plannerhq/planner/internal/domain/billing"
	"github.com/plannerhq/planner/internal/domain/user"
)

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	Users       map[string]*user.User
	EmailIndex  map[string]*user.User
	CreateError error
	GetError    error
	UpdateError error

	// EntitlementWrites records every UpdateEntitlement call in order.
	EntitlementWrites []EntitlementWrite
	EntitlementError  error
}

// EntitlementWrite captures one UpdateEntitlement invocation.
type EntitlementWrite struct {
	Key    billing.ResolutionKey
	Update user.EntitlementUpdate
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:      make(map[string]*user.User),
		EmailIndex: make(map[string]*user.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, ok := m.EmailIndex[u.Email]; ok {
		return fmt.Errorf("UNIQUE constraint failed: users.email")
	}
	m.Users[u.ID] = u
	m.EmailIndex[u.Email] = u
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.EmailIndex[email]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

func (m *MockUserRepository) GetByBillingCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, u := range m.Users {
		if u.BillingCustomerID != nil && *u.BillingCustomerID == customerID {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Users[u.ID]; !ok {
		return fmt.Errorf("user not found")
	}
	m.Users[u.ID] = u
	m.EmailIndex[u.Email] = u
	return nil
}

func (m *MockUserRepository) UpdateEntitlement(ctx context.Context, key billing.ResolutionKey, update user.EntitlementUpdate) (int64, error) {
	m.EntitlementWrites = append(m.EntitlementWrites, EntitlementWrite{Key: key, Update: update})
	if m.EntitlementError != nil {
		return 0, m.EntitlementError
	}

	var target *user.User
	switch key.Kind {
	case billing.ByBillingCustomerID:
		for _, u := range m.Users {
			if u.BillingCustomerID != nil && *u.BillingCustomerID == key.ID {
				target = u
				break
			}
		}
	default:
		target = m.Users[key.ID]
	}
	if target == nil {
		return 0, nil
	}

	target.Plan = update.Plan
	if update.BillingCustomerID != nil {
		v := *update.BillingCustomerID
		target.BillingCustomerID = &v
	}
	if update.ClearSubscriptionID {
		target.BillingSubscriptionID = nil
	} else if update.BillingSubscriptionID != nil {
		v := *update.BillingSubscriptionID
		target.BillingSubscriptionID = &v
	}
	return 1, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	u, ok := m.Users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	delete(m.EmailIndex, u.Email)
	delete(m.Users, id)
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, int64, error) {
	var users []*user.User
	for _, u := range m.Users {
		users = append(users, u)
	}
	return users, int64(len(users)), nil
}

func (m *MockUserRepository) ListWithSubscription(ctx context.Context, limit int) ([]*user.User, error) {
	var users []*user.User
	for _, u := range m.Users {
		if u.BillingSubscriptionID != nil {
			users = append(users, u)
		}
		if len(users) >= limit {
			break
		}
	}
	return users, nil
}

// MockBillingProvider is a mock implementation of billing.Provider
type MockBillingProvider struct {
	Subscriptions map[string][]billing.Subscription
	Err           error
	Calls         []string
}

func NewMockBillingProvider() *MockBillingProvider {
	return &MockBillingProvider{
		Subscriptions: make(map[string][]billing.Subscription),
	}
}

func (m *MockBillingProvider) ListActiveSubscriptions(ctx context.Context, externalCustomerID string, limit int) ([]billing.Subscription, error) {
	m.Calls = append(m.Calls, externalCustomerID)
	if m.Err != nil {
		return nil, m.Err
	}
	subs := m.Subscriptions[externalCustomerID]
	if len(subs) > limit {
		subs = subs[:limit]
	}
	return subs, nil
}
