package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/plannerhq/planner/internal/domain/billing"
	"github.com/plannerhq/planner/internal/domain/user"
	"github.com/plannerhq/planner/internal/pkg/errors"
)

// UserRepository implements user.Repository
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) user.Repository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `
		INSERT INTO users (id, email, name, password_hash, role, plan, billing_customer_id, billing_subscription_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, rebind(query),
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.Plan,
		u.BillingCustomerID, u.BillingSubscriptionID, now.Unix(), now.Unix(),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create user", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `
		SELECT id, email, name, password_hash, role, plan, billing_customer_id, billing_subscription_id, created_at, updated_at
		FROM users WHERE id = ?
	`
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT id, email, name, password_hash, role, plan, billing_customer_id, billing_subscription_id, created_at, updated_at
		FROM users WHERE email = ?
	`
	return r.getOne(ctx, query, email)
}

// GetByBillingCustomerID retrieves a user by the billing provider's customer id
func (r *UserRepository) GetByBillingCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	query := `
		SELECT id, email, name, password_hash, role, plan, billing_customer_id, billing_subscription_id, created_at, updated_at
		FROM users WHERE billing_customer_id = ?
	`
	return r.getOne(ctx, query, customerID)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var u user.User
	var name sql.NullString
	var billingCustomerID, billingSubscriptionID sql.NullString
	var createdAt, updatedAt int64

	err := r.db.QueryRowContext(ctx, rebind(query), arg).Scan(
		&u.ID, &u.Email, &name, &u.PasswordHash, &u.Role, &u.Plan,
		&billingCustomerID, &billingSubscriptionID, &createdAt, &updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get user", err)
	}

	if name.Valid {
		u.Name = name.String
	}
	if billingCustomerID.Valid {
		u.BillingCustomerID = &billingCustomerID.String
	}
	if billingSubscriptionID.Valid {
		u.BillingSubscriptionID = &billingSubscriptionID.String
	}
	u.CreatedAt = time.Unix(createdAt, 0)
	u.UpdatedAt = time.Unix(updatedAt, 0)

	return &u, nil
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now()

	query := `
		UPDATE users
		SET email = ?, name = ?, password_hash = ?, role = ?, plan = ?,
		    billing_customer_id = ?, billing_subscription_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, rebind(query),
		u.Email, u.Name, u.PasswordHash, u.Role, u.Plan,
		u.BillingCustomerID, u.BillingSubscriptionID, u.UpdatedAt.Unix(), u.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}

	if rows == 0 {
		return errors.NotFound("User")
	}

	return nil
}

// UpdateEntitlement applies a single entitlement write scoped by the
// resolution key. Only fields asserted in the update appear in the SET
// clause, so concurrent writes interleave per column with last write
// winning. Zero matched rows is not an error.
func (r *UserRepository) UpdateEntitlement(ctx context.Context, key billing.ResolutionKey, update user.EntitlementUpdate) (int64, error) {
	sets := []string{"plan = ?", "updated_at = ?"}
	args := []interface{}{update.Plan, time.Now().Unix()}

	if update.BillingCustomerID != nil {
		sets = append(sets, "billing_customer_id = ?")
		args = append(args, *update.BillingCustomerID)
	}
	if update.ClearSubscriptionID {
		sets = append(sets, "billing_subscription_id = NULL")
	} else if update.BillingSubscriptionID != nil {
		sets = append(sets, "billing_subscription_id = ?")
		args = append(args, *update.BillingSubscriptionID)
	}

	var predicate string
	switch key.Kind {
	case billing.ByBillingCustomerID:
		predicate = "billing_customer_id = ?"
	default:
		predicate = "id = ?"
	}
	args = append(args, key.ID)

	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE " + predicate

	result, err := r.db.ExecContext(ctx, rebind(query), args...)
	if err != nil {
		return 0, errors.DatabaseError("Failed to update entitlement", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get affected rows", err)
	}

	return rows, nil
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = ?`

	result, err := r.db.ExecContext(ctx, rebind(query), id)
	if err != nil {
		return errors.DatabaseError("Failed to delete user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}

	if rows == 0 {
		return errors.NotFound("User")
	}

	return nil
}

// List retrieves all users with pagination
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to count users", err)
	}

	query := `
		SELECT id, email, name, password_hash, role, plan, billing_customer_id, billing_subscription_id, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, rebind(query), limit, offset)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list users", err)
	}
	defer rows.Close()

	users, err := scanUsers(rows)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListWithSubscription retrieves users holding a billing subscription
// reference, for the reconciliation sweep.
func (r *UserRepository) ListWithSubscription(ctx context.Context, limit int) ([]*user.User, error) {
	query := `
		SELECT id, email, name, password_hash, role, plan, billing_customer_id, billing_subscription_id, created_at, updated_at
		FROM users
		WHERE billing_subscription_id IS NOT NULL
		ORDER BY updated_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, rebind(query), limit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list subscribed users", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func scanUsers(rows *sql.Rows) ([]*user.User, error) {
	var users []*user.User
	for rows.Next() {
		var u user.User
		var name sql.NullString
		var billingCustomerID, billingSubscriptionID sql.NullString
		var createdAt, updatedAt int64

		err := rows.Scan(&u.ID, &u.Email, &name, &u.PasswordHash, &u.Role, &u.Plan,
			&billingCustomerID, &billingSubscriptionID, &createdAt, &updatedAt)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan user", err)
		}

		if name.Valid {
			u.Name = name.String
		}
		if billingCustomerID.Valid {
			u.BillingCustomerID = &billingCustomerID.String
		}
		if billingSubscriptionID.Valid {
			u.BillingSubscriptionID = &billingSubscriptionID.String
		}
		u.CreatedAt = time.Unix(createdAt, 0)
		u.UpdatedAt = time.Unix(updatedAt, 0)

		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate users", err)
	}

	return users, nil
}
