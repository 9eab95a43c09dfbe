package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/plannerhq/planner/internal/domain/habit"
	"github.com/plannerhq/planner/internal/pkg/errors"
)

// HabitRepository implements habit.Repository
type HabitRepository struct {
	db *sql.DB
}

// NewHabitRepository creates a new habit repository
func NewHabitRepository(db *sql.DB) habit.Repository {
	return &HabitRepository{db: db}
}

// Create creates a new habit
func (r *HabitRepository) Create(ctx context.Context, h *habit.Habit) error {
	now := time.Now()
	h.CreatedAt = now
	h.UpdatedAt = now

	query := `
		INSERT INTO habits (id, user_id, name, description, cadence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, rebind(query),
		h.ID, h.UserID, h.Name, h.Description, h.Cadence, now.Unix(), now.Unix(),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create habit", err)
	}

	return nil
}

// GetByID retrieves a habit by ID, scoped to its owner
func (r *HabitRepository) GetByID(ctx context.Context, userID, id string) (*habit.Habit, error) {
	query := `
		SELECT id, user_id, name, description, cadence, created_at, updated_at
		FROM habits WHERE user_id = ? AND id = ?
	`

	h, err := scanHabit(r.db.QueryRowContext(ctx, rebind(query), userID, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Habit")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get habit", err)
	}

	return h, nil
}

// ListByUser retrieves a user's habits
func (r *HabitRepository) ListByUser(ctx context.Context, userID string) ([]*habit.Habit, error) {
	query := `
		SELECT id, user_id, name, description, cadence, created_at, updated_at
		FROM habits
		WHERE user_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, rebind(query), userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list habits", err)
	}
	defer rows.Close()

	var habits []*habit.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan habit", err)
		}
		habits = append(habits, h)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate habits", err)
	}

	return habits, nil
}

// Update updates a habit
func (r *HabitRepository) Update(ctx context.Context, h *habit.Habit) error {
	h.UpdatedAt = time.Now()

	query := `
		UPDATE habits
		SET name = ?, description = ?, cadence = ?, updated_at = ?
		WHERE user_id = ? AND id = ?
	`

	result, err := r.db.ExecContext(ctx, rebind(query),
		h.Name, h.Description, h.Cadence, h.UpdatedAt.Unix(), h.UserID, h.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update habit", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}

	if rows == 0 {
		return errors.NotFound("Habit")
	}

	return nil
}

// Delete deletes a habit and its check-ins, scoped to its owner
func (r *HabitRepository) Delete(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, rebind("DELETE FROM habits WHERE user_id = ? AND id = ?"), userID, id)
	if err != nil {
		return errors.DatabaseError("Failed to delete habit", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Habit")
	}

	if _, err := tx.ExecContext(ctx, rebind("DELETE FROM habit_checkins WHERE habit_id = ?"), id); err != nil {
		return errors.DatabaseError("Failed to delete habit check-ins", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit transaction", err)
	}

	return nil
}

// CountByUser counts a user's habits
func (r *HabitRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, rebind("SELECT COUNT(*) FROM habits WHERE user_id = ?"), userID).Scan(&count)
	if err != nil {
		return 0, errors.DatabaseError("Failed to count habits", err)
	}
	return count, nil
}

// AddCheckIn records a check-in for a day; recording the same day twice is a no-op
func (r *HabitRepository) AddCheckIn(ctx context.Context, c *habit.CheckIn) error {
	if c.CheckedAt.IsZero() {
		c.CheckedAt = time.Now()
	}

	// Unique index on (habit_id, day) makes repeat check-ins a no-op.
	query := `
		INSERT INTO habit_checkins (habit_id, day, checked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (habit_id, day) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, rebind(query), c.HabitID, c.Day, c.CheckedAt.Unix())
	if err != nil {
		return errors.DatabaseError("Failed to record check-in", err)
	}

	return nil
}

// ListCheckIns lists check-ins for a habit, most recent day first
func (r *HabitRepository) ListCheckIns(ctx context.Context, habitID string, limit int) ([]*habit.CheckIn, error) {
	query := `
		SELECT habit_id, day, checked_at
		FROM habit_checkins
		WHERE habit_id = ?
		ORDER BY day DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, rebind(query), habitID, limit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list check-ins", err)
	}
	defer rows.Close()

	var checkIns []*habit.CheckIn
	for rows.Next() {
		var c habit.CheckIn
		var checkedAt int64
		if err := rows.Scan(&c.HabitID, &c.Day, &checkedAt); err != nil {
			return nil, errors.DatabaseError("Failed to scan check-in", err)
		}
		c.CheckedAt = time.Unix(checkedAt, 0)
		checkIns = append(checkIns, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate check-ins", err)
	}

	return checkIns, nil
}

func scanHabit(row rowScanner) (*habit.Habit, error) {
	var h habit.Habit
	var description sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(&h.ID, &h.UserID, &h.Name, &description, &h.Cadence, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		h.Description = description.String
	}
	h.CreatedAt = time.Unix(createdAt, 0)
	h.UpdatedAt = time.Unix(updatedAt, 0)

	return &h, nil
}
