package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/plannerhq/planner/internal/domain/task"
	"github.com/plannerhq/planner/internal/pkg/errors"
)

// TaskRepository implements task.Repository
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sql.DB) task.Repository {
	return &TaskRepository{db: db}
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	query := `
		INSERT INTO tasks (id, user_id, title, notes, due_date, done, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var dueDate interface{}
	if t.DueDate != nil {
		dueDate = t.DueDate.Unix()
	}

	_, err := r.db.ExecContext(ctx, rebind(query),
		t.ID, t.UserID, t.Title, t.Notes, dueDate, t.Done, now.Unix(), now.Unix(),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create task", err)
	}

	return nil
}

// GetByID retrieves a task by ID, scoped to its owner
func (r *TaskRepository) GetByID(ctx context.Context, userID, id string) (*task.Task, error) {
	query := `
		SELECT id, user_id, title, notes, due_date, done, created_at, updated_at
		FROM tasks WHERE user_id = ? AND id = ?
	`

	t, err := scanTask(r.db.QueryRowContext(ctx, rebind(query), userID, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Task")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get task", err)
	}

	return t, nil
}

// ListByUser retrieves a user's tasks with pagination
func (r *TaskRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*task.Task, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, rebind("SELECT COUNT(*) FROM tasks WHERE user_id = ?"), userID).Scan(&total)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to count tasks", err)
	}

	query := `
		SELECT id, user_id, title, notes, due_date, done, created_at, updated_at
		FROM tasks
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, rebind(query), userID, limit, offset)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list tasks", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan task", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate tasks", err)
	}

	return tasks, total, nil
}

// Update updates a task
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	t.UpdatedAt = time.Now()

	query := `
		UPDATE tasks
		SET title = ?, notes = ?, due_date = ?, done = ?, updated_at = ?
		WHERE user_id = ? AND id = ?
	`

	var dueDate interface{}
	if t.DueDate != nil {
		dueDate = t.DueDate.Unix()
	}

	result, err := r.db.ExecContext(ctx, rebind(query),
		t.Title, t.Notes, dueDate, t.Done, t.UpdatedAt.Unix(), t.UserID, t.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update task", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}

	if rows == 0 {
		return errors.NotFound("Task")
	}

	return nil
}

// Delete deletes a task, scoped to its owner
func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM tasks WHERE user_id = ? AND id = ?`

	result, err := r.db.ExecContext(ctx, rebind(query), userID, id)
	if err != nil {
		return errors.DatabaseError("Failed to delete task", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}

	if rows == 0 {
		return errors.NotFound("Task")
	}

	return nil
}

// CountByUser counts a user's tasks
func (r *TaskRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, rebind("SELECT COUNT(*) FROM tasks WHERE user_id = ?"), userID).Scan(&count)
	if err != nil {
		return 0, errors.DatabaseError("Failed to count tasks", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var t task.Task
	var notes sql.NullString
	var dueDate sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(&t.ID, &t.UserID, &t.Title, &notes, &dueDate, &t.Done, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		t.Notes = notes.String
	}
	if dueDate.Valid {
		due := time.Unix(dueDate.Int64, 0)
		t.DueDate = &due
	}
	t.CreatedAt = time.Unix(createdAt, 0)
	t.UpdatedAt = time.Unix(updatedAt, 0)

	return &t, nil
}
