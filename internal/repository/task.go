package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/taskmanager/taskmanager-go/internal/model"
)

const taskColumns = `id, owner_id, description, completed, created_at, updated_at`

// taskSortColumns whitelists the columns a listing may be ordered by.
var taskSortColumns = map[model.SortField]string{
	model.SortByDescription: "description",
	model.SortByCompleted:   "completed",
	model.SortByCreatedAt:   "created_at",
	model.SortByUpdatedAt:   "updated_at",
}

// mysqlMaxLimit is the documented way to express OFFSET without LIMIT in MySQL.
const mysqlMaxLimit = "18446744073709551615"

// MySQLTaskRepository handles task persistence on MySQL. The auto-increment
// seq column records insertion order and breaks ties in sorted listings.
type MySQLTaskRepository struct {
	db *sql.DB
}

// NewMySQLTaskRepository creates a new MySQLTaskRepository.
func NewMySQLTaskRepository(db *sql.DB) *MySQLTaskRepository {
	return &MySQLTaskRepository{db: db}
}

// Create inserts a task and sets the generated ID and timestamps on it.
func (r *MySQLTaskRepository) Create(ctx context.Context, task *model.Task) error {
	query := `INSERT INTO tasks (id, owner_id, description, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`

	id := uuid.NewString()
	ts := now()
	if _, err := r.db.ExecContext(ctx, query, id, task.OwnerID, task.Description, task.Completed, ts, ts); err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	task.ID = id
	task.CreatedAt = ts
	task.UpdatedAt = ts
	return nil
}

// GetByID retrieves a task by ID, scoped to its owner.
func (r *MySQLTaskRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND owner_id = ?`

	task := &model.Task{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&task.ID, &task.OwnerID, &task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("selecting task: %w", err)
	}

	return task, nil
}

// List retrieves the owner's tasks filtered, ordered and paged by q.
func (r *MySQLTaskRepository) List(ctx context.Context, ownerID string, q model.TaskQuery) ([]model.Task, error) {
	query, args := buildListQuery(ownerID, q)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func buildListQuery(ownerID string, q model.TaskQuery) (string, []any) {
	var sb strings.Builder
	args := []any{ownerID}

	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = ?`)
	if q.Completed != nil {
		sb.WriteString(` AND completed = ?`)
		args = append(args, *q.Completed)
	}

	sb.WriteString(` ORDER BY `)
	if col, ok := taskSortColumns[q.SortField]; ok {
		sb.WriteString(col)
		if q.SortDesc {
			sb.WriteString(` DESC`)
		} else {
			sb.WriteString(` ASC`)
		}
		sb.WriteString(`, `)
	}
	sb.WriteString(`seq ASC`)

	switch {
	case q.Limit > 0:
		sb.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, q.Limit, max(q.Skip, 0))
	case q.Skip > 0:
		sb.WriteString(` LIMIT ` + mysqlMaxLimit + ` OFFSET ?`)
		args = append(args, q.Skip)
	}

	return sb.String(), args
}

// Update writes description and completed of a task owned by task.OwnerID.
func (r *MySQLTaskRepository) Update(ctx context.Context, task *model.Task) error {
	query := `UPDATE tasks SET description = ?, completed = ?, updated_at = ? WHERE id = ? AND owner_id = ?`

	ts := now()
	result, err := r.db.ExecContext(ctx, query, task.Description, task.Completed, ts, task.ID, task.OwnerID)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if err := expectAffected(result, ErrTaskNotFound); err != nil {
		return err
	}

	task.UpdatedAt = ts
	return nil
}

// Delete removes a task owned by ownerID and returns it.
func (r *MySQLTaskRepository) Delete(ctx context.Context, ownerID, id string) (*model.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	task := &model.Task{}
	err = tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ? AND owner_id = ? FOR UPDATE`, id, ownerID).Scan(
		&task.ID, &task.OwnerID, &task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("selecting task: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return nil, fmt.Errorf("deleting task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing tx: %w", err)
	}
	return task, nil
}

// DeleteByOwner removes every task of ownerID and reports how many were deleted.
func (r *MySQLTaskRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE owner_id = ?`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("deleting tasks: %w", err)
	}
	return result.RowsAffected()
}
