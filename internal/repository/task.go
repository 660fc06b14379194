package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/taskly/taskly-go/internal/model"
	"github.com/taskly/taskly-go/internal/store"
)

const taskColumns = `id, owner_id, description, completed, created_at, updated_at`

// maxRows stands in for "no limit" when only an offset is requested.
const maxRows = "18446744073709551615"

var sortColumns = map[string]string{
	model.SortCreatedAt:   "created_at",
	model.SortUpdatedAt:   "updated_at",
	model.SortDescription: "description",
	model.SortCompleted:   "completed",
}

// TaskRepository handles task persistence operations.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

var _ store.TaskStore = (*TaskRepository)(nil)

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.OwnerID, task.Description, task.Completed, task.CreatedAt, task.UpdatedAt,
	)
	return err
}

// List returns the owner's tasks filtered, sorted and paged in a single query.
func (r *TaskRepository) List(ctx context.Context, ownerID string, q model.TaskQuery) ([]model.Task, error) {
	query, args := buildListQuery(ownerID, q)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// buildListQuery renders the listing SQL. Sort columns come from a fixed map,
// never from caller input.
func buildListQuery(ownerID string, q model.TaskQuery) (string, []any) {
	var b strings.Builder
	args := []any{ownerID}

	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = ?`)
	if q.Completed != nil {
		b.WriteString(` AND completed = ?`)
		args = append(args, *q.Completed)
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}
	b.WriteString(` ORDER BY ` + col + ` ` + dir + `, id ` + dir)

	switch {
	case q.Limit > 0:
		b.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	case q.Skip > 0:
		b.WriteString(` LIMIT ` + maxRows)
	}
	if q.Skip > 0 {
		b.WriteString(` OFFSET ?`)
		args = append(args, q.Skip)
	}

	return b.String(), args
}

// GetByID retrieves a task by ID, scoped to its owner.
func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND owner_id = ?`

	t := &model.Task{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&t.ID, &t.OwnerID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, err
	}

	return t, nil
}

// Update writes description, completed and updated_at of an owned task.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	query := `UPDATE tasks SET description = ?, completed = ?, updated_at = ? WHERE id = ? AND owner_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		task.Description, task.Completed, task.UpdatedAt, task.ID, task.OwnerID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result, store.ErrTaskNotFound)
}

// Delete removes an owned task and returns the removed row.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, id string) (*model.Task, error) {
	task, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := expectOneRow(result, store.ErrTaskNotFound); err != nil {
		return nil, err
	}

	return task, nil
}

// DeleteByOwner removes every task owned by ownerID.
func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE owner_id = ?`, ownerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
