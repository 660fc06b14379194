package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskly/taskly-go/internal/model"
	"github.com/taskly/taskly-go/internal/store"
)

func boolPtr(b bool) *bool { return &b }

var taskRowColumns = []string{"id", "owner_id", "description", "completed", "created_at", "updated_at"}

func TestBuildListQuery(t *testing.T) {
	const base = "SELECT " + taskColumns + " FROM tasks WHERE owner_id = ?"

	tests := []struct {
		name     string
		query    model.TaskQuery
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "defaults",
			query:    model.TaskQuery{},
			wantSQL:  base + " ORDER BY created_at ASC, id ASC",
			wantArgs: []any{"owner"},
		},
		{
			name:     "completed filter sorted desc",
			query:    model.TaskQuery{Completed: boolPtr(true), SortBy: model.SortCreatedAt, SortDesc: true},
			wantSQL:  base + " AND completed = ? ORDER BY created_at DESC, id DESC",
			wantArgs: []any{"owner", true},
		},
		{
			name:     "limit and skip",
			query:    model.TaskQuery{SortBy: model.SortDescription, Limit: 10, Skip: 10},
			wantSQL:  base + " ORDER BY description ASC, id ASC LIMIT ? OFFSET ?",
			wantArgs: []any{"owner", 10, 10},
		},
		{
			name:     "skip without limit",
			query:    model.TaskQuery{Skip: 5},
			wantSQL:  base + " ORDER BY created_at ASC, id ASC LIMIT " + maxRows + " OFFSET ?",
			wantArgs: []any{"owner", 5},
		},
		{
			name:     "unknown sort falls back to created_at",
			query:    model.TaskQuery{SortBy: "owner_id; DROP TABLE tasks"},
			wantSQL:  base + " ORDER BY created_at ASC, id ASC",
			wantArgs: []any{"owner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotArgs := buildListQuery("owner", tt.query)
			assert.Equal(t, tt.wantSQL, gotSQL)
			assert.Equal(t, tt.wantArgs, gotArgs)
		})
	}
}

func TestTaskRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(q("INSERT INTO tasks (" + taskColumns + ") VALUES (?, ?, ?, ?, ?, ?)")).
		WithArgs("t-1", "u-1", "Buy milk", false, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &model.Task{
		ID: "t-1", OwnerID: "u-1", Description: "Buy milk", CreatedAt: now, UpdatedAt: now,
	})
	assert.NoError(t, err)
}

func TestTaskRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(q("FROM tasks WHERE owner_id = ? AND completed = ? ORDER BY created_at DESC, id DESC LIMIT ?")).
		WithArgs("u-1", false, 2).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow("t-2", "u-1", "second", false, now, now).
			AddRow("t-1", "u-1", "first", false, now.Add(-time.Minute), now))

	tasks, err := repo.List(context.Background(), "u-1", model.TaskQuery{
		Completed: boolPtr(false), SortBy: model.SortCreatedAt, SortDesc: true, Limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t-2", tasks[0].ID)
	assert.Equal(t, "t-1", tasks[1].ID)
}

func TestTaskRepository_ListEmptyIsNotNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery(q("FROM tasks WHERE owner_id = ?")).
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	tasks, err := repo.List(context.Background(), "u-1", model.TaskQuery{})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestTaskRepository_GetByIDScopedByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery(q("FROM tasks WHERE id = ? AND owner_id = ?")).
		WithArgs("t-1", "intruder").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "intruder", "t-1")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(q("UPDATE tasks SET description = ?, completed = ?, updated_at = ? WHERE id = ? AND owner_id = ?")).
		WithArgs("Buy oat milk", true, now, "t-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &model.Task{
		ID: "t-1", OwnerID: "u-1", Description: "Buy oat milk", Completed: true, UpdatedAt: now,
	})
	assert.NoError(t, err)
}

func TestTaskRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(q("FROM tasks WHERE id = ? AND owner_id = ?")).
		WithArgs("t-1", "u-1").
		WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow("t-1", "u-1", "Buy milk", false, now, now))
	mock.ExpectExec(q("DELETE FROM tasks WHERE id = ? AND owner_id = ?")).
		WithArgs("t-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	task, err := repo.Delete(context.Background(), "u-1", "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Description)
}

func TestTaskRepository_DeleteByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(q("DELETE FROM tasks WHERE owner_id = ?")).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteByOwner(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
