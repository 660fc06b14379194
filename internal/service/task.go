package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskly/taskly-go/internal/model"
	"github.com/taskly/taskly-go/internal/store"
)

var sortableFields = map[string]bool{
	model.SortCreatedAt:   true,
	model.SortUpdatedAt:   true,
	model.SortDescription: true,
	model.SortCompleted:   true,
}

// TaskService handles task business logic. Every operation is scoped to the
// requesting owner.
type TaskService struct {
	tasks store.TaskStore
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks store.TaskStore) *TaskService {
	return &TaskService{tasks: tasks}
}

// Create adds a task owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, req model.CreateTaskRequest) (*model.Task, error) {
	description := strings.TrimSpace(req.Description)
	if err := checkStruct(taskFields{Description: description}); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &model.Task{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Description: description,
		Completed:   req.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	slog.Info("task created", "task_id", task.ID, "owner_id", ownerID)
	return task, nil
}

// List returns ownerID's tasks narrowed, ordered and paged by q.
func (s *TaskService) List(ctx context.Context, ownerID string, q model.TaskQuery) ([]model.Task, error) {
	if q.SortBy != "" && !sortableFields[q.SortBy] {
		return nil, fmt.Errorf("%w: cannot sort by %q", ErrValidation, q.SortBy)
	}
	if q.Limit < 0 || q.Skip < 0 {
		return nil, fmt.Errorf("%w: limit and skip must not be negative", ErrValidation)
	}
	return s.tasks.List(ctx, ownerID, q)
}

// Get returns one of ownerID's tasks.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, translateTaskErr(err)
	}
	return task, nil
}

// Update applies an allow-listed patch to one of ownerID's tasks.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, patch map[string]json.RawMessage) (*model.Task, error) {
	var p TaskPatch
	if err := taskPatchSchema.decode(patch, &p); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, translateTaskErr(err)
	}

	if p.Description != nil {
		task.Description = strings.TrimSpace(*p.Description)
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
	if err := checkStruct(taskFields{Description: task.Description}); err != nil {
		return nil, err
	}

	task.UpdatedAt = time.Now().UTC()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, translateTaskErr(err)
	}

	slog.Info("task updated", "task_id", task.ID, "owner_id", ownerID)
	return task, nil
}

// Delete removes one of ownerID's tasks and returns it.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) (*model.Task, error) {
	task, err := s.tasks.Delete(ctx, ownerID, id)
	if err != nil {
		return nil, translateTaskErr(err)
	}

	slog.Info("task deleted", "task_id", task.ID, "owner_id", ownerID)
	return task, nil
}

func translateTaskErr(err error) error {
	if errors.Is(err, store.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return err
}

// ParseTaskQuery reads completed, sortBy, limit and skip from a query string.
// completed=true selects finished tasks and any other non-empty value selects
// open ones. sortBy takes the form field:desc or field:asc.
func ParseTaskQuery(values url.Values) (model.TaskQuery, error) {
	var q model.TaskQuery

	if c := values.Get("completed"); c != "" {
		completed := c == "true"
		q.Completed = &completed
	}

	if sortBy := values.Get("sortBy"); sortBy != "" {
		field, dir, _ := strings.Cut(sortBy, ":")
		if !sortableFields[field] {
			return model.TaskQuery{}, fmt.Errorf("%w: cannot sort by %q", ErrValidation, field)
		}
		q.SortBy = field
		q.SortDesc = dir == "desc"
	}

	var err error
	if q.Limit, err = parseCount(values, "limit"); err != nil {
		return model.TaskQuery{}, err
	}
	if q.Skip, err = parseCount(values, "skip"); err != nil {
		return model.TaskQuery{}, err
	}
	return q, nil
}

func parseCount(values url.Values, key string) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrValidation, key)
	}
	return n, nil
}
