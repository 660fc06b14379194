package model

import "time"

// Task represents a to-do item owned by exactly one user.
type Task struct {
	ID          string
	OwnerID     string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Sortable task fields, keyed by their public (query string) name.
const (
	SortCreatedAt   = "createdAt"
	SortUpdatedAt   = "updatedAt"
	SortDescription = "description"
	SortCompleted   = "completed"
)

// TaskQuery narrows, orders and pages a task listing. The owner is always
// supplied separately and applied first.
type TaskQuery struct {
	Completed *bool
	SortBy    string // one of the Sort* constants; empty means createdAt
	SortDesc  bool
	Limit     int // 0 means no cap
	Skip      int
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTaskResponse builds the API view of t.
func NewTaskResponse(t *Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
		Owner:       t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TasksToResponse converts a slice of Task to a slice of TaskResponse.
func TasksToResponse(tasks []Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i := range tasks {
		result[i] = NewTaskResponse(&tasks[i])
	}
	return result
}
