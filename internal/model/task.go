package model

import "time"

// Task represents a task owned by exactly one user.
type Task struct {
	ID          string
	OwnerID     string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SortField names a task attribute that listings can be ordered by.
type SortField string

const (
	SortByDescription SortField = "description"
	SortByCompleted   SortField = "completed"
	SortByCreatedAt   SortField = "createdAt"
	SortByUpdatedAt   SortField = "updatedAt"
)

// Valid reports whether f is one of the supported sort fields.
func (f SortField) Valid() bool {
	switch f {
	case SortByDescription, SortByCompleted, SortByCreatedAt, SortByUpdatedAt:
		return true
	}
	return false
}

// TaskQuery filters, orders and pages a task listing.
// An empty SortField keeps insertion order. Limit 0 means no limit.
type TaskQuery struct {
	Completed *bool
	SortField SortField
	SortDesc  bool
	Limit     int64
	Skip      int64
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Description string `json:"description" validate:"required"`
	Completed   *bool  `json:"completed"`
}

// UpdateTaskRequest is a partial task update. Nil fields are left untouched.
type UpdateTaskRequest struct {
	Description *string `json:"description" validate:"omitempty,min=1"`
	Completed   *bool   `json:"completed"`
}

// TaskResponse is the JSON representation of a task.
type TaskResponse struct {
	ID          string    `json:"_id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTaskResponse converts a stored task to its response form.
func NewTaskResponse(t Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
		Owner:       t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTaskResponses converts a slice of tasks, never returning nil.
func NewTaskResponses(tasks []Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = NewTaskResponse(t)
	}
	return result
}
