package task

import (
	"context"
	"time"

	domain "github.com/example/task-tracker-demo/domain/task"
)

// CreateTaskRequest is the request for creating a task.
// Nil status and priority take the defaults "new" and "medium".
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	ID uint `json:"id"`
}

// ListTasksRequest is the request for listing tasks. Nil filters apply no restriction.
type ListTasksRequest struct {
	Status   *string `json:"status,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

// ListTasksResponse is the response containing tasks ordered by id.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// ReplaceTaskRequest carries the full field set for a task.
// Nil description and due date clear the stored values.
type ReplaceTaskRequest struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date"`
}

// PatchTaskRequest carries only the fields the caller wants to change.
type PatchTaskRequest struct {
	ID          uint                       `json:"id"`
	Title       domain.Optional[string]    `json:"title,omitzero"`
	Description domain.Optional[string]    `json:"description,omitzero"`
	Status      domain.Optional[string]    `json:"status,omitzero"`
	Priority    domain.Optional[string]    `json:"priority,omitzero"`
	DueDate     domain.Optional[time.Time] `json:"due_date,omitzero"`
}

// UpdateStatusRequest is the request for changing only the status of a task.
type UpdateStatusRequest struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ID uint `json:"id"`
}

// DeleteTaskResponse is the response after deleting a task.
type DeleteTaskResponse struct {
	Deleted bool   `json:"deleted"`
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

// DeleteAllTasksRequest must carry Confirm=true for anything to be removed.
type DeleteAllTasksRequest struct {
	Confirm bool `json:"confirm"`
}

// DeleteAllTasksResponse reports how many rows were removed.
type DeleteAllTasksResponse struct {
	Deleted int64 `json:"deleted"`
}

// TaskResponse represents a task in responses.
type TaskResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CreatedOn   time.Time  `json:"created_on"`
	UpdatedOn   time.Time  `json:"updated_on"`
}

// Error codes carried by ServiceError.
const (
	ErrorCodeValidation       = "validation_error"
	ErrorCodeNotFound         = "not_found"
	ErrorCodeStoreUnavailable = "store_unavailable"
	ErrorCodeInternal         = "internal_error"
)

// ServiceError describes a failed request-reply call.
type ServiceError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Reply is the envelope of every services.task.* response. Exactly one of
// Data and Error is set.
type Reply[T any] struct {
	Data  *T            `json:"data,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// TaskService defines the task use cases consumed by driving adapters.
type TaskService interface {
	List(ctx context.Context, req ListTasksRequest) (ListTasksResponse, error)
	Create(ctx context.Context, req CreateTaskRequest) (TaskResponse, error)
	Get(ctx context.Context, req GetTaskRequest) (TaskResponse, error)
	Replace(ctx context.Context, req ReplaceTaskRequest) (TaskResponse, error)
	Patch(ctx context.Context, req PatchTaskRequest) (TaskResponse, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (TaskResponse, error)
	Delete(ctx context.Context, req DeleteTaskRequest) (DeleteTaskResponse, error)
	DeleteAll(ctx context.Context, req DeleteAllTasksRequest) (DeleteAllTasksResponse, error)
}

// TaskRepository is the storage port used by the service.
type TaskRepository interface {
	List(ctx context.Context, filter domain.Filter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id uint) (*domain.Task, error)
	Replace(ctx context.Context, id uint, fields domain.Fields) (*domain.Task, error)
	Patch(ctx context.Context, id uint, patch domain.Patch) (*domain.Task, error)
	UpdateStatus(ctx context.Context, id uint, status domain.Status) (*domain.Task, error)
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
}
