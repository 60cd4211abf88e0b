package task

import (
	"context"
	"time"

	domain "github.com/example/taskflow/domain/task"
)

// Service names registered by the task module.
const (
	ServiceCreateTask    = "create-task"
	ServiceListTasks     = "list-tasks"
	ServiceGetTask       = "get-task"
	ServiceUpdateTask    = "update-task"
	ServiceSetCompletion = "set-task-completion"
	ServiceDeleteTask    = "delete-task"
)

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest replaces the title, description and due date of a task.
// A nil Description or DueDate clears the stored value.
type UpdateTaskRequest struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	ID int64 `json:"id"`
}

// SetCompletionRequest is the request for marking a task complete or incomplete.
type SetCompletionRequest struct {
	ID          int64 `json:"id"`
	IsCompleted bool  `json:"is_completed"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ID int64 `json:"id"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

// ListTasksRequest is the request for listing tasks. A nil IsCompleted and
// a blank Title leave the respective filter out.
type ListTasksRequest struct {
	IsCompleted *bool              `json:"is_completed,omitempty"`
	Title       string             `json:"title,omitempty"`
	Page        domain.PageRequest `json:"page"`
}

// TaskResponse is the read view of a single task.
type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsCompleted bool       `json:"is_completed"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ListTasksResponse is one page of tasks.
type ListTasksResponse = domain.Page[TaskResponse]

// serviceReply is the payload every task service replies with. The
// request-reply transport sends nothing back when a handler fails, so
// failures travel in Error instead.
type serviceReply[T any] struct {
	Result T      `json:"result"`
	Error  string `json:"error,omitempty"`
}

// TaskPort defines the interface for task operations (hexagonal port).
// Driving adapters such as the HTTP API use it to reach the core domain.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error)
	ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
	GetTask(ctx context.Context, id int64) (*TaskResponse, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error)
	SetCompletion(ctx context.Context, id int64, completed bool) (*TaskResponse, error)
	DeleteTask(ctx context.Context, id int64) error
}
