package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// This is the adapter that implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// CreateTask creates a new task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := call(ctx, a.container, ServiceCreateTask, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTasks lists one page of tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	var resp ListTasksResponse
	if err := call(ctx, a.container, ServiceListTasks, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTask retrieves a task by ID via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, id int64) (*TaskResponse, error) {
	var resp TaskResponse
	if err := call(ctx, a.container, ServiceGetTask, &GetTaskRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateTask updates a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := call(ctx, a.container, ServiceUpdateTask, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetCompletion marks a task complete or incomplete via the set-task-completion service.
func (a *taskAdapter) SetCompletion(ctx context.Context, id int64, completed bool) (*TaskResponse, error) {
	var resp TaskResponse
	req := SetCompletionRequest{ID: id, IsCompleted: completed}
	if err := call(ctx, a.container, ServiceSetCompletion, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, id int64) error {
	var resp DeleteTaskResponse
	if err := call(ctx, a.container, ServiceDeleteTask, &DeleteTaskRequest{ID: id}, &resp); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("task not deleted: %d", id)
	}
	return nil
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	var reply serviceReply[Resp]
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&reply,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}

	// Check for error response
	if reply.Error != "" {
		return mapServiceError(errors.New(reply.Error))
	}

	*resp = reply.Result
	return nil
}

// serviceError carries the message of an error returned by a remote service
// while matching the sentinel it was built from.
type serviceError struct {
	sentinel error
	msg      string
}

func (e *serviceError) Error() string { return e.msg }
func (e *serviceError) Unwrap() error { return e.sentinel }

// mapServiceError restores sentinel errors from service call errors.
// Error types do not survive the request-reply transport, only their text.
func mapServiceError(err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{ErrTaskNotFound, ErrInvalidQuery} {
		if errors.Is(err, sentinel) {
			return err
		}
		errMsg := err.Error()
		if idx := strings.Index(errMsg, sentinel.Error()); idx >= 0 {
			return &serviceError{sentinel: sentinel, msg: errMsg[idx:]}
		}
	}

	return err
}
