package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/example/taskflow/domain/task"
	"github.com/example/taskflow/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Service holds the task business rules. It implements TaskPort in-process
// and backs the module's request-reply services.
type Service struct {
	repo     *domain.Repository
	eventBus mono.EventBus
	logger   types.Logger
}

var _ TaskPort = (*Service)(nil)

// NewService creates a task service. eventBus may be nil, in which case no
// lifecycle events are published.
func NewService(repo *domain.Repository, eventBus mono.EventBus, logger types.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateTask stores a new, incomplete task.
func (s *Service) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error) {
	t := &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: false,
		DueDate:     req.DueDate,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.publish("TaskCreated", t.ID, func() error {
		return events.TaskCreatedV1.Publish(s.eventBus, events.TaskCreatedEvent{
			TaskID:    t.ID,
			Title:     t.Title,
			DueDate:   t.DueDate,
			CreatedAt: t.CreatedAt,
		}, nil)
	})

	resp := toTaskResponse(*t)
	return &resp, nil
}

// ListTasks returns one page of tasks matching the request's filters.
func (s *Service) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	filter := domain.Filter{
		IsCompleted: req.IsCompleted,
		Title:       strings.TrimSpace(req.Title),
	}

	page, err := s.repo.List(ctx, filter, req.Page)
	if err != nil {
		if isQueryError(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
		return nil, err
	}

	s.logger.Debug("Listed tasks",
		"filter", filter.Kind().String(),
		"page", page.Number,
		"returned", len(page.Content),
		"total", page.TotalElements)

	resp := domain.MapPage(page, toTaskResponse)
	return &resp, nil
}

// GetTask returns a task by ID.
func (s *Service) GetTask(ctx context.Context, id int64) (*TaskResponse, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toTaskResponse(*t)
	return &resp, nil
}

// UpdateTask replaces title, description and due date. Completion state and
// creation time are preserved.
func (s *Service) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error) {
	t, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	t.Title = req.Title
	t.Description = req.Description
	t.DueDate = req.DueDate

	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	s.publish("TaskUpdated", t.ID, func() error {
		return events.TaskUpdatedV1.Publish(s.eventBus, events.TaskUpdatedEvent{
			TaskID:    t.ID,
			Title:     t.Title,
			UpdatedAt: t.UpdatedAt,
		}, nil)
	})

	resp := toTaskResponse(*t)
	return &resp, nil
}

// SetCompletion overwrites only the completion flag of a task.
func (s *Service) SetCompletion(ctx context.Context, id int64, completed bool) (*TaskResponse, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	t.IsCompleted = completed
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	s.publish("TaskStatusChanged", t.ID, func() error {
		return events.TaskStatusChangedV1.Publish(s.eventBus, events.TaskStatusChangedEvent{
			TaskID:      t.ID,
			IsCompleted: t.IsCompleted,
			ChangedAt:   t.UpdatedAt,
		}, nil)
	})

	resp := toTaskResponse(*t)
	return &resp, nil
}

// DeleteTask removes a task. A missing ID is reported as ErrTaskNotFound.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return notFound(id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish("TaskDeleted", id, func() error {
		return events.TaskDeletedV1.Publish(s.eventBus, events.TaskDeletedEvent{
			TaskID:    id,
			DeletedAt: domain.Now(),
		}, nil)
	})
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, notFound(id)
	}
	return t, err
}

func (s *Service) save(ctx context.Context, t *domain.Task) error {
	err := s.repo.Update(ctx, t)
	if errors.Is(err, domain.ErrNotFound) {
		// Deleted between load and save.
		return notFound(t.ID)
	}
	return err
}

// publish runs a best-effort event publication; failures are logged only.
func (s *Service) publish(event string, id int64, fn func() error) {
	if s.eventBus == nil {
		return
	}
	if err := fn(); err != nil {
		s.logger.Warn("Failed to publish event", "event", event, "task_id", id, "error", err)
	}
}

func notFound(id int64) error {
	return fmt.Errorf("%w with id: %d", ErrTaskNotFound, id)
}

func isQueryError(err error) bool {
	return errors.Is(err, domain.ErrInvalidSortField) ||
		errors.Is(err, domain.ErrInvalidSortDirection) ||
		errors.Is(err, domain.ErrInvalidPageRequest)
}

// toTaskResponse converts a domain Task to a TaskResponse.
func toTaskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
