package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/taskflow/config"
	domain "github.com/example/taskflow/domain/task"
	"github.com/example/taskflow/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// TaskModule provides task management services (core domain) backed by GORM.
type TaskModule struct {
	cfg      config.DatabaseConfig
	db       *gorm.DB
	service  *Service
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule for the given store configuration.
func NewModule(cfg config.DatabaseConfig, logger types.Logger) *TaskModule {
	return &TaskModule{
		cfg:    cfg,
		logger: logger.WithModule("task"),
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// Service returns the in-process task service. It is nil until Start.
func (m *TaskModule) Service() *Service {
	return m.service
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskStatusChangedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
// The framework prefixes names with "services.task.".
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreateTask, json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListTasks, json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListTasks, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetTask, json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdateTask, json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceSetCompletion, json.Unmarshal, json.Marshal, m.setCompletion,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceSetCompletion, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteTask, json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteTask, err)
	}

	m.logger.Info("Registered services",
		"services", []string{
			ServiceCreateTask, ServiceListTasks, ServiceGetTask,
			ServiceUpdateTask, ServiceSetCompletion, ServiceDeleteTask,
		})
	return nil
}

// Start connects to the store, runs migrations and builds the service.
func (m *TaskModule) Start(_ context.Context) error {
	m.logger.Info("Connecting to database", "driver", m.cfg.Driver)

	db, err := domain.Open(m.cfg)
	if err != nil {
		return err
	}
	m.db = db

	repo := domain.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, lifecycle events will not be published")
	}
	m.service = NewService(repo, m.eventBus, m.logger)

	m.logger.Info("Module started")
	return nil
}

// Stop closes the database connection.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	m.logger.Info("Database connection closed")
	return nil
}

// Health reports whether the database answers a ping.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	stats := sqlDB.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver":           m.cfg.Driver,
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
		},
	}
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (serviceReply[TaskResponse], error) {
	resp, err := m.service.CreateTask(ctx, &req)
	return reply(m.logger, ServiceCreateTask, resp, err), nil
}

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (serviceReply[ListTasksResponse], error) {
	resp, err := m.service.ListTasks(ctx, &req)
	return reply(m.logger, ServiceListTasks, resp, err), nil
}

func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (serviceReply[TaskResponse], error) {
	resp, err := m.service.GetTask(ctx, req.ID)
	return reply(m.logger, ServiceGetTask, resp, err), nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (serviceReply[TaskResponse], error) {
	resp, err := m.service.UpdateTask(ctx, &req)
	return reply(m.logger, ServiceUpdateTask, resp, err), nil
}

func (m *TaskModule) setCompletion(ctx context.Context, req SetCompletionRequest, _ *mono.Msg) (serviceReply[TaskResponse], error) {
	resp, err := m.service.SetCompletion(ctx, req.ID, req.IsCompleted)
	return reply(m.logger, ServiceSetCompletion, resp, err), nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (serviceReply[DeleteTaskResponse], error) {
	var resp *DeleteTaskResponse
	err := m.service.DeleteTask(ctx, req.ID)
	if err == nil {
		resp = &DeleteTaskResponse{Deleted: true}
	}
	return reply(m.logger, ServiceDeleteTask, resp, err), nil
}

// reply packs a service result into the reply envelope. Errors outside the
// task sentinels are logged here since the caller only sees their text.
func reply[T any](logger types.Logger, service string, resp *T, err error) serviceReply[T] {
	if err != nil {
		if !errors.Is(err, ErrTaskNotFound) && !errors.Is(err, ErrInvalidQuery) {
			logger.Error("Service call failed", "service", service, "error", err)
		}
		return serviceReply[T]{Error: err.Error()}
	}
	return serviceReply[T]{Result: *resp}
}
