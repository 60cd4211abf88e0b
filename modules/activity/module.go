package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/example/taskflow/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 256

// ServiceRecentActivity is the request-reply service returning recent entries.
const ServiceRecentActivity = "recent-activity"

// Entry is one recorded task lifecycle event.
type Entry struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	TaskID     int64     `json:"task_id"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RecentActivityRequest selects entries, newest first. Limit <= 0 returns
// every kept entry; a zero TaskID matches all tasks.
type RecentActivityRequest struct {
	Limit  int   `json:"limit,omitempty"`
	TaskID int64 `json:"task_id,omitempty"`
}

// RecentActivityResponse is the response of the recent-activity service.
type RecentActivityResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// ActivityModule is a driven adapter that subscribes to task lifecycle
// events and keeps the most recent ones in memory.
type ActivityModule struct {
	capacity int
	entries  []Entry
	mu       sync.RWMutex
	logger   types.Logger
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)

// NewModule creates an ActivityModule keeping at most capacity entries.
func NewModule(capacity int, logger types.Logger) *ActivityModule {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ActivityModule{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
		logger:   logger.WithModule("activity"),
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskStatusChangedV1, m.handleTaskStatusChanged, m); err != nil {
		return fmt.Errorf("failed to register TaskStatusChanged consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"TaskCreated", "TaskUpdated", "TaskStatusChanged", "TaskDeleted"})
	return nil
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRecentActivity, json.Unmarshal, json.Marshal, m.recentActivity,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRecentActivity, err)
	}
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record("task_created", event.TaskID, event.CreatedAt, fmt.Sprintf("Task %d created: %q", event.TaskID, event.Title))
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.record("task_updated", event.TaskID, event.UpdatedAt, fmt.Sprintf("Task %d updated: %q", event.TaskID, event.Title))
	return nil
}

func (m *ActivityModule) handleTaskStatusChanged(_ context.Context, event events.TaskStatusChangedEvent, _ *mono.Msg) error {
	state := "incomplete"
	if event.IsCompleted {
		state = "complete"
	}
	m.record("task_status_changed", event.TaskID, event.ChangedAt, fmt.Sprintf("Task %d marked %s", event.TaskID, state))
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record("task_deleted", event.TaskID, event.DeletedAt, fmt.Sprintf("Task %d deleted", event.TaskID))
	return nil
}

func (m *ActivityModule) recentActivity(_ context.Context, req RecentActivityRequest, _ *mono.Msg) (RecentActivityResponse, error) {
	entries := m.Recent(req.Limit, req.TaskID)
	return RecentActivityResponse{Entries: entries, Total: len(entries)}, nil
}

func (m *ActivityModule) record(eventType string, taskID int64, at time.Time, message string) {
	entry := Entry{
		ID:         uuid.NewString(),
		Type:       eventType,
		TaskID:     taskID,
		Message:    message,
		OccurredAt: at,
	}

	m.mu.Lock()
	if len(m.entries) == m.capacity {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, entry)
	m.mu.Unlock()

	m.logger.Info(message, "type", eventType, "task_id", taskID)
}

// Recent returns up to limit entries, newest first, optionally for one task.
func (m *ActivityModule) Recent(limit int, taskID int64) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Entry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		if taskID != 0 && m.entries[i].TaskID != taskID {
			continue
		}
		result = append(result, m.entries[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("Module started - listening for task events", "capacity", m.capacity)
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped", "entries", len(m.Recent(0, 0)))
	return nil
}
