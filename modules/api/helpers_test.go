package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/example/taskflow/config"
	domain "github.com/example/taskflow/domain/task"
	"github.com/example/taskflow/modules/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func newMockLogger() types.Logger {
	return &mockLogger{}
}

// mockTaskPort implements task.TaskPort for testing
type mockTaskPort struct {
	createTaskFunc    func(ctx context.Context, req *task.CreateTaskRequest) (*task.TaskResponse, error)
	listTasksFunc     func(ctx context.Context, req *task.ListTasksRequest) (*task.ListTasksResponse, error)
	getTaskFunc       func(ctx context.Context, id int64) (*task.TaskResponse, error)
	updateTaskFunc    func(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskResponse, error)
	setCompletionFunc func(ctx context.Context, id int64, completed bool) (*task.TaskResponse, error)
	deleteTaskFunc    func(ctx context.Context, id int64) error
}

var errNotImplemented = errors.New("not implemented")

func (m *mockTaskPort) CreateTask(ctx context.Context, req *task.CreateTaskRequest) (*task.TaskResponse, error) {
	if m.createTaskFunc != nil {
		return m.createTaskFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) ListTasks(ctx context.Context, req *task.ListTasksRequest) (*task.ListTasksResponse, error) {
	if m.listTasksFunc != nil {
		return m.listTasksFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) GetTask(ctx context.Context, id int64) (*task.TaskResponse, error) {
	if m.getTaskFunc != nil {
		return m.getTaskFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) UpdateTask(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskResponse, error) {
	if m.updateTaskFunc != nil {
		return m.updateTaskFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) SetCompletion(ctx context.Context, id int64, completed bool) (*task.TaskResponse, error) {
	if m.setCompletionFunc != nil {
		return m.setCompletionFunc(ctx, id, completed)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) DeleteTask(ctx context.Context, id int64) error {
	if m.deleteTaskFunc != nil {
		return m.deleteTaskFunc(ctx, id)
	}
	return errNotImplemented
}

// tickingClock advances one second on every reading.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

var testPaging = config.PaginationConfig{DefaultSize: 10, MaxSize: 100}

// newTestModule returns a module whose task port is the real service over
// an in-memory SQLite database.
func newTestModule(t *testing.T) *APIModule {
	t.Helper()

	clock := &tickingClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: clock.Now,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	repo := domain.NewRepository(db)
	require.NoError(t, repo.Migrate())

	m := NewModule(config.ServerConfig{Port: 3000}, testPaging, newMockLogger())
	m.tasks = task.NewService(repo, nil, newMockLogger())
	return m
}

func newMockModule(port task.TaskPort, checks ...HealthChecker) *APIModule {
	m := NewModule(config.ServerConfig{Port: 3000}, testPaging, newMockLogger(), checks...)
	m.tasks = port
	return m
}

// do sends a request through the app in-process. body may be nil, a string
// (sent verbatim) or any value (JSON-encoded).
func do(t *testing.T, app *fiber.App, method, target string, body any) (int, []byte, http.Header) {
	t.Helper()
	return doWithin(t, app, -1, method, target, body)
}

// doWithin is do with a deadline in milliseconds; -1 waits indefinitely.
func doWithin(t *testing.T, app *fiber.App, timeoutMS int, method, target string, body any) (int, []byte, http.Header) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, timeoutMS)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data, resp.Header
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), "body: %s", data)
	return v
}

func createTask(t *testing.T, app *fiber.App, body map[string]any) TaskResponse {
	t.Helper()
	status, data, _ := do(t, app, fiber.MethodPost, "/tasks", body)
	require.Equal(t, fiber.StatusCreated, status, "body: %s", data)
	return decode[TaskResponse](t, data)
}
