package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/example/task-tracker-demo/metrics"
	"github.com/example/task-tracker-demo/modules/activity"
	"github.com/example/task-tracker-demo/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

type testServer struct {
	api   *APIModule
	tasks *task.TaskModule
	feed  *activity.Feed
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	reg := prometheus.NewRegistry()
	tasks := task.NewModule(
		task.StoreConfig{Driver: task.DriverSQLite, DSN: ":memory:"},
		metrics.NewPromMetrics(reg),
		&mockLogger{},
	)
	require.NoError(t, tasks.Start(context.Background()))
	t.Cleanup(func() {
		_ = tasks.Stop(context.Background())
	})

	feed := activity.NewFeed(10)
	m := NewModule(Config{Port: 0}, tasks, feed, reg, &mockLogger{})
	require.NoError(t, m.setupApp())

	return &testServer{api: m, tasks: tasks, feed: feed}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func (s *testServer) create(t *testing.T, body string) task.TaskResponse {
	t.Helper()
	resp, data := s.do(t, http.MethodPost, "/api/v1/tasks", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	return decode[task.TaskResponse](t, data)
}

func TestRoot(t *testing.T) {
	s := newTestServer(t)

	resp, data := s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "TODO API is running", decode[MessageResponse](t, data).Message)
}

func TestCreateTask(t *testing.T) {
	s := newTestServer(t)

	created := s.create(t, `{"title":"Buy milk"}`)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "new", created.Status)
	assert.Equal(t, "medium", created.Priority)
	assert.Nil(t, created.Description)
	assert.Nil(t, created.DueDate)
	assert.False(t, created.CreatedOn.IsZero())
	assert.Equal(t, created.CreatedOn, created.UpdatedOn)
}

func TestCreateTask_WithAllFields(t *testing.T) {
	s := newTestServer(t)

	created := s.create(t, `{"title":"Ship","description":"v1","status":"scheduled","priority":"high","due_date":"2026-12-31T00:00:00Z"}`)
	assert.Equal(t, "scheduled", created.Status)
	assert.Equal(t, "high", created.Priority)
	require.NotNil(t, created.Description)
	assert.Equal(t, "v1", *created.Description)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, 2026, created.DueDate.Year())
}

func TestCreateTask_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{name: "empty title", body: `{"title":""}`, wantCode: codeValidation},
		{name: "missing title", body: `{"priority":"low"}`, wantCode: codeValidation},
		{name: "bad status", body: `{"title":"x","status":"done"}`, wantCode: codeValidation},
		{name: "bad priority", body: `{"title":"x","priority":"urgent"}`, wantCode: codeValidation},
		{name: "malformed json", body: `{"title":`, wantCode: codeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := s.do(t, http.MethodPost, "/api/v1/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, data).Error)
		})
	}

	resp, data := s.do(t, http.MethodGet, "/api/v1/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, decode[task.ListTasksResponse](t, data).Total, "rejected creates must not persist")
}

func TestListTasks_Filters(t *testing.T) {
	s := newTestServer(t)
	s.create(t, `{"title":"a","status":"completed","priority":"low"}`)
	s.create(t, `{"title":"b","status":"new","priority":"low"}`)
	s.create(t, `{"title":"c","status":"completed","priority":"high"}`)

	resp, data := s.do(t, http.MethodGet, "/api/v1/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[task.ListTasksResponse](t, data)
	require.Equal(t, 3, all.Total)
	assert.Less(t, all.Tasks[0].ID, all.Tasks[1].ID)
	assert.Less(t, all.Tasks[1].ID, all.Tasks[2].ID)

	_, data = s.do(t, http.MethodGet, "/api/v1/tasks?status=completed", "")
	completed := decode[task.ListTasksResponse](t, data)
	require.Equal(t, 2, completed.Total)
	assert.Equal(t, "a", completed.Tasks[0].Title)
	assert.Equal(t, "c", completed.Tasks[1].Title)

	_, data = s.do(t, http.MethodGet, "/api/v1/tasks?status=completed&priority=low", "")
	both := decode[task.ListTasksResponse](t, data)
	require.Equal(t, 1, both.Total)
	assert.Equal(t, "a", both.Tasks[0].Title)

	resp, data = s.do(t, http.MethodGet, "/api/v1/tasks?priority=urgent", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, codeValidation, decode[ErrorResponse](t, data).Error)
}

func TestGetTask(t *testing.T) {
	s := newTestServer(t)
	created := s.create(t, `{"title":"one"}`)

	resp, data := s.do(t, http.MethodGet, "/api/v1/tasks/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.Title, decode[task.TaskResponse](t, data).Title)

	resp, data = s.do(t, http.MethodGet, "/api/v1/tasks/9999", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, codeNotFound, decode[ErrorResponse](t, data).Error)

	resp, data = s.do(t, http.MethodGet, "/api/v1/tasks/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, codeInvalidRequest, decode[ErrorResponse](t, data).Error)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/tasks/0", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReplaceTask(t *testing.T) {
	s := newTestServer(t)
	s.create(t, `{"title":"old","description":"text","priority":"high"}`)

	resp, data := s.do(t, http.MethodPut, "/api/v1/tasks/1", `{"title":"new title","status":"in_progress"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	replaced := decode[task.TaskResponse](t, data)
	assert.Equal(t, "new title", replaced.Title)
	assert.Equal(t, "in_progress", replaced.Status)
	assert.Equal(t, "medium", replaced.Priority)
	assert.Nil(t, replaced.Description)

	resp, _ = s.do(t, http.MethodPut, "/api/v1/tasks/9999", `{"title":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, data = s.do(t, http.MethodGet, "/api/v1/tasks", "")
	assert.Equal(t, 1, decode[task.ListTasksResponse](t, data).Total, "replace of missing id must not create")

	resp, _ = s.do(t, http.MethodPut, "/api/v1/tasks/1", `{"title":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPatchTask(t *testing.T) {
	s := newTestServer(t)
	created := s.create(t, `{"title":"keep me","description":"and me","due_date":"2026-06-01T00:00:00Z"}`)

	resp, data := s.do(t, http.MethodPatch, "/api/v1/tasks/1", `{"priority":"high"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	patched := decode[task.TaskResponse](t, data)
	assert.Equal(t, "high", patched.Priority)
	assert.Equal(t, "keep me", patched.Title)
	require.NotNil(t, patched.Description)
	assert.Equal(t, "and me", *patched.Description)
	assert.NotNil(t, patched.DueDate)
	assert.False(t, patched.UpdatedOn.Before(created.UpdatedOn))

	resp, data = s.do(t, http.MethodPatch, "/api/v1/tasks/1", `{"description":null,"due_date":null}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	cleared := decode[task.TaskResponse](t, data)
	assert.Nil(t, cleared.Description)
	assert.Nil(t, cleared.DueDate)
	assert.Equal(t, "high", cleared.Priority)

	resp, data = s.do(t, http.MethodPatch, "/api/v1/tasks/1", `{"title":null}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, codeValidation, decode[ErrorResponse](t, data).Error)

	resp, _ = s.do(t, http.MethodPatch, "/api/v1/tasks/42", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateTaskStatus(t *testing.T) {
	s := newTestServer(t)
	s.create(t, `{"title":"t","status":"completed"}`)

	resp, data := s.do(t, http.MethodPatch, "/api/v1/tasks/1/status", `{"status":"new"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, "new", decode[task.TaskResponse](t, data).Status)

	resp, _ = s.do(t, http.MethodPatch, "/api/v1/tasks/1/status", `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPatch, "/api/v1/tasks/7/status", `{"status":"new"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteTask(t *testing.T) {
	s := newTestServer(t)
	s.create(t, `{"title":"t"}`)

	resp, data := s.do(t, http.MethodDelete, "/api/v1/tasks/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deleted := decode[task.DeleteTaskResponse](t, data)
	assert.True(t, deleted.Deleted)
	assert.Equal(t, uint(1), deleted.ID)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/tasks/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/tasks/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteAllTasks(t *testing.T) {
	s := newTestServer(t)
	for _, title := range []string{"a", "b", "c"} {
		s.create(t, `{"title":"`+title+`"}`)
	}

	resp, data := s.do(t, http.MethodDelete, "/api/v1/tasks", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, codeValidation, decode[ErrorResponse](t, data).Error)

	resp, data = s.do(t, http.MethodDelete, "/api/v1/tasks?confirm=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(3), decode[task.DeleteAllTasksResponse](t, data).Deleted)

	_, data = s.do(t, http.MethodGet, "/api/v1/tasks", "")
	list := decode[task.ListTasksResponse](t, data)
	assert.Empty(t, list.Tasks)
}

func TestActivity(t *testing.T) {
	s := newTestServer(t)
	for i := 1; i <= 3; i++ {
		s.feed.Record(activity.Entry{Kind: activity.KindCreated, TaskID: uint(i)})
	}

	resp, data := s.do(t, http.MethodGet, "/api/v1/activity?limit=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	feed := decode[ActivityResponse](t, data)
	require.Equal(t, 2, feed.Total)
	assert.Equal(t, uint(3), feed.Entries[0].TaskID)
	assert.Equal(t, uint(2), feed.Entries[1].TaskID)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	resp, data := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := decode[HealthResponse](t, data)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "sqlite", health.Details["driver"])

	require.NoError(t, s.tasks.Stop(context.Background()))

	resp, data = s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unhealthy", decode[HealthResponse](t, data).Status)
}

func TestStoreUnavailable(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.tasks.Stop(context.Background()))

	resp, data := s.do(t, http.MethodGet, "/api/v1/tasks", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, codeStoreUnavailable, decode[ErrorResponse](t, data).Error)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.create(t, `{"title":"counted"}`)

	resp, data := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `task_operations_total{operation="create",outcome="ok"} 1`)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodGet, "/", "")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	resp, data := s.do(t, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, codeNotFound, decode[ErrorResponse](t, data).Error)
}

// stubBackend reports a task backend without a started service.
type stubBackend struct{}

func (stubBackend) Service() task.TaskService {
	return nil
}

func (stubBackend) Health(context.Context) mono.HealthStatus {
	return mono.HealthStatus{}
}

func TestSetupApp_RequiresService(t *testing.T) {
	m := NewModule(Config{}, stubBackend{}, nil, nil, &mockLogger{})

	err := m.setupApp()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task service not available")
	assert.False(t, m.Health(context.Background()).Healthy)
}

func TestListTasksBare(t *testing.T) {
	s := newTestServer(t)

	resp, data := s.do(t, http.MethodGet, "/tasks/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(data))

	first := s.create(t, `{"title":"a","status":"completed"}`)
	s.create(t, `{"title":"b"}`)

	resp, data = s.do(t, http.MethodGet, "/tasks/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tasks := decode[[]task.TaskResponse](t, data)
	require.Len(t, tasks, 2)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, "b", tasks[1].Title)

	resp, data = s.do(t, http.MethodGet, "/tasks?status=completed", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]task.TaskResponse](t, data), 1)

	resp, _ = s.do(t, http.MethodGet, "/tasks?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// taskDependent captures the task module's service container the way the
// framework hands it to the API module.
type taskDependent struct {
	container mono.ServiceContainer
}

func (d *taskDependent) Name() string                { return "task-dependent" }
func (d *taskDependent) Start(context.Context) error { return nil }
func (d *taskDependent) Stop(context.Context) error  { return nil }
func (d *taskDependent) Dependencies() []string      { return []string{"task"} }

func (d *taskDependent) SetDependencyServiceContainer(_ string, container mono.ServiceContainer) {
	d.container = container
}

// newNATSTestServer serves the API through services.task.* on an in-process
// mono application.
func newNATSTestServer(t *testing.T) *testServer {
	t.Helper()

	app, err := mono.NewMonoApplication(
		mono.WithNATSDontListen(),
		mono.WithNATSInProcessConn(),
		mono.WithLogLevel(mono.LogLevelError),
	)
	require.NoError(t, err)

	tasks := task.NewModule(task.StoreConfig{Driver: task.DriverSQLite, DSN: ":memory:"}, nil, &mockLogger{})
	dependent := &taskDependent{}
	require.NoError(t, app.Register(tasks))
	require.NoError(t, app.Register(dependent))
	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	m := NewModule(Config{Transport: TransportNATS}, tasks, nil, nil, &mockLogger{})
	m.SetDependencyServiceContainer("task", dependent.container)
	require.NoError(t, m.setupApp())

	return &testServer{api: m, tasks: tasks}
}

func TestNATSTransport(t *testing.T) {
	s := newNATSTestServer(t)
	created := s.create(t, `{"title":"over nats","description":"d","due_date":"2026-06-01T00:00:00Z"}`)
	assert.Equal(t, "new", created.Status)

	path := "/api/v1/tasks/" + strconv.FormatUint(uint64(created.ID), 10)

	resp, data := s.do(t, http.MethodPatch, path, `{"description":null,"due_date":null}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	cleared := decode[task.TaskResponse](t, data)
	assert.Nil(t, cleared.Description)
	assert.Nil(t, cleared.DueDate)

	resp, data = s.do(t, http.MethodGet, "/api/v1/tasks?status=new", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, 1, decode[task.ListTasksResponse](t, data).Total)

	resp, data = s.do(t, http.MethodPost, "/api/v1/tasks", `{"title":""}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[ErrorResponse](t, data)
	assert.Equal(t, codeValidation, body.Error)
	assert.Equal(t, "title is required", body.Message)

	resp, data = s.do(t, http.MethodGet, "/api/v1/tasks/9999", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, codeNotFound, decode[ErrorResponse](t, data).Error)

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/tasks", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, TransportNATS, s.api.Health(context.Background()).Details["transport"])
}

func TestSetupApp_TransportErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "nats without container", cfg: Config{Transport: TransportNATS}, wantErr: "task service container not set"},
		{name: "unknown transport", cfg: Config{Transport: "grpc"}, wantErr: `unsupported task transport "grpc"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModule(tt.cfg, stubBackend{}, nil, nil, &mockLogger{})
			assert.ErrorContains(t, m.setupApp(), tt.wantErr)
		})
	}
}
