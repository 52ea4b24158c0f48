package api

import (
	"context"
	"fmt"
	"time"

	"github.com/example/task-tracker-demo/modules/activity"
	"github.com/example/task-tracker-demo/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TaskBackend is the part of the task module the HTTP adapter needs.
type TaskBackend interface {
	Service() task.TaskService
	Health(ctx context.Context) mono.HealthStatus
}

// Task transports. Direct calls the task module's service in process; NATS
// goes through its services.task.* request-reply services.
const (
	TransportDirect = "direct"
	TransportNATS   = "nats"
)

// Config holds HTTP server settings.
type Config struct {
	Port           int
	AllowedOrigins string
	// AccessLog enables the per-request access log line.
	AccessLog bool
	// Transport selects how handlers reach the task service. Empty means direct.
	Transport string
}

// APIModule is the driving adapter that exposes the task REST endpoints.
type APIModule struct {
	cfg      Config
	app      *fiber.App
	tasks    TaskBackend
	taskDeps mono.ServiceContainer
	service  task.TaskService
	feed     *activity.Feed
	gatherer prometheus.Gatherer
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
)

// NewModule creates a new APIModule. feed and gatherer are optional; without
// them /activity and /metrics are not served.
func NewModule(cfg Config, tasks TaskBackend, feed *activity.Feed, gatherer prometheus.Gatherer, logger types.Logger) *APIModule {
	return &APIModule{
		cfg:      cfg,
		tasks:    tasks,
		feed:     feed,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies makes the framework start the task module first.
func (m *APIModule) Dependencies() []string {
	return []string{"task"}
}

// SetDependencyServiceContainer receives the task module's container, used
// when Transport is TransportNATS.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		m.taskDeps = container
	}
}

// Start builds the Fiber app and starts listening.
func (m *APIModule) Start(_ context.Context) error {
	if err := m.setupApp(); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", m.cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			errCh <- err
		}
	}()

	// Catch immediate startup errors such as a port already in use.
	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", addr, "transport", m.transport())
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{Healthy: false, Message: "HTTP server not started"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"port":      m.cfg.Port,
			"transport": m.transport(),
		},
	}
}

// setupApp creates the Fiber app with middleware and routes.
func (m *APIModule) setupApp() error {
	if m.tasks == nil {
		return fmt.Errorf("task backend not set")
	}
	service, err := m.taskService()
	if err != nil {
		return err
	}
	m.service = service

	m.app = fiber.New(fiber.Config{
		AppName:               "Task Tracker",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	if m.cfg.AccessLog {
		m.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		}))
	}

	allowedOrigins := m.cfg.AllowedOrigins
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	m.setupRoutes()
	return nil
}

// taskService resolves the TaskService for the configured transport.
func (m *APIModule) taskService() (task.TaskService, error) {
	switch m.cfg.Transport {
	case TransportDirect, "":
		service := m.tasks.Service()
		if service == nil {
			return nil, fmt.Errorf("task service not available, start the task module first")
		}
		return service, nil
	case TransportNATS:
		if m.taskDeps == nil {
			return nil, fmt.Errorf("task service container not set")
		}
		return task.NewTaskAdapter(m.taskDeps), nil
	default:
		return nil, fmt.Errorf("unsupported task transport %q", m.cfg.Transport)
	}
}

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes() {
	m.app.Get("/", m.rootHandler)
	m.app.Get("/health", m.healthHandler)
	if m.gatherer != nil {
		m.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})))
	}

	// Unversioned list kept for the original web client.
	m.app.Get("/tasks", m.listTasksBare)

	api := m.app.Group("/api/v1")

	api.Get("/tasks", m.listTasks)
	api.Post("/tasks", m.createTask)
	api.Delete("/tasks", m.deleteAllTasks)
	api.Get("/tasks/:id", m.getTask)
	api.Put("/tasks/:id", m.replaceTask)
	api.Patch("/tasks/:id", m.patchTask)
	api.Patch("/tasks/:id/status", m.updateTaskStatus)
	api.Delete("/tasks/:id", m.deleteTask)

	if m.feed != nil {
		api.Get("/activity", m.listActivity)
	}
}

func (m *APIModule) transport() string {
	if m.cfg.Transport == "" {
		return TransportDirect
	}
	return m.cfg.Transport
}
