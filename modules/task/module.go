package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-tracker-demo/domain/task"
	"github.com/example/task-tracker-demo/events"
	"github.com/example/task-tracker-demo/metrics"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// TaskModule owns the task store and exposes the task use cases as
// request-reply services and, through Service, to in-process adapters.
type TaskModule struct {
	store    StoreConfig
	db       *gorm.DB
	service  TaskService
	eventBus mono.EventBus
	recorder metrics.Recorder
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*TaskModule)(nil)
	_ mono.ServiceProviderModule = (*TaskModule)(nil)
	_ mono.HealthCheckableModule = (*TaskModule)(nil)
	_ mono.EventEmitterModule    = (*TaskModule)(nil)
)

// NewModule creates a TaskModule backed by the configured relational store.
func NewModule(store StoreConfig, recorder metrics.Recorder, logger types.Logger) *TaskModule {
	return &TaskModule{
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

// NewModuleWithService creates a TaskModule around an existing service.
// Start skips opening the database.
func NewModuleWithService(service TaskService, logger types.Logger) *TaskModule {
	return &TaskModule{
		service: service,
		logger:  logger,
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// SetEventBus is called by the framework before Start.
func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events published by this module.
func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
		events.TasksClearedV1.ToBase(),
	}
}

// Service returns the task service. It is nil until Start succeeds.
func (m *TaskModule) Service() TaskService {
	return m.service
}

// Health pings the database.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		if m.service != nil {
			return mono.HealthStatus{Healthy: true, Message: "operational"}
		}
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

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.driver(),
		},
	}
}

// RegisterServices registers request-reply services in the service container.
// Names are prefixed by the framework, so "create" is served on
// "services.task.create". Responses are wrapped in Reply.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, replying(m.handleList),
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, replying(m.handleCreate),
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, replying(m.handleGet),
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "replace", json.Unmarshal, json.Marshal, replying(m.handleReplace),
	); err != nil {
		return fmt.Errorf("failed to register replace service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "patch", json.Unmarshal, json.Marshal, replying(m.handlePatch),
	); err != nil {
		return fmt.Errorf("failed to register patch service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-status", json.Unmarshal, json.Marshal, replying(m.handleUpdateStatus),
	); err != nil {
		return fmt.Errorf("failed to register update-status service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, replying(m.handleDelete),
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-all", json.Unmarshal, json.Marshal, replying(m.handleDeleteAll),
	); err != nil {
		return fmt.Errorf("failed to register delete-all service: %w", err)
	}

	m.logger.Info("Registered services",
		"services", "services.task.{list,create,get,replace,patch,update-status,delete,delete-all}")
	return nil
}

// Start opens the database, migrates the schema and builds the service.
func (m *TaskModule) Start(_ context.Context) error {
	if m.service != nil {
		m.logger.Info("Task module started with injected service")
		return nil
	}

	m.logger.Info("Connecting to database", "driver", m.driver())

	db, err := openDatabase(m.store)
	if err != nil {
		return err
	}
	m.db = db

	repo := domain.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, task events will not be published")
	}
	m.service = NewTaskService(repo, newEventPublisher(m.eventBus), m.recorder, m.logger)

	m.logger.Info("Task module started")
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

func (m *TaskModule) driver() string {
	if m.store.Driver == "" {
		return DriverSQLite
	}
	return m.store.Driver
}

// Handlers delegate to the service layer.

func (m *TaskModule) handleList(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	return m.service.List(ctx, req)
}

func (m *TaskModule) handleCreate(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.service.Create(ctx, req)
}

func (m *TaskModule) handleGet(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.service.Get(ctx, req)
}

func (m *TaskModule) handleReplace(ctx context.Context, req ReplaceTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.service.Replace(ctx, req)
}

func (m *TaskModule) handlePatch(ctx context.Context, req PatchTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.service.Patch(ctx, req)
}

func (m *TaskModule) handleUpdateStatus(ctx context.Context, req UpdateStatusRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.service.UpdateStatus(ctx, req)
}

func (m *TaskModule) handleDelete(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	return m.service.Delete(ctx, req)
}

func (m *TaskModule) handleDeleteAll(ctx context.Context, req DeleteAllTasksRequest, _ *mono.Msg) (DeleteAllTasksResponse, error) {
	return m.service.DeleteAll(ctx, req)
}
