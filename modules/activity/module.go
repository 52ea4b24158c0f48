package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/task-tracker-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// MaxRecentLimit caps the number of entries returned per request.
const MaxRecentLimit = 1000

// RecentRequest is the request for the recent activity service.
type RecentRequest struct {
	Limit int `json:"limit"`
}

// RecentResponse lists recent entries, newest first.
type RecentResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// Module records task events into a bounded activity feed.
type Module struct {
	feed   *Feed
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
)

// NewModule creates an activity module retaining at most capacity entries.
func NewModule(capacity int, logger types.Logger) *Module {
	return &Module{
		feed:   NewFeed(capacity),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "activity"
}

// Feed returns the activity feed.
func (m *Module) Feed() *Feed {
	return m.feed
}

// RegisterEventConsumers subscribes to every task event.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TasksClearedV1, m.handleTasksCleared, m); err != nil {
		return fmt.Errorf("failed to register TasksCleared consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"TaskCreated.v1", "TaskUpdated.v1", "TaskDeleted.v1", "TasksCleared.v1"})
	return nil
}

// RegisterServices exposes the feed as services.activity.recent.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "recent", json.Unmarshal, json.Marshal, m.handleRecent,
	); err != nil {
		return fmt.Errorf("failed to register recent service: %w", err)
	}
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.feed.Record(Entry{
		Kind:       KindCreated,
		TaskID:     event.TaskID,
		Message:    fmt.Sprintf("Task %q created with status %s and priority %s", event.Title, event.Status, event.Priority),
		OccurredAt: event.CreatedOn,
	})
	m.logger.Debug("Recorded task creation", "task_id", event.TaskID)
	return nil
}

func (m *Module) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	message := fmt.Sprintf("Task %d touched", event.TaskID)
	if len(event.Fields) > 0 {
		message = fmt.Sprintf("Task %d updated: %s", event.TaskID, strings.Join(event.Fields, ", "))
	}
	m.feed.Record(Entry{
		Kind:       KindUpdated,
		TaskID:     event.TaskID,
		Message:    message,
		Fields:     event.Fields,
		OccurredAt: event.UpdatedOn,
	})
	m.logger.Debug("Recorded task update", "task_id", event.TaskID, "fields", event.Fields)
	return nil
}

func (m *Module) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.feed.Record(Entry{
		Kind:       KindDeleted,
		TaskID:     event.TaskID,
		Message:    fmt.Sprintf("Task %d deleted", event.TaskID),
		OccurredAt: event.DeletedAt,
	})
	m.logger.Debug("Recorded task deletion", "task_id", event.TaskID)
	return nil
}

func (m *Module) handleTasksCleared(_ context.Context, event events.TasksClearedEvent, _ *mono.Msg) error {
	m.feed.Record(Entry{
		Kind:       KindCleared,
		Message:    fmt.Sprintf("All tasks deleted (%d)", event.Count),
		OccurredAt: event.ClearedAt,
	})
	m.logger.Debug("Recorded bulk deletion", "count", event.Count)
	return nil
}

func (m *Module) handleRecent(_ context.Context, req RecentRequest, _ *mono.Msg) (RecentResponse, error) {
	entries := m.feed.Recent(ClampLimit(req.Limit))
	return RecentResponse{Entries: entries, Total: len(entries)}, nil
}

// ClampLimit caps limit at MaxRecentLimit. Zero or negative means the whole feed.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return 0
	}
	if limit > MaxRecentLimit {
		return MaxRecentLimit
	}
	return limit
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Activity module started", "capacity", m.feed.Capacity())
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Activity module stopped")
	return nil
}
