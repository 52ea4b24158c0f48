package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted when a new task is created.
type TaskCreatedEvent struct {
	TaskID    uint      `json:"task_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	CreatedOn time.Time `json:"created_on"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedEvent is emitted after a replace, patch or status update.
type TaskUpdatedEvent struct {
	TaskID    uint      `json:"task_id"`
	Fields    []string  `json:"fields"`
	Status    string    `json:"status"`
	UpdatedOn time.Time `json:"updated_on"`
}

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskDeletedEvent is emitted when a task is deleted.
type TaskDeletedEvent struct {
	TaskID    uint      `json:"task_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)

// TasksClearedEvent is emitted when every task is deleted at once.
type TasksClearedEvent struct {
	Count     int64     `json:"count"`
	ClearedAt time.Time `json:"cleared_at"`
}

// TasksClearedV1 is the typed event definition for bulk deletion.
// Subject: events.task.v1.tasks-cleared
var TasksClearedV1 = helper.EventDefinition[TasksClearedEvent](
	"task", "TasksCleared", "v1",
)
