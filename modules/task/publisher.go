package task

import (
	"github.com/example/task-tracker-demo/events"
	"github.com/go-monolith/mono"
)

// EventPublisher emits task domain events.
type EventPublisher interface {
	TaskCreated(event events.TaskCreatedEvent) error
	TaskUpdated(event events.TaskUpdatedEvent) error
	TaskDeleted(event events.TaskDeletedEvent) error
	TasksCleared(event events.TasksClearedEvent) error
}

// busPublisher publishes typed events on the mono event bus.
type busPublisher struct {
	bus mono.EventBus
}

func newEventPublisher(bus mono.EventBus) EventPublisher {
	if bus == nil {
		return nopPublisher{}
	}
	return &busPublisher{bus: bus}
}

func (p *busPublisher) TaskCreated(event events.TaskCreatedEvent) error {
	return events.TaskCreatedV1.Publish(p.bus, event, nil)
}

func (p *busPublisher) TaskUpdated(event events.TaskUpdatedEvent) error {
	return events.TaskUpdatedV1.Publish(p.bus, event, nil)
}

func (p *busPublisher) TaskDeleted(event events.TaskDeletedEvent) error {
	return events.TaskDeletedV1.Publish(p.bus, event, nil)
}

func (p *busPublisher) TasksCleared(event events.TasksClearedEvent) error {
	return events.TasksClearedV1.Publish(p.bus, event, nil)
}

type nopPublisher struct{}

func (nopPublisher) TaskCreated(events.TaskCreatedEvent) error   { return nil }
func (nopPublisher) TaskUpdated(events.TaskUpdatedEvent) error   { return nil }
func (nopPublisher) TaskDeleted(events.TaskDeletedEvent) error   { return nil }
func (nopPublisher) TasksCleared(events.TasksClearedEvent) error { return nil }
