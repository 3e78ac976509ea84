// Package eventbus connects the API, the workers and downstream consumers over a message bus.
package eventbus

import (
	"context"

	"github.com/dukex/talentflow/pkg/events"
)

// Event is anything published on the bus; its type selects the handler on the consuming side.
type Event interface {
	GetType() events.EventType
}

// EventPublisher publishes events. Events with the same key, an owner for domain events and a
// graph id for execution events, are delivered in publish order.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	// Handle registers the handler of one event type. Handlers must be registered before Subscribe.
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives a pointer to the decoded event. Returning an error requests redelivery.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
