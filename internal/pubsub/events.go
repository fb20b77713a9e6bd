// Package pubsub provides a generic publish/subscribe event system used to
// carry log entries and collection change summaries into the Bubble Tea loop.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// LogEntryEvent carries one formatted log line.
	LogEntryEvent EventType = "log"
	// ChildrenChangedEvent carries a summary of one child-list mutation batch.
	ChildrenChangedEvent EventType = "children-changed"
)

// Event represents a published event with a typed payload.
// Seq increases by one per Publish on the same broker, so subscribers can
// tell when events were dropped.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Seq       uint64
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
