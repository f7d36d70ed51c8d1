// Package pubsub provides the event plumbing between the clipboard engine and
// its hosts: a buffered, drop-on-full Broker for UI loops and an Observers
// list for callbacks that must run synchronously.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened.
type EventType string

const (
	// CopyEvent: ranges were serialized and written to the clipboard.
	CopyEvent EventType = "copy"
	// CopyCancelledEvent: the copied highlight was dismissed.
	CopyCancelledEvent EventType = "copy_cancelled"
	// PasteAppliedEvent: a paste command executed.
	PasteAppliedEvent EventType = "paste_applied"
	// PasteCancelledEvent: a paste was undone or declined by a command handler.
	PasteCancelledEvent EventType = "paste_cancelled"
	// ValidationErrorEvent: a copy or paste gesture failed.
	ValidationErrorEvent EventType = "validation_error"
	// LogEntryEvent carries a formatted log line.
	LogEntryEvent EventType = "log"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// NewEvent stamps payload with the current time. Observers and brokers fed
// the same event see the same timestamp.
func NewEvent[T any](eventType EventType, payload T) Event[T] {
	return Event[T]{Type: eventType, Payload: payload, Timestamp: time.Now()}
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
