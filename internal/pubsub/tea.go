package pubsub

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd returns a command that yields the next event on ch as a tea.Msg,
// skipping events whose type is not in types (an empty list accepts all).
// The command yields nil once ctx is done or ch is closed.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T], types ...EventType) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-ch:
				if !ok {
					return nil
				}
				if len(types) == 0 || slices.Contains(types, event.Type) {
					return event
				}
			}
		}
	}
}

// ContinuousListener keeps one broker subscription alive across update
// cycles. Re-issue Listen after handling each event.
type ContinuousListener[T any] struct {
	ctx   context.Context
	ch    <-chan Event[T]
	types []EventType
}

// NewContinuousListener subscribes to broker for the lifetime of ctx. When
// types are given only those events are surfaced.
func NewContinuousListener[T any](ctx context.Context, broker *Broker[T], types ...EventType) *ContinuousListener[T] {
	return &ContinuousListener[T]{
		ctx:   ctx,
		ch:    broker.Subscribe(ctx),
		types: types,
	}
}

// Listen returns a command waiting for the next accepted event.
func (l *ContinuousListener[T]) Listen() tea.Cmd {
	return ListenCmd(l.ctx, l.ch, l.types...)
}
