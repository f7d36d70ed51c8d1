package pubsub

import "sync"

// Observers is an ordered list of synchronous callbacks. Unlike Broker, every
// registered callback sees every event, on the publishing goroutine, before
// Notify returns.
type Observers[T any] struct {
	mu     sync.Mutex
	nextID int
	fns    []observer[T]
}

type observer[T any] struct {
	id int
	fn func(Event[T])
}

// Add registers fn and returns a func that removes it.
func (o *Observers[T]) Add(fn func(Event[T])) (remove func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	id := o.nextID
	o.fns = append(o.fns, observer[T]{id: id, fn: fn})
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, ob := range o.fns {
			if ob.id == id {
				o.fns = append(o.fns[:i:i], o.fns[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every observer in registration order.
func (o *Observers[T]) Notify(eventType EventType, payload T) {
	o.Deliver(NewEvent(eventType, payload))
}

// Deliver hands an already stamped event to every observer.
func (o *Observers[T]) Deliver(event Event[T]) {
	o.mu.Lock()
	fns := append([]observer[T](nil), o.fns...)
	o.mu.Unlock()

	for _, ob := range fns {
		ob.fn(event)
	}
}

// Len returns the number of registered observers.
func (o *Observers[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.fns)
}
