package events

import (
	"log"
	"sync"
)

// Event is a run lifecycle event dispatched to observers (progress updates,
// run completion, surfaced notices).
type Event struct {
	// Type is the event type (e.g., "run:progress", "run:done", "run:notice").
	Type string

	// RunID identifies the worker run this event belongs to.
	RunID string

	// Stage is a short label for the current stage ("fetch", "aggregate", "plan").
	Stage string

	// Fraction is the completed fraction of the run, in [0, 1].
	Fraction float64

	// Notice carries the notice payload for "run:notice" events.
	Notice *Notice
}

// Observer receives dispatched events.
type Observer interface {
	// OnEvent is called for each dispatched event.
	OnEvent(event Event) error

	// Name returns a human-readable observer name for logging.
	Name() string

	// ShouldHandle filters event types this observer cares about.
	ShouldHandle(eventType string) bool
}

// Dispatcher fans events out to registered observers. Safe for concurrent use.
type Dispatcher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register adds an observer. It will see all future events it opts into.
func (d *Dispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, observer)
}

// Unregister removes a previously registered observer.
func (d *Dispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, obs := range d.observers {
		if obs == observer {
			d.observers[i] = d.observers[len(d.observers)-1]
			d.observers = d.observers[:len(d.observers)-1]
			return
		}
	}
}

// Dispatch notifies observers sequentially in registration order. Observer
// errors are logged and do not stop dispatch to the remaining observers.
func (d *Dispatcher) Dispatch(event Event) {
	d.mu.RLock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	d.mu.RUnlock()

	for _, observer := range observers {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		if err := observer.OnEvent(event); err != nil {
			log.Printf("[Dispatcher] Observer %s failed to handle event %s: %v",
				observer.Name(), event.Type, err)
		}
	}
}

// ObserverCount returns the number of registered observers.
func (d *Dispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}
