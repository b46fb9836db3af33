// api/util/event_bus.go

package util

import (
	"context"
	"sync"

	"go.uber.org/zap"

	logger "github.com/supplysight/sentinel/logging"
)

// Directory mutation events. Payloads are the mutated entity's ID.
const (
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
	EventPersonaUpdated = "persona.updated"
	EventPersonaDeleted = "persona.deleted"
)

// Event is a directory mutation notice.
type Event struct {
	Type    string
	Payload interface{}
}

// EventHandler consumes one event. Handlers run on their own goroutine;
// a slow handler delays nothing but itself.
type EventHandler func(context.Context, Event) error

// EventBus decouples directory mutations from their side effects, chiefly
// permission cache invalidation. Delivery is asynchronous and best-effort:
// a handler error is logged, never retried, because invalidation staleness
// is already bounded by the cache TTL.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]EventHandler
	errs        chan error
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]EventHandler),
		errs:        make(chan error, 100),
	}
}

// Subscribe registers a handler for an event type. Not safe to call after
// Publish has started racing it from request handlers; wire subscriptions
// during startup.
func (eb *EventBus) Subscribe(eventType string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
}

// Publish fans the event out to every subscriber of its type.
func (eb *EventBus) Publish(ctx context.Context, eventType string, payload interface{}) {
	eb.mu.RLock()
	handlers := eb.subscribers[eventType]
	eb.mu.RUnlock()

	event := Event{Type: eventType, Payload: payload}
	for _, handler := range handlers {
		go func(h EventHandler) {
			err := h(ctx, event)
			if err == nil {
				return
			}
			select {
			case eb.errs <- err:
			default:
				logger.Error("Event handler failed (error queue full)",
					zap.Error(err),
					zap.String("eventType", eventType))
			}
		}(handler)
	}
}

// Start launches the error drain. It stops when ctx is cancelled.
func (eb *EventBus) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case err := <-eb.errs:
				logger.Error("Event handler failed", zap.Error(err))
			case <-ctx.Done():
				return
			}
		}
	}()
}
