package events

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// ===============================
// EVENT INTERFACE
// ===============================

// Event represents a domain event
type Event interface {
	GetEventID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetUserID() *int64
}

// BaseEvent provides common event functionality
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	UserID    *int64    `json:"user_id,omitempty"`
}

// GetEventID returns the event ID
func (e *BaseEvent) GetEventID() string { return e.EventID }

// GetEventType returns the event type
func (e *BaseEvent) GetEventType() string { return e.EventType }

// GetTimestamp returns the event timestamp
func (e *BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// GetUserID returns the user ID associated with the event
func (e *BaseEvent) GetUserID() *int64 { return e.UserID }

// NewBaseEvent builds the common envelope for a domain event.
func NewBaseEvent(eventType string, userID int64) BaseEvent {
	id, _ := uuid.NewV4()
	return BaseEvent{
		EventID:   id.String(),
		EventType: eventType,
		Timestamp: time.Now(),
		UserID:    &userID,
	}
}

// ===============================
// EVENT BUS
// ===============================

// Handler consumes one event; errors are logged, never propagated to
// the publisher.
type Handler func(ctx context.Context, event Event) error

// EventBus is a process-local publish/subscribe fan-out. Publishing is
// fire-and-forget: a slow or failing subscriber never blocks the
// award path.
type EventBus interface {
	Publish(ctx context.Context, event Event)
	Subscribe(eventType string, handler Handler)
	Close()
}

type eventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
	closed   bool
	logger   *zap.Logger
}

// NewEventBus creates an in-memory event bus.
func NewEventBus(logger *zap.Logger) EventBus {
	return &eventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

func (b *eventBus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func (b *eventBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	handlers := b.handlers[event.GetEventType()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		h := handler
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			// Detach from the request context so in-flight handlers
			// survive the caller returning.
			if err := h(context.WithoutCancel(ctx), event); err != nil {
				b.logger.Warn("Event handler failed",
					zap.String("event_type", event.GetEventType()),
					zap.String("event_id", event.GetEventID()),
					zap.Error(err),
				)
			}
		}()
	}
}

// Close waits for in-flight handlers to finish.
func (b *eventBus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
}
