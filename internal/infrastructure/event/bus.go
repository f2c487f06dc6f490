package event

import (
	"context"
	"sync"
	"time"

	"github.com/loanbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	defaultBufferSize  = 256
	defaultHandlerWait = 5 * time.Second
)

// Config tunes the in-memory bus dispatch behavior
type Config struct {
	// BufferSize is the capacity of the dispatch queue. Publish blocks
	// once the queue is full.
	BufferSize int
	// HandlerWait bounds how long Stop waits for in-flight handlers to
	// drain before giving up.
	HandlerWait time.Duration
}

// InMemoryEventBus dispatches domain events to registered handlers from a
// single background goroutine. Before Start (and after Stop) events are
// dispatched synchronously on the caller's goroutine, which keeps unit
// tests deterministic.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	cfg      Config

	mu      sync.RWMutex
	queue   chan shared.DomainEvent
	running bool
	done    chan struct{}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(cfg Config, logger *zap.Logger) *InMemoryEventBus {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.HandlerWait <= 0 {
		cfg.HandlerWait = defaultHandlerWait
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
		cfg:      cfg,
	}
}

// Publish hands events to the dispatch queue, or dispatches them inline
// when the bus is not running. Handler failures are logged, never returned:
// event delivery is best effort and must not fail the publishing operation.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	running := b.running
	queue := b.queue
	b.mu.RUnlock()

	for _, ev := range events {
		if !running {
			b.dispatch(ctx, ev)
			continue
		}
		select {
		case queue <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types. With no explicit
// types the handler's own EventTypes decide; an empty result subscribes it
// to every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start launches the background dispatcher
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil
	}
	b.queue = make(chan shared.DomainEvent, b.cfg.BufferSize)
	b.done = make(chan struct{})
	b.running = true

	go func(queue chan shared.DomainEvent, done chan struct{}) {
		defer close(done)
		for ev := range queue {
			b.dispatch(context.Background(), ev)
		}
	}(b.queue, b.done)

	b.logger.Info("event bus started", zap.Int("buffer_size", b.cfg.BufferSize))
	return nil
}

// Stop closes the queue and waits up to HandlerWait for the dispatcher to
// drain the remaining events
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.queue)
	done := b.done
	b.mu.Unlock()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-time.After(b.cfg.HandlerWait):
		b.logger.Warn("event bus stopped before draining all events",
			zap.Duration("handler_wait", b.cfg.HandlerWait))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch delivers one event to every interested handler
func (b *InMemoryEventBus) dispatch(ctx context.Context, ev shared.DomainEvent) {
	for _, handler := range b.registry.GetHandlers(ev.EventType()) {
		if err := b.dispatchToHandler(ctx, handler, ev); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", ev.EventType()),
				zap.String("event_id", ev.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

// dispatchToHandler isolates handler panics so one bad handler cannot take
// down the dispatcher
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", ev.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler.Handle(ctx, ev)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
