// Package dispatcher fans notification intents out to delivery handlers after
// the transition that produced them has committed. Delivery is best effort:
// a failing handler is logged and never undoes the transition.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/garyjia/leave-approval/internal/domain/notification"
)

// Dispatcher routes intents to registered handlers
type Dispatcher interface {
	// Subscribe registers a handler for an intent type
	Subscribe(intentType notification.Type, handler Handler)

	// SubscribeNamed registers a handler with a name for debugging
	SubscribeNamed(intentType notification.Type, name string, handler Handler)

	// Dispatch runs every handler in order and returns the first error.
	// Later handlers still run when an earlier one fails.
	Dispatch(ctx context.Context, intent *notification.Intent) error

	// DispatchAsync runs handlers in the background and only logs failures
	DispatchAsync(ctx context.Context, intent *notification.Intent)

	// ListHandlers returns registered handlers for an intent type
	ListHandlers(intentType notification.Type) []HandlerInfo

	// Close stops accepting intents and waits for async handlers
	Close() error
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// mu guards handlers and closed; wg.Add only happens under mu so Close
// never waits while an async dispatch is still registering goroutines.
type intentDispatcher struct {
	mu       sync.RWMutex
	handlers map[notification.Type][]HandlerInfo
	closed   bool
	logger   Logger

	wg sync.WaitGroup
}

// Option configures the dispatcher
type Option func(*intentDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *intentDispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a new intent dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &intentDispatcher{
		handlers: make(map[notification.Type][]HandlerInfo),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Subscribe registers a handler with an auto-generated name
func (d *intentDispatcher) Subscribe(intentType notification.Type, handler Handler) {
	d.mu.RLock()
	name := fmt.Sprintf("handler-%d", len(d.handlers[intentType]))
	d.mu.RUnlock()
	d.SubscribeNamed(intentType, name, handler)
}

func (d *intentDispatcher) SubscribeNamed(intentType notification.Type, name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[intentType] = append(d.handlers[intentType], HandlerInfo{
		Name:    name,
		Type:    intentType,
		Handler: handler,
	})

	if d.logger != nil {
		d.logger.Info("Handler registered",
			"intent_type", intentType,
			"handler_name", name,
		)
	}
}

func (d *intentDispatcher) Dispatch(ctx context.Context, intent *notification.Intent) error {
	if intent == nil {
		return nil
	}
	handlers, ok := d.snapshot(intent.Type)
	if !ok {
		return fmt.Errorf("dispatcher is closed")
	}

	if d.logger != nil {
		d.logger.Info("Dispatching intent",
			"intent_type", intent.Type,
			"intent_id", intent.ID,
			"request_id", intent.RequestID,
			"handler_count", len(handlers),
		)
	}

	var firstErr error
	for _, info := range handlers {
		if err := d.safeExecute(ctx, intent, info); err != nil {
			d.logHandlerError("Handler error", intent, info, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("handler %s failed: %w", info.Name, err)
			}
		}
	}

	return firstErr
}

func (d *intentDispatcher) DispatchAsync(ctx context.Context, intent *notification.Intent) {
	if intent == nil {
		return
	}
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		if d.logger != nil {
			d.logger.Error("Cannot dispatch async intent, dispatcher is closed",
				"intent_type", intent.Type,
				"intent_id", intent.ID,
			)
		}
		return
	}
	handlers := append([]HandlerInfo(nil), d.handlers[intent.Type]...)
	d.wg.Add(len(handlers))
	d.mu.RUnlock()

	if d.logger != nil {
		d.logger.Info("Dispatching intent asynchronously",
			"intent_type", intent.Type,
			"intent_id", intent.ID,
			"handler_count", len(handlers),
		)
	}

	// the request context ends with the HTTP response; delivery must outlive it
	bg := context.WithoutCancel(ctx)
	for _, info := range handlers {
		go func(h HandlerInfo) {
			defer d.wg.Done()
			if err := d.safeExecute(bg, intent, h); err != nil {
				d.logHandlerError("Async handler error", intent, h, err)
			}
		}(info)
	}
}

func (d *intentDispatcher) ListHandlers(intentType notification.Type) []HandlerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	handlers := d.handlers[intentType]
	result := make([]HandlerInfo, len(handlers))
	for i, h := range handlers {
		result[i] = HandlerInfo{
			Name:        h.Name,
			Type:        h.Type,
			Description: h.Description,
		}
	}

	return result
}

func (d *intentDispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return fmt.Errorf("dispatcher already closed")
	}
	d.closed = true
	d.mu.Unlock()

	if d.logger != nil {
		d.logger.Info("Closing dispatcher, waiting for async handlers")
	}

	d.wg.Wait()

	if d.logger != nil {
		d.logger.Info("Dispatcher closed")
	}

	return nil
}

// snapshot copies the handlers for a type; ok is false once the dispatcher is closed
func (d *intentDispatcher) snapshot(intentType notification.Type) ([]HandlerInfo, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, false
	}
	return append([]HandlerInfo(nil), d.handlers[intentType]...), true
}

func (d *intentDispatcher) logHandlerError(msg string, intent *notification.Intent, info HandlerInfo, err error) {
	if d.logger == nil {
		return
	}
	d.logger.Error(msg,
		"intent_type", intent.Type,
		"intent_id", intent.ID,
		"request_id", intent.RequestID,
		"handler_name", info.Name,
		"error", err,
	)
}

// safeExecute runs a handler with panic recovery
func (d *intentDispatcher) safeExecute(ctx context.Context, intent *notification.Intent, info HandlerInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			if d.logger != nil {
				d.logger.Error("Handler panic recovered",
					"intent_type", intent.Type,
					"intent_id", intent.ID,
					"handler_name", info.Name,
					"panic", r,
				)
			}
		}
	}()

	return info.Handler(ctx, intent)
}
