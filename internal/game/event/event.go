// Package event carries completed-action notifications to observers.
package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Action names published on the bus.
const (
	Conjure     = "conjure"
	Unload      = "unload"
	Consolidate = "consolidate"
	Reload      = "reload"
	Fire        = "fire"
)

// Action records that an action was applied for an actor.
type Action struct {
	Name     string
	ActorID  string
	WeaponID string
	At       time.Time
}

// Handler observes a published Action. A returned error is logged and
// otherwise ignored.
type Handler func(ctx context.Context, a Action) error

// Bus fans Actions out to subscribers in subscription order.
//
// Bus is safe for concurrent use. Delivery is best effort: a failing or
// panicking handler does not stop delivery to the others.
type Bus struct {
	mu       sync.RWMutex
	handlers []named
	logger   *zap.Logger
}

type named struct {
	name string
	fn   Handler
}

// NewBus creates an empty Bus.
//
// Precondition: logger must be non-nil.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		panic("event: NewBus: logger must not be nil")
	}
	return &Bus{logger: logger}
}

// Subscribe registers fn under name.
//
// Precondition: fn must not be nil.
func (b *Bus) Subscribe(name string, fn Handler) {
	if fn == nil {
		panic("event: Bus.Subscribe: handler must not be nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, named{name: name, fn: fn})
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Publish delivers a to every subscriber once.
//
// Postcondition: every handler has been called exactly once; failures are
// logged at Warn.
func (b *Bus) Publish(ctx context.Context, a Action) {
	b.mu.RLock()
	handlers := make([]named, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := deliver(ctx, h.fn, a); err != nil {
			b.logger.Warn("event handler failed",
				zap.String("handler", h.name),
				zap.String("action", a.Name),
				zap.String("actor", a.ActorID),
				zap.Error(err),
			)
		}
	}
}

func deliver(ctx context.Context, fn Handler, a Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, a)
}
