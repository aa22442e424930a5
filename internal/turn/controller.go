// Package turn holds the pending-turn bookkeeping shared by the engines:
// at most one turn awaits a decision at a time, and starting a new one
// releases the previous waiter with a cancellation value.
package turn

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/flexigpt/turnblock-go/spec"
)

// Pending is one in-flight turn.
type Pending[T any] struct {
	ID  spec.TurnID
	fut *Future[T]
}

// Done is closed once the turn has been resolved or cancelled.
func (p *Pending[T]) Done() <-chan struct{} { return p.fut.Done() }

type Controller[T any] struct {
	mu      sync.Mutex
	pending *Pending[T]
	closed  bool

	cancelled T
	logger    *slog.Logger
}

// NewController returns a controller that releases superseded turns with
// the value cancelled.
func NewController[T any](cancelled T, logger *slog.Logger) *Controller[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[T]{cancelled: cancelled, logger: logger}
}

// Begin opens a new pending turn. A turn that is still pending is resolved
// with the cancellation value first; superseded reports whether that
// happened. After Close the returned turn is already cancelled.
func (c *Controller[T]) Begin() (p *Pending[T], superseded bool) {
	p = &Pending[T]{
		ID:  spec.TurnID(uuid.Must(uuid.NewV7()).String()),
		fut: NewFuture[T](),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		p.fut.Resolve(c.cancelled)
		return p, false
	}
	if prev := c.pending; prev != nil {
		prev.fut.Resolve(c.cancelled)
		superseded = true
		c.logger.Info("turn superseded", "turn", prev.ID, "next", p.ID)
	}
	c.pending = p
	return p, superseded
}

// Current returns the id of the pending turn, if any.
func (c *Controller[T]) Current() (spec.TurnID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return "", false
	}
	return c.pending.ID, true
}

// Settle resolves turn id with the value produced by settle, but only when
// id is still the pending turn. The turn is claimed under the lock and
// settle runs after it is released, so settle may call back into the
// controller. A concurrent Begin cannot cancel a claimed turn.
func (c *Controller[T]) Settle(id spec.TurnID, settle func() T) bool {
	c.mu.Lock()
	p := c.pending
	if p == nil || p.ID != id {
		c.mu.Unlock()
		c.logger.Debug("stale turn decision ignored", "turn", id)
		return false
	}
	c.pending = nil
	c.mu.Unlock()

	p.fut.Resolve(settle())
	return true
}

// Resolve is Settle with a fixed value.
func (c *Controller[T]) Resolve(id spec.TurnID, v T) bool {
	return c.Settle(id, func() T { return v })
}

// Cancel releases the pending turn, if any, with the cancellation value.
func (c *Controller[T]) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return false
	}
	c.pending.fut.Resolve(c.cancelled)
	c.logger.Debug("turn cancelled", "turn", c.pending.ID)
	c.pending = nil
	return true
}

// Close cancels the pending turn and makes every later Begin return a turn
// that is already cancelled.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.pending != nil {
		c.pending.fut.Resolve(c.cancelled)
		c.pending = nil
	}
}

// Await blocks until p is resolved or cancelled. When ctx ends first the
// turn is cancelled so that it cannot be answered afterwards.
func (c *Controller[T]) Await(ctx context.Context, p *Pending[T]) (T, error) {
	v, err := p.fut.Wait(ctx)
	if err == nil {
		return v, nil
	}

	c.mu.Lock()
	if c.pending == p {
		p.fut.Resolve(c.cancelled)
		c.pending = nil
	}
	c.mu.Unlock()

	var zero T
	return zero, err
}
