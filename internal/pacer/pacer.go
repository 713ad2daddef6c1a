// Package pacer spaces out requests to stay under GitHub's secondary rate limits.
//
// The pause is fixed and self-imposed; it does not read rate-limit headers.
// Clocks are injectable so tests can observe pauses without waiting for them.
package pacer

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts the passage of time
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// RealClock is the wall clock
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Sleep blocks for d on clock, returning early with the context error if ctx ends first
func Sleep(ctx context.Context, clock Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(d):
		return nil
	}
}

// Pacer pauses the import pipeline between rows
type Pacer struct {
	pause time.Duration
	clock Clock
}

// New creates a pacer that waits pause on every call to Wait
func New(pause time.Duration, clock Clock) *Pacer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Pacer{pause: pause, clock: clock}
}

// Pause returns the configured pause
func (p *Pacer) Pause() time.Duration {
	return p.pause
}

// Wait suspends the caller for the configured pause
func (p *Pacer) Wait(ctx context.Context) error {
	return Sleep(ctx, p.clock, p.pause)
}

// FakeClock records requested waits and fires immediately.
// Now advances by every duration passed to After.
type FakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

// NewFakeClock creates a fake clock starting at start
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

// Waits returns a copy of every duration waited so far
func (c *FakeClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.waits))
	copy(out, c.waits)
	return out
}
