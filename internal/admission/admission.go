// Package admission implements the session admission counter that
// caps concurrent connections, as spec.md §4.E describes. Adapted from
// the Rust Limit type in original_source/backend/src/limit.rs.
package admission

import (
	"fmt"
	"sync"
)

// DefaultMax is the session cap applied when no override is configured,
// matching the Rust CLI default in original_source/backend/src/cli.rs.
const DefaultMax = 15

// Counter tracks how many sessions currently hold an admission token.
// Safe for concurrent use; every accepted session owns exactly one
// Token and must Release it exactly once.
type Counter struct {
	mu    sync.Mutex
	count int
	max   int
}

// New creates a Counter with the given cap. A non-positive max falls
// back to DefaultMax.
func New(max int) *Counter {
	if max <= 0 {
		max = DefaultMax
	}

	return &Counter{max: max}
}

// Token represents one admitted session's claim on the counter. Go has
// no RAII/Drop, so Release is guarded with sync.Once: calling it twice
// (e.g. once from a deferred cleanup and once from an explicit error
// path) decrements the counter only once.
type Token struct {
	once sync.Once
	c    *Counter
}

// TryAcquire admits one more session if the counter has room, returning
// a Token to release later. ok is false if the cap is already reached.
func (c *Counter) TryAcquire() (*Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count >= c.max {
		return nil, false
	}

	c.count++

	return &Token{c: c}, true
}

// Release returns the token's slot to the counter. Idempotent.
func (t *Token) Release() {
	t.once.Do(func() {
		t.c.mu.Lock()
		defer t.c.mu.Unlock()

		if t.c.count > 0 {
			t.c.count--
		}
	})
}

// Count reports the number of currently admitted sessions.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.count
}

// Max reports the configured cap.
func (c *Counter) Max() int {
	return c.max
}

// String renders the counter the way the Rust Limit's Display does:
// "count/max" — used in admission logging.
func (c *Counter) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return fmt.Sprintf("%d/%d", c.count, c.max)
}
