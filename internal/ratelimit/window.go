// Package ratelimit provides a per-minute request budget shared by all
// generation workers talking to one image provider.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/imajus/ember-nft/internal/adapter"
)

// windowLength is the budget reset interval
const windowLength = time.Minute

// UsageStats is a snapshot of the current window
type UsageStats struct {
	// Used is the number of requests consumed in the current window
	Used int
	// Budget is the per-window request allowance
	Budget int
	// Remaining is the unused allowance in the current window
	Remaining int
	// ResetsIn is how long until the window resets
	ResetsIn time.Duration
}

// Limiter gates outbound provider requests
//
//go:generate mockgen -source=window.go -destination=../mocks/ratelimit.go -package=mocks -mock_names=Limiter=MockLimiter
type Limiter interface {
	// Acquire blocks until a request slot is available or the context is
	// cancelled. It never rejects.
	Acquire(ctx context.Context) error

	// UsageStats returns a snapshot of the current window
	UsageStats() UsageStats
}

// Window is a sliding per-minute budget limiter. Callers past the budget
// block until the window resets.
type Window struct {
	mu          sync.Mutex
	clock       adapter.Clock
	budget      int
	used        int
	windowStart time.Time
}

// NewWindow creates a limiter allowing budget requests per minute
func NewWindow(budget int, clock adapter.Clock) *Window {
	return &Window{
		clock:       clock,
		budget:      budget,
		windowStart: clock.Now(),
	}
}

// Acquire blocks until a request slot is available or the context is
// cancelled
func (w *Window) Acquire(ctx context.Context) error {
	for {
		w.mu.Lock()
		now := w.clock.Now()
		if now.Sub(w.windowStart) >= windowLength {
			w.windowStart = now
			w.used = 0
		}

		if w.used < w.budget {
			w.used++
			w.mu.Unlock()
			return nil
		}

		wait := windowLength - now.Sub(w.windowStart)
		w.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.clock.After(wait):
		}
	}
}

// UsageStats returns a snapshot of the current window
func (w *Window) UsageStats() UsageStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.clock.Now()
	used := w.used
	resetsIn := windowLength - now.Sub(w.windowStart)
	if resetsIn <= 0 {
		used = 0
		resetsIn = 0
	}

	return UsageStats{
		Used:      used,
		Budget:    w.budget,
		Remaining: w.budget - used,
		ResetsIn:  resetsIn,
	}
}
