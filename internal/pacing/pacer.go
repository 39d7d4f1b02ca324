// Package pacing spaces out calls to rate-limited external services.
package pacing

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/spendboard/internal/dependencies/clock"
)

// DefaultInterval is the minimum gap between Steam store requests
const DefaultInterval = 250 * time.Millisecond

// Pacer enforces a minimum interval between successive dispatches.
// The first Wait returns immediately.
type Pacer struct {
	clock    clock.Clock
	interval time.Duration

	mu   sync.Mutex
	last time.Time
	used bool
}

// New creates a Pacer. A non-positive interval disables pacing.
func New(clk clock.Clock, interval time.Duration) *Pacer {
	return &Pacer{
		clock:    clk,
		interval: interval,
	}
}

// Interval returns the configured minimum gap
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Wait blocks until the next dispatch is allowed or ctx is done. A context
// that is already done never dispatches.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if p.used && p.interval > 0 {
		next := p.last.Add(p.interval)
		if delay := next.Sub(p.clock.Now()); delay > 0 {
			select {
			case <-p.clock.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	p.last = p.clock.Now()
	p.used = true
	return nil
}

// Reset forgets the previous dispatch so the next Wait is immediate
func (p *Pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.used = false
}
