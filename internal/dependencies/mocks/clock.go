package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/spendboard/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time

	// Waits records every duration requested through After
	Waits []time.Duration
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// After advances the clock by d and fires immediately, so no real time elapses
func (c *MockClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.Waits = append(c.Waits, d)
	c.CurrentTime = c.CurrentTime.Add(d)
	now := c.CurrentTime
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = t
}

// WaitCount returns how many times After was called
func (c *MockClock) WaitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Waits)
}
