// Package progresstest provides a hand-driven clock for progress schedules.
package progresstest

import (
	"sync"
	"time"

	"studykit/internal/progress"
)

// ManualTicker fires only when Tick is called.
type ManualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

// NewManualTicker creates a new ManualTicker instance.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{
		ch:      make(chan time.Time),
		stopped: make(chan struct{}),
	}
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }

func (m *ManualTicker) Stop() {
	m.once.Do(func() { close(m.stopped) })
}

// Tick delivers one tick. It returns false if the ticker was stopped first.
func (m *ManualTicker) Tick() bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-m.stopped:
		return false
	}
}

// Stopped is closed when the consumer stopped the ticker.
func (m *ManualTicker) Stopped() <-chan struct{} {
	return m.stopped
}

// WaitStopped reports whether the ticker is stopped within timeout.
func (m *ManualTicker) WaitStopped(timeout time.Duration) bool {
	select {
	case <-m.stopped:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Clock hands out a ManualTicker per started task.
type Clock struct {
	mu      sync.Mutex
	tickers []*ManualTicker
}

// NewTicker satisfies progress.TickerFunc.
func (c *Clock) NewTicker(time.Duration) progress.Ticker {
	t := NewManualTicker()
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// Last returns the ticker of the most recently started task.
func (c *Clock) Last() *ManualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

// Count returns how many tickers were created.
func (c *Clock) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}
