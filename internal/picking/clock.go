package picking

import (
	"sync"
	"sync/atomic"
	"time"
)

// sessionClock counts elapsed whole seconds while a session is active. It is
// display-only and has no effect on allocation. The ticking goroutine is
// stopped via Stop so a finished session never leaks a timer.
type sessionClock struct {
	elapsed atomic.Int64
	stop    chan struct{}
	once    sync.Once
}

func newSessionClock() *sessionClock {
	return &sessionClock{stop: make(chan struct{})}
}

func (c *sessionClock) start() {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				c.elapsed.Add(1)
			}
		}
	}()
}

// Stop halts the clock. Safe to call more than once.
func (c *sessionClock) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Elapsed returns the seconds counted so far.
func (c *sessionClock) Elapsed() int64 {
	return c.elapsed.Load()
}
