package clock

import (
	"sync"
	"time"
)

// Manual is a Clock whose time only moves when Advance is called.
// It is used by tests and by the scripted demo.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	queue timerQueue
}

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules fn to run when the clock reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	m.seq++
	m.queue.schedule(m.now.Add(d), m.seq, fn)
	m.mu.Unlock()
}

// Advance moves the clock forward by d, running every callback that becomes
// due in deadline order. Callbacks scheduled by callbacks run too if they fall
// inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		e := m.queue.popDue(target)
		if e == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		if e.deadline.After(m.now) {
			m.now = e.deadline
		}
		m.mu.Unlock()

		// Run outside the lock so the callback may schedule more work.
		e.fn()
	}
}

// Pending returns the number of callbacks not yet run.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}
