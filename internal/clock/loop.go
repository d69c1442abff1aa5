package clock

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Loop is a real-time Clock backed by a single goroutine.
// All callbacks run serially on that goroutine.
type Loop struct {
	mu     sync.Mutex
	logger *slog.Logger
	seq    uint64
	queue  timerQueue

	wakeCh chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewLoop creates a stopped loop. Call Start to begin dispatching.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		logger: logger,
		wakeCh: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Now returns the wall-clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules fn to run on the loop goroutine after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	l.mu.Lock()
	l.seq++
	l.queue.schedule(time.Now().Add(d), l.seq, fn)
	l.mu.Unlock()

	select {
	case l.wakeCh <- struct{}{}:
	default:
	}
}

// Start begins dispatching callbacks until ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	l.mu.Unlock()

	go l.run(ctx)
	l.logger.Debug("timer loop started")
}

// Stop halts dispatching and waits for the loop goroutine to exit.
// Callbacks still queued are dropped.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.stopCh)
	l.mu.Unlock()

	<-l.doneCh
	l.logger.Debug("timer loop stopped")
}

// Pending returns the number of callbacks not yet run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Len()
}

// run is the dispatch loop.
func (l *Loop) run(ctx context.Context) {
	defer close(l.doneCh)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		l.dispatchDue()

		l.mu.Lock()
		deadline, ok := l.queue.next()
		l.mu.Unlock()

		wait := time.Hour
		if ok {
			wait = max(time.Until(deadline), 0)
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return
		case <-l.stopCh:
			return
		case <-l.wakeCh:
		case <-timer.C:
		}
	}
}

// dispatchDue runs every callback whose deadline has passed.
func (l *Loop) dispatchDue() {
	for {
		l.mu.Lock()
		e := l.queue.popDue(time.Now())
		l.mu.Unlock()
		if e == nil {
			return
		}
		l.invoke(e.fn)
	}
}

// invoke runs fn, keeping the loop alive if it panics.
func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("timer callback panicked", "panic", r)
		}
	}()
	fn()
}
