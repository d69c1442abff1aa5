// Package center implements the notification center: it owns the display
// surface and drives every toast through entering, visible, leaving and
// removed on a cooperative clock.
package center

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jmylchreest/toastui/internal/clock"
	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/surface"
	"github.com/jmylchreest/toastui/internal/theme"
)

// entry is a live toast and the element representing it.
type entry struct {
	n  *model.Notification
	el *surface.Element
}

// Center manages toasts on one document. All state changes, including those
// made by timer callbacks, are serialized by mu, and their events reach
// listeners in the same order.
type Center struct {
	mu     sync.Mutex
	doc    *surface.Document
	clock  clock.Clock
	config *config.DaemonConfig
	logger *slog.Logger

	toasts map[string]*entry
	order  []string // live toast ids in insertion order

	// pending holds events in the order their changes were made. Only the
	// goroutine that set dispatching delivers them.
	pending     []Event
	dispatching bool

	listenerMu   sync.RWMutex
	listeners    map[int]Listener
	nextListener int
}

// New creates a center rendering into doc and timed by clk.
func New(doc *surface.Document, clk clock.Clock, cfg *config.DaemonConfig, logger *slog.Logger) *Center {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}
	if doc == nil {
		doc = surface.NewDocument()
	}

	return &Center{
		doc:       doc,
		clock:     clk,
		config:    cfg,
		logger:    logger,
		toasts:    make(map[string]*entry),
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers l for every subsequent event and returns a function
// that removes it.
func (c *Center) Subscribe(l Listener) (unsubscribe func()) {
	c.listenerMu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = l
	c.listenerMu.Unlock()

	return func() {
		c.listenerMu.Lock()
		delete(c.listeners, id)
		c.listenerMu.Unlock()
	}
}

// publishLocked queues events behind those of earlier changes.
// Caller must hold mu and call dispatch once it is released.
func (c *Center) publishLocked(events ...Event) {
	c.pending = append(c.pending, events...)
}

// dispatch delivers queued events. If another goroutine is already
// delivering, it returns and leaves the events to that goroutine, so
// listeners observe changes in the order they were made.
// Must be called without mu held.
func (c *Center) dispatch() {
	c.mu.Lock()
	if c.dispatching {
		c.mu.Unlock()
		return
	}
	c.dispatching = true

	done := false
	defer func() {
		if !done {
			// A listener panicked; drop the backlog so the next change
			// can dispatch again.
			c.mu.Lock()
			c.dispatching = false
			c.pending = nil
			c.mu.Unlock()
		}
	}()

	for len(c.pending) > 0 {
		events := c.pending
		c.pending = nil
		c.mu.Unlock()
		c.deliver(events)
		c.mu.Lock()
	}
	c.dispatching = false
	done = true
	c.mu.Unlock()
}

// deliver calls every listener for each event, in subscription order.
func (c *Center) deliver(events []Event) {
	c.listenerMu.RLock()
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, c.listeners[id])
	}
	c.listenerMu.RUnlock()

	for _, ev := range events {
		for _, l := range listeners {
			l(ev)
		}
	}
}

// UpdateConfig applies new settings. Timings affect toasts created afterwards;
// a position change re-anchors the existing surface and a lower max_visible
// dismisses the oldest toasts at once.
func (c *Center) UpdateConfig(cfg *config.DaemonConfig) {
	if cfg == nil {
		return
	}
	c.mu.Lock()
	c.config = cfg
	if s := c.doc.Surface(); s != nil {
		s.RemoveClass(allSurfacePositionClasses()...)
		s.AddClass(theme.SurfaceClasses(config.Position(cfg.Display.Position))...)
	}
	evicted := c.enforceLimitLocked()
	c.publishLocked(evicted...)
	c.mu.Unlock()

	c.logger.Debug("center config updated",
		"enter_delay", cfg.EnterDelay(),
		"grace", cfg.Grace(),
		"max_visible", cfg.Display.MaxVisible,
		"evicted", len(evicted),
	)
	c.dispatch()
}

// Config returns the settings in effect.
func (c *Center) Config() *config.DaemonConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// EnsureSurface returns the display surface, creating it on first use.
// Repeated calls never create a second surface.
func (c *Center) EnsureSurface() *surface.Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureSurfaceLocked()
}

func (c *Center) ensureSurfaceLocked() *surface.Element {
	s, created := c.doc.EnsureSurface(func(e *surface.Element) {
		e.AddClass(theme.SurfaceClasses(config.Position(c.config.Display.Position))...)
	})
	if created {
		c.logger.Debug("created display surface", "id", surface.SurfaceID)
	}
	return s
}

// View runs fn with the document while no state change can happen.
// fn must not call back into the center.
func (c *Center) View(fn func(doc *surface.Document)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.doc)
}

// Notify shows a toast. A non-positive duration selects the configured
// timeout for the severity and a longer one than model.MaxDuration is
// capped. An unrecognized severity is treated as info.
// Notify never fails; if an id cannot be generated the returned handle is
// inert.
func (c *Center) Notify(message string, sev model.Severity, duration time.Duration) *Toast {
	c.mu.Lock()

	cfg := c.config
	sev = sev.Normalize()
	if duration <= 0 {
		duration = cfg.TimeoutFor(sev)
	}
	duration = min(duration, model.MaxDuration)

	n, err := model.NewNotification(message, sev, duration, c.clock.Now())
	if err != nil {
		c.mu.Unlock()
		c.logger.Error("failed to create toast", "error", err)
		return &Toast{center: c}
	}

	pos := config.Position(cfg.Display.Position)
	el := buildToast(n, pos)
	c.ensureSurfaceLocked().AppendChild(el)

	c.toasts[n.ID] = &entry{n: n, el: el}
	c.order = append(c.order, n.ID)

	c.publishLocked(Event{Type: EventAdded, Toast: n.Clone()})
	c.publishLocked(c.enforceLimitLocked()...)

	id := n.ID
	enter := cfg.EnterDelay()
	c.clock.AfterFunc(enter, func() { c.show(id) })
	c.clock.AfterFunc(max(duration, enter), func() { c.expire(id) })

	c.mu.Unlock()

	c.logger.Debug("toast added",
		"id", id,
		"severity", sev,
		"duration_ms", duration.Milliseconds(),
	)
	c.dispatch()

	return &Toast{center: c, id: id}
}

// Success shows a success toast.
func (c *Center) Success(message string, duration time.Duration) *Toast {
	return c.Notify(message, model.SeveritySuccess, duration)
}

// Error shows an error toast.
func (c *Center) Error(message string, duration time.Duration) *Toast {
	return c.Notify(message, model.SeverityError, duration)
}

// Warning shows a warning toast.
func (c *Center) Warning(message string, duration time.Duration) *Toast {
	return c.Notify(message, model.SeverityWarning, duration)
}

// Info shows an info toast.
func (c *Center) Info(message string, duration time.Duration) *Toast {
	return c.Notify(message, model.SeverityInfo, duration)
}

// enforceLimitLocked dismisses the oldest toasts beyond max_visible.
// Caller must hold the lock.
func (c *Center) enforceLimitLocked() []Event {
	limit := c.config.Display.MaxVisible
	if limit <= 0 {
		return nil
	}

	var events []Event
	for len(c.order) > limit {
		if ev, ok := c.removeLocked(c.order[0], model.RemoveReasonDismissed); ok {
			events = append(events, ev)
		}
	}
	return events
}

// show moves a toast from entering to visible.
func (c *Center) show(id string) {
	c.mu.Lock()
	e, ok := c.toasts[id]
	if !ok || e.n.Transition(model.StateVisible) != nil {
		c.mu.Unlock()
		return
	}
	e.el.RemoveClass(theme.AllHiddenClasses()...)
	e.el.SetAttr(AttrState, e.n.State.String())
	c.publishLocked(Event{Type: EventShown, Toast: e.n.Clone()})
	c.mu.Unlock()

	c.dispatch()
}

// expire moves a visible toast to leaving and schedules its removal.
func (c *Center) expire(id string) {
	c.mu.Lock()
	e, ok := c.toasts[id]
	if !ok || e.n.Transition(model.StateLeaving) != nil {
		c.mu.Unlock()
		return
	}
	e.el.AddClass(theme.HiddenClasses(config.Position(c.config.Display.Position))...)
	e.el.SetAttr(AttrState, e.n.State.String())
	c.publishLocked(Event{Type: EventLeaving, Toast: e.n.Clone()})
	grace := c.config.Grace()
	c.clock.AfterFunc(grace, func() { c.remove(id, model.RemoveReasonExpired) })
	c.mu.Unlock()

	c.logger.Debug("toast leaving", "id", id)
	c.dispatch()
}

func (c *Center) remove(id string, reason model.RemoveReason) bool {
	c.mu.Lock()
	ev, ok := c.removeLocked(id, reason)
	if ok {
		c.publishLocked(ev)
	}
	c.mu.Unlock()

	if ok {
		c.logger.Debug("toast removed", "id", id, "reason", reason)
		c.dispatch()
	}
	return ok
}

// removeLocked detaches a live toast. Caller must hold the lock.
func (c *Center) removeLocked(id string, reason model.RemoveReason) (Event, bool) {
	e, ok := c.toasts[id]
	if !ok || !e.n.MarkRemoved(reason, c.clock.Now()) {
		return Event{}, false
	}
	e.el.Remove()
	delete(c.toasts, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	return Event{Type: EventRemoved, Toast: e.n.Clone()}, true
}

// Dismiss removes a toast immediately, skipping the exit animation.
// It returns false if the toast is unknown or already removed.
func (c *Center) Dismiss(id string) bool {
	return c.remove(id, model.RemoveReasonDismissed)
}

// ClearAll removes every toast from the surface immediately and returns how
// many were live. Pending timers for them become no-ops.
func (c *Center) ClearAll() int {
	c.mu.Lock()
	ids := slices.Clone(c.order)
	for _, id := range ids {
		if ev, ok := c.removeLocked(id, model.RemoveReasonCleared); ok {
			c.publishLocked(ev)
		}
	}
	if s := c.doc.Surface(); s != nil {
		s.RemoveChildren()
	}
	c.publishLocked(Event{Type: EventCleared})
	c.mu.Unlock()

	c.logger.Debug("cleared toasts", "count", len(ids))
	c.dispatch()

	return len(ids)
}

// Active returns snapshots of the live toasts in insertion order.
func (c *Center) Active() []*model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*model.Notification, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.toasts[id].n.Clone())
	}
	return out
}

// Get returns a snapshot of a live toast.
func (c *Center) Get(id string) (*model.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.toasts[id]
	if !ok {
		return nil, false
	}
	return e.n.Clone(), true
}

// Len returns the number of live toasts.
func (c *Center) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Toast is a handle to a notification returned by Notify.
type Toast struct {
	center *Center
	id     string
}

// ID returns the toast id, empty for an inert handle.
func (t *Toast) ID() string {
	return t.id
}

// Dismiss removes the toast immediately. Repeated calls are no-ops.
func (t *Toast) Dismiss() bool {
	if t.id == "" {
		return false
	}
	return t.center.Dismiss(t.id)
}

// State returns the toast's lifecycle state; removed once it has left the
// surface.
func (t *Toast) State() model.State {
	if n, ok := t.center.Get(t.id); ok {
		return n.State
	}
	return model.StateRemoved
}

// Snapshot returns the toast while it is live.
func (t *Toast) Snapshot() (*model.Notification, bool) {
	return t.center.Get(t.id)
}
