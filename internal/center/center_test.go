package center

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastui/internal/clock"
	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/surface"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	center *Center
	clock  *clock.Manual
	doc    *surface.Document

	mu     sync.Mutex
	events []Event
}

func newFixture(t *testing.T, cfg *config.DaemonConfig) *fixture {
	t.Helper()
	f := &fixture{
		clock: clock.NewManual(epoch),
		doc:   surface.NewDocument(),
	}
	f.center = New(f.doc, f.clock, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.center.Subscribe(func(ev Event) {
		f.mu.Lock()
		f.events = append(f.events, ev)
		f.mu.Unlock()
	})
	return f
}

func (f *fixture) eventTypes() []EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]EventType, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}

func (f *fixture) attached(t *Toast) bool {
	return f.doc.ElementByID(ElementID(t.ID())) != nil
}

func (f *fixture) children() int {
	s := f.doc.Surface()
	if s == nil {
		return 0
	}
	return s.ChildCount()
}

func TestNotify_DefaultDurations(t *testing.T) {
	tests := []struct {
		sev  model.Severity
		want time.Duration
	}{
		{model.SeveritySuccess, 5000 * time.Millisecond},
		{model.SeverityError, 7000 * time.Millisecond},
		{model.SeverityWarning, 6000 * time.Millisecond},
		{model.SeverityInfo, 5000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.sev.String(), func(t *testing.T) {
			f := newFixture(t, nil)
			toast := f.center.Notify("hello", tt.sev, 0)

			n, ok := toast.Snapshot()
			require.True(t, ok)
			assert.Equal(t, tt.want, n.Duration())
			assert.Equal(t, tt.sev, n.Severity)
		})
	}
}

func TestNotify_Shorthands(t *testing.T) {
	f := newFixture(t, nil)

	cases := map[model.Severity]*Toast{
		model.SeveritySuccess: f.center.Success("a", 0),
		model.SeverityError:   f.center.Error("b", 0),
		model.SeverityWarning: f.center.Warning("c", 0),
		model.SeverityInfo:    f.center.Info("d", 0),
	}
	for sev, toast := range cases {
		n, ok := toast.Snapshot()
		require.True(t, ok)
		assert.Equal(t, sev, n.Severity)
		assert.Equal(t, sev.DefaultDuration(), n.Duration())
	}
}

func TestNotify_UnknownSeverityFallsBackToInfo(t *testing.T) {
	f := newFixture(t, nil)

	toast := f.center.Notify("?", model.Severity(99), 0)

	n, ok := toast.Snapshot()
	require.True(t, ok)
	assert.Equal(t, model.SeverityInfo, n.Severity)
	assert.Equal(t, 5000*time.Millisecond, n.Duration())

	el := f.doc.ElementByID(ElementID(toast.ID()))
	require.NotNil(t, el)
	sev, _ := el.Attr(AttrSeverity)
	assert.Equal(t, "info", sev)
	assert.True(t, el.HasClass("bg-blue-50"))
}

func TestNotify_ExplicitDurationWins(t *testing.T) {
	f := newFixture(t, nil)
	n, _ := f.center.Error("x", 1234*time.Millisecond).Snapshot()
	assert.Equal(t, int64(1234), n.DurationMS)
}

func TestNotify_DurationCapped(t *testing.T) {
	f := newFixture(t, nil)
	n, _ := f.center.Info("x", 72*time.Hour).Snapshot()
	assert.Equal(t, model.MaxDuration.Milliseconds(), n.DurationMS)
}

func TestNotify_ConfiguredTimeouts(t *testing.T) {
	cfg := config.DefaultDaemonConfig()
	cfg.Timeouts.Warning = config.Duration(2 * time.Second)

	f := newFixture(t, cfg)
	n, _ := f.center.Warning("x", 0).Snapshot()
	assert.Equal(t, 2*time.Second, n.Duration())
}

func TestEnsureSurface_Twice(t *testing.T) {
	f := newFixture(t, nil)

	first := f.center.EnsureSurface()
	second := f.center.EnsureSurface()

	assert.Same(t, first, second)
	assert.Equal(t, 1, f.doc.CountByID(surface.SurfaceID))
	assert.True(t, first.HasClass("fixed"))
	assert.True(t, first.HasClass("top-4"))
	assert.True(t, first.HasClass("right-4"))
	assert.True(t, first.HasClass("pointer-events-none"))
}

func TestNotify_AddsOneChildEach(t *testing.T) {
	f := newFixture(t, nil)

	for i := 1; i <= 4; i++ {
		f.center.Info("n", 0)
		assert.Equal(t, i, f.children())
	}
	assert.Equal(t, 1, f.doc.CountByID(surface.SurfaceID))
	assert.Equal(t, 4, f.center.Len())
}

func TestLifecycle_ExpiryAndGrace(t *testing.T) {
	f := newFixture(t, nil)
	const d = 1000 * time.Millisecond

	toast := f.center.Notify("bye", model.SeveritySuccess, d)
	el := f.doc.ElementByID(ElementID(toast.ID()))
	require.NotNil(t, el)

	assert.Equal(t, model.StateEntering, toast.State())
	assert.True(t, el.HasClass("translate-x-full"))
	assert.True(t, el.HasClass("opacity-0"))

	f.clock.Advance(100 * time.Millisecond)
	assert.Equal(t, model.StateVisible, toast.State())
	assert.False(t, el.HasClass("translate-x-full"))
	assert.False(t, el.HasClass("opacity-0"))
	state, _ := el.Attr(AttrState)
	assert.Equal(t, "visible", state)

	f.clock.Advance(d - 100*time.Millisecond - time.Millisecond)
	assert.True(t, f.attached(toast), "still attached at D-1")
	assert.Equal(t, model.StateVisible, toast.State())

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, model.StateLeaving, toast.State())
	assert.True(t, el.HasClass("translate-x-full"))
	assert.True(t, f.attached(toast), "attached during grace")

	f.clock.Advance(299 * time.Millisecond)
	assert.True(t, f.attached(toast))

	f.clock.Advance(time.Millisecond)
	assert.False(t, f.attached(toast), "detached at D+grace")
	assert.Equal(t, model.StateRemoved, toast.State())
	assert.Equal(t, 0, f.clock.Pending())

	assert.Equal(t, []EventType{EventAdded, EventShown, EventLeaving, EventRemoved}, f.eventTypes())
	f.mu.Lock()
	last := f.events[len(f.events)-1].Toast
	f.mu.Unlock()
	assert.Equal(t, model.RemoveReasonExpired, last.Reason)
	assert.Equal(t, epoch.Add(d+300*time.Millisecond), last.RemovedAt)
}

func TestLifecycle_DurationShorterThanEntrance(t *testing.T) {
	f := newFixture(t, nil)

	toast := f.center.Info("quick", 10*time.Millisecond)

	f.clock.Advance(100 * time.Millisecond)
	assert.Equal(t, model.StateLeaving, toast.State(), "entrance precedes expiry")

	f.clock.Advance(300 * time.Millisecond)
	assert.False(t, f.attached(toast))
	assert.Equal(t, []EventType{EventAdded, EventShown, EventLeaving, EventRemoved}, f.eventTypes())
}

func TestDismiss_BeforeExpiry(t *testing.T) {
	f := newFixture(t, nil)
	toast := f.center.Warning("dismiss me", 0)

	f.clock.Advance(500 * time.Millisecond)
	require.True(t, toast.Dismiss())
	assert.False(t, f.attached(toast))
	assert.Equal(t, 0, f.children())

	assert.False(t, toast.Dismiss(), "second dismissal is a no-op")
	assert.False(t, f.center.Dismiss(toast.ID()))

	assert.NotPanics(t, func() { f.clock.Advance(10 * time.Second) })
	assert.Equal(t, 0, f.children())
	assert.Equal(t, []EventType{EventAdded, EventShown, EventRemoved}, f.eventTypes())
}

func TestDismiss_WhileEntering(t *testing.T) {
	f := newFixture(t, nil)
	toast := f.center.Info("x", 0)

	require.True(t, toast.Dismiss())
	f.clock.Advance(time.Minute)

	assert.Equal(t, []EventType{EventAdded, EventRemoved}, f.eventTypes())
}

func TestDismiss_DuringGraceBypassesAnimation(t *testing.T) {
	f := newFixture(t, nil)
	toast := f.center.Info("x", time.Second)

	f.clock.Advance(time.Second)
	require.Equal(t, model.StateLeaving, toast.State())

	require.True(t, toast.Dismiss())
	assert.False(t, f.attached(toast))

	f.clock.Advance(time.Second)
	assert.Equal(t, []EventType{EventAdded, EventShown, EventLeaving, EventRemoved}, f.eventTypes())
}

func TestDismiss_Unknown(t *testing.T) {
	f := newFixture(t, nil)
	assert.False(t, f.center.Dismiss("missing"))
	assert.False(t, (&Toast{center: f.center}).Dismiss())
}

func TestClearAll_FiveToasts(t *testing.T) {
	f := newFixture(t, nil)

	var toasts []*Toast
	for _, sev := range []model.Severity{
		model.SeveritySuccess, model.SeverityError, model.SeverityWarning, model.SeverityInfo, model.SeverityInfo,
	} {
		toasts = append(toasts, f.center.Notify("m", sev, 0))
	}
	f.clock.Advance(100 * time.Millisecond)

	assert.Equal(t, 5, f.center.ClearAll())
	assert.Equal(t, 0, f.children())
	assert.Empty(t, f.center.Active())
	for _, toast := range toasts {
		assert.Equal(t, model.StateRemoved, toast.State())
	}

	before := len(f.eventTypes())
	assert.NotPanics(t, func() { f.clock.Advance(time.Minute) })
	assert.Equal(t, 0, f.children())
	assert.Len(t, f.eventTypes(), before, "stale timers emit nothing")

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, EventCleared, f.events[len(f.events)-1].Type)
	assert.Equal(t, model.RemoveReasonCleared, f.events[len(f.events)-2].Toast.Reason)
}

func TestClearAll_Empty(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, 0, f.center.ClearAll())
	assert.Nil(t, f.doc.Surface(), "clearing never creates the surface")
}

func TestMessage_IsLiteralText(t *testing.T) {
	f := newFixture(t, nil)
	toast := f.center.Error("<b>x</b><script>alert(1)</script>", 0)

	el := f.doc.ElementByID(ElementID(toast.ID()))
	require.NotNil(t, el)

	var message *surface.Element
	el.Walk(func(e *surface.Element) bool {
		if e.Tag == "b" || e.Tag == "script" {
			t.Fatalf("message produced a %s element", e.Tag)
		}
		if role, _ := e.Attr(AttrRole); role == RoleMessage {
			message = e
		}
		return true
	})

	require.NotNil(t, message)
	assert.Equal(t, "<b>x</b><script>alert(1)</script>", message.Text)
	assert.Equal(t, 0, message.ChildCount())
}

func TestToastElement_Structure(t *testing.T) {
	f := newFixture(t, nil)
	toast := f.center.Success("saved", 0)

	el := f.doc.ElementByID(ElementID(toast.ID()))
	require.NotNil(t, el)

	role, _ := el.Attr("role")
	assert.Equal(t, "status", role)
	id, _ := el.Attr(AttrToastID)
	assert.Equal(t, toast.ID(), id)
	assert.True(t, el.HasClass("pointer-events-auto"))
	assert.True(t, el.HasClass("bg-green-50"))

	var button *surface.Element
	el.Walk(func(e *surface.Element) bool {
		if e.Tag == "button" {
			button = e
			return false
		}
		return true
	})
	require.NotNil(t, button)
	target, _ := button.Attr(AttrDismiss)
	assert.Equal(t, toast.ID(), target)

	errToast := f.center.Error("bad", 0)
	role, _ = f.doc.ElementByID(ElementID(errToast.ID())).Attr("role")
	assert.Equal(t, "alert", role)
}

// Saved (default 5000) and Oops (1000) expire at 5300 and 1300; clearing at
// 500 removes both and their timers stay silent.
func TestScenario_ClearAllWhilePending(t *testing.T) {
	t.Run("natural expiry", func(t *testing.T) {
		f := newFixture(t, nil)
		saved := f.center.Notify("Saved", model.ParseSeverity("success"), 0)
		oops := f.center.Notify("Oops", model.ParseSeverity("error"), 1000*time.Millisecond)

		f.clock.Advance(100 * time.Millisecond)
		assert.Equal(t, model.StateVisible, saved.State(), "appears within one animation tick")

		f.clock.Advance(1199 * time.Millisecond)
		assert.True(t, f.attached(oops))
		f.clock.Advance(time.Millisecond)
		assert.False(t, f.attached(oops), "Oops removed at 1300ms")
		assert.True(t, f.attached(saved))

		f.clock.Advance(3999 * time.Millisecond)
		assert.True(t, f.attached(saved))
		f.clock.Advance(time.Millisecond)
		assert.False(t, f.attached(saved), "Saved removed at 5300ms")
	})

	t.Run("clearAll at 500ms", func(t *testing.T) {
		f := newFixture(t, nil)
		saved := f.center.Notify("Saved", model.ParseSeverity("success"), 0)
		oops := f.center.Notify("Oops", model.ParseSeverity("error"), 1000*time.Millisecond)

		f.clock.Advance(500 * time.Millisecond)
		require.Equal(t, 2, f.children())

		f.center.ClearAll()
		assert.False(t, f.attached(saved))
		assert.False(t, f.attached(oops))

		assert.NotPanics(t, func() { f.clock.Advance(10 * time.Second) })
		assert.Equal(t, 0, f.children())
		assert.Empty(t, f.center.Active())
	})
}

func TestMaxVisible_DismissesOldest(t *testing.T) {
	cfg := config.DefaultDaemonConfig()
	cfg.Display.MaxVisible = 2

	f := newFixture(t, cfg)
	first := f.center.Info("1", 0)
	second := f.center.Info("2", 0)
	third := f.center.Info("3", 0)

	assert.False(t, f.attached(first))
	assert.True(t, f.attached(second))
	assert.True(t, f.attached(third))
	assert.Equal(t, 2, f.children())
}

func TestActive_InsertionOrder(t *testing.T) {
	f := newFixture(t, nil)
	a := f.center.Info("a", 0)
	b := f.center.Error("b", 0)
	c := f.center.Success("c", 0)
	b.Dismiss()

	active := f.center.Active()
	require.Len(t, active, 2)
	assert.Equal(t, a.ID(), active[0].ID)
	assert.Equal(t, c.ID(), active[1].ID)

	// Snapshots are copies.
	active[0].Message = "changed"
	n, _ := f.center.Get(a.ID())
	assert.Equal(t, "a", n.Message)
}

func TestUpdateConfig(t *testing.T) {
	f := newFixture(t, nil)
	s := f.center.EnsureSurface()

	cfg := config.DefaultDaemonConfig()
	cfg.Display.Position = string(config.PositionBottomLeft)
	cfg.Animation.Grace = config.Duration(50 * time.Millisecond)
	f.center.UpdateConfig(cfg)

	assert.True(t, s.HasClass("bottom-4"))
	assert.True(t, s.HasClass("left-4"))
	assert.False(t, s.HasClass("top-4"))
	assert.False(t, s.HasClass("right-4"))

	toast := f.center.Info("x", time.Second)
	el := f.doc.ElementByID(ElementID(toast.ID()))
	assert.True(t, el.HasClass("-translate-x-full"))

	f.clock.Advance(time.Second + 50*time.Millisecond)
	assert.False(t, f.attached(toast), "new grace applies")
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	f := newFixture(t, nil)

	count := 0
	unsubscribe := f.center.Subscribe(func(Event) { count++ })
	f.center.Info("a", 0)
	unsubscribe()
	f.center.Info("b", 0)

	assert.Equal(t, 1, count)
}

func TestListener_CanCallCenter(t *testing.T) {
	f := newFixture(t, nil)

	var active int
	f.center.Subscribe(func(ev Event) {
		if ev.Type == EventAdded {
			active = len(f.center.Active())
		}
	})
	f.center.Info("a", 0)
	assert.Equal(t, 1, active)
}

func TestLifecycle_ZeroAnimationKeepsEntrance(t *testing.T) {
	cfg := config.DefaultDaemonConfig()
	cfg.Animation.EnterDelay = 0
	cfg.Animation.Grace = 0

	f := newFixture(t, cfg)
	toast := f.center.Info("x", time.Second)

	f.clock.Advance(0)
	assert.Equal(t, model.StateEntering, toast.State(), "entrance is never skipped")
	assert.Equal(t, []EventType{EventAdded}, f.eventTypes())

	f.clock.Advance(config.DefaultEnterDelay)
	assert.Equal(t, model.StateVisible, toast.State())

	f.clock.Advance(time.Second - config.DefaultEnterDelay)
	assert.Equal(t, model.StateLeaving, toast.State())

	f.clock.Advance(config.DefaultGrace - time.Millisecond)
	assert.True(t, f.attached(toast), "grace is never skipped")

	f.clock.Advance(time.Millisecond)
	assert.False(t, f.attached(toast))
	assert.Equal(t, []EventType{EventAdded, EventShown, EventLeaving, EventRemoved}, f.eventTypes())
}

func TestListener_ReentrantEventsKeepOrder(t *testing.T) {
	f := newFixture(t, nil)

	f.center.Subscribe(func(ev Event) {
		if ev.Type == EventAdded {
			f.center.Dismiss(ev.Toast.ID)
		}
	})

	var mu sync.Mutex
	var seen []EventType
	f.center.Subscribe(func(ev Event) {
		mu.Lock()
		seen = append(seen, ev.Type)
		mu.Unlock()
	})

	f.center.Info("a", 0)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventType{EventAdded, EventRemoved}, seen)
	assert.Equal(t, []EventType{EventAdded, EventRemoved}, f.eventTypes())
}

func TestListener_OrderAcrossGoroutines(t *testing.T) {
	cfg := config.DefaultDaemonConfig()
	cfg.Animation.EnterDelay = config.Duration(time.Millisecond)
	cfg.Animation.Grace = config.Duration(time.Millisecond)

	loop := clock.NewLoop(slog.New(slog.NewTextHandler(io.Discard, nil)))
	loop.Start(context.Background())
	defer loop.Stop()

	c := New(nil, loop, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var mu sync.Mutex
	byToast := make(map[string][]EventType)
	c.Subscribe(func(ev Event) {
		if ev.Toast == nil {
			return
		}
		mu.Lock()
		byToast[ev.Toast.ID] = append(byToast[ev.Toast.ID], ev.Type)
		mu.Unlock()
	})

	var removed int
	c.Subscribe(func(ev Event) {
		if ev.Type == EventRemoved {
			mu.Lock()
			removed++
			mu.Unlock()
		}
	})

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				c.Info(fmt.Sprintf("%d-%d", w, i), 2*time.Millisecond)
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return removed == workers*perWorker
	}, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, c.Len())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, byToast, workers*perWorker)
	want := []EventType{EventAdded, EventShown, EventLeaving, EventRemoved}
	for id, got := range byToast {
		assert.Equal(t, want, got, "toast %s", id)
	}
}

func TestUpdateConfig_LowerMaxVisibleEvicts(t *testing.T) {
	tests := []struct {
		name       string
		maxVisible int
		wantLive   int
	}{
		{"one", 1, 1},
		{"two", 2, 2},
		{"above count", 5, 3},
		{"unlimited", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			toasts := []*Toast{
				f.center.Info("1", 0),
				f.center.Info("2", 0),
				f.center.Info("3", 0),
			}

			cfg := config.DefaultDaemonConfig()
			cfg.Display.MaxVisible = tt.maxVisible
			f.center.UpdateConfig(cfg)

			assert.Equal(t, tt.wantLive, f.center.Len())
			assert.Equal(t, tt.wantLive, f.children())
			evicted := len(toasts) - tt.wantLive
			for i, toast := range toasts {
				assert.Equal(t, i >= evicted, f.attached(toast), "toast %d", i+1)
			}

			f.mu.Lock()
			var removed []Event
			for _, ev := range f.events {
				if ev.Type == EventRemoved {
					removed = append(removed, ev)
				}
			}
			f.mu.Unlock()
			require.Len(t, removed, evicted)
			for i, ev := range removed {
				assert.Equal(t, toasts[i].ID(), ev.Toast.ID)
				assert.Equal(t, model.RemoveReasonDismissed, ev.Toast.Reason)
			}
		})
	}
}
