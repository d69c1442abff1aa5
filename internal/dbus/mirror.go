package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastui/internal/center"
	"github.com/jmylchreest/toastui/internal/model"
)

// callTimeout bounds each call to the notification daemon. Mirror calls run
// on the center's timer goroutine.
const callTimeout = 2 * time.Second

// caller is the part of dbus.BusObject the mirror needs.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

// Dismisser removes a toast by id.
type Dismisser interface {
	Dismiss(id string) bool
}

// Mirror copies toasts to the desktop notification daemon. Each toast is
// shown with Notify and closed with CloseNotification when it leaves the
// surface; a desktop popup the user dismisses dismisses its toast.
type Mirror struct {
	mu      sync.Mutex
	conn    *dbus.Conn
	obj     caller
	logger  *slog.Logger
	appName string
	target  Dismisser

	desktopIDs map[string]uint32 // toast id -> desktop id
	toastIDs   map[uint32]string // desktop id -> toast id
	inflight   map[string]bool   // toast id -> still live while Notify runs

	signals chan *dbus.Signal
	done    chan struct{}
}

// NewMirror creates a mirror that dismisses toasts on target.
func NewMirror(appName string, target Dismisser, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	if appName == "" {
		appName = "toastui"
	}
	return &Mirror{
		logger:     logger,
		appName:    appName,
		target:     target,
		desktopIDs: make(map[string]uint32),
		toastIDs:   make(map[uint32]string),
		inflight:   make(map[string]bool),
		done:       make(chan struct{}),
	}
}

// Connect joins the session bus and starts listening for NotificationClosed.
func (m *Mirror) Connect() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
		dbus.WithMatchMember("NotificationClosed"),
	); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to subscribe to NotificationClosed: %w", err)
	}

	m.mu.Lock()
	m.conn = conn
	m.obj = conn.Object(DBusBusName, DBusPath)
	m.signals = make(chan *dbus.Signal, 16)
	m.mu.Unlock()

	conn.Signal(m.signals)
	go m.watchSignals()

	m.logger.Info("D-Bus mirror connected", "service", DBusBusName)
	return nil
}

// Close stops listening and closes the bus connection.
func (m *Mirror) Close() error {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.obj = nil
	m.mu.Unlock()

	if conn == nil {
		return nil
	}
	conn.RemoveSignal(m.signals)
	close(m.done)
	return conn.Close()
}

func (m *Mirror) watchSignals() {
	for {
		select {
		case <-m.done:
			return
		case sig, ok := <-m.signals:
			if !ok {
				return
			}
			m.handleSignal(sig)
		}
	}
}

// handleSignal dismisses the toast behind a popup the user closed.
func (m *Mirror) handleSignal(sig *dbus.Signal) {
	if sig.Name != DBusInterface+".NotificationClosed" || len(sig.Body) < 2 {
		return
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return
	}
	reason, _ := sig.Body[1].(uint32)

	m.mu.Lock()
	toastID, known := m.toastIDs[id]
	if known {
		delete(m.toastIDs, id)
		delete(m.desktopIDs, toastID)
	}
	m.mu.Unlock()

	if !known {
		return
	}
	m.logger.Debug("desktop notification closed", "desktop_id", id, "toast", toastID, "reason", CloseReason(reason))
	if CloseReason(reason) == CloseReasonDismissed && m.target != nil {
		m.target.Dismiss(toastID)
	}
}

// HandleEvent is a center listener.
func (m *Mirror) HandleEvent(ev center.Event) {
	if ev.Toast == nil {
		return
	}
	switch ev.Type {
	case center.EventAdded:
		m.show(ev.Toast)
	case center.EventRemoved:
		m.close(ev.Toast.ID)
	}
}

// expireTimeout converts a toast lifetime to the Notify expire_timeout,
// which is an int32 of milliseconds.
func expireTimeout(ms int64) int32 {
	switch {
	case ms < 0:
		return -1
	case ms > math.MaxInt32:
		return math.MaxInt32
	default:
		return int32(ms)
	}
}

// show raises a desktop popup for a new toast. The bus call is made without
// holding mu; if the toast leaves while it runs the popup is closed again.
func (m *Mirror) show(n *model.Notification) {
	m.mu.Lock()
	obj := m.obj
	if obj == nil {
		m.mu.Unlock()
		return
	}
	m.inflight[n.ID] = true
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	var id uint32
	err := obj.CallWithContext(ctx, DBusInterface+".Notify", 0,
		m.appName,
		uint32(0),
		IconName(n.Severity),
		Summary(n.Severity),
		n.Message,
		[]string{},
		Hints(n.Severity, m.appName),
		expireTimeout(n.DurationMS),
	).Store(&id)

	m.mu.Lock()
	live := m.inflight[n.ID]
	delete(m.inflight, n.ID)
	if err == nil && live {
		m.desktopIDs[n.ID] = id
		m.toastIDs[id] = n.ID
	}
	m.mu.Unlock()

	switch {
	case err != nil:
		m.logger.Warn("failed to mirror toast", "id", n.ID, "error", err)
	case !live:
		m.closeDesktop(obj, id)
	}
}

// close withdraws the popup of a toast that left the surface.
func (m *Mirror) close(toastID string) {
	m.mu.Lock()
	if m.inflight[toastID] {
		m.inflight[toastID] = false
		m.mu.Unlock()
		return
	}
	id, ok := m.desktopIDs[toastID]
	if ok {
		delete(m.desktopIDs, toastID)
		delete(m.toastIDs, id)
	}
	obj := m.obj
	m.mu.Unlock()

	if ok && obj != nil {
		m.closeDesktop(obj, id)
	}
}

func (m *Mirror) closeDesktop(obj caller, id uint32) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := obj.CallWithContext(ctx, DBusInterface+".CloseNotification", 0, id).Err; err != nil {
		m.logger.Debug("failed to close mirrored notification", "desktop_id", id, "error", err)
	}
}

// Mirrored returns the desktop id of a toast.
func (m *Mirror) Mirrored(toastID string) (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.desktopIDs[toastID]
	return id, ok
}
