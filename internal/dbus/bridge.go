package dbus

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/toastui/internal/center"
)

// emitter is the part of dbus.Conn used to send signals.
type emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...any) error
}

// Bridge implements the org.freedesktop.Notifications D-Bus interface on top
// of a center, so desktop applications can raise toasts.
type Bridge struct {
	conn   *dbus.Conn
	signal emitter
	logger *slog.Logger
	center *center.Center

	nextID atomic.Uint32

	mu         sync.Mutex
	toastIDs   map[uint32]string // desktop id -> toast id
	desktopIDs map[string]uint32 // toast id -> desktop id
	serverInfo ServerInfo
	running    bool
}

// NewBridge creates a bridge posting to c.
func NewBridge(c *center.Center, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		logger:     logger,
		center:     c,
		toastIDs:   make(map[uint32]string),
		desktopIDs: make(map[string]uint32),
		serverInfo: DefaultServerInfo(),
	}
}

// SetServerInfo sets the server information returned by GetServerInformation.
func (b *Bridge) SetServerInfo(info ServerInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.serverInfo = info
}

// Start connects to the session bus, exports the notification service and
// claims its name. It fails if another notification daemon owns the name.
func (b *Bridge) Start() error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return fmt.Errorf("bridge already running")
	}
	b.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(b, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: notificationMethods(),
				Signals: notificationSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	b.mu.Lock()
	b.conn = conn
	b.signal = conn
	b.running = true
	b.mu.Unlock()

	b.logger.Info("D-Bus notification bridge started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil
	}
	b.running = false

	if b.conn != nil {
		if _, err := b.conn.ReleaseName(DBusBusName); err != nil {
			b.logger.Warn("failed to release bus name", "error", err)
		}
		// The session bus connection is shared and stays open.
	}

	b.logger.Info("D-Bus notification bridge stopped")
	return nil
}

// GetCapabilities returns the capabilities supported by the bridge.
// D-Bus method: GetCapabilities() -> as
func (b *Bridge) GetCapabilities() ([]string, *dbus.Error) {
	return ServerCapabilities, nil
}

// GetServerInformation returns information about the notification server.
// D-Bus method: GetServerInformation() -> (ssss)
func (b *Bridge) GetServerInformation() (string, string, string, string, *dbus.Error) {
	b.mu.Lock()
	info := b.serverInfo
	b.mu.Unlock()
	return info.Name, info.Vendor, info.Version, info.SpecVersion, nil
}

// Notify shows an incoming desktop notification as a toast. A replaced
// notification's toast is dismissed without a NotificationClosed signal.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (b *Bridge) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	n := &DBusNotification{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}
	id, err := b.post(n)
	if err != nil {
		return 0, dbus.MakeFailedError(err)
	}
	return id, nil
}

func (b *Bridge) post(n *DBusNotification) (uint32, error) {
	id := n.ReplacesID
	if id == 0 {
		id = b.nextID.Add(1)
	}

	b.mu.Lock()
	oldToast, replacing := b.toastIDs[id]
	if replacing {
		delete(b.toastIDs, id)
		delete(b.desktopIDs, oldToast)
	}
	b.mu.Unlock()

	if replacing {
		b.center.Dismiss(oldToast)
	}

	// Toasts always expire, so "never" and "server default" both use the
	// configured timeout.
	var duration time.Duration
	if n.ExpireTimeout > 0 {
		duration = time.Duration(n.ExpireTimeout) * time.Millisecond
	}

	toast := b.center.Notify(n.Message(), n.Severity(), duration)
	if toast.ID() == "" {
		return 0, fmt.Errorf("toast was not created")
	}

	b.mu.Lock()
	b.toastIDs[id] = toast.ID()
	b.desktopIDs[toast.ID()] = id
	b.mu.Unlock()

	b.logger.Debug("desktop notification received",
		"app_name", n.AppName,
		"desktop_id", id,
		"toast", toast.ID(),
		"urgency", n.Urgency(),
	)
	return id, nil
}

// CloseNotification dismisses the toast behind a desktop id.
// D-Bus method: CloseNotification(u) -> nothing
func (b *Bridge) CloseNotification(id uint32) *dbus.Error {
	b.mu.Lock()
	toastID, ok := b.toastIDs[id]
	if ok {
		delete(b.toastIDs, id)
		delete(b.desktopIDs, toastID)
	}
	b.mu.Unlock()

	if !ok {
		return nil
	}
	b.center.Dismiss(toastID)
	b.emitClosed(id, CloseReasonClosed)
	return nil
}

// HandleEvent is a center listener; it reports toasts leaving the surface to
// the application that raised them.
func (b *Bridge) HandleEvent(ev center.Event) {
	if ev.Type != center.EventRemoved || ev.Toast == nil {
		return
	}

	b.mu.Lock()
	id, ok := b.desktopIDs[ev.Toast.ID]
	if ok {
		delete(b.desktopIDs, ev.Toast.ID)
		delete(b.toastIDs, id)
	}
	b.mu.Unlock()

	if ok {
		b.emitClosed(id, CloseReasonFor(ev.Toast.Reason))
	}
}

// ToastID returns the toast raised for a desktop id.
func (b *Bridge) ToastID(id uint32) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	toastID, ok := b.toastIDs[id]
	return toastID, ok
}

func (b *Bridge) emitClosed(id uint32, reason CloseReason) {
	b.mu.Lock()
	sig := b.signal
	b.mu.Unlock()

	if sig == nil {
		return
	}
	if err := sig.Emit(DBusPath, DBusInterface+".NotificationClosed", id, uint32(reason)); err != nil {
		b.logger.Warn("failed to emit NotificationClosed signal", "id", id, "error", err)
		return
	}
	b.logger.Debug("emitted NotificationClosed signal", "id", id, "reason", reason.String())
}

// notificationMethods returns the D-Bus method introspection data.
func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "spec_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "app_name", Type: "s", Direction: "in"},
				{Name: "replaces_id", Type: "u", Direction: "in"},
				{Name: "app_icon", Type: "s", Direction: "in"},
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "expire_timeout", Type: "i", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "CloseNotification",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
	}
}

// notificationSignals returns the D-Bus signal introspection data.
func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "u"},
			},
		},
	}
}
