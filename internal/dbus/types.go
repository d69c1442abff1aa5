package dbus

import (
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastui/internal/model"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the bus name of the notification service.
	DBusBusName = "org.freedesktop.Notifications"
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved/undefined per the spec.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// CloseReasonFor maps why a toast left the surface to the reason reported on
// the bus.
func CloseReasonFor(r model.RemoveReason) CloseReason {
	switch r {
	case model.RemoveReasonExpired:
		return CloseReasonExpired
	case model.RemoveReasonDismissed, model.RemoveReasonCleared:
		return CloseReasonDismissed
	default:
		return CloseReasonUndefined
	}
}

// DBusNotification holds the arguments of a Notify call.
type DBusNotification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Urgency extracts the urgency hint, model.UrgencyNormal when absent.
func (n *DBusNotification) Urgency() int {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return int(b)
		}
	}
	return model.UrgencyNormal
}

// Category extracts the category hint.
func (n *DBusNotification) Category() string {
	if v, ok := n.Hints["category"]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// Transient returns true if the transient hint is set.
func (n *DBusNotification) Transient() bool {
	if v, ok := n.Hints["transient"]; ok {
		if b, ok := v.Value().(bool); ok {
			return b
		}
	}
	return false
}

// Severity picks a toast severity. Critical urgency is an error; otherwise
// the category's suffix decides (".error", ".complete", ".warning"), falling
// back to info.
func (n *DBusNotification) Severity() model.Severity {
	if n.Urgency() == model.UrgencyCritical {
		return model.SeverityError
	}
	category := n.Category()
	switch {
	case strings.HasSuffix(category, ".error"):
		return model.SeverityError
	case strings.HasSuffix(category, ".complete"):
		return model.SeveritySuccess
	case strings.HasSuffix(category, ".warning"):
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

// Message joins summary and body into the single line a toast shows.
func (n *DBusNotification) Message() string {
	summary := strings.TrimSpace(n.Summary)
	body := strings.TrimSpace(n.Body)
	switch {
	case summary == "":
		return body
	case body == "":
		return summary
	default:
		return summary + ": " + body
	}
}

// Hints builds the hints sent with a mirrored toast.
func Hints(sev model.Severity, appName string) map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(sev.Urgency())),
		"transient":     dbus.MakeVariant(true),
		"desktop-entry": dbus.MakeVariant(appName),
	}
}

// IconName returns the freedesktop icon name for a severity.
func IconName(sev model.Severity) string {
	switch sev {
	case model.SeveritySuccess:
		return "dialog-positive"
	case model.SeverityError:
		return "dialog-error"
	case model.SeverityWarning:
		return "dialog-warning"
	default:
		return "dialog-information"
	}
}

// Summary returns the title line of a mirrored toast.
func Summary(sev model.Severity) string {
	name := sev.Normalize().String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// ServerCapabilities lists the capabilities advertised by the bridge.
var ServerCapabilities = []string{
	"body",
	"icon-static",
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string
	Vendor      string
	Version     string
	SpecVersion string
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "toastuid",
		Vendor:      "toastui",
		Version:     "dev",
		SpecVersion: "1.2",
	}
}
