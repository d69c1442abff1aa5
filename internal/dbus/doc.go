// Package dbus connects the notification center to the desktop's
// org.freedesktop.Notifications service. A Mirror copies toasts to an
// existing notification daemon; a Bridge claims the service name itself and
// turns incoming desktop notifications into toasts.
package dbus
