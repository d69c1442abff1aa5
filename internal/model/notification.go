// Package model defines the core data structures for toastui.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Notification is one transient message on the display surface.
// It has no existence beyond its element: once Removed it is never shown again.
type Notification struct {
	ID         string       `json:"id" yaml:"id"`
	Message    string       `json:"message" yaml:"message"`
	Severity   Severity     `json:"severity" yaml:"severity"`
	DurationMS int64        `json:"duration_ms" yaml:"duration_ms"`
	CreatedAt  time.Time    `json:"created_at" yaml:"created_at"`
	State      State        `json:"state" yaml:"state"`
	Reason     RemoveReason `json:"reason,omitempty" yaml:"reason,omitempty"`
	RemovedAt  time.Time    `json:"removed_at,omitzero" yaml:"removed_at,omitempty"`
}

// Validation errors.
var (
	ErrEmptyID         = errors.New("id cannot be empty")
	ErrInvalidDuration = errors.New("duration must be greater than 0")
)

// NewNotification creates an entering notification with a generated ULID.
// A non-positive duration is replaced with the severity default and an
// unrecognized severity is treated as info.
func NewNotification(message string, severity Severity, duration time.Duration, now time.Time) (*Notification, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	severity = severity.Normalize()
	if duration <= 0 {
		duration = severity.DefaultDuration()
	}

	return &Notification{
		ID:         id.String(),
		Message:    message,
		Severity:   severity,
		DurationMS: duration.Milliseconds(),
		CreatedAt:  now,
		State:      StateEntering,
	}, nil
}

// Validate checks that the notification has all required fields.
func (n *Notification) Validate() error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if n.DurationMS <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// Duration returns the auto-expiry delay.
func (n *Notification) Duration() time.Duration {
	return time.Duration(n.DurationMS) * time.Millisecond
}

// Transition moves the notification to a new state if the lifecycle permits it.
func (n *Notification) Transition(to State) error {
	if !CanTransition(n.State, to) {
		return &TransitionError{From: n.State, To: to}
	}
	n.State = to
	return nil
}

// MarkRemoved moves the notification to StateRemoved and records why.
// It returns false when the notification was already removed.
func (n *Notification) MarkRemoved(reason RemoveReason, at time.Time) bool {
	if err := n.Transition(StateRemoved); err != nil {
		return false
	}
	n.Reason = reason
	n.RemovedAt = at
	return true
}

// MessageTruncated returns the message collapsed to one line and cut to maxLen
// characters, with "..." appended when shortened.
func (n *Notification) MessageTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	msg := []rune(strings.Join(strings.Fields(n.Message), " "))
	if len(msg) <= maxLen {
		return string(msg)
	}
	if maxLen <= 3 {
		return string(msg[:maxLen])
	}
	return string(msg[:maxLen-3]) + "..."
}

// Clone returns a copy safe to hand to callers outside the center's lock.
func (n *Notification) Clone() *Notification {
	clone := *n
	return &clone
}
