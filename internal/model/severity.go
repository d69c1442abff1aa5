package model

import (
	"strings"
	"time"
)

// Severity classifies a notification's intent.
type Severity int

// Severity levels. The zero value is SeverityInfo so an unset field falls back
// to the info treatment.
const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// Default durations per severity.
const (
	DefaultSuccessDuration = 5000 * time.Millisecond
	DefaultErrorDuration   = 7000 * time.Millisecond
	DefaultWarningDuration = 6000 * time.Millisecond
	DefaultInfoDuration    = 5000 * time.Millisecond
)

// Freedesktop urgency levels used when mirroring to a desktop daemon.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// Severities returns every severity in display order.
func Severities() []Severity {
	return []Severity{SeveritySuccess, SeverityError, SeverityWarning, SeverityInfo}
}

// ParseSeverity converts a name to a Severity.
// Matching is case-insensitive and anything unrecognized yields SeverityInfo.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return SeveritySuccess
	case "error":
		return SeverityError
	case "warning", "warn":
		return SeverityWarning
	case "info":
		return SeverityInfo
	default:
		return SeverityInfo
	}
}

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "info"
	}
}

// Normalize maps out-of-range values onto SeverityInfo.
func (s Severity) Normalize() Severity {
	switch s {
	case SeveritySuccess, SeverityError, SeverityWarning, SeverityInfo:
		return s
	default:
		return SeverityInfo
	}
}

// DefaultDuration returns how long a notification of this severity stays
// visible when the caller does not pass a duration.
func (s Severity) DefaultDuration() time.Duration {
	switch s {
	case SeveritySuccess:
		return DefaultSuccessDuration
	case SeverityError:
		return DefaultErrorDuration
	case SeverityWarning:
		return DefaultWarningDuration
	case SeverityInfo:
		return DefaultInfoDuration
	default:
		return DefaultInfoDuration
	}
}

// Urgency returns the freedesktop urgency for this severity.
func (s Severity) Urgency() int {
	switch s {
	case SeverityError:
		return UrgencyCritical
	case SeverityWarning:
		return UrgencyNormal
	case SeveritySuccess, SeverityInfo:
		return UrgencyLow
	default:
		return UrgencyLow
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It never fails.
func (s *Severity) UnmarshalText(text []byte) error {
	*s = ParseSeverity(string(text))
	return nil
}
