package model

import "time"

// MaxDuration caps a toast's lifetime.
const MaxDuration = 24 * time.Hour

// Request asks for a toast to be shown. It is the body of the daemon's create
// endpoint and the unit read from stdin. Severity is kept as text so that an
// unknown value reaches the center, which treats it as info.
type Request struct {
	Message    string `json:"message" yaml:"message"`
	Severity   string `json:"severity,omitempty" yaml:"severity,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
}

// ParsedSeverity returns the requested severity, info when unrecognized.
func (r Request) ParsedSeverity() Severity {
	return ParseSeverity(r.Severity)
}

// Duration returns the requested lifetime, capped at MaxDuration; zero
// selects the default.
func (r Request) Duration() time.Duration {
	if r.DurationMS <= 0 {
		return 0
	}
	if r.DurationMS > MaxDuration.Milliseconds() {
		return MaxDuration
	}
	return time.Duration(r.DurationMS) * time.Millisecond
}
