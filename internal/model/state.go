package model

import "fmt"

// State is the lifecycle position of a notification on the surface.
type State int

const (
	// StateEntering means the element is attached in its hidden/offset form
	// and waiting for the entrance tick.
	StateEntering State = iota
	// StateVisible means the entrance transition has run.
	StateVisible
	// StateLeaving means the exit transition is running and the element will
	// be detached once the grace interval elapses.
	StateLeaving
	// StateRemoved is terminal: the element is detached and released.
	StateRemoved
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEntering:
		return "entering"
	case StateVisible:
		return "visible"
	case StateLeaving:
		return "leaving"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "entering":
		*s = StateEntering
	case "visible":
		*s = StateVisible
	case "leaving":
		*s = StateLeaving
	case "removed":
		*s = StateRemoved
	default:
		return fmt.Errorf("unknown state %q", string(text))
	}
	return nil
}

// Live reports whether the notification still owns an attached element.
func (s State) Live() bool {
	return s != StateRemoved
}

// CanTransition reports whether moving from one state to another is allowed.
func CanTransition(from, to State) bool {
	switch from {
	case StateEntering:
		return to == StateVisible || to == StateRemoved
	case StateVisible:
		return to == StateLeaving || to == StateRemoved
	case StateLeaving:
		return to == StateRemoved
	default:
		return false
	}
}

// RemoveReason records why a notification left the surface.
type RemoveReason int

const (
	RemoveReasonNone RemoveReason = iota
	// RemoveReasonExpired means the duration elapsed and the exit ran.
	RemoveReasonExpired
	// RemoveReasonDismissed means the user activated the dismiss affordance.
	RemoveReasonDismissed
	// RemoveReasonCleared means ClearAll removed it.
	RemoveReasonCleared
)

// String returns the reason name.
func (r RemoveReason) String() string {
	switch r {
	case RemoveReasonExpired:
		return "expired"
	case RemoveReasonDismissed:
		return "dismissed"
	case RemoveReasonCleared:
		return "cleared"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r RemoveReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RemoveReason) UnmarshalText(text []byte) error {
	switch string(text) {
	case "expired":
		*r = RemoveReasonExpired
	case "dismissed":
		*r = RemoveReasonDismissed
	case "cleared":
		*r = RemoveReasonCleared
	default:
		*r = RemoveReasonNone
	}
	return nil
}

// TransitionError reports a state change the lifecycle does not permit.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition from %s to %s not permitted", e.From, e.To)
}
