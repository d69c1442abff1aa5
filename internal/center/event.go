package center

import "github.com/jmylchreest/toastui/internal/model"

// EventType identifies a lifecycle change.
type EventType string

const (
	EventAdded   EventType = "added"
	EventShown   EventType = "shown"
	EventLeaving EventType = "leaving"
	EventRemoved EventType = "removed"
	// EventCleared follows the removed events of a ClearAll. Toast is nil.
	EventCleared EventType = "cleared"
)

// Event reports a lifecycle change. Toast is a snapshot taken when the
// change happened.
type Event struct {
	Type  EventType           `json:"type"`
	Toast *model.Notification `json:"toast,omitempty"`
}

// Listener receives center events in the order the changes were made.
// Listeners run after the center's lock is released, on the goroutine that is
// delivering, which may belong to an earlier change. Events raised by a
// listener's own calls into the center are delivered after it returns.
type Listener func(Event)
