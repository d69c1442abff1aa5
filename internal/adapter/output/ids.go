package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/toastui/internal/model"
)

// IDsFormatter prints one live toast id per line and nothing else, so that
// `toastui list --format ids | xargs toastui dismiss` clears a selection.
type IDsFormatter struct{}

// NewIDsFormatter returns the id-only formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format prints the ids in the order given. An empty list prints nothing.
func (f *IDsFormatter) Format(w io.Writer, toasts []*model.Notification) error {
	for _, n := range toasts {
		if _, err := fmt.Fprintln(w, n.ID); err != nil {
			return err
		}
	}
	return nil
}
