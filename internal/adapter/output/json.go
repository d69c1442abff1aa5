package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/toastui/internal/model"
)

// JSONFormatter prints toast snapshots in the daemon's API shape, the same
// objects GET /api/toasts returns.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter returns a JSON formatter. Message truncation and templates
// do not apply; snapshots are printed whole.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format prints the toasts as an indented array; no toasts prints [].
func (f *JSONFormatter) Format(w io.Writer, toasts []*model.Notification) error {
	if toasts == nil {
		toasts = []*model.Notification{}
	}
	return encodeIndented(w, toasts)
}

// FormatSingle prints one toast as an indented object.
func (f *JSONFormatter) FormatSingle(w io.Writer, n *model.Notification) error {
	return encodeIndented(w, n)
}

func encodeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
