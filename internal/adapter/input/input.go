// Package input reads toast requests from outside sources.
package input

import (
	"context"
	"strconv"

	"github.com/jmylchreest/toastui/internal/model"
)

// InputAdapter fetches toast requests from a source.
type InputAdapter interface {
	// Name returns the adapter identifier (e.g., "stdin", "lines").
	Name() string

	// Import reads every request the source holds.
	Import(ctx context.Context) ([]model.Request, error)
}

// Sources lists the adapter names NewAdapter accepts.
func Sources() []string {
	return []string{"stdin", "lines"}
}

// NewAdapter creates an InputAdapter reading os.Stdin. "stdin" expects JSON,
// "lines" turns every non-empty line into a toast of severity sev.
func NewAdapter(source string, sev model.Severity) (InputAdapter, error) {
	switch source {
	case "", "stdin":
		return NewStdinAdapter(), nil
	case "lines":
		return NewLinesAdapter(sev), nil
	default:
		return nil, &AdapterError{
			Source:  source,
			Message: "unknown adapter",
		}
	}
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Line    int // 1-based input line, 0 when not line specific
	Err     error
}

func (e *AdapterError) Error() string {
	msg := e.Source + ": " + e.Message
	if e.Line > 0 {
		msg += " on line " + strconv.Itoa(e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
