package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/jmylchreest/toastui/internal/model"
)

const maxInputSize = 10 * 1024 * 1024

// StdinAdapter reads JSON toast requests: either a single array or one
// object per line.
type StdinAdapter struct {
	reader io.Reader
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter() *StdinAdapter {
	return &StdinAdapter{reader: os.Stdin}
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader) *StdinAdapter {
	return &StdinAdapter{reader: r}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Import reads all requests. Severity is passed through untouched, so an
// unknown value still produces a toast (shown as info).
func (a *StdinAdapter) Import(ctx context.Context) ([]model.Request, error) {
	data, err := io.ReadAll(io.LimitReader(a.reader, maxInputSize+1))
	if err != nil {
		return nil, &AdapterError{Source: a.Name(), Message: "failed to read input", Err: err}
	}
	if len(data) > maxInputSize {
		return nil, &AdapterError{Source: a.Name(), Message: "input exceeds 10MB"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		return parseJSONArray(trimmed)
	}
	return parseJSONLines(ctx, trimmed)
}

func parseJSONArray(data []byte) ([]model.Request, error) {
	var reqs []model.Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, &AdapterError{Source: "stdin", Message: "failed to parse JSON array", Err: err}
	}
	for i := range reqs {
		reqs[i].Message = sanitizeString(reqs[i].Message)
	}
	return reqs, nil
}

func parseJSONLines(ctx context.Context, data []byte) ([]model.Request, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), maxInputSize)

	var reqs []model.Request
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var req model.Request
		if err := json.Unmarshal(text, &req); err != nil {
			return nil, &AdapterError{Source: "stdin", Message: "failed to parse JSON", Line: line, Err: err}
		}
		req.Message = sanitizeString(req.Message)
		reqs = append(reqs, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, &AdapterError{Source: "stdin", Message: "failed to read input", Err: err}
	}
	return reqs, nil
}

// LinesAdapter turns each non-empty line of plain text into a request.
type LinesAdapter struct {
	reader   io.Reader
	severity model.Severity
}

// NewLinesAdapter creates a LinesAdapter reading from os.Stdin.
func NewLinesAdapter(sev model.Severity) *LinesAdapter {
	return &LinesAdapter{reader: os.Stdin, severity: sev}
}

// NewLinesAdapterWithReader creates a LinesAdapter with a custom reader.
func NewLinesAdapterWithReader(r io.Reader, sev model.Severity) *LinesAdapter {
	return &LinesAdapter{reader: r, severity: sev}
}

// Name returns the adapter identifier.
func (a *LinesAdapter) Name() string {
	return "lines"
}

// Import reads every line.
func (a *LinesAdapter) Import(ctx context.Context) ([]model.Request, error) {
	scanner := bufio.NewScanner(a.reader)
	scanner.Buffer(make([]byte, 64*1024), maxInputSize)

	var reqs []model.Request
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg := sanitizeString(scanner.Text())
		if msg == "" {
			continue
		}
		reqs = append(reqs, model.Request{Message: msg, Severity: a.severity.String()})
	}
	if err := scanner.Err(); err != nil {
		return nil, &AdapterError{Source: a.Name(), Message: "failed to read input", Err: err}
	}
	return reqs, nil
}

// sanitizeString replaces control characters with spaces and trims the
// result. Markup is left alone: messages are always shown as literal text.
func sanitizeString(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r < 32 && r != '\t' {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
