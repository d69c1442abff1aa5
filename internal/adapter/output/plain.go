package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/theme"
)

// PlainFormatter formats toasts as aligned text lines.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes toasts as plain text.
func (f *PlainFormatter) Format(w io.Writer, toasts []*model.Notification) error {
	for i, n := range toasts {
		if err := f.formatToast(w, i+1, n); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatToast(w io.Writer, index int, n *model.Notification) error {
	if f.template != nil {
		if err := f.template.Execute(w, newTemplateData(index, n, f.opts)); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder

	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", index)
	}

	fmt.Fprintf(&sb, "%s %-7s %-8s %s",
		theme.For(n.Severity).Glyph,
		n.Severity,
		n.State,
		n.MessageTruncated(maxLen(f.opts.MessageMaxLen)),
	)

	if f.opts.ShowTime {
		fmt.Fprintf(&sb, " (%s)", humanize.RelTime(n.CreatedAt, f.opts.now(), "ago", "from now"))
	}

	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// maxLen maps the "0 = unlimited" option onto MessageTruncated.
func maxLen(n int) int {
	if n <= 0 {
		return int(^uint(0) >> 1)
	}
	return n
}

// FormatField outputs a specific field from a toast.
func FormatField(n *model.Notification, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return n.ID
	case "message":
		return n.Message
	case "severity":
		return n.Severity.String()
	case "state":
		return n.State.String()
	case "duration", "duration_ms":
		return fmt.Sprintf("%d", n.DurationMS)
	default:
		return n.Message
	}
}
