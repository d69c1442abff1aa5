package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/jmylchreest/toastui/internal/model"
)

// DmenuFormatter formats toasts one per line for dmenu/rofi/fuzzel pickers.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("dmenu").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes toasts in dmenu format (one per line).
func (f *DmenuFormatter) Format(w io.Writer, toasts []*model.Notification) error {
	for i, n := range toasts {
		if _, err := fmt.Fprintln(w, f.formatLine(i+1, n)); err != nil {
			return err
		}
	}
	return nil
}

// formatLine formats a single toast line.
func (f *DmenuFormatter) formatLine(index int, n *model.Notification) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, newTemplateData(index, n, f.opts)); err == nil {
			return buf.String()
		}
	}

	// Default format: [index] [age] severity | message | id
	var parts []string
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("%d", index))
	}
	if f.opts.ShowTime {
		parts = append(parts, relativeTime(n.CreatedAt, f.opts.now()))
	}
	parts = append(parts,
		n.Severity.String(),
		sanitizeMessage(n.Message, f.opts.MessageMaxLen),
		n.ID,
	)

	return strings.Join(parts, sep)
}

// templateData provides data for custom templates.
type templateData struct {
	Index        int
	Toast        *model.Notification
	RelativeTime string
}

func newTemplateData(index int, n *model.Notification, opts FormatterOptions) templateData {
	return templateData{
		Index:        index,
		Toast:        n,
		RelativeTime: relativeTime(n.CreatedAt, opts.now()),
	}
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			return sanitizeMessage(s, maxLen)
		},
		"severityIcon": func(sev model.Severity) string {
			switch sev {
			case model.SeveritySuccess:
				return "+"
			case model.SeverityError:
				return "!"
			case model.SeverityWarning:
				return "~"
			default:
				return "i"
			}
		},
	}
}

// relativeTime returns a compact age like "now", "5m" or "2h".
func relativeTime(ts, now time.Time) string {
	if ts.IsZero() {
		return "unknown"
	}

	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// sanitizeMessage collapses whitespace for single-line display and truncates
// to maxLen characters.
func sanitizeMessage(msg string, maxLen int) string {
	msg = strings.Join(strings.Fields(msg), " ")

	runes := []rune(msg)
	if maxLen > 0 && len(runes) > maxLen {
		if maxLen <= 3 {
			return string(runes[:maxLen])
		}
		return string(runes[:maxLen-3]) + "..."
	}
	return msg
}
