package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastui/internal/model"
)

// YAMLFormatter formats toasts as a YAML sequence.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes toasts as YAML.
func (f *YAMLFormatter) Format(w io.Writer, toasts []*model.Notification) error {
	if toasts == nil {
		toasts = []*model.Notification{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toasts); err != nil {
		return err
	}
	return enc.Close()
}
