package core

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/toastui/internal/model"
)

// FilterOptions specifies criteria for filtering toasts. Nil or zero fields
// match everything.
type FilterOptions struct {
	Severity *model.Severity
	State    *model.State
	Search   string
	Limit    int // Maximum results (0=unlimited)
}

// Filter returns the toasts matching opts, preserving order.
func Filter(toasts []*model.Notification, opts FilterOptions) []*model.Notification {
	result := make([]*model.Notification, 0, len(toasts))
	for _, n := range Search(toasts, opts.Search) {
		if opts.Severity != nil && n.Severity != *opts.Severity {
			continue
		}
		if opts.State != nil && n.State != *opts.State {
			continue
		}
		result = append(result, n)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// ParseSeverityFilter parses a strict severity name for filtering. Unlike
// model.ParseSeverity it rejects unknown names rather than matching info.
func ParseSeverityFilter(s string) (*model.Severity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var sev model.Severity
	for _, candidate := range model.Severities() {
		if strings.EqualFold(candidate.String(), s) {
			sev = candidate
			return &sev, nil
		}
	}
	if strings.EqualFold(s, "warn") {
		sev = model.SeverityWarning
		return &sev, nil
	}
	return nil, fmt.Errorf("unknown severity %q", s)
}

// ParseStateFilter parses a state name for filtering.
func ParseStateFilter(s string) (*model.State, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var st model.State
	if err := st.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return nil, err
	}
	return &st, nil
}
