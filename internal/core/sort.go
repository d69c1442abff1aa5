package core

import (
	"slices"
	"strings"

	"github.com/jmylchreest/toastui/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByCreated   SortField = "created"
	SortBySeverity  SortField = "severity"
	SortByRemaining SortField = "remaining"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions keeps surface order: oldest first.
func DefaultSortOptions() SortOptions {
	return SortOptions{Field: SortByCreated, Order: SortAsc}
}

// severityRank orders severities from least to most urgent.
func severityRank(s model.Severity) int {
	switch s {
	case model.SeverityError:
		return 3
	case model.SeverityWarning:
		return 2
	case model.SeveritySuccess:
		return 1
	default:
		return 0
	}
}

// Sort sorts toasts in place. Ties keep their existing order.
func Sort(toasts []*model.Notification, opts SortOptions) {
	slices.SortStableFunc(toasts, func(a, b *model.Notification) int {
		var c int
		switch opts.Field {
		case SortBySeverity:
			c = severityRank(a.Severity) - severityRank(b.Severity)
		case SortByRemaining:
			c = a.CreatedAt.Add(a.Duration()).Compare(b.CreatedAt.Add(b.Duration()))
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if opts.Order == SortDesc {
			return -c
		}
		return c
	})
}

// ParseSortField parses a sort field string; unknown values sort by creation.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "severity", "sev", "s":
		return SortBySeverity
	case "remaining", "expiry", "r":
		return SortByRemaining
	default:
		return SortByCreated
	}
}

// ParseSortOrder parses a sort order string; unknown values sort ascending.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending", "d":
		return SortDesc
	default:
		return SortAsc
	}
}

// ParseSort parses "field" or "field:order".
func ParseSort(s string) SortOptions {
	field, order, _ := strings.Cut(s, ":")
	return SortOptions{Field: ParseSortField(field), Order: ParseSortOrder(order)}
}
