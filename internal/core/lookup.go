// Package core provides filtering, sorting, and lookup over toast snapshots.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmylchreest/toastui/internal/model"
)

// Lookup errors.
var (
	ErrNotFound  = errors.New("no toast matches")
	ErrAmbiguous = errors.New("id prefix is ambiguous")
)

// LookupByID finds a toast by its full id. Returns nil if not found.
func LookupByID(toasts []*model.Notification, id string) *model.Notification {
	for _, n := range toasts {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// LookupByIndex finds a toast by its 1-based position.
// Returns nil if index is out of bounds.
func LookupByIndex(toasts []*model.Notification, index int) *model.Notification {
	idx := index - 1
	if idx < 0 || idx >= len(toasts) {
		return nil
	}
	return toasts[idx]
}

// LookupByPrefix resolves an id or a unique, case-insensitive id prefix.
func LookupByPrefix(toasts []*model.Notification, prefix string) (*model.Notification, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if n := LookupByID(toasts, prefix); n != nil {
		return n, nil
	}

	var match *model.Notification
	for _, n := range toasts {
		if !strings.HasPrefix(n.ID, prefix) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
		}
		match = n
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	return match, nil
}

// Search returns the toasts whose message contains term, case-insensitively.
func Search(toasts []*model.Notification, term string) []*model.Notification {
	if term == "" {
		return toasts
	}

	term = strings.ToLower(term)
	var result []*model.Notification
	for _, n := range toasts {
		if strings.Contains(strings.ToLower(n.Message), term) {
			result = append(result, n)
		}
	}
	return result
}
