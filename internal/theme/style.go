package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/model"
)

// Style is the visual treatment of one severity.
type Style struct {
	Severity model.Severity

	// Glyph is the terminal icon.
	Glyph string
	// IconPath is the 20x20 SVG path drawn in the HTML icon.
	IconPath string
	// Classes are utility classes covering both light and dark schemes.
	Classes []string

	Foreground lipgloss.AdaptiveColor
	Background lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor
}

const (
	iconSuccess = "M10 18a8 8 0 100-16 8 8 0 000 16zm3.707-9.293a1 1 0 00-1.414-1.414L9 10.586 7.707 9.293a1 1 0 00-1.414 1.414l2 2a1 1 0 001.414 0l4-4z"
	iconError   = "M10 18a8 8 0 100-16 8 8 0 000 16zM8.707 7.293a1 1 0 00-1.414 1.414L8.586 10l-1.293 1.293a1 1 0 101.414 1.414L10 11.414l1.293 1.293a1 1 0 001.414-1.414L11.414 10l1.293-1.293a1 1 0 00-1.414-1.414L10 8.586 8.707 7.293z"
	iconWarning = "M8.257 3.099c.765-1.36 2.722-1.36 3.486 0l5.58 9.92c.75 1.334-.213 2.98-1.742 2.98H4.42c-1.53 0-2.493-1.646-1.743-2.98l5.58-9.92zM11 13a1 1 0 11-2 0 1 1 0 012 0zm-1-8a1 1 0 00-1 1v3a1 1 0 002 0V6a1 1 0 00-1-1z"
	iconInfo    = "M18 10a8 8 0 11-16 0 8 8 0 0116 0zm-7-4a1 1 0 11-2 0 1 1 0 012 0zM9 9a1 1 0 000 2v3a1 1 0 001 1h1a1 1 0 100-2v-3a1 1 0 00-1-1H9z"

	// DismissIconPath is the cross drawn in the dismiss button.
	DismissIconPath = "M4.293 4.293a1 1 0 011.414 0L10 8.586l4.293-4.293a1 1 0 111.414 1.414L11.414 10l4.293 4.293a1 1 0 01-1.414 1.414L10 11.414l-4.293 4.293a1 1 0 01-1.414-1.414L8.586 10 4.293 5.707a1 1 0 010-1.414z"
)

// For returns the style of a severity. Every severity has an explicit arm;
// anything else gets the info treatment.
func For(sev model.Severity) Style {
	switch sev {
	case model.SeveritySuccess:
		return Style{
			Severity: model.SeveritySuccess,
			Glyph:    "✔",
			IconPath: iconSuccess,
			Classes: []string{
				"bg-green-50", "dark:bg-green-900/30",
				"text-green-700", "dark:text-green-300",
				"border-green-300", "dark:border-green-500/50",
			},
			Foreground: lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#86EFAC"},
			Background: lipgloss.AdaptiveColor{Light: "#F0FDF4", Dark: "#12301F"},
			Border:     lipgloss.AdaptiveColor{Light: "#86EFAC", Dark: "#22C55E"},
		}
	case model.SeverityError:
		return Style{
			Severity: model.SeverityError,
			Glyph:    "✖",
			IconPath: iconError,
			Classes: []string{
				"bg-red-50", "dark:bg-red-900/30",
				"text-red-700", "dark:text-red-300",
				"border-red-300", "dark:border-red-500/50",
			},
			Foreground: lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"},
			Background: lipgloss.AdaptiveColor{Light: "#FEF2F2", Dark: "#3B1616"},
			Border:     lipgloss.AdaptiveColor{Light: "#FCA5A5", Dark: "#EF4444"},
		}
	case model.SeverityWarning:
		return Style{
			Severity: model.SeverityWarning,
			Glyph:    "▲",
			IconPath: iconWarning,
			Classes: []string{
				"bg-yellow-50", "dark:bg-yellow-900/30",
				"text-yellow-700", "dark:text-yellow-300",
				"border-yellow-300", "dark:border-yellow-500/50",
			},
			Foreground: lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#FDE047"},
			Background: lipgloss.AdaptiveColor{Light: "#FEFCE8", Dark: "#33290C"},
			Border:     lipgloss.AdaptiveColor{Light: "#FDE047", Dark: "#EAB308"},
		}
	case model.SeverityInfo:
		return infoStyle()
	default:
		return infoStyle()
	}
}

func infoStyle() Style {
	return Style{
		Severity: model.SeverityInfo,
		Glyph:    "ℹ",
		IconPath: iconInfo,
		Classes: []string{
			"bg-blue-50", "dark:bg-blue-900/30",
			"text-blue-700", "dark:text-blue-300",
			"border-blue-300", "dark:border-blue-500/50",
		},
		Foreground: lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#93C5FD"},
		Background: lipgloss.AdaptiveColor{Light: "#EFF6FF", Dark: "#15233F"},
		Border:     lipgloss.AdaptiveColor{Light: "#93C5FD", Dark: "#3B82F6"},
	}
}

// ToastBaseClasses are shared by every toast element regardless of severity.
var ToastBaseClasses = []string{
	"pointer-events-auto", "p-4", "text-sm", "rounded-lg", "border", "shadow-lg",
	"transform", "transition-all", "duration-300", "ease-in-out",
}

// SurfaceClasses returns the classes of the display surface anchored at pos.
func SurfaceClasses(pos config.Position) []string {
	classes := []string{"fixed", "z-50", "space-y-2", "pointer-events-none"}
	switch pos {
	case config.PositionTopLeft:
		return append(classes, "top-4", "left-4")
	case config.PositionBottomLeft:
		return append(classes, "bottom-4", "left-4")
	case config.PositionBottomRight:
		return append(classes, "bottom-4", "right-4")
	case config.PositionTopRight:
		return append(classes, "top-4", "right-4")
	default:
		return append(classes, "top-4", "right-4")
	}
}

// HiddenClasses returns the offset and transparency applied while a toast is
// entering or leaving. Toasts slide toward the edge they are anchored to.
func HiddenClasses(pos config.Position) []string {
	switch pos {
	case config.PositionTopLeft, config.PositionBottomLeft:
		return []string{"-translate-x-full", "opacity-0"}
	default:
		return []string{"translate-x-full", "opacity-0"}
	}
}

// AllHiddenClasses lists every class HiddenClasses can return, so callers
// can strip them regardless of the position in effect when they were added.
func AllHiddenClasses() []string {
	return []string{"translate-x-full", "-translate-x-full", "opacity-0"}
}
