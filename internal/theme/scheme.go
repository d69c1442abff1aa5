package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toastui/internal/config"
)

// IsDark resolves a color scheme preference. For ColorSchemeSystem the
// terminal background is queried.
func IsDark(scheme config.ColorScheme) bool {
	return resolve(scheme, lipgloss.HasDarkBackground)
}

func resolve(scheme config.ColorScheme, detect func() bool) bool {
	switch scheme {
	case config.ColorSchemeDark:
		return true
	case config.ColorSchemeLight:
		return false
	case config.ColorSchemeSystem:
		return detect()
	default:
		return detect()
	}
}

// PageClass returns the class set on the HTML root element: "dark" or
// "light" for a forced scheme, empty to follow the browser.
func PageClass(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return ""
	}
}
