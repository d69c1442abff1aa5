package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toastui/internal/center"
	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/surface"
	"github.com/jmylchreest/toastui/internal/theme"
)

// slideOffset is how many columns entering and leaving toasts are shifted
// toward their edge.
const slideOffset = 4

// Terminal draws a surface as a column of bordered boxes anchored to a
// corner of a width x height area.
type Terminal struct {
	Width    int
	Height   int
	ToastW   int
	Gap      int
	Position config.Position

	renderer *lipgloss.Renderer
}

// NewTerminal creates a terminal renderer. A nil renderer uses lipgloss's
// default output.
func NewTerminal(r *lipgloss.Renderer, cfg *config.DaemonConfig) *Terminal {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}
	return &Terminal{
		ToastW:   cfg.Display.Width,
		Gap:      cfg.Display.Gap,
		Position: config.Position(cfg.Display.Position),
		renderer: r,
	}
}

// SetSize sets the drawing area.
func (t *Terminal) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// Card is what the terminal draws for one toast element.
type Card struct {
	Severity model.Severity
	State    model.State
	Message  string
}

// Cards extracts the toasts attached to the document's surface, in order.
func Cards(doc *surface.Document) []Card {
	s := doc.Surface()
	if s == nil {
		return nil
	}

	var cards []Card
	for _, el := range s.Children() {
		sev, _ := el.Attr(center.AttrSeverity)
		card := Card{Severity: model.ParseSeverity(sev), State: model.StateVisible}
		if st, ok := el.Attr(center.AttrState); ok {
			var state model.State
			if err := state.UnmarshalText([]byte(st)); err == nil {
				card.State = state
			}
		}
		el.Walk(func(n *surface.Element) bool {
			if role, _ := n.Attr(center.AttrRole); role == center.RoleMessage {
				card.Message = n.Text
				return false
			}
			return true
		})
		cards = append(cards, card)
	}
	return cards
}

// RenderCard draws one toast box.
func (t *Terminal) RenderCard(c Card) string {
	st := theme.For(c.Severity)
	width := max(t.ToastW, 10)

	box := t.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(st.Border).
		Foreground(st.Foreground).
		Padding(0, 1).
		Width(width - 2)

	glyph := t.renderer.NewStyle().Foreground(st.Foreground).Bold(true).Render(st.Glyph)
	body := lipgloss.JoinHorizontal(lipgloss.Top, glyph, " ", c.Message)

	if c.State == model.StateEntering || c.State == model.StateLeaving {
		box = box.Faint(true)
		if t.anchoredLeft() {
			box = box.MarginRight(slideOffset)
		} else {
			box = box.MarginLeft(slideOffset)
		}
	}
	return box.Render(body)
}

// Render draws every toast on the document's surface.
func (t *Terminal) Render(doc *surface.Document) string {
	return t.RenderCards(Cards(doc))
}

// RenderCards draws the given cards stacked in the configured corner.
func (t *Terminal) RenderCards(cards []Card) string {
	if len(cards) == 0 {
		if t.Width > 0 && t.Height > 0 {
			return t.renderer.Place(t.Width, t.Height, lipgloss.Left, lipgloss.Top, "")
		}
		return ""
	}

	align := lipgloss.Right
	if t.anchoredLeft() {
		align = lipgloss.Left
	}

	rendered := make([]string, 0, len(cards)*2)
	for i, c := range cards {
		if i > 0 && t.Gap > 0 {
			rendered = append(rendered, strings.Repeat("\n", t.Gap-1))
		}
		rendered = append(rendered, t.RenderCard(c))
	}
	column := lipgloss.JoinVertical(align, rendered...)

	if t.Width <= 0 || t.Height <= 0 {
		return column
	}

	vertical := lipgloss.Top
	if t.Position == config.PositionBottomLeft || t.Position == config.PositionBottomRight {
		vertical = lipgloss.Bottom
	}
	return t.renderer.Place(t.Width, t.Height, align, vertical, column)
}

func (t *Terminal) anchoredLeft() bool {
	return t.Position == config.PositionTopLeft || t.Position == config.PositionBottomLeft
}
