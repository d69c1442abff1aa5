package tui

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastui/internal/center"
	"github.com/jmylchreest/toastui/internal/clock"
	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/surface"
)

func newTestModel(t *testing.T) (Model, *center.Center, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC))
	c := center.New(surface.NewDocument(), clk, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	cfg := config.DefaultConfig()
	cfg.TUI.ShowHelp = false
	m := New(cfg, c, clk, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	return updated.(Model), c, clk
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestModel_SpawnKeys(t *testing.T) {
	tests := []struct {
		key  string
		want model.Severity
	}{
		{"s", model.SeveritySuccess},
		{"e", model.SeverityError},
		{"w", model.SeverityWarning},
		{"i", model.SeverityInfo},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, c, _ := newTestModel(t)
			m = press(t, m, tt.key)

			active := c.Active()
			require.Len(t, active, 1)
			assert.Equal(t, tt.want, active[0].Severity)
			assert.Equal(t, sampleMessages[tt.want], active[0].Message)
			assert.Len(t, m.toasts, 1)
		})
	}
}

func TestModel_Compose(t *testing.T) {
	m, c, _ := newTestModel(t)

	m = press(t, m, "n")
	assert.Equal(t, ModeCompose, m.mode)

	// q and s are typed, not treated as quit or spawn.
	m = press(t, m, "q", "s", "tab", "tab", "enter")
	assert.Equal(t, ModeSurface, m.mode)

	active := c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "qs", active[0].Message)
	assert.Equal(t, model.SeverityError, active[0].Severity, "info -> success -> error")
}

func TestModel_ComposeEmptyOrCancelled(t *testing.T) {
	m, c, _ := newTestModel(t)

	m = press(t, m, "n", "enter")
	assert.Equal(t, 0, c.Len())

	m = press(t, m, "n", "h", "i", "esc")
	assert.Equal(t, ModeSurface, m.mode)
	assert.Equal(t, 0, c.Len())
}

func TestModel_DismissNewestAndClear(t *testing.T) {
	m, c, _ := newTestModel(t)
	m = press(t, m, "s", "e", "w")
	require.Equal(t, 3, c.Len())

	m = press(t, m, "d")
	active := c.Active()
	require.Len(t, active, 2)
	assert.Equal(t, model.SeveritySuccess, active[0].Severity)
	assert.Equal(t, model.SeverityError, active[1].Severity)

	m = press(t, m, "c")
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, m.toasts)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.NotNil(t, cmd)
	assert.Equal(t, statusMsg{text: "Nothing to dismiss"}, cmd())
}

func TestModel_ListModeDismissesSelected(t *testing.T) {
	m, c, _ := newTestModel(t)
	m = press(t, m, "s", "e", "l")
	assert.Equal(t, ModeList, m.mode)

	// The list starts on the oldest toast.
	m = press(t, m, "d")
	active := c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, model.SeverityError, active[0].Severity)

	m = press(t, m, "esc")
	assert.Equal(t, ModeSurface, m.mode)
}

func TestModel_ViewFollowsCenter(t *testing.T) {
	m, c, clk := newTestModel(t)
	c.Warning("Battery low", 500*time.Millisecond)

	assert.Contains(t, m.View(), "Battery low")

	clk.Advance(500*time.Millisecond + 300*time.Millisecond)
	updated, cmd := m.Update(tickMsg(clk.Now()))
	m = updated.(Model)
	assert.NotNil(t, cmd)
	assert.NotContains(t, m.View(), "Battery low")
	assert.Empty(t, m.toasts)
}

func TestModel_EventRefresh(t *testing.T) {
	m, c, _ := newTestModel(t)
	c.Info("hello", 0)

	updated, _ := m.Update(centerEventMsg{event: center.Event{Type: center.EventAdded}})
	m = updated.(Model)
	require.Len(t, m.toasts, 1)
	assert.Equal(t, "hello", m.toasts[0].Message)
}

func TestModel_HelpAndQuit(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = press(t, m, "?")
	assert.Equal(t, ModeHelp, m.mode)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m = press(t, m, "esc")
	assert.Equal(t, ModeSurface, m.mode)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_NotReady(t *testing.T) {
	clk := clock.NewManual(time.Now())
	c := center.New(nil, clk, nil, nil)
	m := New(nil, c, clk, nil)
	assert.Equal(t, "Initializing...", m.View())
	assert.Equal(t, "press ? for help", m.statusMsg)
}

func TestToastItem_Description(t *testing.T) {
	created := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	n := &model.Notification{
		Message:    "Saved",
		Severity:   model.SeveritySuccess,
		State:      model.StateVisible,
		DurationMS: 3000,
		CreatedAt:  created,
	}

	item := toastItem{toast: n, now: created.Add(time.Second)}
	assert.Equal(t, "✔ Saved", item.Title())
	assert.Equal(t, "success · visible · 1 second ago · 2.0s left", item.Description())

	item.now = created.Add(5 * time.Second)
	assert.Equal(t, "success · visible · 5 seconds ago", item.Description())
}

func TestNextSeverity(t *testing.T) {
	assert.Equal(t, model.SeverityError, nextSeverity(model.SeveritySuccess))
	assert.Equal(t, model.SeveritySuccess, nextSeverity(model.SeverityInfo))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hel…", truncate("hello", 4))
	assert.Equal(t, "hello", truncate("hello", 0))
}

func TestDetectClipboardCommand(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	tests := []struct {
		name      string
		command   string
		available []string
		want      string
	}{
		{name: "configured wins", command: "pbcopy", available: []string{"wl-copy"}, want: "pbcopy"},
		{name: "wayland", available: []string{"wl-copy", "xclip"}, want: "wl-copy"},
		{name: "xclip", available: []string{"xclip", "xsel"}, want: "xclip -selection clipboard"},
		{name: "xsel", available: []string{"xsel"}, want: "xsel --clipboard --input"},
		{name: "none", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookPath = func(bin string) (string, error) {
				for _, a := range tt.available {
					if a == bin {
						return "/usr/bin/" + bin, nil
					}
				}
				return "", errors.New("not found")
			}
			cfg := config.DefaultConfig()
			cfg.Clipboard.Command = tt.command
			assert.Equal(t, tt.want, detectClipboardCommand(cfg))
		})
	}
}
