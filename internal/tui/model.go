// Package tui provides the BubbleTea-based terminal user interface: a local
// notification center drawn as a terminal surface.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastui/internal/center"
	"github.com/jmylchreest/toastui/internal/clock"
	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/render"
	"github.com/jmylchreest/toastui/internal/surface"
	"github.com/jmylchreest/toastui/internal/theme"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeSurface Mode = iota
	ModeList
	ModeCompose
	ModeHelp
)

// tickInterval drives re-rendering between center events so that slide
// offsets and ages stay current.
const tickInterval = 50 * time.Millisecond

// sampleMessages are posted by the single-key spawn bindings.
var sampleMessages = map[model.Severity]string{
	model.SeveritySuccess: "Changes saved",
	model.SeverityError:   "Something went wrong",
	model.SeverityWarning: "Disk space is running low",
	model.SeverityInfo:    "A new version is available",
}

// Model is the main TUI model.
type Model struct {
	cfg    *config.Config
	center *center.Center
	clock  clock.Clock
	events <-chan center.Event

	mode Mode

	// Components
	list    list.Model
	compose textinput.Model
	help    help.Model
	term    *render.Terminal

	// State
	toasts          []*model.Notification
	composeSeverity model.Severity
	width           int
	height          int
	ready           bool

	keys KeyMap

	statusMsg string
	statusErr bool
}

// toastItem wraps a live toast for the list component.
type toastItem struct {
	toast *model.Notification
	now   time.Time
}

func (i toastItem) Title() string {
	return theme.For(i.toast.Severity).Glyph + " " + i.toast.Message
}

func (i toastItem) Description() string {
	desc := fmt.Sprintf("%s · %s · %s",
		i.toast.Severity,
		i.toast.State,
		humanize.RelTime(i.toast.CreatedAt, i.now, "ago", "from now"))
	if left := i.toast.CreatedAt.Add(i.toast.Duration()).Sub(i.now); left > 0 {
		desc += fmt.Sprintf(" · %.1fs left", left.Seconds())
	}
	return desc
}

func (i toastItem) FilterValue() string {
	return i.toast.Message + " " + i.toast.Severity.String()
}

// toastDelegate colors list items by severity and dims leaving toasts.
type toastDelegate struct {
	list.DefaultDelegate
}

func newToastDelegate() toastDelegate {
	return toastDelegate{DefaultDelegate: list.NewDefaultDelegate()}
}

// Render renders one list item using the default delegate's layout.
func (d toastDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(toastItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	isSelected := index == m.Index()
	titleStyle := d.Styles.NormalTitle
	descStyle := d.Styles.NormalDesc
	if isSelected {
		titleStyle = d.Styles.SelectedTitle
		descStyle = d.Styles.SelectedDesc
	}
	titleStyle = titleStyle.Foreground(theme.For(ti.toast.Severity).Foreground)
	if ti.toast.State == model.StateLeaving {
		titleStyle = titleStyle.Faint(true)
		descStyle = descStyle.Faint(true)
	}

	itemWidth := m.Width() - d.Styles.NormalTitle.GetHorizontalPadding()
	title := truncate(ti.Title(), itemWidth)
	desc := truncate(ti.Description(), itemWidth)

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(desc))
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// New creates a TUI model driving c. events delivers the center's events;
// a nil channel relies on the tick alone.
func New(cfg *config.Config, c *center.Center, clk clock.Clock, events <-chan center.Event) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	l := list.New(nil, newToastDelegate(), 0, 0)
	l.Title = "Live toasts"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	compose := textinput.New()
	compose.Placeholder = "Type a message..."
	compose.CharLimit = 200

	term := render.NewTerminal(nil, c.Config())
	if cfg.TUI.Position != "" {
		term.Position = config.Position(cfg.TUI.Position)
	}

	m := Model{
		cfg:             cfg,
		center:          c,
		clock:           clk,
		events:          events,
		mode:            ModeSurface,
		list:            l,
		compose:         compose,
		help:            help.New(),
		term:            term,
		composeSeverity: model.SeverityInfo,
		keys:            DefaultKeyMap(),
	}
	if cfg.TUI.ShowHelp {
		m.statusMsg = "press ? for help"
	}
	return m
}

// Init starts the event and tick loops.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent, tick())
}

type centerEventMsg struct {
	event center.Event
}

type tickMsg time.Time

// waitForEvent blocks until the center emits.
func (m Model) waitForEvent() tea.Msg {
	if m.events == nil {
		return nil
	}
	ev, ok := <-m.events
	if !ok {
		return nil
	}
	return centerEventMsg{event: ev}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case centerEventMsg:
		m.refresh()
		return m, m.waitForEvent

	case tickMsg:
		m.refresh()
		return m, tick()

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, status("Copy failed: "+msg.err.Error(), true)
		}
		return m, status("Copied to clipboard", false)
	}

	if m.mode == ModeCompose {
		var cmd tea.Cmd
		m.compose, cmd = m.compose.Update(msg)
		return m, cmd
	}
	return m, nil
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// layout sizes the list and the terminal surface for the current mode.
func (m *Model) layout() {
	bodyHeight := max(m.height-1, 0)
	if m.mode == ModeList {
		listWidth := m.width / 2
		m.list.SetSize(listWidth, bodyHeight)
		m.term.SetSize(m.width-listWidth, bodyHeight)
		return
	}
	m.term.SetSize(m.width, bodyHeight)
}

// refresh reloads the live toasts from the center.
func (m *Model) refresh() {
	m.toasts = m.center.Active()
	now := m.clock.Now()
	items := make([]list.Item, len(m.toasts))
	for i, n := range m.toasts {
		items[i] = toastItem{toast: n, now: now}
	}
	m.list.SetItems(items)
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeCompose {
		return m.handleComposeKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeSurface
		} else {
			m.mode = ModeHelp
		}
		m.layout()
		return m, nil
	}

	if m.mode == ModeHelp {
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeSurface
			m.layout()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Success):
		return m.spawn(model.SeveritySuccess)
	case key.Matches(msg, m.keys.Error):
		return m.spawn(model.SeverityError)
	case key.Matches(msg, m.keys.Warning):
		return m.spawn(model.SeverityWarning)
	case key.Matches(msg, m.keys.Info):
		return m.spawn(model.SeverityInfo)

	case key.Matches(msg, m.keys.Compose):
		m.mode = ModeCompose
		m.compose.SetValue("")
		m.compose.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Dismiss):
		return m.dismiss()

	case key.Matches(msg, m.keys.Clear):
		n := m.center.ClearAll()
		m.refresh()
		return m, status(fmt.Sprintf("Cleared %d toasts", n), false)

	case key.Matches(msg, m.keys.ToggleList):
		if m.mode == ModeList {
			m.mode = ModeSurface
		} else {
			m.mode = ModeList
		}
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if n := m.selected(); n != nil {
			return m, m.copyToClipboard(n.Message)
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.mode == ModeList {
			m.mode = ModeSurface
			m.layout()
		}
		return m, nil
	}

	if m.mode == ModeList {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleComposeKey handles keys while typing a message.
func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.mode = ModeSurface
		m.compose.Blur()
		return m, nil

	case key.Matches(msg, m.keys.NextSeverity):
		m.composeSeverity = nextSeverity(m.composeSeverity)
		return m, nil

	case key.Matches(msg, m.keys.Send):
		text := m.compose.Value()
		m.mode = ModeSurface
		m.compose.Blur()
		m.compose.SetValue("")
		if text == "" {
			return m, nil
		}
		m.center.Notify(text, m.composeSeverity, 0)
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	return m, cmd
}

func nextSeverity(s model.Severity) model.Severity {
	all := model.Severities()
	for i, sev := range all {
		if sev == s {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

func (m Model) spawn(sev model.Severity) (tea.Model, tea.Cmd) {
	m.center.Notify(sampleMessages[sev], sev, 0)
	m.refresh()
	return m, nil
}

// dismiss removes the selected toast in list mode, otherwise the newest.
func (m Model) dismiss() (tea.Model, tea.Cmd) {
	target := m.selected()
	if m.mode != ModeList && len(m.toasts) > 0 {
		target = m.toasts[len(m.toasts)-1]
	}
	if target == nil {
		return m, status("Nothing to dismiss", false)
	}
	m.center.Dismiss(target.ID)
	m.refresh()
	return m, nil
}

func (m Model) selected() *model.Notification {
	if item, ok := m.list.SelectedItem().(toastItem); ok {
		return item.toast
	}
	if len(m.toasts) > 0 {
		return m.toasts[len(m.toasts)-1]
	}
	return nil
}

// copyToClipboard copies text to the system clipboard.
func (m Model) copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{err: copyText(text, m.cfg)}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.mode == ModeHelp {
		return m.viewHelp()
	}

	var frame string
	m.center.View(func(doc *surface.Document) {
		frame = m.term.Render(doc)
	})
	if m.mode == ModeList {
		frame = lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), frame)
	}
	return frame + "\n" + m.footer()
}

func (m Model) footer() string {
	if m.mode == ModeCompose {
		st := theme.For(m.composeSeverity)
		label := lipgloss.NewStyle().Foreground(st.Foreground).Bold(true).
			Render(st.Glyph + " " + m.composeSeverity.String())
		return label + " " + m.compose.View()
	}
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		return statusStyle.Render(m.statusMsg)
	}
	return m.buildKeybindBar(m.width)
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"
	s += m.help.FullHelpView(m.keys.FullHelp())
	s += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		"Press ? or esc to return")
	return s
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key      string
	desc     string
	priority int // lower = more important (shown first)
}

// buildKeybindBar builds a keybind bar that fits within the given width.
func (m Model) buildKeybindBar(width int) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	binds := []keybind{
		{"q", "quit", 1},
		{"s/e/w/i", "spawn", 2},
		{"n", "new", 3},
		{"?", "help", 4},
		{"d", "dismiss", 5},
		{"c", "clear", 6},
		{"l", "list", 7},
	}
	if m.mode == ModeList {
		binds = append(binds, keybind{"y", "copy", 8}, keybind{"j/k", "select", 9})
	}

	const separator = "  "
	result := ""
	plainLen := 0
	for _, b := range binds {
		plainItem := b.key + " " + b.desc
		testLen := plainLen + lipgloss.Width(plainItem)
		if result != "" {
			testLen += len(separator)
		}
		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += keyStyle.Render(b.key) + " " + b.desc
		plainLen = testLen
	}

	return style.Render(result)
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config       *config.Config
	DaemonConfig *config.DaemonConfig
	Logger       *slog.Logger
}

// Run starts a local center on a real-time loop and runs the TUI until the
// user quits.
func Run(ctx context.Context, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	loop := clock.NewLoop(logger)
	loop.Start(ctx)
	defer loop.Stop()

	c := center.New(surface.NewDocument(), loop, opts.DaemonConfig, logger)
	c.EnsureSurface()

	events := make(chan center.Event, 64)
	unsubscribe := c.Subscribe(func(ev center.Event) {
		// The tick redraws anyway, so a full buffer only drops a wake-up.
		select {
		case events <- ev:
		default:
		}
	})
	defer unsubscribe()

	m := New(opts.Config, c, loop, events)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	return err
}
