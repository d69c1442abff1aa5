package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toastui/internal/clock"
	"github.com/jmylchreest/toastui/internal/model"
)

// DefaultMinInterval is the window within which a repeated notice is dropped.
const DefaultMinInterval = 5 * time.Second

// Poster shows a toast. *center.Center satisfies it through PosterFunc.
type Poster interface {
	Post(message string, sev model.Severity, duration time.Duration)
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(message string, sev model.Severity, duration time.Duration)

// Post calls f.
func (f PosterFunc) Post(message string, sev model.Severity, duration time.Duration) {
	f(message, sev, duration)
}

// InternalNotifier posts toasts about the daemon's own events, such as a
// config reload. Notices sharing a key are rate limited.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	clock  clock.Clock

	poster Poster

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration

	enabled bool
}

// NewInternalNotifier creates a notifier posting to p.
func NewInternalNotifier(p Poster, clk clock.Clock, logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		clock:          clk,
		poster:         p,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    DefaultMinInterval,
		enabled:        true,
	}
}

// SetEnabled enables or disables internal notices.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notices with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify posts a notice unless one with the same key was posted within the
// minimum interval. It reports whether the notice was posted.
func (n *InternalNotifier) Notify(key, message string, sev model.Severity) bool {
	n.mu.Lock()
	if !n.enabled || n.poster == nil {
		n.mu.Unlock()
		return false
	}

	now := n.clock.Now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notice rate-limited", "key", key)
		return false
	}
	n.lastNotifyTime[key] = now
	poster := n.poster
	n.mu.Unlock()

	n.logger.Debug("posting internal notice", "key", key, "severity", sev)
	poster.Post(message, sev, 0)
	return true
}

// NotifyConfigReloaded posts a notice that the config was reloaded.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration reloaded", model.SeverityInfo)
}

// NotifyConfigError posts a notice that a changed config was rejected.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration error: "+err.Error(), model.SeverityWarning)
}

// NotifyThemeReloaded posts a notice that a stylesheet was reloaded.
func (n *InternalNotifier) NotifyThemeReloaded(themeName string) {
	n.Notify("theme-reload", "Theme '"+themeName+"' reloaded", model.SeverityInfo)
}

// NotifyStartup posts a notice that the daemon is running.
func (n *InternalNotifier) NotifyStartup(version string) {
	n.Notify("startup", "toastuid "+version+" started", model.SeveritySuccess)
}

// NotifyAudioError posts a notice that a sound failed to play.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify("audio-error", "Audio error: "+err.Error(), model.SeverityError)
}
