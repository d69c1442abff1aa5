package audio

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/toastui/internal/center"
	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/model"
)

// Manager plays the configured sound for each new toast.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher
	config  *config.DaemonConfig

	sounds  map[model.Severity]string
	onError func(err error)

	// play is replaced in tests.
	play func(path string) error
}

// NewManager creates an audio manager.
func NewManager(cfg *config.DaemonConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}

	player := NewPlayer(logger)
	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, logger),
		config:  cfg,
		sounds:  make(map[model.Severity]string),
		play:    player.Play,
	}
	m.loadSoundConfig()
	return m
}

// SetErrorCallback sets the callback invoked when a sound fails to play.
func (m *Manager) SetErrorCallback(callback func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = callback
}

// loadSoundConfig resolves the sound for every severity from the config.
// Missing files are logged and skipped.
func (m *Manager) loadSoundConfig() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.player.SetVolume(float64(m.config.Audio.Volume) / 100.0)
	m.sounds = make(map[model.Severity]string)

	for _, sev := range model.Severities() {
		path := m.config.SoundFor(sev)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "severity", sev, "path", path)
			continue
		}
		m.sounds[sev] = path
		m.logger.Debug("loaded sound", "severity", sev, "path", path)
	}
}

// Sound returns the file played for a severity.
func (m *Manager) Sound(sev model.Severity) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.sounds[sev.Normalize()]
	return path, ok
}

func (m *Manager) soundPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.sounds))
	for _, path := range m.sounds {
		paths = append(paths, path)
	}
	return paths
}

// Start preloads the configured sounds and watches them for changes.
func (m *Manager) Start(ctx context.Context) error {
	paths := m.soundPaths()
	m.preload(paths)

	if err := m.watcher.Start(ctx); err != nil {
		return err
	}
	m.logger.Info("audio manager started", "sounds", len(paths))
	return nil
}

func (m *Manager) preload(paths []string) {
	if !m.enabled() {
		return
	}
	for _, path := range paths {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}
}

// Stop shuts down the audio manager.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

func (m *Manager) enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Audio.Enabled
}

// PlayFor plays the sound configured for a severity, if any.
func (m *Manager) PlayFor(sev model.Severity) error {
	if !m.enabled() {
		return nil
	}
	path, ok := m.Sound(sev)
	if !ok {
		return nil
	}

	m.mu.RLock()
	play := m.play
	m.mu.RUnlock()
	return play(path)
}

// HandleEvent is a center listener playing a sound for each added toast.
func (m *Manager) HandleEvent(ev center.Event) {
	if ev.Type != center.EventAdded || ev.Toast == nil {
		return
	}
	if err := m.PlayFor(ev.Toast.Severity); err != nil {
		m.mu.RLock()
		onError := m.onError
		m.mu.RUnlock()
		if onError != nil {
			onError(err)
		}
	}
}

// UpdateConfig applies a reloaded configuration.
func (m *Manager) UpdateConfig(cfg *config.DaemonConfig) {
	if cfg == nil {
		return
	}
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	m.player.ClearCache()
	m.loadSoundConfig()
	m.preload(m.soundPaths())
	m.logger.Debug("audio manager config updated")
}
