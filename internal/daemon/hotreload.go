package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jmylchreest/toastui/internal/config"
)

// DefaultDebounce is how long the watcher waits after the last file event
// before reloading. Editors often write a file in several steps.
const DefaultDebounce = 150 * time.Millisecond

// ConfigWatcher watches the daemon config file and the themes directory.
// A changed config is loaded and validated before it is handed on; an invalid
// file leaves the current config in place.
type ConfigWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	configPath string
	themesDir  string
	debounce   time.Duration

	currentConfig *config.DaemonConfig

	onReloadCallback func(newConfig *config.DaemonConfig)
	onErrorCallback  func(err error)
	onThemeCallback  func(path string)

	watcher *fsnotify.Watcher
	timers  map[string]*time.Timer

	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewConfigWatcher creates a watcher for the config file at configPath
// (empty for the default location) and the theme stylesheets in themesDir
// (empty to skip theme watching).
func NewConfigWatcher(configPath, themesDir string, logger *slog.Logger) *ConfigWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if configPath == "" {
		configPath = config.DaemonConfigPath()
	}
	return &ConfigWatcher{
		logger:     logger,
		configPath: configPath,
		themesDir:  themesDir,
		debounce:   DefaultDebounce,
		timers:     make(map[string]*time.Timer),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// SetDebounce sets the quiet period before a change is acted on.
func (w *ConfigWatcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// SetReloadCallback sets the callback to invoke when config is successfully reloaded.
func (w *ConfigWatcher) SetReloadCallback(callback func(newConfig *config.DaemonConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReloadCallback = callback
}

// SetErrorCallback sets the callback to invoke when a changed config fails to load.
func (w *ConfigWatcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onErrorCallback = callback
}

// SetThemeCallback sets the callback to invoke when a stylesheet changes.
func (w *ConfigWatcher) SetThemeCallback(callback func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onThemeCallback = callback
}

// Start begins watching. Directories that do not exist yet are created so
// that files added later are picked up.
func (w *ConfigWatcher) Start(ctx context.Context, initialConfig *config.DaemonConfig) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	dirs := []string{filepath.Dir(w.configPath)}
	if w.themesDir != "" && w.themesDir != dirs[0] {
		dirs = append(dirs, w.themesDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.logger.Debug("cannot create watched directory", "dir", dir, "error", err)
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			w.mu.Unlock()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.watcher = watcher
	w.currentConfig = initialConfig
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.watchLoop(ctx)

	w.logger.Debug("config watcher started", "path", w.configPath, "themes", w.themesDir)
	return nil
}

// Stop stops watching and waits for the watch goroutine to exit.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	for key, t := range w.timers {
		t.Stop()
		delete(w.timers, key)
	}
	w.mu.Unlock()

	<-w.doneCh
	w.logger.Debug("config watcher stopped")
}

// GetCurrentConfig returns the last config that loaded successfully.
func (w *ConfigWatcher) GetCurrentConfig() *config.DaemonConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.currentConfig
}

func (w *ConfigWatcher) watchLoop(ctx context.Context) {
	defer close(w.doneCh)
	defer func() { _ = w.watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *ConfigWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	switch {
	case filepath.Clean(event.Name) == filepath.Clean(w.configPath):
		w.schedule("config", w.reloadConfig)
	case w.isThemeFile(event.Name):
		path := event.Name
		w.schedule("theme:"+path, func() { w.themeChanged(path) })
	}
}

func (w *ConfigWatcher) isThemeFile(name string) bool {
	if w.themesDir == "" {
		return false
	}
	return filepath.Dir(filepath.Clean(name)) == filepath.Clean(w.themesDir) &&
		strings.EqualFold(filepath.Ext(name), ".css")
}

// schedule runs fn once no further events for key arrive within the debounce.
func (w *ConfigWatcher) schedule(key string, fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if t, ok := w.timers[key]; ok {
		t.Stop()
	}
	w.timers[key] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, key)
		running := w.running
		w.mu.Unlock()
		if running {
			fn()
		}
	})
}

func (w *ConfigWatcher) reloadConfig() {
	w.mu.RLock()
	onReload := w.onReloadCallback
	onError := w.onErrorCallback
	w.mu.RUnlock()

	newConfig, err := config.LoadDaemonConfig(w.configPath)
	if err != nil {
		w.logger.Warn("config reload failed, keeping current config", "path", w.configPath, "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}

	w.mu.Lock()
	w.currentConfig = newConfig
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.configPath)
	if onReload != nil {
		onReload(newConfig)
	}
}

func (w *ConfigWatcher) themeChanged(path string) {
	w.mu.RLock()
	onTheme := w.onThemeCallback
	w.mu.RUnlock()

	w.logger.Debug("theme file changed", "path", path)
	if onTheme != nil {
		onTheme(path)
	}
}
