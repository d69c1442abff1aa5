package audio

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates cached sounds when their files change on disk.
type Watcher struct {
	mu      sync.Mutex
	logger  *slog.Logger
	player  *Player
	watcher *fsnotify.Watcher

	paths map[string]bool // cleaned sound paths
	dirs  map[string]bool // directories added to fsnotify

	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher invalidating player's cache.
func NewWatcher(player *Player, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger: logger,
		player: player,
		paths:  make(map[string]bool),
		dirs:   make(map[string]bool),
	}
}

// Watch adds a sound file. Its directory is watched, since editors and
// package managers usually replace files rather than write them in place.
func (w *Watcher) Watch(path string) {
	if path == "" {
		return
	}
	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.paths[path] = true
	w.addDirLocked(filepath.Dir(path))
}

func (w *Watcher) addDirLocked(dir string) {
	if w.watcher == nil || w.dirs[dir] {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Debug("cannot watch sound directory", "dir", dir, "error", err)
		return
	}
	w.dirs[dir] = true
}

// Start begins watching.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create audio watcher: %w", err)
	}
	w.watcher = fw
	w.dirs = make(map[string]bool)
	for path := range w.paths {
		w.addDirLocked(filepath.Dir(path))
	}

	w.running = true
	w.doneCh = make(chan struct{})
	go w.watchLoop(ctx, fw, w.doneCh)

	w.logger.Debug("audio watcher started", "files", len(w.paths))
	return nil
}

// Stop stops watching and waits for the watch goroutine.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	fw := w.watcher
	w.watcher = nil
	done := w.doneCh
	w.mu.Unlock()

	_ = fw.Close()
	<-done
	w.logger.Debug("audio watcher stopped")
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) watchLoop(ctx context.Context, fw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("audio watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	w.mu.Lock()
	watched := w.paths[path]
	w.mu.Unlock()

	if !watched || w.player == nil {
		return
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.logger.Debug("audio file changed, invalidating cache", "path", path)
		w.player.InvalidateCache(path)
	}
}
