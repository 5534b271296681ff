package rates

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the seed-file watcher.
type WatcherConfig struct {
	// Path is the rates YAML file to watch.
	Path string

	// DebounceDelay is how long to wait for more changes before reloading.
	DebounceDelay time.Duration

	// Logger for logging events.
	Logger *slog.Logger
}

// Watcher reloads the rate cache when the seed file changes on disk. Dev-mode
// convenience only; the explicit settings API remains the production path.
type Watcher struct {
	config  WatcherConfig
	cache   *Cache
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// NewWatcher creates a watcher that refreshes the given cache.
func NewWatcher(config WatcherConfig, cache *Cache) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceDelay == 0 {
		config.DebounceDelay = 100 * time.Millisecond
	}

	return &Watcher{
		config:  config,
		cache:   cache,
		watcher: fsw,
		logger:  logger,
	}, nil
}

// Start watches until the context is cancelled. Editors replace files rather
// than writing in place, so the parent directory is watched and events are
// filtered to the seed file's name.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.config.Path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	defer w.watcher.Close()

	w.logger.Info("Watching rates file", "path", w.config.Path)

	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.config.Path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(w.config.DebounceDelay)
			} else {
				debounce.Reset(w.config.DebounceDelay)
			}
			fire = debounce.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Rates watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	rates, err := LoadSeedFile(w.config.Path)
	if err != nil {
		// Keep serving the previous snapshot; a half-saved file is normal.
		w.logger.Warn("Rates file reload failed", "path", w.config.Path, "error", err)
		return
	}
	if err := w.cache.Refresh(rates); err != nil {
		w.logger.Warn("Rates file rejected", "path", w.config.Path, "error", err)
		return
	}
	w.logger.Info("Rates reloaded from file", "path", w.config.Path)
}
