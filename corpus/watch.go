package corpus

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchEventBuffer = 256

// WatchConfig configures corpus file watching for watch-mode extraction.
type WatchConfig struct {
	// DebounceDelay is how long to wait for further changes before
	// signaling. Zero uses 500ms.
	DebounceDelay time.Duration `yaml:"debounce_delay"`
}

// Watcher signals when corpus content changes. Change events are
// debounced and suppressed when file content hashes are unchanged, so
// editor churn does not trigger redundant extraction runs.
type Watcher struct {
	root    string
	config  WatchConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]struct{}

	hashMu sync.Mutex
	hashes map[string]string

	changes chan []string
}

// NewWatcher creates a Watcher over the corpus root.
func NewWatcher(root string, config WatchConfig, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = 500 * time.Millisecond
	}

	return &Watcher{
		root:    root,
		config:  config,
		watcher: fsw,
		logger:  logger,
		pending: make(map[string]struct{}),
		hashes:  make(map[string]string),
		changes: make(chan []string, watchEventBuffer),
	}, nil
}

// Changes returns a channel carrying batches of changed relative paths.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

// Start begins watching. The changes channel closes when ctx is
// canceled or the underlying watcher shuts down.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.root); err != nil {
		return err
	}
	go w.processEvents(ctx)
	w.logger.Info("Corpus watcher started",
		"root", w.root,
		"debounce", w.config.DebounceDelay)
	return nil
}

// Stop closes the underlying filesystem watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if path != root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.changes)
	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
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
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories need their own watches.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(event.Name), ".") {
				if err := w.watcher.Add(event.Name); err != nil {
					w.logger.Warn("Failed to watch new directory",
						"path", event.Name, "error", err)
				}
			}
			return
		}
	}

	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] = struct{}{}
	w.pendingMu.Unlock()
}

// flushPending emits a batch of paths whose content actually changed.
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	var changed []string
	for _, path := range paths {
		rel, _ := filepath.Rel(w.root, path)

		data, err := os.ReadFile(path)
		if err != nil {
			// Deleted or unreadable still counts as a change.
			w.forgetHash(rel)
			changed = append(changed, rel)
			continue
		}

		hash := ContentHash(data)
		if !w.updateHash(rel, hash) {
			continue
		}
		changed = append(changed, rel)
	}

	if len(changed) == 0 {
		return
	}

	select {
	case w.changes <- changed:
	default:
		w.logger.Warn("Change channel full, dropping batch", "count", len(changed))
	}
}

// updateHash records the hash and reports whether it differs from the
// previously recorded one.
func (w *Watcher) updateHash(rel, hash string) bool {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	if w.hashes[rel] == hash {
		return false
	}
	w.hashes[rel] = hash
	return true
}

func (w *Watcher) forgetHash(rel string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	delete(w.hashes, rel)
}
