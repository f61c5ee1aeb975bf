package audio

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Invalidator drops cached data for a file.
type Invalidator interface {
	InvalidateCache(path string)
}

// CacheWatcher watches decoded sound files and invalidates their cache entries
// when they are rewritten, removed or renamed.
type CacheWatcher struct {
	mu      sync.Mutex
	logger  *slog.Logger
	target  Invalidator
	watcher *fsnotify.Watcher

	// Watched directories and the files of interest inside them
	dirs  map[string]bool
	files map[string]bool

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewCacheWatcher creates a watcher invalidating entries in target.
func NewCacheWatcher(target Invalidator, logger *slog.Logger) (*CacheWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &CacheWatcher{
		logger:  logger,
		target:  target,
		watcher: watcher,
		dirs:    make(map[string]bool),
		files:   make(map[string]bool),
	}, nil
}

// Watch adds a file to the watch list. Its directory is watched, which
// survives editors that replace files via rename.
func (w *CacheWatcher) Watch(path string) error {
	if path == "" {
		return nil
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	w.files[path] = true
	return nil
}

// Watching reports whether path is on the watch list.
func (w *CacheWatcher) Watching(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[filepath.Clean(path)]
}

// Start begins processing file events.
func (w *CacheWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.watchLoop(ctx)

	w.logger.Debug("sound cache watcher started")
	return nil
}

// Stop stops the watcher and releases the fsnotify handle.
func (w *CacheWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
	w.logger.Debug("sound cache watcher stopped")
	return w.watcher.Close()
}

func (w *CacheWatcher) watchLoop(ctx context.Context) {
	defer close(w.doneCh)

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
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("sound cache watcher error", "error", err)
		}
	}
}

func (w *CacheWatcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	path := filepath.Clean(event.Name)
	if !w.Watching(path) {
		return
	}

	w.logger.Debug("sound file changed, invalidating cache", "path", path, "op", event.Op.String())
	w.target.InvalidateCache(path)
}
