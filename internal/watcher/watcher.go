// Package watcher reloads the recipe library when its data files are rewritten.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is called once the watched files have settled after a change.
type ReloadFunc func(ctx context.Context) error

// Watcher watches a fixed set of files and calls a reload function after
// they stop changing. A rebuild rewrites several files in sequence, so
// events are collected until the files have been quiet for the debounce time.
type Watcher struct {
	files  map[string]bool
	dirs   []string
	reload ReloadFunc

	pending   bool
	lastEvent time.Time
	mu        sync.Mutex

	debounceTime time.Duration

	// callback for reload results
	onReload func(err error)
}

// Option configures the watcher.
type Option func(*Watcher)

// WithDebounceTime sets how long the files must be quiet before reloading.
func WithDebounceTime(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceTime = d
	}
}

// WithReloadCallback sets a callback invoked after every reload attempt.
func WithReloadCallback(fn func(err error)) Option {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// New creates a watcher over the given files. The files need not exist yet;
// their parent directories are watched.
func New(files []string, reload ReloadFunc, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		files:        make(map[string]bool, len(files)),
		reload:       reload,
		debounceTime: 500 * time.Millisecond,
		onReload:     func(error) {}, // noop default
	}

	seen := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		w.files[abs] = true

		dir := filepath.Dir(abs)
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Start begins watching. Blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	log.Info("Watching data files for changes", "dirs", w.dirs)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("Watcher error", "error", err)
		}
	}
}

// handleEvent marks a reload as pending when a watched file was written or
// replaced. Removals alone are ignored; the current library stays loaded.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.files[filepath.Clean(event.Name)] {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	log.Debug("Data file changed", "path", event.Name, "op", event.Op.String())

	w.mu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.mu.Unlock()
}

// processDebounced checks for settled changes periodically.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(w.debounceTime / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// flush reloads when a change is pending and the files have been quiet long enough.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if !w.pending || time.Since(w.lastEvent) < w.debounceTime {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	err := w.reload(ctx)
	if err != nil {
		log.Error("Failed to reload library", "error", err)
	}
	w.onReload(err)
}
