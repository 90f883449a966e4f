package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a local directory and emits debounced events for
// files that settled after a create or write. It feeds the auto-upload
// loop: every emitted path is a candidate for ingestion into the vault.
type Watcher struct {
	rootPath       string
	watcher        *fsnotify.Watcher
	debouncer      *Debouncer
	ignorePatterns []string
	logger         *slog.Logger
}

// NewWatcher creates a watcher over rootPath. Ignore patterns are
// doublestar globs matched against slash-separated paths relative to
// the root.
func NewWatcher(rootPath string, debounce int, ignorePatterns []string, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		rootPath:       rootPath,
		watcher:        fsWatcher,
		debouncer:      NewDebouncer(debounce),
		ignorePatterns: ignorePatterns,
		logger:         logger,
	}, nil
}

// Start begins watching the root directory and all subdirectories.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.rootPath); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("watcher started",
		"path", w.rootPath,
		"ignore_patterns", len(w.ignorePatterns),
	)

	return nil
}

// Events returns the channel of debounced file events.
func (w *Watcher) Events() <-chan FileEvent {
	return w.debouncer.Events()
}

// Stop stops the watcher and flushes pending events.
func (w *Watcher) Stop() error {
	w.debouncer.Stop()
	return w.watcher.Close()
}

// addRecursive adds a directory and all subdirectories to the watcher.
func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("error walking path", "path", path, "error", err)
			return nil // Continue walking
		}

		relPath, _ := filepath.Rel(w.rootPath, path)
		relPath = filepath.ToSlash(relPath)

		if w.shouldIgnore(relPath) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Only directories carry fsnotify watches.
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("failed to watch directory", "path", path, "error", err)
			}
		}

		return nil
	})
}

// processEvents handles fsnotify events until the context ends.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			relPath, err := filepath.Rel(w.rootPath, event.Name)
			if err != nil {
				continue
			}
			relPath = filepath.ToSlash(relPath)

			if w.shouldIgnore(relPath) {
				continue
			}

			w.handleEvent(event, relPath)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// handleEvent maps one fsnotify event onto the debouncer.
func (w *Watcher) handleEvent(event fsnotify.Event, relPath string) {
	info, statErr := os.Stat(event.Name)

	switch {
	case event.Has(fsnotify.Create):
		// New subdirectories join the watch; only files are upload
		// candidates.
		if statErr == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("failed to add new directory", "path", event.Name, "error", err)
			}
			return
		}
		w.debouncer.Add(relPath, event.Name, EventCreate)

	case event.Has(fsnotify.Write):
		if statErr == nil && info.IsDir() {
			return
		}
		w.debouncer.Add(relPath, event.Name, EventModify)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A removed file cannot be uploaded; drop anything pending.
		w.debouncer.Drop(relPath)

	case event.Has(fsnotify.Chmod):
		// Ignore chmod events.
	}
}

// shouldIgnore checks if a path matches any ignore pattern.
func (w *Watcher) shouldIgnore(relPath string) bool {
	if relPath == "." {
		return false
	}
	for _, pattern := range w.ignorePatterns {
		matched, err := doublestar.Match(pattern, relPath)
		if err != nil {
			w.logger.Warn("invalid ignore pattern", "pattern", pattern, "error", err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
