// Package watcher watches contract drop folders with fsnotify and feeds new
// or changed files into ingestion, with per-file debouncing so partially
// written uploads are picked up once.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches configured drop folders and invokes callbacks when
// contract files appear, change, or disappear.
type Watcher struct {
	folders    []string
	extensions []string
	onDrop     func(path string)
	onRemove   func(path string)
	debounce   time.Duration

	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	pending  map[string]*time.Timer
	done     chan struct{}
	started  bool
	stopOnce sync.Once
	logger   *zap.Logger // optional; when set, logs debug events
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output (folder changes, file events).
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the per-file settle delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a drop-folder watcher. onDrop fires (debounced) for created
// or rewritten contract files, onRemove for deleted ones. extensions filter
// which files count as contracts (empty = all).
func New(folders, extensions []string, onDrop, onRemove func(path string), opts ...Option) *Watcher {
	w := &Watcher{
		folders:    folders,
		extensions: extensions,
		onDrop:     onDrop,
		onRemove:   onRemove,
		debounce:   defaultDebounce,
		pending:    make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. Missing drop folders are created. Runs until ctx
// is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	if w.logger != nil {
		w.logger.Debug("drop-folder watcher starting",
			zap.Strings("folders", w.folders), zap.Strings("extensions", w.extensions))
	}
	for _, folder := range w.folders {
		if err := w.addFolderLocked(folder); err != nil {
			_ = w.watcher.Close()
			w.watcher = nil
			w.started = false
			w.mu.Unlock()
			return err
		}
	}
	w.mu.Unlock()
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if w.logger != nil {
		w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	}
	switch ev.Op {
	case fsnotify.Create, fsnotify.Write:
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			// A subfolder moved into the drop folder: watch it and pick
			// up the contracts already inside.
			w.watchSubfolder(path)
			return
		}
		if w.isContract(path) {
			w.debounceDrop(path)
		}
	case fsnotify.Remove:
		w.cancelPending(path)
		if w.isContract(path) && w.onRemove != nil {
			w.onRemove(path)
		}
	}
}

func (w *Watcher) watchSubfolder(dir string) {
	w.mu.Lock()
	watcher := w.watcher
	w.mu.Unlock()
	if watcher == nil {
		return
	}
	if err := watcher.Add(dir); err != nil {
		if w.logger != nil {
			w.logger.Debug("failed to watch subfolder", zap.String("path", dir), zap.Error(err))
		}
		return
	}
	w.syncFolder(dir)
}

func (w *Watcher) isContract(path string) bool {
	return matchExtension(path, w.extensions)
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// debounceDrop delays the callback until the file has stopped changing, so
// a contract copied in over several writes ingests once.
func (w *Watcher) debounceDrop(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	t := time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		logger := w.logger
		w.mu.Unlock()
		if logger != nil {
			logger.Debug("ingesting dropped contract", zap.String("path", path))
		}
		if w.onDrop != nil {
			w.onDrop(path)
		}
	})
	w.pending[path] = t
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) addFolderLocked(folder string) error {
	folder = filepath.Clean(folder)
	if _, err := os.Stat(folder); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(folder, 0755); err != nil {
			return err
		}
	}
	return filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) syncFolder(folder string) {
	w.mu.Lock()
	exts := append([]string(nil), w.extensions...)
	onDrop := w.onDrop
	logger := w.logger
	w.mu.Unlock()
	filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if matchExtension(path, exts) {
			if logger != nil {
				logger.Debug("sync ingesting existing contract", zap.String("path", path))
			}
			if onDrop != nil {
				onDrop(path)
			}
		}
		return nil
	})
}

// Folders returns a copy of the watched drop folders.
func (w *Watcher) Folders() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.folders...)
}

// SyncExistingFiles ingests contracts already present in the drop folders.
// Call after Start so files dropped while the server was down are not lost.
func (w *Watcher) SyncExistingFiles() {
	w.mu.Lock()
	folders := append([]string(nil), w.folders...)
	w.mu.Unlock()
	for _, folder := range folders {
		w.syncFolder(folder)
	}
}

// Stop stops the watcher and cancels pending debounced ingestions.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
