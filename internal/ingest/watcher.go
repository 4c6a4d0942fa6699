package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/textcore/internal/engine"
)

// DefaultDebounce is how long a path must stay quiet before its changes
// are applied.
const DefaultDebounce = 50 * time.Millisecond

// ErrWatcherClosed is returned by Run after Close.
var ErrWatcherClosed = errors.New("watcher is closed")

// Change is one applied file change.
type Change struct {
	Path string
	Kind ChangeKind
	Err  error
}

// ChangeKind says what a Watcher did to a buffer.
type ChangeKind uint8

const (
	// ChangeLoaded created a buffer for a new file.
	ChangeLoaded ChangeKind = iota + 1
	// ChangeUpdated replaced the content of a buffer.
	ChangeUpdated
	// ChangeRemoved deleted the buffer of a removed file.
	ChangeRemoved
	// ChangeSkipped ignored a file that could not be loaded.
	ChangeSkipped
)

// String returns a string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeLoaded:
		return "loaded"
	case ChangeUpdated:
		return "updated"
	case ChangeRemoved:
		return "removed"
	case ChangeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Watcher mirrors changes under a directory into an engine.
type Watcher struct {
	engine *engine.Engine
	root   string
	opts   Options
	delay  time.Duration
	notify func(Change)

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
	wg      sync.WaitGroup
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets how long a path must stay quiet before it is applied.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithNotify registers a callback for every applied change. It runs on a
// timer goroutine.
func WithNotify(fn func(Change)) WatchOption {
	return func(w *Watcher) {
		w.notify = fn
	}
}

// NewWatcher watches root and every directory below it that opts does not
// exclude.
func NewWatcher(e *engine.Engine, root string, opts Options, wopts ...WatchOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		engine:  e,
		root:    abs,
		opts:    opts.withDefaults(),
		delay:   DefaultDebounce,
		notify:  func(Change) {},
		fsw:     fsw,
		pending: make(map[string]*time.Timer),
	}
	for _, opt := range wopts {
		opt(w)
	}

	if err := w.addTree(abs); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree adds dir and its non-excluded subdirectories to fsnotify.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root {
			rel, err := relPath(w.root, p)
			if err != nil || w.opts.excluded(rel, true) {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// Run processes file system events until ctx is done or Close is called.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return ErrWatcherClosed
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			w.opts.Logger.Warn("watch error", slog.Any("error", err))
		}
	}
}

// handle schedules the path of ev for reconciliation.
func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	rel, err := relPath(w.root, ev.Name)
	if err != nil {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if !w.opts.excluded(rel, true) {
				if err := w.addTree(ev.Name); err != nil {
					w.opts.Logger.Warn("watch directory", slog.String("path", rel), slog.Any("error", err))
				}
				w.scanDir(ev.Name)
			}
			return
		}
	}
	if w.opts.excluded(rel, false) {
		return
	}
	w.schedule(rel)
}

// scanDir schedules every file of a directory that appeared after the
// initial load.
func (w *Watcher) scanDir(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if rel, err := relPath(w.root, p); err == nil && !w.opts.excluded(rel, false) {
			w.schedule(rel)
		}
		return nil
	})
}

// schedule restarts the quiet period of rel.
func (w *Watcher) schedule(rel string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[rel]; ok {
		// A timer that already fired runs its callback again.
		if !t.Reset(w.delay) {
			w.wg.Add(1)
		}
		return
	}
	w.wg.Add(1)
	w.pending[rel] = time.AfterFunc(w.delay, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.pending, rel)
		closed := w.closed
		w.mu.Unlock()
		if !closed {
			w.notify(w.Reconcile(rel))
		}
	})
}

// Reconcile makes the buffer of rel match the file on disk: it loads new
// files, replaces changed content and deletes buffers of missing files.
func (w *Watcher) Reconcile(rel string) Change {
	p := filepath.Join(w.root, filepath.FromSlash(rel))
	f, err := readFile(p, w.opts.MaxFileSize)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		removed := w.engine.DeleteFile(rel)
		// A removed directory takes its files with it.
		prefix := rel + "/"
		for _, p := range w.engine.Paths() {
			if strings.HasPrefix(p, prefix) && w.engine.DeleteFile(p) {
				removed = true
			}
		}
		if removed {
			w.opts.Logger.Debug("file removed", slog.String("path", rel))
			return Change{Path: rel, Kind: ChangeRemoved}
		}
		return Change{Path: rel, Kind: ChangeSkipped, Err: err}
	case err != nil:
		return Change{Path: rel, Kind: ChangeSkipped, Err: err}
	}

	if !w.engine.HasBuffer(rel) {
		if _, err := w.engine.CreateFile(rel, f.content); err != nil {
			return Change{Path: rel, Kind: ChangeSkipped, Err: err}
		}
		w.opts.Logger.Debug("file loaded", slog.String("path", rel))
		return Change{Path: rel, Kind: ChangeLoaded}
	}
	if _, err := w.engine.SetContent(rel, f.content); err != nil {
		return Change{Path: rel, Kind: ChangeSkipped, Err: err}
	}
	w.engine.MarkSaved(rel)
	w.opts.Logger.Debug("file updated", slog.String("path", rel))
	return Change{Path: rel, Kind: ChangeUpdated}
}

// Pending returns the number of paths waiting for their quiet period.
func (w *Watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Close stops the watcher and drops pending changes.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for rel, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, rel)
	}
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}
