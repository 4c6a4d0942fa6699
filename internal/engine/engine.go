package engine

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/dshills/textcore/internal/analysis/diff"
	"github.com/dshills/textcore/internal/analysis/folding"
	"github.com/dshills/textcore/internal/analysis/highlight"
	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/cursor"
	"github.com/dshills/textcore/internal/engine/history"
	"github.com/dshills/textcore/internal/engine/jobs"
	"github.com/dshills/textcore/internal/logging"
	"github.com/dshills/textcore/internal/search"
)

// Re-export commonly used types for convenience.
type (
	// Position is a 1-based line and rune column.
	Position = buffer.Position

	// Range is a Start/End pair of positions, End exclusive.
	Range = buffer.Range

	// TextBuffer is a read-only buffer snapshot.
	TextBuffer = buffer.TextBuffer

	// Selection is an anchor/head pair.
	Selection = cursor.Selection
)

// Engine is the main facade of the editing core. It owns every buffer and
// routes all mutations through a single commit path that records undo
// history, advances the buffer version, invalidates derived caches and
// notifies listeners.
//
// Engine methods are safe to call from multiple goroutines, but edits to
// one buffer are expected to come from a single writer.
type Engine struct {
	mu sync.RWMutex

	// Core components
	store     *buffer.Store
	history   *history.Manager
	tokenizer *highlight.Tokenizer
	folds     *folding.Analyzer
	jobs      *jobs.Scheduler
	cursor    *cursor.Model

	// languages overrides the detected language per buffer.
	languages map[string]string

	// Listeners
	listenerMu   sync.Mutex
	listeners    []listenerEntry
	nextListener uint64

	// Configuration
	logger         *slog.Logger
	theme          *highlight.Theme
	diffOpts       diff.Options
	searchOpts     search.Options
	undoLimit      int
	tokenCacheSize int
	foldCacheSize  int
	workers        int
	extraLanguages []*highlight.Language
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		languages:      make(map[string]string),
		logger:         logging.Discard(),
		theme:          highlight.DefaultTheme(),
		diffOpts:       diff.DefaultOptions(),
		searchOpts:     search.DefaultOptions(),
		undoLimit:      DefaultUndoLimit,
		tokenCacheSize: DefaultTokenCacheSize,
		foldCacheSize:  DefaultFoldCacheSize,
		workers:        DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.store = buffer.NewStore()
	e.history = history.NewManager(e.undoLimit)
	e.cursor = cursor.NewModel()

	tokOpts := []highlight.Option{
		highlight.WithLogger(logging.WithComponent(e.logger, "tokenizer")),
		highlight.WithCacheSize(e.tokenCacheSize),
	}
	for _, l := range e.extraLanguages {
		tokOpts = append(tokOpts, highlight.WithLanguage(l))
	}
	e.tokenizer = highlight.NewTokenizer(tokOpts...)
	e.folds = folding.NewAnalyzer(e.foldCacheSize)
	e.jobs = jobs.NewScheduler(e.currentKey,
		jobs.WithWorkers(e.workers),
		jobs.WithLogger(logging.WithComponent(e.logger, "jobs")))

	return e
}

// ============================================================================
// Lifecycle
// ============================================================================

// CreateBuffer creates a scratch buffer with a generated id and no path.
func (e *Engine) CreateBuffer(content string, opts ...buffer.Option) (TextBuffer, error) {
	return e.create(buffer.NewID(), "", content, opts...)
}

// CreateFile creates a buffer for a project path. The path is the id.
func (e *Engine) CreateFile(path, content string, opts ...buffer.Option) (TextBuffer, error) {
	return e.create(path, path, content, opts...)
}

func (e *Engine) create(id, path, content string, opts ...buffer.Option) (TextBuffer, error) {
	e.mu.Lock()
	buf, err := e.store.Create(id, path, content, opts...)
	e.mu.Unlock()
	if err != nil {
		return TextBuffer{}, newOpError("create", id, err)
	}

	e.logger.Debug("buffer created", slog.String("id", id), slog.Int("lines", buf.LineCount))
	e.notify(ChangeEvent{Kind: ChangeCreate, BufferID: id, Version: buf.Version, LineCount: buf.LineCount})
	return buf, nil
}

// LoadFiles creates a file buffer for every path of files, in path order.
// Failures do not stop the load; they are returned joined.
func (e *Engine) LoadFiles(files map[string]string) error {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var errs []error
	for _, p := range paths {
		if _, err := e.CreateFile(p, files[p]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DestroyBuffer removes a buffer together with its undo history, cached
// analyses and fold state. It returns false if the buffer did not exist.
func (e *Engine) DestroyBuffer(id string) bool {
	e.mu.Lock()
	if !e.store.Destroy(id) {
		e.mu.Unlock()
		return false
	}
	e.jobs.Cancel(id)
	e.history.Purge(id)
	e.tokenizer.Invalidate(id)
	e.folds.Purge(id)
	e.cursor.Forget(id)
	delete(e.languages, id)
	e.mu.Unlock()

	e.logger.Debug("buffer destroyed", slog.String("id", id))
	e.notify(ChangeEvent{Kind: ChangeDestroy, BufferID: id})
	return true
}

// DeleteFile destroys the buffer of a project path.
func (e *Engine) DeleteFile(path string) bool {
	return e.DestroyBuffer(path)
}

// RenameFile re-keys a file buffer. Undo and redo history, fold state and
// the active file follow the buffer; cached analyses of the old key are
// dropped. The version is unchanged.
func (e *Engine) RenameFile(oldPath, newPath string) (TextBuffer, error) {
	e.mu.Lock()
	buf, err := e.store.Rename(oldPath, newPath, newPath)
	if err != nil {
		e.mu.Unlock()
		return TextBuffer{}, newOpError("rename", oldPath, err)
	}
	if oldPath != newPath {
		e.history.Transfer(oldPath, newPath)
		e.tokenizer.Invalidate(oldPath)
		e.folds.Rename(oldPath, newPath)
		e.cursor.Rename(oldPath, newPath)
		if lang, ok := e.languages[oldPath]; ok {
			delete(e.languages, oldPath)
			e.languages[newPath] = lang
		}
	}
	e.mu.Unlock()

	e.logger.Debug("buffer renamed", slog.String("from", oldPath), slog.String("to", newPath))
	e.notify(ChangeEvent{Kind: ChangeRename, BufferID: newPath, OldID: oldPath, Version: buf.Version, LineCount: buf.LineCount})
	return buf, nil
}

// MarkSaved clears the modified flag of a buffer.
func (e *Engine) MarkSaved(id string) bool {
	if !e.store.MarkSaved(id) {
		return false
	}
	v, _ := e.store.Version(id)
	e.notify(ChangeEvent{Kind: ChangeSave, BufferID: id, Version: v})
	return true
}

// ============================================================================
// Read Operations
// ============================================================================

// Buffer returns a snapshot of the buffer.
func (e *Engine) Buffer(id string) (TextBuffer, bool) {
	return e.store.Get(id)
}

// HasBuffer reports whether the buffer exists.
func (e *Engine) HasBuffer(id string) bool {
	return e.store.Has(id)
}

// GetContent returns the buffer's full content.
func (e *Engine) GetContent(id string) (string, bool) {
	return e.store.Content(id)
}

// GetLine returns a 1-based line without its line ending.
func (e *Engine) GetLine(id string, line int) (string, bool) {
	return e.store.Line(id, line)
}

// Lines returns a copy of the buffer's lines.
func (e *Engine) Lines(id string) ([]string, bool) {
	return e.store.Lines(id)
}

// LineCount returns the number of lines, or 0 for an unknown buffer.
func (e *Engine) LineCount(id string) int {
	buf, ok := e.store.Get(id)
	if !ok {
		return 0
	}
	return buf.LineCount
}

// Version returns the buffer's current version.
func (e *Engine) Version(id string) (uint64, bool) {
	return e.store.Version(id)
}

// Offset converts a position to an absolute byte offset, clamping it first.
func (e *Engine) Offset(id string, pos Position) (int, bool) {
	return e.store.Offset(id, pos)
}

// PositionAt converts an absolute byte offset to a position.
func (e *Engine) PositionAt(id string, offset int) (Position, bool) {
	return e.store.PositionAt(id, offset)
}

// Buffers returns snapshots of every buffer, sorted by id.
func (e *Engine) Buffers() []TextBuffer {
	return e.store.Snapshots()
}

// Paths returns every file path in sorted order.
func (e *Engine) Paths() []string {
	return e.store.Paths()
}

// IDs returns every buffer id in sorted order.
func (e *Engine) IDs() []string {
	return e.store.IDs()
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}
