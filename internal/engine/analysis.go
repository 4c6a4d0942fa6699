package engine

import (
	"context"
	"fmt"

	"github.com/dshills/textcore/internal/analysis/bracket"
	"github.com/dshills/textcore/internal/analysis/cache"
	"github.com/dshills/textcore/internal/analysis/diff"
	"github.com/dshills/textcore/internal/analysis/folding"
	"github.com/dshills/textcore/internal/analysis/highlight"
	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/jobs"
)

// Language returns the language of a buffer: the one set with SetLanguage,
// else the one detected from its path, else "plaintext".
func (e *Engine) Language(id string) string {
	e.mu.RLock()
	lang, ok := e.languages[id]
	e.mu.RUnlock()
	if ok {
		return lang
	}
	if buf, ok := e.store.Get(id); ok && buf.Path != "" {
		return highlight.DetectLanguage(buf.Path)
	}
	return "plaintext"
}

// SetLanguage overrides the language of a buffer. An empty name restores
// detection.
func (e *Engine) SetLanguage(id, language string) error {
	if !e.store.Has(id) {
		return newOpError("set language", id, ErrBufferNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if language == "" {
		delete(e.languages, id)
	} else {
		e.languages[id] = language
	}
	return nil
}

// snapshot returns a consistent view of a buffer for analysis.
func (e *Engine) snapshot(id string) (TextBuffer, []string, bool) {
	buf, ok := e.store.Get(id)
	if !ok {
		return TextBuffer{}, nil, false
	}
	return buf, buffer.SplitLines(buf.Content, buf.LineEnding), true
}

// Tokenize returns the syntax tokens of a buffer in its language. Results
// are cached per (buffer, language) and valid only for the version they
// were computed at.
func (e *Engine) Tokenize(id string) ([]highlight.Token, error) {
	return e.TokenizeAs(id, e.Language(id))
}

// TokenizeAs tokenizes a buffer in the given language.
func (e *Engine) TokenizeAs(id, language string) ([]highlight.Token, error) {
	buf, lines, ok := e.snapshot(id)
	if !ok {
		return nil, newOpError("tokenize", id, ErrBufferNotFound)
	}
	return e.tokenizer.Tokenize(tokenSource(buf, lines), language), nil
}

func tokenSource(buf TextBuffer, lines []string) highlight.Source {
	return highlight.Source{
		BufferID:   buf.ID,
		Generation: buf.Generation,
		Version:    buf.Version,
		Lines:      lines,
		EOLWidth:   len(buf.LineEnding.Sequence()),
	}
}

func foldSource(buf TextBuffer, lines []string) folding.Source {
	return folding.Source{BufferID: buf.ID, Generation: buf.Generation, Version: buf.Version, Lines: lines}
}

func jobKey(buf TextBuffer) jobs.Key {
	return jobs.Key{BufferID: buf.ID, Generation: buf.Generation, Version: buf.Version}
}

// currentKey reports the job key of a buffer's current state.
func (e *Engine) currentKey(id string) (jobs.Key, bool) {
	gen, v, ok := e.store.Stamp(id)
	return jobs.Key{BufferID: id, Generation: gen, Version: v}, ok
}

// TokenizeAsync tokenizes in the background. The job fails with
// jobs.ErrStale if the buffer changes before it finishes.
func (e *Engine) TokenizeAsync(ctx context.Context, id string) (*jobs.Job[[]highlight.Token], error) {
	buf, lines, ok := e.snapshot(id)
	if !ok {
		return nil, newOpError("tokenize", id, ErrBufferNotFound)
	}
	lang := e.Language(id)
	src := tokenSource(buf, lines)
	return jobs.Submit(ctx, e.jobs, jobKey(buf), func(context.Context) ([]highlight.Token, error) {
		return e.tokenizer.Tokenize(src, lang), nil
	}), nil
}

// TokenCached reports whether tokens for the buffer's current version are
// cached.
func (e *Engine) TokenCached(id string) bool {
	gen, v, ok := e.store.Stamp(id)
	if !ok {
		return false
	}
	return e.tokenizer.Cached(highlight.Source{BufferID: id, Generation: gen, Version: v}, e.Language(id))
}

// RegisterLanguage adds or replaces a tokenizer language.
func (e *Engine) RegisterLanguage(l *highlight.Language) {
	e.tokenizer.Register(l)
}

// HighlightedRanges projects the tokens of a buffer onto the visible lines
// of vp using the engine's theme. On a cache miss the buffer is tokenized
// first and the result cached; the projection itself is
// highlight.HighlightedRanges and does no tokenizing.
func (e *Engine) HighlightedRanges(id string, vp highlight.Viewport) ([]highlight.RenderInstruction, error) {
	tokens, err := e.Tokenize(id)
	if err != nil {
		return nil, err
	}
	return highlight.HighlightedRanges(tokens, vp, e.theme), nil
}

// Theme returns the engine's theme.
func (e *Engine) Theme() *highlight.Theme {
	return e.theme
}

// FoldingRanges returns the foldable ranges of a buffer with their
// collapsed state.
func (e *Engine) FoldingRanges(id string) ([]folding.Range, error) {
	buf, lines, ok := e.snapshot(id)
	if !ok {
		return nil, newOpError("fold", id, ErrBufferNotFound)
	}
	return e.folds.Ranges(foldSource(buf, lines), e.Language(id)), nil
}

// SetFoldCollapsed records the collapsed state of the range starting at
// startLine (0-based).
func (e *Engine) SetFoldCollapsed(id string, startLine int, collapsed bool) error {
	if !e.store.Has(id) {
		return newOpError("fold", id, ErrBufferNotFound)
	}
	e.folds.SetCollapsed(id, startLine, collapsed)
	return nil
}

// FindMatchingBracket returns the bracket matching the one at the 0-based
// line and byte column.
func (e *Engine) FindMatchingBracket(id string, line, column int) (bracket.Position, bool) {
	_, lines, ok := e.snapshot(id)
	if !ok {
		return bracket.Position{}, false
	}
	return bracket.FindMatching(lines, line, column)
}

// FindAllBracketPairs returns every matched bracket pair of a buffer.
func (e *Engine) FindAllBracketPairs(id string) ([]bracket.Pair, error) {
	_, lines, ok := e.snapshot(id)
	if !ok {
		return nil, newOpError("brackets", id, ErrBufferNotFound)
	}
	return bracket.FindAllPairs(lines), nil
}

// BracketScan returns pairs and unmatched brackets of a buffer.
func (e *Engine) BracketScan(id string) (bracket.Result, error) {
	_, lines, ok := e.snapshot(id)
	if !ok {
		return bracket.Result{}, newOpError("brackets", id, ErrBufferNotFound)
	}
	return bracket.Scan(lines), nil
}

// Diff compares two buffers line by line with the engine's diff options.
func (e *Engine) Diff(oldID, newID string) (diff.Result, error) {
	return e.DiffWith(oldID, newID, e.diffOpts)
}

// DiffWith compares two buffers with explicit options.
func (e *Engine) DiffWith(oldID, newID string, opts diff.Options) (diff.Result, error) {
	_, oldLines, ok := e.snapshot(oldID)
	if !ok {
		return diff.Result{}, newOpError("diff", oldID, ErrBufferNotFound)
	}
	_, newLines, ok := e.snapshot(newID)
	if !ok {
		return diff.Result{}, newOpError("diff", newID, ErrBufferNotFound)
	}
	return diff.Lines(oldLines, newLines, opts), nil
}

// DiffText compares a buffer against text, e.g. its saved copy.
func (e *Engine) DiffText(id, other string) (diff.Result, error) {
	_, lines, ok := e.snapshot(id)
	if !ok {
		return diff.Result{}, newOpError("diff", id, ErrBufferNotFound)
	}
	return diff.Lines(buffer.SplitLines(other, buffer.DetectLineEnding(other)), lines, e.diffOpts), nil
}

// WarmCaches tokenizes and folds every buffer in the background with the
// engine's worker limit. Buffers edited meanwhile are skipped.
func (e *Engine) WarmCaches(ctx context.Context) error {
	snaps := e.store.Snapshots()
	keys := make([]jobs.Key, 0, len(snaps))
	for _, b := range snaps {
		keys = append(keys, jobKey(b))
	}
	return jobs.WarmAll(ctx, e.jobs, keys, func(ctx context.Context, key jobs.Key) error {
		buf, lines, ok := e.snapshot(key.BufferID)
		if !ok || jobKey(buf) != key {
			return fmt.Errorf("%w: %s", jobs.ErrStale, key)
		}
		lang := e.Language(key.BufferID)
		e.tokenizer.Tokenize(tokenSource(buf, lines), lang)
		e.folds.Ranges(foldSource(buf, lines), lang)
		return ctx.Err()
	})
}

// CacheStats reports the token and folding cache counters.
func (e *Engine) CacheStats() (tokens, folds cache.Stats) {
	return e.tokenizer.Stats(), e.folds.Stats()
}

// Jobs returns the background job scheduler.
func (e *Engine) Jobs() *jobs.Scheduler {
	return e.jobs
}

// DiffOptions returns the engine's default diff options.
func (e *Engine) DiffOptions() diff.Options {
	return e.diffOpts
}
