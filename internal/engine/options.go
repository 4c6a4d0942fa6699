package engine

import (
	"log/slog"

	"github.com/dshills/textcore/internal/analysis/diff"
	"github.com/dshills/textcore/internal/analysis/highlight"
	"github.com/dshills/textcore/internal/config"
	"github.com/dshills/textcore/internal/search"
)

// Default configuration values.
const (
	DefaultUndoLimit      = 50
	DefaultTokenCacheSize = 256
	DefaultFoldCacheSize  = 256
	DefaultWorkers        = 4
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithUndoLimit sets the per-file undo depth.
func WithUndoLimit(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.undoLimit = max
		}
	}
}

// WithCacheSizes bounds the token and folding caches.
func WithCacheSizes(tokens, folds int) Option {
	return func(e *Engine) {
		if tokens > 0 {
			e.tokenCacheSize = tokens
		}
		if folds > 0 {
			e.foldCacheSize = folds
		}
	}
}

// WithWorkers bounds concurrent background analysis jobs.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithTheme sets the theme used for render instructions.
func WithTheme(t *highlight.Theme) Option {
	return func(e *Engine) {
		if t != nil {
			e.theme = t
		}
	}
}

// WithDiffOptions sets the default diff options.
func WithDiffOptions(o diff.Options) Option {
	return func(e *Engine) {
		e.diffOpts = o
	}
}

// WithSearchOptions sets the default search options.
func WithSearchOptions(o search.Options) Option {
	return func(e *Engine) {
		e.searchOpts = o
	}
}

// WithLanguage registers an extra tokenizer language.
func WithLanguage(l *highlight.Language) Option {
	return func(e *Engine) {
		e.extraLanguages = append(e.extraLanguages, l)
	}
}

// WithConfig applies every engine-relevant setting of cfg. An invalid
// theme keeps the default one; call cfg.Validate first to catch it.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		WithUndoLimit(cfg.Engine.UndoLimit)(e)
		WithWorkers(cfg.Engine.Workers)(e)
		WithCacheSizes(cfg.Analysis.TokenCacheSize, cfg.Analysis.FoldCacheSize)(e)
		e.diffOpts = cfg.DiffOptions()
		e.searchOpts.MaxResults = cfg.Search.MaxResults
		e.searchOpts.CaseSensitive = cfg.Search.CaseSensitive
		if t, err := cfg.BuildTheme(); err == nil {
			e.theme = t
		}
	}
}
