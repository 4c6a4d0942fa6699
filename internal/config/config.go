package config

import (
	"errors"
	"strings"

	"github.com/dshills/textcore/internal/analysis/diff"
	"github.com/dshills/textcore/internal/analysis/highlight"
)

// Config is the complete textcore configuration.
type Config struct {
	Engine   EngineConfig   `toml:"engine" yaml:"engine"`
	Analysis AnalysisConfig `toml:"analysis" yaml:"analysis"`
	Diff     DiffConfig     `toml:"diff" yaml:"diff"`
	Search   SearchConfig   `toml:"search" yaml:"search"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
	Theme    ThemeConfig    `toml:"theme" yaml:"theme"`
}

// EngineConfig configures buffers and history.
type EngineConfig struct {
	// UndoLimit is the per-file undo depth.
	UndoLimit int `toml:"undoLimit" yaml:"undoLimit"`
	// Workers bounds concurrent background analysis jobs.
	Workers int `toml:"workers" yaml:"workers"`
}

// AnalysisConfig configures the tokenizer and folding caches.
type AnalysisConfig struct {
	TokenCacheSize int `toml:"tokenCacheSize" yaml:"tokenCacheSize"`
	FoldCacheSize  int `toml:"foldCacheSize" yaml:"foldCacheSize"`
}

// DiffConfig mirrors diff.Options.
type DiffConfig struct {
	Algorithm        string `toml:"algorithm" yaml:"algorithm"`
	ContextLines     int    `toml:"contextLines" yaml:"contextLines"`
	Lookahead        int    `toml:"lookahead" yaml:"lookahead"`
	MaxLines         int    `toml:"maxLines" yaml:"maxLines"`
	MaxMemoryMB      int    `toml:"maxMemoryMb" yaml:"maxMemoryMb"`
	IgnoreCase       bool   `toml:"ignoreCase" yaml:"ignoreCase"`
	IgnoreWhitespace bool   `toml:"ignoreWhitespace" yaml:"ignoreWhitespace"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	MaxResults    int  `toml:"maxResults" yaml:"maxResults"`
	CaseSensitive bool `toml:"caseSensitive" yaml:"caseSensitive"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
	// Format is text or json.
	Format string `toml:"format" yaml:"format"`
}

// ThemeConfig names a theme and overrides token colors by type name.
type ThemeConfig struct {
	Name   string            `toml:"name" yaml:"name"`
	Colors map[string]string `toml:"colors" yaml:"colors"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			UndoLimit: 50,
			Workers:   4,
		},
		Analysis: AnalysisConfig{
			TokenCacheSize: 256,
			FoldCacheSize:  256,
		},
		Diff: DiffConfig{
			Algorithm:    string(diff.AlgorithmMyers),
			ContextLines: diff.DefaultContextLines,
			Lookahead:    diff.DefaultLookahead,
			MaxLines:     diff.DefaultMaxLines,
			MaxMemoryMB:  diff.DefaultMaxMemoryMB,
		},
		Search: SearchConfig{
			MaxResults: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Theme: ThemeConfig{
			Name: "default",
		},
	}
}

// DiffOptions converts the diff section to diff.Options. An unknown
// algorithm falls back to Myers; Validate reports it.
func (c Config) DiffOptions() diff.Options {
	algo, err := diff.ParseAlgorithm(c.Diff.Algorithm)
	if err != nil {
		algo = diff.AlgorithmMyers
	}
	return diff.Options{
		Algorithm:        algo,
		ContextLines:     c.Diff.ContextLines,
		Lookahead:        c.Diff.Lookahead,
		IgnoreCase:       c.Diff.IgnoreCase,
		IgnoreWhitespace: c.Diff.IgnoreWhitespace,
		MaxLines:         c.Diff.MaxLines,
		MaxMemoryMB:      c.Diff.MaxMemoryMB,
	}
}

// BuildTheme returns the configured theme.
func (c Config) BuildTheme() (*highlight.Theme, error) {
	return highlight.NewTheme(c.Theme.Name, c.Theme.Colors)
}

// Validate checks every setting and returns all failures joined.
func (c Config) Validate() error {
	var errs []error
	bad := func(path string, value any, msg string) {
		errs = append(errs, &ValidationError{Path: path, Value: value, Message: msg})
	}

	if c.Engine.UndoLimit < 1 {
		bad("engine.undoLimit", c.Engine.UndoLimit, "must be at least 1")
	}
	if c.Engine.Workers < 1 {
		bad("engine.workers", c.Engine.Workers, "must be at least 1")
	}
	if c.Analysis.TokenCacheSize < 1 {
		bad("analysis.tokenCacheSize", c.Analysis.TokenCacheSize, "must be at least 1")
	}
	if c.Analysis.FoldCacheSize < 1 {
		bad("analysis.foldCacheSize", c.Analysis.FoldCacheSize, "must be at least 1")
	}
	if _, err := diff.ParseAlgorithm(c.Diff.Algorithm); err != nil {
		bad("diff.algorithm", c.Diff.Algorithm, "must be myers or heuristic")
	}
	if c.Diff.ContextLines < 0 {
		bad("diff.contextLines", c.Diff.ContextLines, "must not be negative")
	}
	if c.Diff.Lookahead < 1 {
		bad("diff.lookahead", c.Diff.Lookahead, "must be at least 1")
	}
	if c.Search.MaxResults < 0 {
		bad("search.maxResults", c.Search.MaxResults, "must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		bad("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		bad("logging.format", c.Logging.Format, "must be text or json")
	}
	if _, err := c.BuildTheme(); err != nil {
		bad("theme.colors", c.Theme.Colors, err.Error())
	}

	return errors.Join(errs...)
}
