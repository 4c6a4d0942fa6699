package diff

import (
	"fmt"
	"strings"
)

// Algorithm selects how the edit script is computed.
type Algorithm string

// Available algorithms.
const (
	// AlgorithmMyers computes a minimal edit script.
	AlgorithmMyers Algorithm = "myers"

	// AlgorithmHeuristic walks both inputs in lockstep with a bounded
	// lookahead. It is linear but not minimal.
	AlgorithmHeuristic Algorithm = "heuristic"
)

// ParseAlgorithm converts a name to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(s)) {
	case "", AlgorithmMyers:
		return AlgorithmMyers, nil
	case AlgorithmHeuristic:
		return AlgorithmHeuristic, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Default limits for diff computation.
const (
	// DefaultContextLines is the number of unchanged lines around a change.
	DefaultContextLines = 3

	// DefaultLookahead bounds the heuristic's search for a resync line.
	DefaultLookahead = 8

	// DefaultMaxLines is the largest input Myers is run on.
	DefaultMaxLines = 10000

	// DefaultMaxMemoryMB bounds the memory of the Myers trace.
	DefaultMaxMemoryMB = 100
)

// Options configures diff computation.
type Options struct {
	// Algorithm is the preferred algorithm. Default is Myers.
	Algorithm Algorithm

	// ContextLines is the number of unchanged lines to include
	// around each change for context.
	ContextLines int

	// Lookahead bounds the heuristic resync search. Default is 8.
	Lookahead int

	// IgnoreCase performs case-insensitive comparison.
	IgnoreCase bool

	// IgnoreWhitespace ignores leading/trailing whitespace on each line.
	IgnoreWhitespace bool

	// MaxLines limits the size of inputs Myers is run on. Above it the
	// heuristic is used. Zero means DefaultMaxLines; negative disables.
	MaxLines int

	// MaxMemoryMB limits the Myers trace. When the search would exceed it
	// the heuristic is used. Zero means DefaultMaxMemoryMB; negative disables.
	MaxMemoryMB int
}

// DefaultOptions returns default diff options.
func DefaultOptions() Options {
	return Options{
		Algorithm:    AlgorithmMyers,
		ContextLines: DefaultContextLines,
		Lookahead:    DefaultLookahead,
		MaxLines:     DefaultMaxLines,
		MaxMemoryMB:  DefaultMaxMemoryMB,
	}
}

// Hunk is a group of changes with surrounding context.
//
// OldStart and NewStart are 1-based. A side with no lines reports the line
// after which the change applies, as unified diff headers do. Lines holds
// every line of the hunk prefixed with ' ', '-' or '+'.
type Hunk struct {
	OldStart int      `json:"oldStart" msgpack:"oldStart"`
	OldLines int      `json:"oldLines" msgpack:"oldLines"`
	NewStart int      `json:"newStart" msgpack:"newStart"`
	NewLines int      `json:"newLines" msgpack:"newLines"`
	Lines    []string `json:"lines" msgpack:"lines"`
}

// Header returns the "@@ -a,b +c,d @@" line of the hunk.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
}

// Result contains the complete result of a diff operation.
type Result struct {
	Hunks        []Hunk    `json:"hunks" msgpack:"hunks"`
	OldLineCount int       `json:"oldLineCount" msgpack:"oldLineCount"`
	NewLineCount int       `json:"newLineCount" msgpack:"newLineCount"`
	Algorithm    Algorithm `json:"algorithm" msgpack:"algorithm"`
}

// HasChanges returns true if there are any differences.
func (r Result) HasChanges() bool {
	return len(r.Hunks) > 0
}

// Added returns the total number of inserted lines.
func (r Result) Added() int {
	return r.count('+')
}

// Removed returns the total number of deleted lines.
func (r Result) Removed() int {
	return r.count('-')
}

func (r Result) count(prefix byte) int {
	n := 0
	for _, h := range r.Hunks {
		for _, line := range h.Lines {
			if len(line) > 0 && line[0] == prefix {
				n++
			}
		}
	}
	return n
}

// Strings diffs two texts split on "\n".
func Strings(oldText, newText string, opts Options) Result {
	return Lines(strings.Split(oldText, "\n"), strings.Split(newText, "\n"), opts)
}

// Lines diffs two line lists.
func Lines(oldLines, newLines []string, opts Options) Result {
	if opts.Lookahead <= 0 {
		opts.Lookahead = DefaultLookahead
	}
	if opts.ContextLines < 0 {
		opts.ContextLines = 0
	}

	eq := equalFunc(opts)
	algo := AlgorithmHeuristic
	var ops []op
	if opts.Algorithm != AlgorithmHeuristic && withinLineLimit(len(oldLines), len(newLines), opts.MaxLines) {
		var ok bool
		if ops, ok = myers(oldLines, newLines, eq, traceBudget(opts.MaxMemoryMB)); ok {
			algo = AlgorithmMyers
		}
	}
	if algo == AlgorithmHeuristic {
		ops = heuristic(oldLines, newLines, eq, opts.Lookahead)
	}

	return Result{
		Hunks:        buildHunks(oldLines, newLines, normalize(ops), opts.ContextLines),
		OldLineCount: len(oldLines),
		NewLineCount: len(newLines),
		Algorithm:    algo,
	}
}

func withinLineLimit(n, m, limit int) bool {
	if limit == 0 {
		limit = DefaultMaxLines
	}
	return limit < 0 || (n <= limit && m <= limit)
}

// traceBudget returns the number of ints the Myers trace may hold, or -1
// for no limit.
func traceBudget(mb int) int64 {
	if mb == 0 {
		mb = DefaultMaxMemoryMB
	}
	if mb < 0 {
		return -1
	}
	return int64(mb) * 1024 * 1024 / 8
}

// equalFunc compares two lines respecting diff options.
func equalFunc(opts Options) func(a, b string) bool {
	return func(a, b string) bool {
		if opts.IgnoreWhitespace {
			a = strings.TrimSpace(a)
			b = strings.TrimSpace(b)
		}
		if opts.IgnoreCase {
			return strings.EqualFold(a, b)
		}
		return a == b
	}
}

// Unified returns the diff in unified diff format, or "" when there are no
// changes.
func Unified(result Result, oldName, newName string) string {
	if !result.HasChanges() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("--- ")
	sb.WriteString(oldName)
	sb.WriteString("\n")
	sb.WriteString("+++ ")
	sb.WriteString(newName)
	sb.WriteString("\n")

	for _, hunk := range result.Hunks {
		sb.WriteString(hunk.Header())
		sb.WriteString("\n")
		for _, line := range hunk.Lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
