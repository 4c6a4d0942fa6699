package search

import (
	"context"
	"fmt"
	stdpath "path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Document is one searchable text: a path and its lines.
type Document struct {
	Path  string
	Lines []string
}

// Options configures content search.
type Options struct {
	// Query matching
	CaseSensitive bool
	WholeWord     bool
	UseRegex      bool

	// Scope, applied by SearchInFiles
	IncludePaths []string // Glob patterns to include
	ExcludePaths []string // Glob patterns to exclude

	// MaxResults limits the number of matches (0 = unlimited).
	MaxResults int
}

// DefaultOptions returns case-insensitive literal search with the
// default result limit.
func DefaultOptions() Options {
	return Options{MaxResults: DefaultMaxResults}
}

// DefaultMaxResults is the result limit used by DefaultOptions.
const DefaultMaxResults = 1000

// Match is a single content match.
type Match struct {
	// Path is the document the match is in.
	Path string `json:"path" msgpack:"path"`

	// Line is the 1-based line number.
	Line int `json:"line" msgpack:"line"`

	// Column is the 1-based rune column of the match start.
	Column int `json:"column" msgpack:"column"`

	// Length is the match length in runes.
	Length int `json:"length" msgpack:"length"`

	// Match is the matched text.
	Match string `json:"match" msgpack:"match"`

	// LineText is the full line containing the match.
	LineText string `json:"lineText" msgpack:"lineText"`
}

// CompileQuery compiles a search query into a regex pattern.
// Returns an error wrapping ErrInvalidQuery if the query is invalid.
func CompileQuery(query string, opts Options) (*regexp.Regexp, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidQuery)
	}
	pattern := query

	// Escape regex special characters if not using regex mode
	if !opts.UseRegex {
		pattern = regexp.QuoteMeta(pattern)
	}

	// Add word boundaries if whole word matching
	if opts.WholeWord {
		pattern = `\b(?:` + pattern + `)\b`
	}

	// Add case-insensitive flag if not case-sensitive
	if !opts.CaseSensitive {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return re, nil
}

// Search scans a single document. An invalid query yields an empty result
// and an error wrapping ErrInvalidQuery.
func Search(doc Document, query string, opts Options) ([]Match, error) {
	re, err := CompileQuery(query, opts)
	if err != nil {
		return []Match{}, err
	}
	matches, _ := searchDocument(doc, re, opts.MaxResults)
	return matches, nil
}

// SearchInFiles scans every document that passes the path filters, in
// path order. The context is checked between documents.
func SearchInFiles(ctx context.Context, docs []Document, query string, opts Options) ([]Match, error) {
	re, err := CompileQuery(query, opts)
	if err != nil {
		return []Match{}, err
	}

	sorted := make([]Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	results := make([]Match, 0)
	for _, doc := range sorted {
		select {
		case <-ctx.Done():
			return results, ErrSearchCanceled
		default:
		}

		if !matchesFilters(doc.Path, opts) {
			continue
		}

		remaining := 0
		if opts.MaxResults > 0 {
			remaining = opts.MaxResults - len(results)
		}
		found, truncated := searchDocument(doc, re, remaining)
		results = append(results, found...)
		if truncated || (opts.MaxResults > 0 && len(results) >= opts.MaxResults) {
			break
		}
	}
	return results, nil
}

// searchDocument returns every match in doc, stopping after limit matches
// when limit > 0. truncated reports whether the limit was hit.
func searchDocument(doc Document, re *regexp.Regexp, limit int) (matches []Match, truncated bool) {
	matches = make([]Match, 0)
	for lineNum, line := range doc.Lines {
		for _, m := range re.FindAllStringIndex(line, -1) {
			if m[0] == m[1] {
				// Empty regex matches carry no text to show.
				continue
			}
			if limit > 0 && len(matches) >= limit {
				return matches, true
			}
			text := line[m[0]:m[1]]
			matches = append(matches, Match{
				Path:     doc.Path,
				Line:     lineNum + 1,
				Column:   utf8.RuneCountInString(line[:m[0]]) + 1,
				Length:   utf8.RuneCountInString(text),
				Match:    text,
				LineText: line,
			})
		}
	}
	return matches, false
}

// matchesFilters checks if a path passes the include and exclude globs.
func matchesFilters(path string, opts Options) bool {
	if len(opts.IncludePaths) > 0 {
		matched := false
		for _, pattern := range opts.IncludePaths {
			if matchGlob(pattern, path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, pattern := range opts.ExcludePaths {
		if matchGlob(pattern, path) {
			return false
		}
	}
	return true
}

// matchGlob matches a path against a glob pattern. "**" segments match any
// number of directories; other patterns are tried against the base name
// and then the full path.
func matchGlob(pattern, filePath string) bool {
	pattern = filepath.ToSlash(pattern)
	filePath = filepath.ToSlash(filePath)

	if strings.Contains(pattern, "**") {
		parts := strings.Split(pattern, "**")

		// "**/vendor/**"
		if len(parts) == 3 && parts[0] == "" && parts[2] == "" {
			middle := strings.Trim(parts[1], "/")
			return strings.Contains("/"+filePath+"/", "/"+middle+"/")
		}

		if len(parts) == 2 {
			prefix := strings.TrimSuffix(parts[0], "/")
			suffix := strings.TrimPrefix(parts[1], "/")
			switch {
			case prefix == "" && suffix != "":
				base := filePath[strings.LastIndex(filePath, "/")+1:]
				if ok, _ := stdpath.Match(suffix, base); ok {
					return true
				}
				return strings.HasSuffix(filePath, "/"+suffix) || filePath == suffix
			case suffix == "" && prefix != "":
				return strings.HasPrefix(filePath, prefix+"/")
			case prefix != "" && suffix != "":
				if !strings.HasPrefix(filePath, prefix+"/") {
					return false
				}
				base := filePath[strings.LastIndex(filePath, "/")+1:]
				ok, _ := stdpath.Match(suffix, base)
				return ok || strings.HasSuffix(filePath, "/"+suffix)
			}
			return true
		}
	}

	baseName := filePath[strings.LastIndex(filePath, "/")+1:]
	if matched, _ := stdpath.Match(pattern, baseName); matched {
		return true
	}
	matched, _ := stdpath.Match(pattern, filePath)
	return matched
}
