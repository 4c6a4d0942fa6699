package ingest

import (
	"bufio"
	"io"
	"path"
	"strings"
)

// DefaultIgnore lists the patterns skipped when no others are given.
var DefaultIgnore = []string{
	".git/",
	".hg/",
	".svn/",
	"node_modules/",
	"vendor/",
	".idea/",
	".vscode/",
	"*.exe",
	"*.o",
	"*.so",
	"*.dylib",
	"*.test",
}

// Ignore matches slash-separated paths against gitignore-style patterns:
//   - *.log matches a base name anywhere
//   - build/ matches only directories
//   - /dist matches relative to the root only
//   - !keep.log re-includes a path an earlier pattern excluded
//
// The last matching pattern wins.
type Ignore struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	glob     string
	negation bool
	dirOnly  bool
	rooted   bool
}

// NewIgnore returns a matcher for patterns. Blank lines and # comments
// are skipped.
func NewIgnore(patterns ...string) *Ignore {
	ig := &Ignore{}
	for _, p := range patterns {
		ig.Add(p)
	}
	return ig
}

// ReadIgnore parses one pattern per line from r.
func ReadIgnore(r io.Reader) (*Ignore, error) {
	ig := &Ignore{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		ig.Add(sc.Text())
	}
	return ig, sc.Err()
}

// Add appends a pattern.
func (ig *Ignore) Add(pattern string) {
	pattern = strings.TrimRight(pattern, " \t\r")
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return
	}
	var p ignorePattern
	if strings.HasPrefix(pattern, "!") {
		p.negation = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		p.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		p.rooted = true
		pattern = strings.TrimPrefix(pattern, "/")
	} else if strings.Contains(pattern, "/") {
		p.rooted = true
	}
	if pattern == "" {
		return
	}
	p.glob = pattern
	ig.patterns = append(ig.patterns, p)
}

// Len returns the number of patterns.
func (ig *Ignore) Len() int {
	if ig == nil {
		return 0
	}
	return len(ig.patterns)
}

// Match reports whether rel, a path relative to the root, is ignored.
func (ig *Ignore) Match(rel string, isDir bool) bool {
	if ig == nil {
		return false
	}
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	base := path.Base(rel)

	ignored := false
	for _, p := range ig.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		target := base
		if p.rooted {
			target = rel
		}
		if ok, _ := path.Match(p.glob, target); ok {
			ignored = !p.negation
		}
	}
	return ignored
}
