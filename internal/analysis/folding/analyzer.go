package folding

import (
	"sort"
	"sync"

	"github.com/dshills/textcore/internal/analysis/cache"
)

// Source is the input of a cached analysis.
type Source struct {
	BufferID   string
	Generation uint64
	Version    uint64
	Lines      []string
}

func (s Source) key(language string) cache.Key {
	return cache.Key{BufferID: s.BufferID, Language: language, Generation: s.Generation}
}

// Analyzer caches folding ranges per (buffer, language) at the buffer's
// version and keeps the collapsed state of each buffer's ranges.
// It is safe for concurrent use.
type Analyzer struct {
	cache *cache.Versioned[[]Range]

	mu        sync.RWMutex
	collapsed map[string]map[int]bool // buffer id -> start line
}

// NewAnalyzer creates an analyzer caching at most cacheSize results.
func NewAnalyzer(cacheSize int) *Analyzer {
	return &Analyzer{
		cache:     cache.New[[]Range](cacheSize),
		collapsed: make(map[string]map[int]bool),
	}
}

// Ranges returns the folding ranges of src with collapsed state applied.
// The returned slice belongs to the caller.
func (a *Analyzer) Ranges(src Source, language string) []Range {
	key := src.key(language)
	ranges, ok := a.cache.Get(key, src.Version)
	if !ok {
		ranges = Compute(src.Lines)
		a.cache.Put(key, src.Version, ranges)
	}

	out := make([]Range, len(ranges))
	copy(out, ranges)

	a.mu.RLock()
	state := a.collapsed[src.BufferID]
	for i := range out {
		out[i].Collapsed = state[out[i].StartLine]
	}
	a.mu.RUnlock()
	return out
}

// Cached reports whether ranges for src in language are cached. Lines is
// ignored.
func (a *Analyzer) Cached(src Source, language string) bool {
	_, ok := a.cache.Get(src.key(language), src.Version)
	return ok
}

// SetCollapsed records whether the range starting at startLine is collapsed.
func (a *Analyzer) SetCollapsed(bufferID string, startLine int, collapsed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	state := a.collapsed[bufferID]
	if !collapsed {
		delete(state, startLine)
		if len(state) == 0 {
			delete(a.collapsed, bufferID)
		}
		return
	}
	if state == nil {
		state = make(map[int]bool)
		a.collapsed[bufferID] = state
	}
	state[startLine] = true
}

// CollapsedLines returns the sorted start lines collapsed in bufferID.
func (a *Analyzer) CollapsedLines(bufferID string) []int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]int, 0, len(a.collapsed[bufferID]))
	for line := range a.collapsed[bufferID] {
		out = append(out, line)
	}
	sort.Ints(out)
	return out
}

// Invalidate drops cached ranges for bufferID. Collapsed state is kept.
func (a *Analyzer) Invalidate(bufferID string) {
	a.cache.InvalidateBuffer(bufferID)
}

// Purge drops cached ranges and collapsed state for bufferID.
func (a *Analyzer) Purge(bufferID string) {
	a.cache.InvalidateBuffer(bufferID)
	a.mu.Lock()
	delete(a.collapsed, bufferID)
	a.mu.Unlock()
}

// Rename moves collapsed state from oldID to newID and drops cached ranges
// of both.
func (a *Analyzer) Rename(oldID, newID string) {
	a.cache.InvalidateBuffer(oldID)
	a.cache.InvalidateBuffer(newID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if state, ok := a.collapsed[oldID]; ok {
		delete(a.collapsed, oldID)
		a.collapsed[newID] = state
	}
}

// Stats returns cache counters.
func (a *Analyzer) Stats() cache.Stats {
	return a.cache.Stats()
}
