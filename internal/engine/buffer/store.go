package buffer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Store owns every text buffer, keyed by id.
// All methods are thread-safe.
type Store struct {
	mu      sync.RWMutex
	buffers map[string]*record
	gen     uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{buffers: make(map[string]*record)}
}

// NewID returns a fresh id for a scratch buffer.
func NewID() string {
	return "buffer-" + uuid.NewString()
}

// Create adds a new buffer at version 1. Every created buffer gets a
// generation no other buffer of the store has had.
func (s *Store) Create(id, path, content string, opts ...Option) (TextBuffer, error) {
	if id == "" {
		return TextBuffer{}, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buffers[id]; ok {
		return TextBuffer{}, fmt.Errorf("%w: %s", ErrBufferExists, id)
	}
	r := newRecord(id, path, content, opts...)
	s.gen++
	r.generation = s.gen
	s.buffers[id] = r
	return r.snapshot(), nil
}

// Get returns a snapshot of the buffer.
func (s *Store) Get(id string) (TextBuffer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.buffers[id]
	if !ok {
		return TextBuffer{}, false
	}
	return r.snapshot(), true
}

// Has reports whether the buffer exists.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.buffers[id]
	return ok
}

// Content returns the buffer's full content.
func (s *Store) Content(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.buffers[id]
	if !ok {
		return "", false
	}
	return r.content, true
}

// Version returns the buffer's current version.
func (s *Store) Version(id string) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.buffers[id]
	if !ok {
		return 0, false
	}
	return r.version, true
}

// Stamp returns the buffer's generation and version.
func (s *Store) Stamp(id string) (generation, version uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.buffers[id]
	if !ok {
		return 0, 0, false
	}
	return r.generation, r.version, true
}

// Lines returns a copy of the buffer's lines, without line endings.
func (s *Store) Lines(id string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.buffers[id]
	if !ok {
		return nil, false
	}
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out, true
}

// Line returns a single line (1-based) without its line ending.
func (s *Store) Line(id string, line int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.buffers[id]
	if !ok || line < 1 || line > len(r.lines) {
		return "", false
	}
	return r.lines[line-1], true
}

// LineRange returns lines [start, end) (0-based) and the total line count.
func (s *Store) LineRange(id string, start, end int) ([]string, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.buffers[id]
	if !ok {
		return nil, 0, false
	}
	total := len(r.lines)
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	if start >= end {
		return nil, total, true
	}
	out := make([]string, end-start)
	copy(out, r.lines[start:end])
	return out, total, true
}

// Offset converts a position to an absolute byte offset. Positions outside
// the buffer are clamped.
func (s *Store) Offset(id string, pos Position) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.buffers[id]
	if !ok {
		return 0, false
	}
	return r.offset(pos), true
}

// PositionAt converts an absolute byte offset to a position.
func (s *Store) PositionAt(id string, offset int) (Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.buffers[id]
	if !ok {
		return Position{}, false
	}
	return r.position(offset), true
}

// Clamp pulls pos inside the buffer.
func (s *Store) Clamp(id string, pos Position) (Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.buffers[id]
	if !ok {
		return Position{}, false
	}
	return r.clamp(pos), true
}

// LineEnding returns the buffer's line ending.
func (s *Store) LineEnding(id string) (LineEnding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.buffers[id]
	if !ok {
		return LineEndingLF, false
	}
	return r.lineEnding, true
}

// Commit replaces the buffer's content, marks it modified and advances the
// version by exactly one.
func (s *Store) Commit(id, content string) (TextBuffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.buffers[id]
	if !ok {
		return TextBuffer{}, fmt.Errorf("%w: %s", ErrBufferNotFound, id)
	}
	r.setContent(content)
	r.modified = true
	r.version++
	return r.snapshot(), nil
}

// MarkSaved clears the modified flag without changing the version.
func (s *Store) MarkSaved(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.buffers[id]
	if !ok {
		return false
	}
	r.modified = false
	return true
}

// Rename re-keys a buffer. The version, generation and content are
// preserved.
func (s *Store) Rename(oldID, newID, newPath string) (TextBuffer, error) {
	if newID == "" {
		return TextBuffer{}, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.buffers[oldID]
	if !ok {
		return TextBuffer{}, fmt.Errorf("%w: %s", ErrBufferNotFound, oldID)
	}
	if oldID == newID {
		r.path = newPath
		return r.snapshot(), nil
	}
	if _, exists := s.buffers[newID]; exists {
		return TextBuffer{}, fmt.Errorf("%w: %s", ErrBufferExists, newID)
	}
	delete(s.buffers, oldID)
	r.id = newID
	r.path = newPath
	s.buffers[newID] = r
	return r.snapshot(), nil
}

// Destroy removes a buffer. It returns false if the buffer did not exist.
func (s *Store) Destroy(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buffers[id]; !ok {
		return false
	}
	delete(s.buffers, id)
	return true
}

// IDs returns all buffer ids in sorted order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.buffers))
	for id := range s.buffers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Paths returns the project paths of all file buffers in sorted order.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.buffers))
	for _, r := range s.buffers {
		if r.path != "" {
			paths = append(paths, r.path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Snapshots returns snapshots of every buffer, sorted by id.
func (s *Store) Snapshots() []TextBuffer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TextBuffer, 0, len(s.buffers))
	for _, r := range s.buffers {
		out = append(out, r.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of buffers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buffers)
}
