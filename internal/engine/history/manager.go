package history

import (
	"sync"
)

// Manager keeps one Stacks per file id.
// All methods are thread-safe.
type Manager struct {
	mu         sync.Mutex
	stacks     map[string]*Stacks
	maxEntries int
}

// NewManager creates a manager whose stacks hold at most maxEntries snapshots.
func NewManager(maxEntries int) *Manager {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Manager{
		stacks:     make(map[string]*Stacks),
		maxEntries: maxEntries,
	}
}

// stacksLocked returns the stacks for id, creating them if needed.
func (m *Manager) stacksLocked(id string) *Stacks {
	s, ok := m.stacks[id]
	if !ok {
		s = NewStacks(m.maxEntries)
		m.stacks[id] = s
	}
	return s
}

// Push records the content id had before a committed mutation.
func (m *Manager) Push(id, prior string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stacksLocked(id).Push(prior)
}

// Undo returns the content to restore for id. ok is false when the undo
// stack is empty.
func (m *Manager) Undo(id, current string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stacks[id]
	if !ok {
		return "", false
	}
	return s.Undo(current)
}

// Redo returns the content to re-apply for id. ok is false when the redo
// stack is empty.
func (m *Manager) Redo(id, current string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stacks[id]
	if !ok {
		return "", false
	}
	return s.Redo(current)
}

// CanUndo returns true if id has undo history.
func (m *Manager) CanUndo(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stacks[id]
	return ok && s.CanUndo()
}

// CanRedo returns true if id has redo history.
func (m *Manager) CanRedo(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stacks[id]
	return ok && s.CanRedo()
}

// UndoDepth returns the number of undo snapshots for id.
func (m *Manager) UndoDepth(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stacks[id]; ok {
		return s.UndoDepth()
	}
	return 0
}

// RedoDepth returns the number of redo snapshots for id.
func (m *Manager) RedoDepth(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stacks[id]; ok {
		return s.RedoDepth()
	}
	return 0
}

// BeginGroup starts an undo group for id.
func (m *Manager) BeginGroup(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stacksLocked(id).BeginGroup(name)
}

// EndGroup ends the undo group for id.
func (m *Manager) EndGroup(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stacks[id]; ok {
		s.EndGroup()
	}
}

// Transfer moves the history of oldID to newID, replacing whatever newID had.
func (m *Manager) Transfer(oldID, newID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stacks[oldID]
	if !ok || oldID == newID {
		return
	}
	delete(m.stacks, oldID)
	m.stacks[newID] = s
}

// Purge drops all history for id.
func (m *Manager) Purge(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stacks, id)
}

// Clear drops history for id but keeps tracking it.
func (m *Manager) Clear(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stacks[id]; ok {
		s.Clear()
	}
}

// GroupScope provides a convenient way to group commits using defer.
// Usage:
//
//	func reformat(m *history.Manager, id string) {
//	    defer m.GroupScope(id, "reformat").End()
//	    // ... multiple edits ...
//	}
type GroupScope struct {
	manager *Manager
	id      string
	active  bool
}

// GroupScope starts a new group scope for id.
func (m *Manager) GroupScope(id, name string) *GroupScope {
	m.BeginGroup(id, name)
	return &GroupScope{manager: m, id: id, active: true}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.manager.EndGroup(g.id)
		g.active = false
	}
}
