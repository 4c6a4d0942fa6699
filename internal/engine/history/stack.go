package history

// DefaultMaxEntries is the undo depth used when a non-positive limit is given.
const DefaultMaxEntries = 50

// entry is one stored snapshot.
type entry struct {
	content string
}

// Stacks holds the undo and redo snapshots of a single file.
// Stacks is not safe for concurrent use; Manager serializes access.
type Stacks struct {
	undo []entry
	redo []entry

	// Grouping state
	grouping  bool
	groupName string
	groupHit  bool

	maxEntries int
}

// NewStacks creates empty stacks bounded to maxEntries.
func NewStacks(maxEntries int) *Stacks {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Stacks{maxEntries: maxEntries}
}

// Push records prior as the state to return to on the next undo and clears
// the redo stack. Inside a group only the first push is recorded.
func (s *Stacks) Push(prior string) {
	s.redo = nil

	if s.grouping {
		if s.groupHit {
			return
		}
		s.groupHit = true
	}

	s.undo = append(s.undo, entry{content: prior})

	// Enforce max entries
	if len(s.undo) > s.maxEntries {
		excess := len(s.undo) - s.maxEntries
		s.undo = s.undo[excess:]
	}
}

// Undo pops the newest undo snapshot, pushes current onto the redo stack and
// returns the popped content. ok is false when there is nothing to undo.
func (s *Stacks) Undo(current string) (string, bool) {
	if len(s.undo) == 0 {
		return "", false
	}
	e := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, entry{content: current})
	return e.content, true
}

// Redo is the mirror of Undo.
func (s *Stacks) Redo(current string) (string, bool) {
	if len(s.redo) == 0 {
		return "", false
	}
	e := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, entry{content: current})
	if len(s.undo) > s.maxEntries {
		s.undo = s.undo[len(s.undo)-s.maxEntries:]
	}
	return e.content, true
}

// CanUndo returns true if undo is available.
func (s *Stacks) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo returns true if redo is available.
func (s *Stacks) CanRedo() bool { return len(s.redo) > 0 }

// UndoDepth returns the number of undo snapshots.
func (s *Stacks) UndoDepth() int { return len(s.undo) }

// RedoDepth returns the number of redo snapshots.
func (s *Stacks) RedoDepth() int { return len(s.redo) }

// BeginGroup starts a group. Nested calls are ignored.
func (s *Stacks) BeginGroup(name string) {
	if s.grouping {
		return
	}
	s.grouping = true
	s.groupName = name
	s.groupHit = false
}

// EndGroup finishes the current group.
func (s *Stacks) EndGroup() {
	s.grouping = false
	s.groupName = ""
	s.groupHit = false
}

// IsGrouping returns true while a group is open.
func (s *Stacks) IsGrouping() bool { return s.grouping }

// Clear removes all undo/redo history.
func (s *Stacks) Clear() {
	s.undo = nil
	s.redo = nil
	s.EndGroup()
}
