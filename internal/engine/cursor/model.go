package cursor

import (
	"strings"
	"unicode/utf8"
)

// Model holds the single cursor and optional selection of the active file.
//
// Model is not thread-safe; the engine serializes access.
type Model struct {
	file      string
	pos       Position
	selection Selection
	hasSel    bool
}

// NewModel creates a model with no active file and the cursor at 1:1.
func NewModel() *Model {
	return &Model{pos: Position{Line: 1, Column: 1}}
}

// ActiveFile returns the active file id, or "" when none is active.
func (m *Model) ActiveFile() string {
	return m.file
}

// SetActiveFile switches the active file. Switching resets the cursor to
// 1:1 and clears the selection; re-selecting the current file is a no-op.
func (m *Model) SetActiveFile(id string) {
	if id == m.file {
		return
	}
	m.file = id
	m.pos = Position{Line: 1, Column: 1}
	m.ClearSelection()
}

// Cursor returns the cursor position.
func (m *Model) Cursor() Position {
	return m.pos
}

// SetCursor moves the cursor. The caller clamps pos to the buffer.
func (m *Model) SetCursor(pos Position) {
	m.pos = pos
}

// Selection returns the current selection. ok is false when nothing is selected.
func (m *Model) Selection() (Selection, bool) {
	return m.selection, m.hasSel
}

// Select sets the selection and moves the cursor to its head.
// An empty range clears the selection.
func (m *Model) Select(sel Selection) {
	m.pos = sel.Head
	if sel.IsEmpty() {
		m.ClearSelection()
		return
	}
	m.selection = sel
	m.hasSel = true
}

// Extend moves the selection head to pos, starting a selection at the
// cursor when there is none.
func (m *Model) Extend(pos Position) {
	sel := NewSelection(m.pos, pos)
	if m.hasSel {
		sel = m.selection.Extend(pos)
	}
	m.Select(sel)
}

// ClearSelection drops the selection, keeping the cursor where it is.
func (m *Model) ClearSelection() {
	m.selection = Selection{}
	m.hasSel = false
}

// Forget resets the model if id is the active file.
func (m *Model) Forget(id string) {
	if id != "" && id == m.file {
		m.file = ""
		m.pos = Position{Line: 1, Column: 1}
		m.ClearSelection()
	}
}

// Rename follows the active file across a rename.
func (m *Model) Rename(oldID, newID string) {
	if oldID != "" && oldID == m.file {
		m.file = newID
	}
}

// AfterInsert returns where the cursor lands after inserting text at start.
// Single-line text advances the column by the inserted rune count; multi-line
// text moves to the last inserted line, one past its last rune.
func AfterInsert(start Position, text string) Position {
	parts := strings.Split(text, "\n")
	if len(parts) == 1 {
		return Position{Line: start.Line, Column: start.Column + utf8.RuneCountInString(text)}
	}
	last := strings.TrimSuffix(parts[len(parts)-1], "\r")
	return Position{
		Line:   start.Line + len(parts) - 1,
		Column: utf8.RuneCountInString(last) + 1,
	}
}
