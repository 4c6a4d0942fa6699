package engine

import (
	"github.com/dshills/textcore/internal/engine/cursor"
)

// SetActiveFile makes id the active file. Switching files resets the
// cursor to 1:1 and clears the selection.
func (e *Engine) SetActiveFile(id string) error {
	if !e.store.Has(id) {
		return newOpError("activate", id, ErrBufferNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor.SetActiveFile(id)
	return nil
}

// ActiveFile returns the active file id, or "" when none is active.
func (e *Engine) ActiveFile() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursor.ActiveFile()
}

// Cursor returns the cursor of the active file.
func (e *Engine) Cursor() Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursor.Cursor()
}

// SetCursor moves the cursor, clamped to the active file.
func (e *Engine) SetCursor(pos Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.cursor.ActiveFile()
	if id == "" {
		return ErrNoActiveFile
	}
	pos, _ = e.store.Clamp(id, pos)
	e.cursor.SetCursor(pos)
	return nil
}

// Select sets the selection of the active file, clamped to the buffer.
// An empty selection clears it.
func (e *Engine) Select(sel Selection) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.cursor.ActiveFile()
	if id == "" {
		return ErrNoActiveFile
	}
	anchor, _ := e.store.Clamp(id, sel.Anchor)
	head, _ := e.store.Clamp(id, sel.Head)
	e.cursor.Select(cursor.NewSelection(anchor, head))
	return nil
}

// ExtendSelection moves the selection head to pos, clamped to the active
// file. Without a selection one is started at the cursor.
func (e *Engine) ExtendSelection(pos Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.cursor.ActiveFile()
	if id == "" {
		return ErrNoActiveFile
	}
	pos, _ = e.store.Clamp(id, pos)
	e.cursor.Extend(pos)
	return nil
}

// ClearSelection drops the selection.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor.ClearSelection()
}

// Selection returns the selection of the active file.
func (e *Engine) Selection() (Selection, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursor.Selection()
}

// SelectedText returns the text of the selection, sliced from the active
// file's lines. It is "" when nothing is selected.
func (e *Engine) SelectedText() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selectedTextLocked()
}

func (e *Engine) selectedTextLocked() string {
	sel, ok := e.cursor.Selection()
	if !ok {
		return ""
	}
	lines, ok := e.store.Lines(e.cursor.ActiveFile())
	if !ok {
		return ""
	}
	return cursor.ExtractText(lines, sel.Range())
}

// ReplaceSelection replaces the selected text with text and clears the
// selection. The cursor lands after the inserted text.
func (e *Engine) ReplaceSelection(text string) (TextBuffer, error) {
	e.mu.RLock()
	id := e.cursor.ActiveFile()
	sel, ok := e.cursor.Selection()
	e.mu.RUnlock()

	if id == "" {
		return TextBuffer{}, ErrNoActiveFile
	}
	if !ok {
		return TextBuffer{}, newOpError("replace selection", id, ErrNoSelection)
	}

	buf, err := e.Replace(id, sel.Range(), text)
	if err != nil {
		return TextBuffer{}, err
	}
	e.ClearSelection()
	return buf, nil
}
