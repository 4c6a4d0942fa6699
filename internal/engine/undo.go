package engine

import "github.com/dshills/textcore/internal/engine/history"

// Undo restores the content before the last commit of id. It returns false
// when there is nothing to undo. The restore advances the version and
// emits a ChangeUndo event like any other commit.
func (e *Engine) Undo(id string) (TextBuffer, bool) {
	return e.restore(id, ChangeUndo)
}

// Redo re-applies the last undone commit of id.
func (e *Engine) Redo(id string) (TextBuffer, bool) {
	return e.restore(id, ChangeRedo)
}

func (e *Engine) restore(id string, kind ChangeKind) (TextBuffer, bool) {
	e.mu.Lock()
	current, ok := e.store.Content(id)
	if !ok {
		e.mu.Unlock()
		return TextBuffer{}, false
	}

	var content string
	if kind == ChangeUndo {
		content, ok = e.history.Undo(id, current)
	} else {
		content, ok = e.history.Redo(id, current)
	}
	if !ok {
		buf, _ := e.store.Get(id)
		e.mu.Unlock()
		return buf, false
	}

	buf, ev, changed, err := e.commit(id, content, kind)
	e.mu.Unlock()
	if err != nil {
		return TextBuffer{}, false
	}
	if changed {
		e.notify(ev)
	}
	return buf, true
}

// CanUndo reports whether id has undo history.
func (e *Engine) CanUndo(id string) bool {
	return e.history.CanUndo(id)
}

// CanRedo reports whether id has redo history.
func (e *Engine) CanRedo(id string) bool {
	return e.history.CanRedo(id)
}

// UndoDepth returns the number of undo entries of id.
func (e *Engine) UndoDepth(id string) int {
	return e.history.UndoDepth(id)
}

// RedoDepth returns the number of redo entries of id.
func (e *Engine) RedoDepth(id string) int {
	return e.history.RedoDepth(id)
}

// BeginUndoGroup starts grouping commits of id into one undo entry.
func (e *Engine) BeginUndoGroup(id, name string) {
	e.history.BeginGroup(id, name)
}

// EndUndoGroup ends the undo group of id.
func (e *Engine) EndUndoGroup(id string) {
	e.history.EndGroup(id)
}

// UndoGroup starts an undo group and returns its scope; call End when done.
//
//	defer e.UndoGroup(id, "reformat").End()
func (e *Engine) UndoGroup(id, name string) *history.GroupScope {
	return e.history.GroupScope(id, name)
}
