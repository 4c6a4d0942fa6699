package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/cursor"
)

// EditKind is the variant of an EditOperation.
type EditKind uint8

const (
	// EditInsert inserts Text at Position.
	EditInsert EditKind = iota
	// EditDelete removes Range.
	EditDelete
	// EditReplace replaces Range with Text.
	EditReplace
	// EditReplaceAll replaces the whole buffer with Text.
	EditReplaceAll
)

// String returns a string representation of the edit kind.
func (k EditKind) String() string {
	switch k {
	case EditInsert:
		return "insert"
	case EditDelete:
		return "delete"
	case EditReplace:
		return "replace"
	case EditReplaceAll:
		return "replaceAll"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EditKind) MarshalText() ([]byte, error) {
	if k > EditReplaceAll {
		return nil, fmt.Errorf("%w: kind %d", ErrInvalidEdit, k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EditKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "insert":
		*k = EditInsert
	case "delete":
		*k = EditDelete
	case "replace":
		*k = EditReplace
	case "replaceAll":
		*k = EditReplaceAll
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidEdit, b)
	}
	return nil
}

// EditOperation is one edit of a batch. Insert uses Position and Text,
// Delete uses Range, Replace uses Range and Text, ReplaceAll uses Text.
type EditOperation struct {
	Kind     EditKind `json:"kind" msgpack:"kind"`
	Position Position `json:"position" msgpack:"position"`
	Range    Range    `json:"range" msgpack:"range"`
	Text     string   `json:"text,omitempty" msgpack:"text,omitempty"`
}

// InsertOp returns an insert operation.
func InsertOp(pos Position, text string) EditOperation {
	return EditOperation{Kind: EditInsert, Position: pos, Text: text}
}

// DeleteOp returns a delete operation.
func DeleteOp(r Range) EditOperation {
	return EditOperation{Kind: EditDelete, Range: r}
}

// ReplaceOp returns a replace operation.
func ReplaceOp(r Range, text string) EditOperation {
	return EditOperation{Kind: EditReplace, Range: r, Text: text}
}

// ReplaceAllOp returns an operation replacing the whole buffer.
func ReplaceAllOp(text string) EditOperation {
	return EditOperation{Kind: EditReplaceAll, Text: text}
}

// Start returns the position the operation begins at.
func (op EditOperation) Start() Position {
	switch op.Kind {
	case EditInsert:
		return op.Position
	case EditReplaceAll:
		return Position{Line: 1, Column: 1}
	default:
		return op.Range.Normalize().Start
	}
}

// span is an operation resolved to byte offsets of the current content.
type span struct {
	start, end int
	text       string
	index      int
}

// resolve converts op to byte offsets. Positions are clamped to the buffer.
func (e *Engine) resolve(id string, op EditOperation, contentLen int) (span, error) {
	switch op.Kind {
	case EditInsert:
		off, _ := e.store.Offset(id, op.Position)
		return span{start: off, end: off, text: op.Text}, nil
	case EditDelete, EditReplace:
		r := op.Range.Normalize()
		s, _ := e.store.Offset(id, r.Start)
		end, _ := e.store.Offset(id, r.End)
		text := ""
		if op.Kind == EditReplace {
			text = op.Text
		}
		return span{start: s, end: end, text: text}, nil
	case EditReplaceAll:
		return span{start: 0, end: contentLen, text: op.Text}, nil
	}
	return span{}, fmt.Errorf("%w: kind %d", ErrInvalidEdit, op.Kind)
}

// commit is the single mutation path. It records prior content for undo
// (unless restoring history), stores content, advances the version,
// invalidates derived caches and returns the event to emit. The caller
// holds e.mu and must call notify after releasing it. Unchanged content
// commits nothing and returns ok == false.
func (e *Engine) commit(id, content string, kind ChangeKind) (buf TextBuffer, ev ChangeEvent, ok bool, err error) {
	prior, exists := e.store.Content(id)
	if !exists {
		return TextBuffer{}, ChangeEvent{}, false, ErrBufferNotFound
	}
	if le, _ := e.store.LineEnding(id); buffer.NormalizeLineEndings(content, le) == prior {
		buf, _ = e.store.Get(id)
		return buf, ChangeEvent{}, false, nil
	}

	if kind != ChangeUndo && kind != ChangeRedo {
		e.history.Push(id, prior)
	}
	buf, err = e.store.Commit(id, content)
	if err != nil {
		return TextBuffer{}, ChangeEvent{}, false, err
	}
	e.tokenizer.Invalidate(id)
	e.folds.Invalidate(id)

	if id == e.cursor.ActiveFile() {
		e.clampCursorLocked(id)
	}

	ev = ChangeEvent{Kind: kind, BufferID: id, Version: buf.Version, LineCount: buf.LineCount}
	return buf, ev, true, nil
}

// apply resolves ops against id, applies them and commits once. A single
// edit of the active file also places the cursor.
func (e *Engine) apply(op, id string, kind ChangeKind, ops []EditOperation) (TextBuffer, error) {
	e.mu.Lock()
	content, ok := e.store.Content(id)
	if !ok {
		e.mu.Unlock()
		return TextBuffer{}, newOpError(op, id, ErrBufferNotFound)
	}

	spans := make([]span, 0, len(ops))
	for i, o := range ops {
		sp, err := e.resolve(id, o, len(content))
		if err != nil {
			e.mu.Unlock()
			return TextBuffer{}, newOpError(op, id, err)
		}
		sp.index = i
		spans = append(spans, sp)
	}
	if err := checkOverlap(spans); err != nil {
		e.mu.Unlock()
		return TextBuffer{}, newOpError(op, id, err)
	}

	// Apply from the end of the buffer backwards so earlier offsets stay
	// valid. At equal starts ranges go before inserts, and later-listed
	// edits go first so same-position inserts keep their listed order.
	sort.SliceStable(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.start != b.start {
			return a.start > b.start
		}
		if a.end != b.end {
			return a.end > b.end
		}
		return a.index > b.index
	})
	for _, sp := range spans {
		content = content[:sp.start] + sp.text + content[sp.end:]
	}

	buf, ev, changed, err := e.commit(id, content, kind)
	if err == nil && changed && len(ops) == 1 && id == e.cursor.ActiveFile() {
		e.placeCursorLocked(id, ops[0])
	}
	e.mu.Unlock()

	if err != nil {
		return TextBuffer{}, newOpError(op, id, err)
	}
	if changed {
		e.notify(ev)
	}
	return buf, nil
}

// checkOverlap rejects batches where two spans share text. Touching spans
// and inserts at a range boundary are allowed.
func checkOverlap(spans []span) error {
	if len(spans) < 2 {
		return nil
	}
	sorted := make([]span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].end < sorted[j].end
	})

	maxEnd := sorted[0].end
	for i := 1; i < len(sorted); i++ {
		sp := sorted[i]
		if sp.start < maxEnd {
			return fmt.Errorf("%w: edit %d and an earlier edit", ErrEditsOverlap, sp.index)
		}
		if sp.end > maxEnd {
			maxEnd = sp.end
		}
	}
	return nil
}

// placeCursorLocked moves the cursor after a single edit of the active file.
func (e *Engine) placeCursorLocked(id string, op EditOperation) {
	start := op.Start()
	start, _ = e.store.Clamp(id, start)
	switch op.Kind {
	case EditInsert, EditReplace:
		e.cursor.SetCursor(cursor.AfterInsert(start, op.Text))
	case EditDelete:
		e.cursor.SetCursor(start)
	}
	e.clampCursorLocked(id)
}

func (e *Engine) clampCursorLocked(id string) {
	if pos, ok := e.store.Clamp(id, e.cursor.Cursor()); ok {
		e.cursor.SetCursor(pos)
	}
	if sel, ok := e.cursor.Selection(); ok {
		anchor, _ := e.store.Clamp(id, sel.Anchor)
		head, _ := e.store.Clamp(id, sel.Head)
		pos := e.cursor.Cursor()
		e.cursor.Select(cursor.NewSelection(anchor, head))
		e.cursor.SetCursor(pos)
	}
}

// ============================================================================
// Write Operations
// ============================================================================

// Insert inserts text at pos. The position is clamped to the buffer.
func (e *Engine) Insert(id string, pos Position, text string) (TextBuffer, error) {
	return e.apply("insert", id, ChangeEdit, []EditOperation{InsertOp(pos, text)})
}

// Delete removes the text in r.
func (e *Engine) Delete(id string, r Range) (TextBuffer, error) {
	return e.apply("delete", id, ChangeEdit, []EditOperation{DeleteOp(r)})
}

// Replace replaces the text in r with text.
func (e *Engine) Replace(id string, r Range, text string) (TextBuffer, error) {
	return e.apply("replace", id, ChangeEdit, []EditOperation{ReplaceOp(r, text)})
}

// SetContent replaces the whole buffer.
func (e *Engine) SetContent(id, text string) (TextBuffer, error) {
	return e.apply("set content", id, ChangeEdit, []EditOperation{ReplaceAllOp(text)})
}

// DeleteLines removes the 1-based inclusive line range [start, end],
// clamped to the buffer, including the line ending that joins it to the
// rest of the text.
func (e *Engine) DeleteLines(id string, start, end int) (TextBuffer, error) {
	if start > end {
		start, end = end, start
	}

	e.mu.Lock()
	lines, ok := e.store.Lines(id)
	if !ok {
		e.mu.Unlock()
		return TextBuffer{}, newOpError("delete lines", id, ErrBufferNotFound)
	}
	le, _ := e.store.LineEnding(id)
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > len(lines) {
		buf, _ := e.store.Get(id)
		e.mu.Unlock()
		return buf, nil
	}
	kept := append(lines[:start-1:start-1], lines[end:]...)

	buf, ev, changed, err := e.commit(id, strings.Join(kept, le.Sequence()), ChangeEdit)
	if err == nil && changed && id == e.cursor.ActiveFile() {
		e.cursor.SetCursor(Position{Line: start, Column: 1})
		e.clampCursorLocked(id)
	}
	e.mu.Unlock()

	if err != nil {
		return TextBuffer{}, newOpError("delete lines", id, err)
	}
	if changed {
		e.notify(ev)
	}
	return buf, nil
}

// ApplyEdits applies a batch as one commit: one version step, one undo
// entry and one change event. Every position refers to the content before
// the batch. Edits are applied in descending (line, column) order; at the
// same position the last-listed edit is applied first, so inserts there
// appear in listed order. Overlapping edits reject the whole batch with
// ErrEditsOverlap.
func (e *Engine) ApplyEdits(id string, ops []EditOperation) (TextBuffer, error) {
	if len(ops) == 0 {
		buf, ok := e.store.Get(id)
		if !ok {
			return TextBuffer{}, newOpError("apply edits", id, ErrBufferNotFound)
		}
		return buf, nil
	}
	return e.apply("apply edits", id, ChangeBatch, ops)
}
