// Package cursor provides the cursor and selection model of the active file.
//
// There is exactly one cursor and at most one selection, and both belong to
// the single active file. Positions are 1-based lines and 1-based rune
// columns, the same coordinates the buffer package uses.
//
// Selection Model:
//
// Selections use an anchor/head model where:
//   - Anchor: The position where the selection started
//   - Head: The current cursor position (where typing would occur)
//
// When Anchor == Head the selection is empty and Model treats it as no
// selection at all.
//
// Basic usage:
//
//	m := cursor.NewModel()
//	m.SetActiveFile("main.go")
//	sel := cursor.NewSelection(
//	    cursor.Position{Line: 1, Column: 1},
//	    cursor.Position{Line: 2, Column: 4},
//	)
//	m.Select(sel)
//	text := cursor.ExtractText(lines, sel.Range())
//
// Thread Safety:
//
// Selection is an immutable value type. Model is not thread-safe and is
// guarded by the engine.
package cursor
