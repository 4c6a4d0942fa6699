// Package history provides per-file undo/redo for the editor core.
//
// History is snapshot based: every committed mutation pushes the content the
// buffer had before the mutation. Undo pops that snapshot and pushes the
// current content onto the redo stack; redo is the mirror operation.
//
// # Stacks
//
// Each file owns its own Stacks value. Stacks are bounded (50 entries by
// default); pushing past the limit evicts the oldest entry. Any new push
// clears the redo stack.
//
//	m := history.NewManager(50)
//	m.Push("main.go", "before")
//	prior, ok := m.Undo("main.go", "after") // "before", true
//	next, ok := m.Redo("main.go", prior)    // "after", true
//
// Operating on an empty stack is a silent no-op that reports ok == false.
//
// # Grouping
//
// Several commits can be collapsed into one undo step:
//
//	defer m.GroupScope("main.go", "format").End()
//	// ... several edits ...
//
// Only the snapshot taken before the first edit of the group is recorded.
package history
