// Package engine provides the multi-file editing and code-intelligence core.
//
// The engine package is the main facade. It owns every open buffer and
// combines editing, per-file undo/redo, cursor state and the cached
// analyses (tokens, folds, brackets, diffs, search) into one API that is
// safe for concurrent use.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - buffer: versioned text snapshots and position conversion
//   - history: per-file undo/redo stacks with grouping
//   - cursor: the active file, cursor and selection
//   - jobs: background analysis keyed by buffer version
//
// and the analyses under internal/analysis, which it keeps coherent with
// the buffers: every commit bumps the buffer version and drops the cached
// analyses of that buffer.
//
// # Basic Usage
//
//	e := engine.New()
//	e.CreateFile("main.go", "package main\n")
//
//	// Positions are 1-based line and rune column.
//	e.Insert("main.go", engine.Position{Line: 2, Column: 1}, "func main() {}\n")
//
//	e.Undo("main.go")
//	e.Redo("main.go")
//
// # Batch Edits
//
// ApplyEdits applies a batch of non-overlapping edits as one commit and one
// undo step. Offsets in the batch all refer to the content before the
// batch:
//
//	e.ApplyEdits("main.go", []engine.EditOperation{
//	    engine.ReplaceOp(engine.Range{Start: p1, End: p2}, "fmt"),
//	    engine.InsertOp(p3, "\n"),
//	})
//
// # Change Events
//
// OnChange registers a listener called after every commit, in registration
// order, outside the engine lock. A listener may call back into the engine.
// A panicking listener is logged and skipped.
//
// # Analysis
//
// Analysis results use 0-based lines and byte columns:
//
//	tokens, _ := e.Tokenize("main.go")
//	folds, _ := e.FoldingRanges("main.go")
//	pos, ok := e.FindMatchingBracket("main.go", 1, 11)
//	res, _ := e.Diff("a.go", "b.go")
//
// Results are cached per buffer version. WarmCaches and TokenizeAsync
// compute them in the background; work for a superseded version is
// dropped with jobs.ErrStale.
//
// # Error Handling
//
// The package defines several error types:
//
//   - ErrBufferNotFound: the buffer id is unknown
//   - ErrBufferExists: a buffer with the id already exists
//   - ErrEditsOverlap: batch edits overlap
//   - ErrInvalidEdit: an edit operation is malformed
//   - ErrNoActiveFile: a cursor operation without an active file
//   - ErrNoSelection: a selection operation without a selection
//
// Mutations return them wrapped in an *OperationError.
package engine
