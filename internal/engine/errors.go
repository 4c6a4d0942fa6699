package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/textcore/internal/engine/buffer"
)

// Errors returned by engine operations.
var (
	// ErrBufferNotFound indicates the buffer id is unknown or destroyed.
	ErrBufferNotFound = buffer.ErrBufferNotFound

	// ErrBufferExists indicates a create or rename target is taken.
	ErrBufferExists = buffer.ErrBufferExists

	// ErrEditsOverlap indicates two edits of a batch touch the same text.
	ErrEditsOverlap = errors.New("edits overlap")

	// ErrInvalidEdit indicates a malformed edit operation.
	ErrInvalidEdit = errors.New("invalid edit")

	// ErrNoActiveFile indicates an operation needs an active file.
	ErrNoActiveFile = errors.New("no active file")

	// ErrNoSelection indicates an operation needs a selection.
	ErrNoSelection = errors.New("no selection")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "insert", "rename")
	Target string // Target of the operation (a buffer id or path)
	Err    error  // Underlying error
}

// newOpError wraps err, or returns nil if err is nil.
func newOpError(op, target string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Target != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
