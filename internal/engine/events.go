package engine

import (
	"log/slog"
	"runtime/debug"
)

// ChangeKind categorizes change events.
type ChangeKind uint8

const (
	// ChangeEdit is a single insert, delete, replace or set.
	ChangeEdit ChangeKind = iota
	// ChangeBatch is an ApplyEdits commit.
	ChangeBatch
	// ChangeUndo restored an undo snapshot.
	ChangeUndo
	// ChangeRedo restored a redo snapshot.
	ChangeRedo
	// ChangeCreate is a new buffer.
	ChangeCreate
	// ChangeDestroy is a removed buffer.
	ChangeDestroy
	// ChangeRename re-keyed a buffer; OldID holds the previous id.
	ChangeRename
	// ChangeSave cleared the modified flag.
	ChangeSave
)

// String returns a string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeEdit:
		return "edit"
	case ChangeBatch:
		return "batch"
	case ChangeUndo:
		return "undo"
	case ChangeRedo:
		return "redo"
	case ChangeCreate:
		return "create"
	case ChangeDestroy:
		return "destroy"
	case ChangeRename:
		return "rename"
	case ChangeSave:
		return "save"
	default:
		return "unknown"
	}
}

// IsContentChange reports whether the event advanced the buffer version.
func (k ChangeKind) IsContentChange() bool {
	return k == ChangeEdit || k == ChangeBatch || k == ChangeUndo || k == ChangeRedo
}

// ChangeEvent describes one buffer change.
type ChangeEvent struct {
	Kind      ChangeKind
	BufferID  string
	OldID     string
	Version   uint64
	LineCount int
}

// Listener receives change events.
type Listener func(ChangeEvent)

type listenerEntry struct {
	id uint64
	fn Listener
}

// OnChange registers a listener and returns a function that removes it.
// Listeners run synchronously after each change, in registration order,
// on the goroutine that made the change and with no engine lock held.
func (e *Engine) OnChange(l Listener) (unsubscribe func()) {
	e.listenerMu.Lock()
	defer e.listenerMu.Unlock()

	e.nextListener++
	id := e.nextListener
	e.listeners = append(e.listeners, listenerEntry{id: id, fn: l})

	return func() {
		e.listenerMu.Lock()
		defer e.listenerMu.Unlock()
		for i, entry := range e.listeners {
			if entry.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// notify delivers ev to every listener. A panicking listener is logged and
// skipped; the change itself stands.
func (e *Engine) notify(ev ChangeEvent) {
	e.listenerMu.Lock()
	listeners := make([]listenerEntry, len(e.listeners))
	copy(listeners, e.listeners)
	e.listenerMu.Unlock()

	for _, entry := range listeners {
		e.dispatch(entry.fn, ev)
	}
}

func (e *Engine) dispatch(fn Listener, ev ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("change listener panicked",
				slog.String("buffer", ev.BufferID),
				slog.String("kind", ev.Kind.String()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()
	fn(ev)
}
