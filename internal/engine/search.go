package engine

import (
	"context"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/project/tree"
	"github.com/dshills/textcore/internal/search"
)

// SearchOptions returns the engine's default search options.
func (e *Engine) SearchOptions() search.Options {
	return e.searchOpts
}

// Search finds matches of query in one buffer.
func (e *Engine) Search(id, query string, opts search.Options) ([]search.Match, error) {
	doc, ok := e.document(id)
	if !ok {
		return []search.Match{}, newOpError("search", id, ErrBufferNotFound)
	}
	return search.Search(doc, query, opts)
}

// SearchInFiles finds matches of query across every buffer, in path order.
func (e *Engine) SearchInFiles(ctx context.Context, query string, opts search.Options) ([]search.Match, error) {
	snaps := e.store.Snapshots()
	docs := make([]search.Document, 0, len(snaps))
	for _, buf := range snaps {
		docs = append(docs, documentOf(buf))
	}
	return search.SearchInFiles(ctx, docs, query, opts)
}

// FindFileByName ranks the project paths against a file name query.
func (e *Engine) FindFileByName(name string) []search.FileMatch {
	return search.FindFileByName(e.store.Paths(), name)
}

// ProjectTree builds the folder tree of the project paths.
func (e *Engine) ProjectTree() *tree.Tree {
	return tree.Build(e.store.Paths())
}

func (e *Engine) document(id string) (search.Document, bool) {
	buf, ok := e.store.Get(id)
	if !ok {
		return search.Document{}, false
	}
	return documentOf(buf), true
}

func documentOf(buf TextBuffer) search.Document {
	path := buf.Path
	if path == "" {
		path = buf.ID
	}
	return search.Document{Path: path, Lines: buffer.SplitLines(buf.Content, buf.LineEnding)}
}
