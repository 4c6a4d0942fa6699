// Package agent exports the editing state to an external collaborator and
// accepts its edits back.
//
// A Context is the only view an agent gets of the engine. It is a copy:
// later edits never change a Context already handed out. Edits come back
// as a Batch, applied through engine.ApplyEdits as one undo step.
package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dshills/textcore/internal/engine"
	"github.com/dshills/textcore/internal/project/tree"
)

// Errors returned by Apply.
var (
	ErrStaleVersion = errors.New("stale base version")
	ErrEmptyBatch   = errors.New("empty batch")
)

// Context is an immutable snapshot of the editing state.
type Context struct {
	ActiveFile   string            `json:"activeFile,omitempty" msgpack:"activeFile,omitempty"`
	Cursor       engine.Position   `json:"cursor" msgpack:"cursor"`
	Selection    *engine.Range     `json:"selection,omitempty" msgpack:"selection,omitempty"`
	SelectedText string            `json:"selectedText,omitempty" msgpack:"selectedText,omitempty"`
	Language     string            `json:"language,omitempty" msgpack:"language,omitempty"`
	Files        map[string]string `json:"files" msgpack:"files"`
	FileList     []string          `json:"fileList" msgpack:"fileList"`
	Tree         []tree.Node       `json:"tree" msgpack:"tree"`
	Versions     map[string]uint64 `json:"versions" msgpack:"versions"`
}

// Snapshot captures the engine's file buffers and the active file state.
// Scratch buffers have no path and are left out.
func Snapshot(e *engine.Engine) *Context {
	ctx := &Context{
		ActiveFile: e.ActiveFile(),
		Cursor:     e.Cursor(),
		Files:      make(map[string]string),
		FileList:   make([]string, 0),
		Versions:   make(map[string]uint64),
	}

	for _, buf := range e.Buffers() {
		if !buf.IsFile() {
			continue
		}
		ctx.Files[buf.Path] = buf.Content
		ctx.Versions[buf.Path] = buf.Version
		ctx.FileList = append(ctx.FileList, buf.Path)
	}
	sort.Strings(ctx.FileList)
	ctx.Tree = tree.Build(ctx.FileList).Nodes()

	if ctx.ActiveFile != "" {
		ctx.Language = e.Language(ctx.ActiveFile)
		if sel, ok := e.Selection(); ok {
			r := sel.Range()
			ctx.Selection = &r
			ctx.SelectedText = e.SelectedText()
		}
	}
	return ctx
}

// Content returns the content of path in the snapshot.
func (c *Context) Content(path string) (string, bool) {
	s, ok := c.Files[path]
	return s, ok
}

// Version returns the version path had when the snapshot was taken.
func (c *Context) Version(path string) (uint64, bool) {
	v, ok := c.Versions[path]
	return v, ok
}

// EncodeJSON encodes the snapshot as indented JSON.
func (c *Context) EncodeJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// DecodeJSON decodes a snapshot encoded by EncodeJSON.
func DecodeJSON(data []byte) (*Context, error) {
	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	return &c, nil
}

// EncodeMsgpack encodes the snapshot as MessagePack.
func (c *Context) EncodeMsgpack() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode context: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeMsgpack decodes a snapshot encoded by EncodeMsgpack.
func DecodeMsgpack(data []byte) (*Context, error) {
	var c Context
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	return &c, nil
}

// Batch is a set of edits an agent proposes for one file. Positions refer
// to the file at BaseVersion. A zero BaseVersion skips the version check.
type Batch struct {
	Path        string                 `json:"path" msgpack:"path"`
	BaseVersion uint64                 `json:"baseVersion,omitempty" msgpack:"baseVersion,omitempty"`
	Edits       []engine.EditOperation `json:"edits" msgpack:"edits"`
}

// Apply applies b through the engine as one commit. It fails with
// ErrStaleVersion when the file moved past BaseVersion.
func Apply(e *engine.Engine, b Batch) (engine.TextBuffer, error) {
	if len(b.Edits) == 0 {
		return engine.TextBuffer{}, fmt.Errorf("%s: %w", b.Path, ErrEmptyBatch)
	}
	cur, ok := e.Version(b.Path)
	if !ok {
		return engine.TextBuffer{}, fmt.Errorf("%s: %w", b.Path, engine.ErrBufferNotFound)
	}
	if b.BaseVersion != 0 && cur != b.BaseVersion {
		return engine.TextBuffer{}, fmt.Errorf("%s: %w: base %d, current %d", b.Path, ErrStaleVersion, b.BaseVersion, cur)
	}
	return e.ApplyEdits(b.Path, b.Edits)
}

// ApplyAll applies every batch in order and stops at the first failure.
// Batches already applied stay applied.
func ApplyAll(e *engine.Engine, batches []Batch) error {
	for i, b := range batches {
		if _, err := Apply(e, b); err != nil {
			return fmt.Errorf("batch %d: %w", i, err)
		}
	}
	return nil
}
