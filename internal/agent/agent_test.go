package agent

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/textcore/internal/engine"
	"github.com/dshills/textcore/internal/engine/cursor"
	"github.com/dshills/textcore/internal/project/tree"
)

func setup(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New()
	err := e.LoadFiles(map[string]string{
		"src/main.go": "package main\n\nfunc main() {}",
		"src/util.go": "package main",
		"README.md":   "# demo",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateBuffer("scratch"); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestSnapshot(t *testing.T) {
	e := setup(t)
	if err := e.SetActiveFile("src/main.go"); err != nil {
		t.Fatal(err)
	}
	sel := cursor.NewSelection(engine.Position{Line: 3, Column: 6}, engine.Position{Line: 3, Column: 10})
	if err := e.Select(sel); err != nil {
		t.Fatal(err)
	}

	ctx := Snapshot(e)
	if ctx.ActiveFile != "src/main.go" || ctx.Language != "go" {
		t.Errorf("active = %q (%s)", ctx.ActiveFile, ctx.Language)
	}
	if ctx.SelectedText != "main" || ctx.Selection == nil {
		t.Errorf("selection = %v %q, want main", ctx.Selection, ctx.SelectedText)
	}
	if ctx.Cursor != (engine.Position{Line: 3, Column: 10}) {
		t.Errorf("cursor = %v, want 3:10", ctx.Cursor)
	}
	want := []string{"README.md", "src/main.go", "src/util.go"}
	if !reflect.DeepEqual(ctx.FileList, want) {
		t.Errorf("FileList = %v, want %v", ctx.FileList, want)
	}
	if len(ctx.Files) != 3 {
		t.Errorf("Files has %d entries, want 3 (scratch excluded)", len(ctx.Files))
	}
	if len(ctx.Tree) != 5 || ctx.Tree[0].Parent != tree.NoParent {
		t.Fatalf("Tree = %+v, want root plus 4 nodes", ctx.Tree)
	}
	if first := ctx.Tree[ctx.Tree[0].Children[0]]; first.Type != tree.NodeTypeFolder || first.Name != "src" {
		t.Errorf("first root child = %+v, want src folder", first)
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	e := setup(t)
	ctx := Snapshot(e)
	if _, err := e.SetContent("README.md", "changed"); err != nil {
		t.Fatal(err)
	}
	if got, _ := ctx.Content("README.md"); got != "# demo" {
		t.Errorf("snapshot content = %q after edit", got)
	}
	if v, _ := ctx.Version("README.md"); v != 1 {
		t.Errorf("snapshot version = %d, want 1", v)
	}
}

func TestEncodings(t *testing.T) {
	e := setup(t)
	e.SetActiveFile("README.md")
	ctx := Snapshot(e)

	data, err := ctx.EncodeJSON()
	if err != nil {
		t.Fatal(err)
	}
	fromJSON, err := DecodeJSON(data)
	if err != nil {
		t.Fatal(err)
	}

	packed, err := ctx.EncodeMsgpack()
	if err != nil {
		t.Fatal(err)
	}
	fromPack, err := DecodeMsgpack(packed)
	if err != nil {
		t.Fatal(err)
	}

	for name, got := range map[string]*Context{"json": fromJSON, "msgpack": fromPack} {
		if got.ActiveFile != ctx.ActiveFile || !reflect.DeepEqual(got.Files, ctx.Files) {
			t.Errorf("%s: decoded %+v", name, got)
		}
		if !reflect.DeepEqual(got.Versions, ctx.Versions) || !reflect.DeepEqual(got.FileList, ctx.FileList) {
			t.Errorf("%s: versions or file list differ", name)
		}
		if !reflect.DeepEqual(got.Tree, ctx.Tree) {
			t.Errorf("%s: tree = %+v, want %+v", name, got.Tree, ctx.Tree)
		}
	}

	if _, err := DecodeJSON([]byte("{")); err == nil {
		t.Error("DecodeJSON of bad input succeeded")
	}
}

func TestApply(t *testing.T) {
	e := setup(t)
	ctx := Snapshot(e)
	base, _ := ctx.Version("src/util.go")

	batch := Batch{
		Path:        "src/util.go",
		BaseVersion: base,
		Edits: []engine.EditOperation{
			engine.ReplaceOp(engine.Range{
				Start: engine.Position{Line: 1, Column: 9},
				End:   engine.Position{Line: 1, Column: 13},
			}, "util"),
			engine.InsertOp(engine.Position{Line: 1, Column: 13}, "\n"),
		},
	}
	buf, err := Apply(e, batch)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if buf.Content != "package util\n" || buf.Version != base+1 {
		t.Errorf("buffer = %q v%d", buf.Content, buf.Version)
	}

	// The same batch is now stale.
	if _, err := Apply(e, batch); !errors.Is(err, ErrStaleVersion) {
		t.Errorf("replay error = %v, want ErrStaleVersion", err)
	}
	if _, err := Apply(e, Batch{Path: "nope", Edits: batch.Edits}); !errors.Is(err, engine.ErrBufferNotFound) {
		t.Errorf("unknown path error = %v", err)
	}
	if _, err := Apply(e, Batch{Path: "src/util.go"}); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("empty batch error = %v", err)
	}

	// One undo step reverts the whole batch.
	if _, ok := e.Undo("src/util.go"); !ok {
		t.Fatal("Undo = false")
	}
	if got, _ := e.GetContent("src/util.go"); got != "package main" {
		t.Errorf("after undo = %q", got)
	}
}

func TestApplyAllStopsAtFailure(t *testing.T) {
	e := setup(t)
	err := ApplyAll(e, []Batch{
		{Path: "README.md", Edits: []engine.EditOperation{engine.ReplaceAllOp("# new")}},
		{Path: "README.md", BaseVersion: 1, Edits: []engine.EditOperation{engine.ReplaceAllOp("# lost")}},
	})
	if !errors.Is(err, ErrStaleVersion) {
		t.Errorf("error = %v, want ErrStaleVersion", err)
	}
	if got, _ := e.GetContent("README.md"); got != "# new" {
		t.Errorf("content = %q, want first batch applied", got)
	}
}
