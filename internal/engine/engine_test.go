package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/textcore/internal/analysis/highlight"
	"github.com/dshills/textcore/internal/logging"
)

func pos(line, col int) Position { return Position{Line: line, Column: col} }

func rng(l1, c1, l2, c2 int) Range { return Range{Start: pos(l1, c1), End: pos(l2, c2)} }

func newTestEngine(t *testing.T, files map[string]string) *Engine {
	t.Helper()
	e := New()
	if err := e.LoadFiles(files); err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	return e
}

func content(t *testing.T, e *Engine, id string) string {
	t.Helper()
	s, ok := e.GetContent(id)
	if !ok {
		t.Fatalf("GetContent(%q): buffer missing", id)
	}
	return s
}

func TestCreateAndRead(t *testing.T) {
	e := New()
	buf, err := e.CreateFile("a.txt", "one\ntwo")
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if buf.Version != 1 || buf.LineCount != 2 {
		t.Errorf("buffer = %+v, want version 1 with 2 lines", buf)
	}
	if line, ok := e.GetLine("a.txt", 2); !ok || line != "two" {
		t.Errorf("GetLine(2) = %q, %v", line, ok)
	}
	if _, err := e.CreateFile("a.txt", ""); !errors.Is(err, ErrBufferExists) {
		t.Errorf("duplicate create error = %v, want ErrBufferExists", err)
	}

	scratch, err := e.CreateBuffer("x")
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	if scratch.IsFile() || scratch.ID == "" {
		t.Errorf("scratch buffer = %+v", scratch)
	}
	if got := e.Paths(); !reflect.DeepEqual(got, []string{"a.txt"}) {
		t.Errorf("Paths = %v, want [a.txt]", got)
	}
}

func TestUnknownBuffer(t *testing.T) {
	e := New()
	if _, err := e.Insert("nope", pos(1, 1), "x"); !errors.Is(err, ErrBufferNotFound) {
		t.Errorf("Insert error = %v, want ErrBufferNotFound", err)
	}
	var opErr *OperationError
	if _, err := e.Delete("nope", rng(1, 1, 1, 2)); !errors.As(err, &opErr) || opErr.Op != "delete" {
		t.Errorf("Delete error = %v, want *OperationError for delete", err)
	}
	if _, ok := e.Undo("nope"); ok {
		t.Error("Undo of unknown buffer should report false")
	}
	if e.DeleteFile("nope") {
		t.Error("DeleteFile of unknown path should report false")
	}
	if _, ok := e.GetContent("nope"); ok {
		t.Error("GetContent of unknown buffer should report false")
	}
	if _, err := e.Tokenize("nope"); !errors.Is(err, ErrBufferNotFound) {
		t.Errorf("Tokenize error = %v, want ErrBufferNotFound", err)
	}
}

func TestDestroyPurgesState(t *testing.T) {
	e := newTestEngine(t, map[string]string{"a.go": "package a"})
	if _, err := e.Insert("a.go", pos(1, 10), "\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Tokenize("a.go"); err != nil {
		t.Fatal(err)
	}
	if !e.DeleteFile("a.go") {
		t.Fatal("DeleteFile = false")
	}
	if e.HasBuffer("a.go") || e.CanUndo("a.go") {
		t.Error("buffer or history survived DeleteFile")
	}

	// A new buffer under the same path starts clean.
	buf, err := e.CreateFile("a.go", "package b")
	if err != nil {
		t.Fatal(err)
	}
	if buf.Version != 1 || e.CanUndo("a.go") {
		t.Errorf("recreated buffer = %+v, CanUndo = %v", buf, e.CanUndo("a.go"))
	}
}

func TestRenameTransfersHistory(t *testing.T) {
	e := newTestEngine(t, map[string]string{"old.txt": "a"})
	if _, err := e.Insert("old.txt", pos(1, 2), "b"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetActiveFile("old.txt"); err != nil {
		t.Fatal(err)
	}

	var events []ChangeEvent
	e.OnChange(func(ev ChangeEvent) { events = append(events, ev) })

	buf, err := e.RenameFile("old.txt", "new.txt")
	if err != nil {
		t.Fatalf("RenameFile: %v", err)
	}
	if buf.Path != "new.txt" || buf.Version != 2 {
		t.Errorf("renamed buffer = %+v, want path new.txt at version 2", buf)
	}
	if e.HasBuffer("old.txt") {
		t.Error("old path still present")
	}
	if e.ActiveFile() != "new.txt" {
		t.Errorf("ActiveFile = %q, want new.txt", e.ActiveFile())
	}
	if len(events) != 1 || events[0].Kind != ChangeRename || events[0].OldID != "old.txt" {
		t.Errorf("events = %+v, want one rename from old.txt", events)
	}

	if _, ok := e.Undo("new.txt"); !ok {
		t.Fatal("Undo after rename = false")
	}
	if got := content(t, e, "new.txt"); got != "a" {
		t.Errorf("content after undo = %q, want %q", got, "a")
	}

	if _, err := e.RenameFile("missing", "x"); !errors.Is(err, ErrBufferNotFound) {
		t.Errorf("rename missing error = %v", err)
	}
}

func TestRenameOntoExisting(t *testing.T) {
	e := newTestEngine(t, map[string]string{"a": "1", "b": "2"})
	if _, err := e.RenameFile("a", "b"); !errors.Is(err, ErrBufferExists) {
		t.Errorf("error = %v, want ErrBufferExists", err)
	}
	if got := content(t, e, "a"); got != "1" {
		t.Errorf("source changed to %q", got)
	}
}

func TestListenersOrderAndPanic(t *testing.T) {
	e := New(WithLogger(logging.Discard()))
	if _, err := e.CreateFile("f", "x"); err != nil {
		t.Fatal(err)
	}

	var order []string
	e.OnChange(func(ChangeEvent) { order = append(order, "first") })
	e.OnChange(func(ChangeEvent) { panic("boom") })
	unsub := e.OnChange(func(ChangeEvent) { order = append(order, "third") })

	buf, err := e.Insert("f", pos(1, 2), "y")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if buf.Version != 2 || content(t, e, "f") != "xy" {
		t.Errorf("edit not kept after panicking listener: %+v", buf)
	}
	if !reflect.DeepEqual(order, []string{"first", "third"}) {
		t.Errorf("listener order = %v", order)
	}

	unsub()
	order = nil
	if _, err := e.Insert("f", pos(1, 1), "z"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(order, []string{"first"}) {
		t.Errorf("after unsubscribe order = %v, want [first]", order)
	}
}

func TestListenerCanReadEngine(t *testing.T) {
	e := newTestEngine(t, map[string]string{"f": "a"})
	var seen string
	e.OnChange(func(ev ChangeEvent) {
		seen, _ = e.GetContent(ev.BufferID)
	})
	if _, err := e.Insert("f", pos(1, 2), "b"); err != nil {
		t.Fatal(err)
	}
	if seen != "ab" {
		t.Errorf("listener saw %q, want %q", seen, "ab")
	}
}

func TestMarkSaved(t *testing.T) {
	e := newTestEngine(t, map[string]string{"f": "a"})
	if _, err := e.Insert("f", pos(1, 1), "b"); err != nil {
		t.Fatal(err)
	}
	if buf, _ := e.Buffer("f"); !buf.Modified {
		t.Fatal("buffer not modified after edit")
	}
	if !e.MarkSaved("f") {
		t.Fatal("MarkSaved = false")
	}
	buf, _ := e.Buffer("f")
	if buf.Modified || buf.Version != 2 {
		t.Errorf("after save = %+v, want unmodified at version 2", buf)
	}
}

func TestLanguageDetectionAndOverride(t *testing.T) {
	e := newTestEngine(t, map[string]string{"main.go": "package main", "notes.xyz": ""})
	if got := e.Language("main.go"); got != "go" {
		t.Errorf("Language(main.go) = %q, want go", got)
	}
	if got := e.Language("notes.xyz"); got != "plaintext" {
		t.Errorf("Language(notes.xyz) = %q, want plaintext", got)
	}
	if err := e.SetLanguage("notes.xyz", "python"); err != nil {
		t.Fatal(err)
	}
	if got := e.Language("notes.xyz"); got != "python" {
		t.Errorf("override = %q, want python", got)
	}
	if err := e.SetLanguage("nope", "go"); !errors.Is(err, ErrBufferNotFound) {
		t.Errorf("SetLanguage error = %v", err)
	}
}

func TestTokenizeCacheFollowsVersion(t *testing.T) {
	e := newTestEngine(t, map[string]string{"a.go": "func f() {}"})
	tokens, err := e.Tokenize("a.go")
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) == 0 || tokens[0].Type != highlight.TokenKeyword {
		t.Fatalf("tokens = %+v, want a leading keyword", tokens)
	}
	if !e.TokenCached("a.go") {
		t.Error("tokens not cached after Tokenize")
	}
	if _, err := e.Insert("a.go", pos(1, 1), "// x\n"); err != nil {
		t.Fatal(err)
	}
	if e.TokenCached("a.go") {
		t.Error("cache still valid after edit")
	}
	tokens, _ = e.Tokenize("a.go")
	if tokens[0].Type != highlight.TokenComment {
		t.Errorf("first token after edit = %v, want comment", tokens[0].Type)
	}
}

func TestHighlightedRangesViewport(t *testing.T) {
	e := newTestEngine(t, map[string]string{"a.go": "func a() {}\nfunc b() {}\nfunc c() {}"})
	if e.TokenCached("a.go") {
		t.Fatal("tokens cached before first use")
	}
	got, err := e.HighlightedRanges("a.go", highlight.Viewport{StartLine: 1, EndLine: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("no render instructions")
	}
	for _, ri := range got {
		if ri.Line != 1 {
			t.Errorf("instruction on line %d outside viewport", ri.Line)
		}
		if ri.Color == "" {
			t.Errorf("instruction %+v has no color", ri)
		}
	}
	if !e.TokenCached("a.go") {
		t.Error("tokens computed on a miss were not cached")
	}
}

func TestFoldingThroughEngine(t *testing.T) {
	e := newTestEngine(t, map[string]string{"a.js": "function foo() {\n  return 1;\n}"})
	ranges, err := e.FoldingRanges("a.js")
	if err != nil {
		t.Fatal(err)
	}
	if len(ranges) != 1 || ranges[0].StartLine != 0 || ranges[0].EndLine != 2 {
		t.Fatalf("FoldingRanges = %+v, want one range 0..2", ranges)
	}
	if err := e.SetFoldCollapsed("a.js", 0, true); err != nil {
		t.Fatal(err)
	}
	ranges, _ = e.FoldingRanges("a.js")
	if !ranges[0].Collapsed {
		t.Error("range not collapsed")
	}
}

func TestBracketsThroughEngine(t *testing.T) {
	e := newTestEngine(t, map[string]string{"f": "if (a) {\n}\n)"})
	got, ok := e.FindMatchingBracket("f", 0, 7)
	if !ok || got.Line != 1 || got.Column != 0 {
		t.Errorf("FindMatchingBracket = %+v, %v; want 1:0", got, ok)
	}
	pairs, err := e.FindAllBracketPairs("f")
	if err != nil || len(pairs) != 2 {
		t.Errorf("FindAllBracketPairs = %+v, %v; want 2 pairs", pairs, err)
	}
	res, _ := e.BracketScan("f")
	if len(res.Unmatched) != 1 || res.Unmatched[0].Char != ")" {
		t.Errorf("Unmatched = %+v, want the stray )", res.Unmatched)
	}
}

func TestDiffBuffers(t *testing.T) {
	e := newTestEngine(t, map[string]string{"a": "x\ny\nz", "b": "x\nY\nz"})
	res, err := e.Diff("a", "b")
	if err != nil {
		t.Fatal(err)
	}
	if res.Added() != 1 || res.Removed() != 1 {
		t.Errorf("Added/Removed = %d/%d, want 1/1", res.Added(), res.Removed())
	}
	if _, err := e.Diff("a", "missing"); !errors.Is(err, ErrBufferNotFound) {
		t.Errorf("error = %v, want ErrBufferNotFound", err)
	}

	res, _ = e.DiffText("a", "x\ny\nz")
	if res.HasChanges() {
		t.Errorf("DiffText against own content = %+v", res.Hunks)
	}
}

func TestVirtualizedView(t *testing.T) {
	e := newTestEngine(t, map[string]string{"f": "a\nb\n世界\nd"})
	tests := []struct {
		name       string
		vp         highlight.Viewport
		start, end int
		hasMore    bool
	}{
		{"first window", highlight.Viewport{StartLine: 0, EndLine: 2}, 0, 2, true},
		{"last window", highlight.Viewport{StartLine: 2, EndLine: 10}, 2, 4, false},
		{"past end", highlight.Viewport{StartLine: 8, EndLine: 10}, 4, 4, false},
		{"negative end", highlight.Viewport{StartLine: 1, EndLine: -3}, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := e.CreateVirtualizedView("f", tt.vp)
			if err != nil {
				t.Fatal(err)
			}
			if view.StartLine != tt.start || view.EndLine != tt.end || view.HasMore != tt.hasMore {
				t.Errorf("view = %d..%d more=%v, want %d..%d more=%v",
					view.StartLine, view.EndLine, view.HasMore, tt.start, tt.end, tt.hasMore)
			}
			if len(view.Lines) != tt.end-tt.start || view.TotalLines != 4 {
				t.Errorf("got %d lines of %d", len(view.Lines), view.TotalLines)
			}
		})
	}

	view, _ := e.CreateVirtualizedView("f", highlight.Viewport{StartLine: 2, EndLine: 3})
	if view.Lines[0].Width != 4 {
		t.Errorf("width of wide line = %d, want 4", view.Lines[0].Width)
	}
}
