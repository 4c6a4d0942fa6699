package cursor

import (
	"testing"
)

func pos(line, col int) Position { return Position{Line: line, Column: col} }

func TestSelectionRangeNormalizes(t *testing.T) {
	s := NewSelection(pos(3, 2), pos(1, 5))
	if !s.IsBackward() {
		t.Error("expected backward selection")
	}
	r := s.Range()
	if r.Start != pos(1, 5) || r.End != pos(3, 2) {
		t.Errorf("Range = %v, want [1:5-3:2)", r)
	}
	if !s.Contains(pos(2, 1)) {
		t.Error("selection should contain 2:1")
	}
	if s.Contains(pos(3, 2)) {
		t.Error("end position is exclusive")
	}
}

func TestExtractText(t *testing.T) {
	lines := []string{"hello world", "second", "third line"}
	tests := []struct {
		name string
		r    Range
		want string
	}{
		{"single line", Range{Start: pos(1, 1), End: pos(1, 6)}, "hello"},
		{"multi line", Range{Start: pos(1, 7), End: pos(3, 6)}, "world\nsecond\nthird"},
		{"reversed", Range{Start: pos(2, 4), End: pos(2, 1)}, "sec"},
		{"past end clamps", Range{Start: pos(3, 7), End: pos(9, 1)}, "line"},
		{"empty", Range{Start: pos(2, 2), End: pos(2, 2)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(lines, tt.r); got != tt.want {
				t.Errorf("ExtractText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractTextMultibyte(t *testing.T) {
	lines := []string{"añb😀c"}
	got := ExtractText(lines, Range{Start: pos(1, 2), End: pos(1, 5)})
	if got != "ñb😀" {
		t.Errorf("ExtractText = %q, want %q", got, "ñb😀")
	}
}

func TestModelActiveFile(t *testing.T) {
	m := NewModel()
	if m.ActiveFile() != "" {
		t.Errorf("ActiveFile = %q, want empty", m.ActiveFile())
	}

	m.SetActiveFile("a.go")
	m.Select(NewSelection(pos(1, 1), pos(2, 3)))
	if _, ok := m.Selection(); !ok {
		t.Fatal("expected a selection")
	}
	if m.Cursor() != pos(2, 3) {
		t.Errorf("Cursor = %v, want 2:3", m.Cursor())
	}

	m.SetActiveFile("b.go")
	if _, ok := m.Selection(); ok {
		t.Error("switching files should clear the selection")
	}
	if m.Cursor() != pos(1, 1) {
		t.Errorf("Cursor = %v, want 1:1", m.Cursor())
	}
}

func TestModelEmptySelectionClears(t *testing.T) {
	m := NewModel()
	m.SetActiveFile("a")
	m.Select(NewSelection(pos(1, 1), pos(1, 4)))
	m.Select(NewSelection(pos(1, 2), pos(1, 2)))
	if _, ok := m.Selection(); ok {
		t.Error("empty selection should clear")
	}
	if m.Cursor() != pos(1, 2) {
		t.Errorf("Cursor = %v, want 1:2", m.Cursor())
	}
}

func TestModelForgetAndRename(t *testing.T) {
	m := NewModel()
	m.SetActiveFile("old")
	m.Rename("old", "new")
	if m.ActiveFile() != "new" {
		t.Errorf("ActiveFile = %q, want new", m.ActiveFile())
	}
	m.Forget("other")
	if m.ActiveFile() != "new" {
		t.Error("Forget of another file changed the active file")
	}
	m.Forget("new")
	if m.ActiveFile() != "" {
		t.Errorf("ActiveFile = %q after Forget, want empty", m.ActiveFile())
	}
}

func TestAfterInsert(t *testing.T) {
	tests := []struct {
		start Position
		text  string
		want  Position
	}{
		{pos(1, 1), "abc", pos(1, 4)},
		{pos(2, 5), "é", pos(2, 6)},
		{pos(1, 3), "x\ny", pos(2, 2)},
		{pos(4, 1), "one\ntwo\nthree", pos(6, 6)},
		{pos(1, 1), "line\n", pos(2, 1)},
	}
	for _, tt := range tests {
		if got := AfterInsert(tt.start, tt.text); got != tt.want {
			t.Errorf("AfterInsert(%v, %q) = %v, want %v", tt.start, tt.text, got, tt.want)
		}
	}
}

func TestModelExtend(t *testing.T) {
	m := NewModel()
	m.SetActiveFile("f")
	m.SetCursor(pos(1, 3))

	m.Extend(pos(2, 1))
	sel, ok := m.Selection()
	if !ok || sel.Anchor != pos(1, 3) || sel.Head != pos(2, 1) {
		t.Fatalf("Selection = %v, %v", sel, ok)
	}

	// The anchor stays put on further extends.
	m.Extend(pos(1, 1))
	sel, _ = m.Selection()
	if sel.Anchor != pos(1, 3) || !sel.IsBackward() {
		t.Errorf("Selection = %v, want backward from 1:3", sel)
	}
	if m.Cursor() != pos(1, 1) {
		t.Errorf("Cursor = %v, want 1:1", m.Cursor())
	}
}
