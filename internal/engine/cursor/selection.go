package cursor

import (
	"fmt"
	"strings"

	"github.com/dshills/textcore/internal/engine/buffer"
)

// Position is an alias for buffer.Position for convenience.
type Position = buffer.Position

// Range is an alias for buffer.Range for convenience.
type Range = buffer.Range

// Selection represents a range of selected text.
// Anchor is where the selection started; Head is the current cursor position.
// When Anchor == Head, this represents a cursor with no selection.
// Selection is an immutable value type.
type Selection struct {
	Anchor Position `json:"anchor" msgpack:"anchor"`
	Head   Position `json:"head" msgpack:"head"`
}

// NewSelection creates a selection from anchor to head.
func NewSelection(anchor, head Position) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// NewRangeSelection creates a forward selection covering the given range.
func NewRangeSelection(r Range) Selection {
	return Selection{Anchor: r.Start, Head: r.End}
}

// IsEmpty returns true if the selection has no extent.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// Range returns the selection as a range (always Start <= End).
func (s Selection) Range() Range {
	return Range{Start: s.Anchor, End: s.Head}.Normalize()
}

// Start returns the lower bound of the selection.
func (s Selection) Start() Position {
	return s.Range().Start
}

// End returns the upper bound of the selection.
func (s Selection) End() Position {
	return s.Range().End
}

// IsBackward returns true if the selection extends backward (head < anchor).
func (s Selection) IsBackward() bool {
	return s.Head.Before(s.Anchor)
}

// Extend returns a new selection whose head moved to pos.
// The anchor remains fixed.
func (s Selection) Extend(pos Position) Selection {
	return Selection{Anchor: s.Anchor, Head: pos}
}

// Contains returns true if pos is within [Start, End).
func (s Selection) Contains(pos Position) bool {
	r := s.Range()
	return !pos.Before(r.Start) && pos.Before(r.End)
}

// String returns a string representation of the selection.
func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("Cursor(%s)", s.Head)
	}
	dir := "→"
	if s.IsBackward() {
		dir = "←"
	}
	return fmt.Sprintf("Selection(%s%s%s)", s.Anchor, dir, s.Head)
}

// ExtractText slices lines between the selection's start and end positions.
// Positions are clamped to the lines; the result joins lines with "\n".
func ExtractText(lines []string, r Range) string {
	if len(lines) == 0 {
		return ""
	}
	r = r.Normalize()
	start := clampTo(lines, r.Start)
	end := clampTo(lines, r.End)

	first := lines[start.Line-1]
	si := buffer.ByteIndex(first, start.Column)
	if start.Line == end.Line {
		ei := buffer.ByteIndex(first, end.Column)
		return first[si:ei]
	}

	var sb strings.Builder
	sb.WriteString(first[si:])
	for l := start.Line + 1; l < end.Line; l++ {
		sb.WriteByte('\n')
		sb.WriteString(lines[l-1])
	}
	last := lines[end.Line-1]
	sb.WriteByte('\n')
	sb.WriteString(last[:buffer.ByteIndex(last, end.Column)])
	return sb.String()
}

func clampTo(lines []string, p Position) Position {
	if p.Line < 1 {
		p = Position{Line: 1, Column: 1}
	}
	if p.Line > len(lines) {
		p.Line = len(lines)
		p.Column = len([]rune(lines[p.Line-1])) + 1
	}
	if p.Column < 1 {
		p.Column = 1
	}
	return p
}
