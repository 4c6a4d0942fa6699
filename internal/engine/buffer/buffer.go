package buffer

import (
	"errors"
	"unicode/utf8"
)

// Errors returned by buffer operations.
var (
	ErrBufferNotFound  = errors.New("buffer not found")
	ErrBufferExists    = errors.New("buffer already exists")
	ErrInvalidID       = errors.New("invalid buffer id")
	ErrUnknownEncoding = errors.New("unknown encoding")
)

// TextBuffer is a read-only snapshot of a buffer at one version.
// Values returned by the Store never change after they are handed out.
type TextBuffer struct {
	ID         string     `json:"id"`
	Path       string     `json:"path,omitempty"`
	Content    string     `json:"content"`
	Encoding   Encoding   `json:"encoding"`
	LineEnding LineEnding `json:"lineEnding"`
	LineCount  int        `json:"lineCount"`
	ByteLength int        `json:"byteLength"`
	Modified   bool       `json:"modified"`
	Version    uint64     `json:"version"`

	// Generation distinguishes buffers created under the same id.
	Generation uint64 `json:"-" msgpack:"-"`
}

// IsFile returns true if the buffer is backed by a project path.
func (b TextBuffer) IsFile() bool {
	return b.Path != ""
}

// Option configures a buffer at creation time.
type Option func(*record)

// WithEncoding sets the buffer's encoding.
func WithEncoding(enc Encoding) Option {
	return func(r *record) {
		if enc != "" {
			r.encoding = enc
		}
	}
}

// WithLineEnding forces the buffer's line ending instead of detecting it.
func WithLineEnding(le LineEnding) Option {
	return func(r *record) {
		r.lineEnding = le
		r.fixedEnding = true
	}
}

// record is the mutable state behind a TextBuffer. Only the Store touches it.
type record struct {
	id          string
	path        string
	content     string
	encoding    Encoding
	lineEnding  LineEnding
	fixedEnding bool
	modified    bool
	version     uint64
	generation  uint64

	lines  []string
	starts []int // byte offset of the first byte of each line
}

func newRecord(id, path, content string, opts ...Option) *record {
	r := &record{
		id:       id,
		path:     path,
		encoding: EncodingUTF8,
		version:  1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.fixedEnding {
		r.lineEnding = DetectLineEnding(content)
	}
	r.setContent(content)
	return r
}

// setContent normalizes content and rebuilds the line index.
func (r *record) setContent(content string) {
	r.content = NormalizeLineEndings(content, r.lineEnding)
	r.lines = SplitLines(r.content, r.lineEnding)

	width := len(r.lineEnding.Sequence())
	r.starts = make([]int, len(r.lines))
	off := 0
	for i, line := range r.lines {
		r.starts[i] = off
		off += len(line) + width
	}
}

func (r *record) snapshot() TextBuffer {
	return TextBuffer{
		ID:         r.id,
		Path:       r.path,
		Content:    r.content,
		Encoding:   r.encoding,
		LineEnding: r.lineEnding,
		LineCount:  len(r.lines),
		ByteLength: r.encoding.EncodedLen(r.content),
		Modified:   r.modified,
		Version:    r.version,
		Generation: r.generation,
	}
}

// clamp pulls pos inside the buffer: lines clamp to [1, LineCount], columns
// to [1, len(line)+1].
func (r *record) clamp(pos Position) Position {
	if pos.Line < 1 {
		pos.Line = 1
	}
	if pos.Line > len(r.lines) {
		pos.Line = len(r.lines)
	}
	maxCol := utf8.RuneCountInString(r.lines[pos.Line-1]) + 1
	if pos.Column < 1 {
		pos.Column = 1
	}
	if pos.Column > maxCol {
		pos.Column = maxCol
	}
	return pos
}

// offset converts a clamped position to an absolute byte offset: the sum of
// the preceding line lengths plus line-ending widths, plus the byte index
// of the column inside the line.
func (r *record) offset(pos Position) int {
	pos = r.clamp(pos)
	line := r.lines[pos.Line-1]
	return r.starts[pos.Line-1] + byteIndex(line, pos.Column-1)
}

// position converts an absolute byte offset to a 1-based position.
func (r *record) position(off int) Position {
	if off <= 0 {
		return Position{Line: 1, Column: 1}
	}
	if off > len(r.content) {
		off = len(r.content)
	}
	// Binary search for the last line starting at or before off.
	lo, hi := 0, len(r.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if r.starts[mid] <= off {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line := r.lines[lo]
	col := off - r.starts[lo]
	if col > len(line) {
		// Inside the line ending; report the end of the line.
		col = len(line)
	}
	return Position{Line: lo + 1, Column: utf8.RuneCountInString(line[:col]) + 1}
}

// byteIndex returns the byte index of the n-th rune (0-based) in s,
// clamped to len(s).
func byteIndex(s string, n int) int {
	if n <= 0 {
		return 0
	}
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}

// ByteIndex returns the byte index of the rune column col (1-based) in line.
func ByteIndex(line string, col int) int {
	return byteIndex(line, col-1)
}

// RuneColumn returns the 1-based rune column of byte index idx in line.
func RuneColumn(line string, idx int) int {
	if idx > len(line) {
		idx = len(line)
	}
	if idx < 0 {
		idx = 0
	}
	return utf8.RuneCountInString(line[:idx]) + 1
}
