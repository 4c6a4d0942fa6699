package engine

import (
	"github.com/mattn/go-runewidth"

	"github.com/dshills/textcore/internal/analysis/highlight"
)

// ViewLine is one visible line of a virtualized view.
type ViewLine struct {
	// Number is the 0-based line index.
	Number int    `json:"number" msgpack:"number"`
	Text   string `json:"text" msgpack:"text"`
	// Width is the display width in terminal cells.
	Width int `json:"width" msgpack:"width"`
}

// VirtualizedView is the window of a buffer a viewport can see.
type VirtualizedView struct {
	BufferID   string     `json:"bufferId" msgpack:"bufferId"`
	Version    uint64     `json:"version" msgpack:"version"`
	StartLine  int        `json:"startLine" msgpack:"startLine"`
	EndLine    int        `json:"endLine" msgpack:"endLine"`
	TotalLines int        `json:"totalLines" msgpack:"totalLines"`
	HasMore    bool       `json:"hasMore" msgpack:"hasMore"`
	Lines      []ViewLine `json:"lines" msgpack:"lines"`
}

// CreateVirtualizedView returns the lines of a buffer inside vp, clamped to
// the buffer. HasMore is set when lines exist past the window.
func (e *Engine) CreateVirtualizedView(id string, vp highlight.Viewport) (VirtualizedView, error) {
	buf, lines, ok := e.snapshot(id)
	if !ok {
		return VirtualizedView{}, newOpError("view", id, ErrBufferNotFound)
	}

	start := max(vp.StartLine, 0)
	end := max(min(vp.EndLine, len(lines)), 0)
	if start > end {
		start = end
	}

	view := VirtualizedView{
		BufferID:   id,
		Version:    buf.Version,
		StartLine:  start,
		EndLine:    end,
		TotalLines: len(lines),
		HasMore:    end < len(lines),
		Lines:      make([]ViewLine, 0, end-start),
	}
	for i := start; i < end; i++ {
		view.Lines = append(view.Lines, ViewLine{
			Number: i,
			Text:   lines[i],
			Width:  runewidth.StringWidth(lines[i]),
		})
	}
	return view, nil
}
