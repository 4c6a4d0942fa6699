package highlight

// Viewport is a window of visible lines. StartLine is inclusive and EndLine
// exclusive; both are 0-based.
type Viewport struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

// Contains reports whether line is visible.
func (v Viewport) Contains(line int) bool {
	return line >= v.StartLine && line < v.EndLine
}

// RenderInstruction tells the UI how to paint one token.
type RenderInstruction struct {
	Line        int       `json:"line"`
	StartColumn int       `json:"startColumn"`
	EndColumn   int       `json:"endColumn"`
	Type        TokenType `json:"type"`
	Color       string    `json:"color"`
}

// HighlightedRanges projects tokens onto the visible lines of vp and maps
// each to a color. It performs no tokenization.
func HighlightedRanges(tokens []Token, vp Viewport, theme *Theme) []RenderInstruction {
	if theme == nil {
		theme = DefaultTheme()
	}
	out := make([]RenderInstruction, 0)
	for _, tok := range tokens {
		if !vp.Contains(tok.Line) {
			continue
		}
		out = append(out, RenderInstruction{
			Line:        tok.Line,
			StartColumn: tok.Column,
			EndColumn:   tok.EndColumn(),
			Type:        tok.Type,
			Color:       theme.Hex(tok.Type),
		})
	}
	return out
}
