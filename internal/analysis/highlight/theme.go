package highlight

import (
	"fmt"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme maps token types to display colors.
type Theme struct {
	// Name is the display name of the theme.
	Name string

	// Foreground is the color of text no token covers.
	Foreground colorful.Color

	colors map[TokenType]colorful.Color
}

// DefaultTheme returns the built-in dark theme.
func DefaultTheme() *Theme {
	t := &Theme{
		Name:       "default-dark",
		Foreground: mustHex("#d4d4d4"),
		colors:     make(map[TokenType]colorful.Color),
	}
	t.colors[TokenKeyword] = mustHex("#569cd6")
	t.colors[TokenString] = mustHex("#ce9178")
	t.colors[TokenComment] = mustHex("#6a9955")
	t.colors[TokenNumber] = mustHex("#b5cea8")
	t.colors[TokenOperator] = mustHex("#d4d4d4")
	t.colors[TokenPunctuation] = mustHex("#808080")
	t.colors[TokenClass] = mustHex("#4ec9b0")
	t.colors[TokenDecorator] = mustHex("#dcdcaa")
	return t
}

// NewTheme builds a theme from the default one with overrides given as
// token type name to hex color, e.g. {"keyword": "#ff0000"}.
func NewTheme(name string, overrides map[string]string) (*Theme, error) {
	t := DefaultTheme()
	if name != "" {
		t.Name = name
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c, err := ParseColor(overrides[k])
		if err != nil {
			return nil, err
		}
		if k == "foreground" {
			t.Foreground = c
			continue
		}
		tt, err := ParseTokenType(k)
		if err != nil {
			return nil, err
		}
		t.colors[tt] = c
	}
	return t, nil
}

// ParseColor parses a #rgb or #rrggbb hex color.
func ParseColor(s string) (colorful.Color, error) {
	if len(s) == 4 && s[0] == '#' {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c, nil
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Color returns the color for a token type, falling back to Foreground.
func (t *Theme) Color(tt TokenType) colorful.Color {
	if c, ok := t.colors[tt]; ok {
		return c
	}
	return t.Foreground
}

// Hex returns the color for a token type as #rrggbb.
func (t *Theme) Hex(tt TokenType) string {
	return t.Color(tt).Clamped().Hex()
}

// Dimmed returns a copy of the theme with every color blended toward bg by
// amount (0..1). Used for inactive or folded regions.
func (t *Theme) Dimmed(bg colorful.Color, amount float64) *Theme {
	out := &Theme{
		Name:       t.Name + "-dimmed",
		Foreground: t.Foreground.BlendLab(bg, amount),
		colors:     make(map[TokenType]colorful.Color, len(t.colors)),
	}
	for tt, c := range t.colors {
		out.colors[tt] = c.BlendLab(bg, amount).Clamped()
	}
	return out
}
