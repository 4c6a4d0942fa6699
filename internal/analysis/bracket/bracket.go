// Package bracket matches bracket pairs across the lines of a buffer.
//
// Positions are 0-based lines and 0-based byte columns. FindMatching
// handles (){}[]<> with a same-character depth counter; Scan and
// FindAllPairs handle the (), [] and {} families with one stack each and
// report unmatched brackets as diagnostics.
package bracket

import "sort"

// Position is a 0-based line and byte column.
type Position struct {
	Line   int `json:"line" msgpack:"line"`
	Column int `json:"column" msgpack:"column"`
}

// Pair is a matched opening and closing bracket.
type Pair struct {
	Open  Position `json:"open" msgpack:"open"`
	Close Position `json:"close" msgpack:"close"`
	Char  byte     `json:"-" msgpack:"-"`

	// Depth is the nesting depth of the pair within its family, 0 outermost.
	Depth int `json:"depth" msgpack:"depth"`
}

// Unmatched is a bracket without a partner.
type Unmatched struct {
	Position Position `json:"position"`
	Char     string   `json:"char"`
	// Opener is true for an opener left open at the end of input, false for
	// a stray closer.
	Opener bool `json:"opener"`
}

// Result is the outcome of a full scan.
type Result struct {
	Pairs     []Pair      `json:"pairs"`
	Unmatched []Unmatched `json:"unmatched"`
}

var (
	partner = map[byte]byte{
		'(': ')', ')': '(',
		'[': ']', ']': '[',
		'{': '}', '}': '{',
		'<': '>', '>': '<',
	}
	opener = map[byte]bool{'(': true, '[': true, '{': true, '<': true}
)

// IsBracket reports whether c is one of (){}[]<>.
func IsBracket(c byte) bool {
	_, ok := partner[c]
	return ok
}

// FindMatching returns the position of the bracket matching the one at
// (line, column). ok is false when there is no bracket there or it has no
// structurally balanced partner.
func FindMatching(lines []string, line, column int) (Position, bool) {
	if line < 0 || line >= len(lines) || column < 0 || column >= len(lines[line]) {
		return Position{}, false
	}
	c := lines[line][column]
	match, isBracket := partner[c]
	if !isBracket {
		return Position{}, false
	}

	depth := 0
	if opener[c] {
		for l := line; l < len(lines); l++ {
			start := 0
			if l == line {
				start = column
			}
			text := lines[l]
			for i := start; i < len(text); i++ {
				switch text[i] {
				case c:
					depth++
				case match:
					depth--
					if depth == 0 {
						return Position{Line: l, Column: i}, true
					}
				}
			}
		}
		return Position{}, false
	}

	for l := line; l >= 0; l-- {
		text := lines[l]
		start := len(text) - 1
		if l == line {
			start = column
		}
		for i := start; i >= 0; i-- {
			switch text[i] {
			case c:
				depth++
			case match:
				depth--
				if depth == 0 {
					return Position{Line: l, Column: i}, true
				}
			}
		}
	}
	return Position{}, false
}

// familyOpeners lists the opener of each family Scan tracks.
var familyOpeners = map[byte]byte{')': '(', ']': '[', '}': '{'}

// Scan makes one forward pass with a stack per family. Each closer pops the
// most recent opener of its family.
func Scan(lines []string) Result {
	stacks := map[byte][]Position{'(': nil, '[': nil, '{': nil}
	res := Result{Pairs: make([]Pair, 0), Unmatched: make([]Unmatched, 0)}

	for l, text := range lines {
		for i := 0; i < len(text); i++ {
			c := text[i]
			pos := Position{Line: l, Column: i}
			if _, ok := stacks[c]; ok {
				stacks[c] = append(stacks[c], pos)
				continue
			}
			open, ok := familyOpeners[c]
			if !ok {
				continue
			}
			st := stacks[open]
			if len(st) == 0 {
				res.Unmatched = append(res.Unmatched, Unmatched{Position: pos, Char: string(c)})
				continue
			}
			res.Pairs = append(res.Pairs, Pair{
				Open:  st[len(st)-1],
				Close: pos,
				Char:  open,
				Depth: len(st) - 1,
			})
			stacks[open] = st[:len(st)-1]
		}
	}

	for _, open := range []byte{'(', '[', '{'} {
		for _, pos := range stacks[open] {
			res.Unmatched = append(res.Unmatched, Unmatched{Position: pos, Char: string(open), Opener: true})
		}
	}

	sort.Slice(res.Pairs, func(i, j int) bool {
		return less(res.Pairs[i].Open, res.Pairs[j].Open)
	})
	sort.Slice(res.Unmatched, func(i, j int) bool {
		return less(res.Unmatched[i].Position, res.Unmatched[j].Position)
	})
	return res
}

// FindAllPairs returns every matched pair of (), [] and {} ordered by
// opening position.
func FindAllPairs(lines []string) []Pair {
	return Scan(lines).Pairs
}

func less(a, b Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}
