package folding

import (
	"regexp"
	"sort"
	"strings"
)

// Kind classifies a folding range.
type Kind string

// Folding range kinds.
const (
	KindFunction Kind = "function"
	KindClass    Kind = "class"
	KindComment  Kind = "comment"
	KindBlock    Kind = "block"
	KindImports  Kind = "imports"
	KindRegion   Kind = "region"
)

// Range is a foldable span of whole lines. Lines are 0-based and inclusive.
type Range struct {
	StartLine int  `json:"startLine" msgpack:"startLine"`
	EndLine   int  `json:"endLine" msgpack:"endLine"`
	Kind      Kind `json:"kind" msgpack:"kind"`
	Collapsed bool `json:"collapsed" msgpack:"collapsed"`
}

// Lines returns the number of lines the range covers.
func (r Range) Lines() int {
	return r.EndLine - r.StartLine + 1
}

// marker is an open block recorded at the line that opened it.
type marker struct {
	line   int
	indent int
	colon  bool
}

var (
	functionWord = regexp.MustCompile(`\b(?:function|def|fn|func)\b`)
	classWord    = regexp.MustCompile(`\b(?:class|struct|interface)\b`)
	importLine   = regexp.MustCompile(`^(?:import\b|from\s+\S+\s+import\b|use\s|#include\b|using\s)`)
)

// Compute returns the folding ranges of lines, sorted by start line and,
// for equal starts, by descending end line.
func Compute(lines []string) []Range {
	out := make([]Range, 0)
	out = append(out, indentBlocks(lines)...)
	out = append(out, importRuns(lines)...)
	out = append(out, regions(lines)...)
	out = append(out, commentBlocks(lines)...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartLine != out[j].StartLine {
			return out[i].StartLine < out[j].StartLine
		}
		return out[i].EndLine > out[j].EndLine
	})

	// Drop exact duplicates; the first detector to report a span wins.
	dedup := out[:0]
	for _, r := range out {
		if n := len(dedup); n > 0 && r.StartLine == dedup[n-1].StartLine && r.EndLine == dedup[n-1].EndLine {
			continue
		}
		dedup = append(dedup, r)
	}
	return dedup
}

// indentBlocks runs the marker-stack scan over lines ending in '{' or ':'.
func indentBlocks(lines []string) []Range {
	var (
		out          []Range
		stack        []marker
		lastNonBlank = -1
	)

	closeTo := func(m marker, end int) {
		if end > m.line {
			out = append(out, Range{StartLine: m.line, EndLine: end, Kind: classify(lines[m.line])})
		}
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(stack) == 0 {
				continue
			}
			next, ok := nextNonBlank(lines, i+1)
			if !ok || strings.HasPrefix(strings.TrimSpace(lines[next]), "}") {
				// EOF or a closing brace will close them.
				continue
			}
			ind := indentOf(lines[next])
			for len(stack) > 0 && stack[len(stack)-1].indent >= ind {
				closeTo(stack[len(stack)-1], lastNonBlank)
				stack = stack[:len(stack)-1]
			}
			continue
		}

		ind := indentOf(line)

		// A dedent closes indentation blocks.
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if !top.colon || top.indent < ind {
				break
			}
			closeTo(top, lastNonBlank)
			stack = stack[:len(stack)-1]
		}

		if strings.HasPrefix(trimmed, "}") {
			for len(stack) > 0 && stack[len(stack)-1].indent >= ind {
				closeTo(stack[len(stack)-1], i)
				stack = stack[:len(stack)-1]
			}
		}

		if !isComment(trimmed) {
			switch {
			case strings.HasSuffix(trimmed, "{"):
				stack = append(stack, marker{line: i, indent: ind})
			case strings.HasSuffix(trimmed, ":"):
				stack = append(stack, marker{line: i, indent: ind, colon: true})
			}
		}
		lastNonBlank = i
	}

	for j := len(stack) - 1; j >= 0; j-- {
		closeTo(stack[j], lastNonBlank)
	}
	return out
}

// importRuns finds runs of two or more import lines and parenthesised
// import blocks.
func importRuns(lines []string) []Range {
	var out []Range
	runStart := -1
	flush := func(end int) {
		if runStart >= 0 && end > runStart {
			out = append(out, Range{StartLine: runStart, EndLine: end, Kind: KindImports})
		}
		runStart = -1
	}

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "import (" {
			flush(i - 1)
			for j := i + 1; j < len(lines); j++ {
				if strings.TrimSpace(lines[j]) == ")" {
					out = append(out, Range{StartLine: i, EndLine: j, Kind: KindImports})
					i = j
					break
				}
			}
			continue
		}
		if importLine.MatchString(trimmed) {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i - 1)
	}
	flush(len(lines) - 1)
	return out
}

// regions pairs #region and #endregion markers. Regions nest.
func regions(lines []string) []Range {
	var (
		out  []Range
		open []int
	)
	for i, line := range lines {
		switch {
		case strings.Contains(line, "#endregion"):
			if len(open) == 0 {
				continue
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			if i > start {
				out = append(out, Range{StartLine: start, EndLine: i, Kind: KindRegion})
			}
		case strings.Contains(line, "#region"):
			open = append(open, i)
		}
	}
	return out
}

// commentBlocks finds /* */ comments and """ docstrings spanning two or
// more lines.
func commentBlocks(lines []string) []Range {
	var out []Range
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		var closer string
		switch {
		case strings.Contains(line, "/*") && !strings.Contains(line[strings.Index(line, "/*"):], "*/"):
			closer = "*/"
		case strings.Count(line, `"""`) == 1:
			closer = `"""`
		default:
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if strings.Contains(lines[j], closer) {
				out = append(out, Range{StartLine: i, EndLine: j, Kind: KindComment})
				i = j
				break
			}
		}
	}
	return out
}

// classify sniffs the opening line of a block for its kind.
func classify(line string) Kind {
	trimmed := strings.TrimSpace(line)
	switch {
	case isComment(trimmed):
		return KindComment
	case functionWord.MatchString(trimmed):
		return KindFunction
	case classWord.MatchString(trimmed):
		return KindClass
	default:
		return KindBlock
	}
}

func isComment(trimmed string) bool {
	for _, p := range []string{"//", "/*", "<!--", `"""`, "# ", "#!", "##", "#region", "#endregion"} {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	switch {
	case trimmed == "#":
		return true
	case strings.HasPrefix(trimmed, "*"):
		// "* {" is a CSS selector, not a comment continuation.
		return !strings.HasSuffix(trimmed, "{")
	}
	return false
}

// indentOf returns the width of leading whitespace. A tab counts as 4.
func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

func nextNonBlank(lines []string, from int) (int, bool) {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i, true
		}
	}
	return 0, false
}
