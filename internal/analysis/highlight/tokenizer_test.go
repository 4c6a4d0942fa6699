package highlight

import (
	"errors"
	"testing"
)

type tokSpec struct {
	typ        TokenType
	line, col  int
	start, end int
}

func checkTokens(t *testing.T, got []Token, want []tokSpec) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %+v, want %d", len(got), got, len(want))
	}
	for i, w := range want {
		g := got[i]
		if g.Type != w.typ || g.Line != w.line || g.Column != w.col || g.Start != w.start || g.End != w.end {
			t.Errorf("token[%d] = {%v line=%d col=%d %d-%d}, want {%v line=%d col=%d %d-%d}",
				i, g.Type, g.Line, g.Column, g.Start, g.End,
				w.typ, w.line, w.col, w.start, w.end)
		}
	}
}

func TestTokenizeGoLine(t *testing.T) {
	tk := NewTokenizer()
	toks, err := tk.TokenizeLines([]string{"x := 42 // hi"}, 1, "go")
	if err != nil {
		t.Fatalf("TokenizeLines error = %v", err)
	}
	checkTokens(t, toks, []tokSpec{
		{TokenOperator, 0, 2, 2, 4},
		{TokenNumber, 0, 5, 5, 7},
		{TokenComment, 0, 8, 8, 13},
	})
}

func TestFirstMatchWins(t *testing.T) {
	tk := NewTokenizer()
	toks, _ := tk.TokenizeLines([]string{`"if" if`}, 1, "javascript")
	checkTokens(t, toks, []tokSpec{
		{TokenString, 0, 0, 0, 4},
		{TokenKeyword, 0, 5, 5, 7},
	})
}

func TestBlockCommentSpansLines(t *testing.T) {
	tk := NewTokenizer()
	toks, _ := tk.TokenizeLines([]string{"a /* b", "c", "d */ e"}, 1, "go")
	checkTokens(t, toks, []tokSpec{
		{TokenComment, 0, 2, 2, 6},
		{TokenComment, 1, 0, 7, 8},
		{TokenComment, 2, 0, 9, 13},
	})
}

func TestLineCommentHidesBlockOpener(t *testing.T) {
	tk := NewTokenizer()
	toks, _ := tk.TokenizeLines([]string{"// see /*", "x"}, 1, "go")
	if len(toks) != 1 || toks[0].Type != TokenComment || toks[0].Line != 0 {
		t.Errorf("tokens = %+v, want a single line comment", toks)
	}
}

func TestCommentMarkersInsideStrings(t *testing.T) {
	tk := NewTokenizer()
	toks, _ := tk.TokenizeLines([]string{`s := "a /* b"`, "x := 1"}, 1, "go")
	checkTokens(t, toks, []tokSpec{
		{TokenOperator, 0, 2, 2, 4},
		{TokenString, 0, 5, 5, 13},
		{TokenOperator, 1, 2, 16, 18},
		{TokenNumber, 1, 5, 19, 20},
	})

	toks, _ = tk.TokenizeLines([]string{`url := "http://x" // c`}, 1, "go")
	checkTokens(t, toks, []tokSpec{
		{TokenOperator, 0, 4, 4, 6},
		{TokenString, 0, 7, 7, 17},
		{TokenComment, 0, 18, 18, 22},
	})
}

func TestMatchHiddenBehindEarlierToken(t *testing.T) {
	// The string rule's first match starts inside the char literal.
	tk := NewTokenizer()
	toks, _ := tk.TokenizeLines([]string{`'"' "x"`}, 1, "go")
	checkTokens(t, toks, []tokSpec{
		{TokenString, 0, 0, 0, 3},
		{TokenString, 0, 4, 4, 7},
	})
}

func TestWordBoundaryAfterRescan(t *testing.T) {
	tk := NewTokenizer()
	tk.Register(NewLanguage("words").
		AddRule(`x`, TokenString).
		AddKeywords(TokenKeyword, "xif", "if"))
	// After x is claimed, the "if" of "xif" is not at a word boundary.
	toks, _ := tk.TokenizeLines([]string{"xif if"}, 1, "words")
	checkTokens(t, toks, []tokSpec{
		{TokenString, 0, 0, 0, 1},
		{TokenKeyword, 0, 4, 4, 6},
	})
}

func TestPythonClassAndDecorator(t *testing.T) {
	tk := NewTokenizer()
	toks, _ := tk.TokenizeLines([]string{"@dataclass", "class Foo:"}, 1, "python")
	checkTokens(t, toks, []tokSpec{
		{TokenDecorator, 0, 0, 0, 10},
		{TokenKeyword, 1, 0, 11, 16},
		{TokenClass, 1, 6, 17, 20},
		{TokenPunctuation, 1, 9, 20, 21},
	})
}

func TestTokensSortedByLineAndStart(t *testing.T) {
	tk := NewTokenizer()
	lines := []string{"function f(a, b) { return a + 1; }", "const s = 'x';"}
	toks, _ := tk.TokenizeLines(lines, 1, "javascript")
	for i := 1; i < len(toks); i++ {
		a, b := toks[i-1], toks[i]
		if a.Line > b.Line || (a.Line == b.Line && a.Column >= b.Column) {
			t.Fatalf("tokens out of order at %d: %+v then %+v", i, a, b)
		}
		if a.End > b.Start {
			t.Fatalf("tokens overlap at %d: %+v and %+v", i, a, b)
		}
	}
}

func TestTokenizeCacheVersioning(t *testing.T) {
	tk := NewTokenizer()
	src := Source{BufferID: "a.go", Version: 1, Lines: []string{"package main"}, EOLWidth: 1}

	first := tk.Tokenize(src, "go")
	if len(first) != 1 || first[0].Type != TokenKeyword {
		t.Fatalf("tokens = %+v, want one keyword", first)
	}
	if !tk.Cached(Source{BufferID: "a.go", Version: 1}, "go") {
		t.Error("expected cached result at version 1")
	}
	if tk.Cached(Source{BufferID: "a.go", Version: 2}, "go") {
		t.Error("stale version must not hit")
	}

	src.Version = 2
	src.Lines = []string{"package main // x"}
	second := tk.Tokenize(src, "go")
	if len(second) != 2 {
		t.Errorf("tokens at version 2 = %+v, want 2", second)
	}

	recreated := src
	recreated.Generation = 1
	if tk.Cached(recreated, "go") {
		t.Error("a new generation must not hit")
	}

	tk.Invalidate("a.go")
	if tk.Cached(Source{BufferID: "a.go", Version: 2}, "go") {
		t.Error("Invalidate should drop cached results")
	}
}

func TestInvalidPatternDegradesToEmpty(t *testing.T) {
	tk := NewTokenizer()
	tk.Register(NewLanguage("broken").AddRule(`(`, TokenKeyword))

	toks := tk.Tokenize(Source{BufferID: "b", Version: 1, Lines: []string{"((("}}, "broken")
	if len(toks) != 0 {
		t.Errorf("tokens = %+v, want none", toks)
	}
	if _, err := tk.TokenizeLines([]string{"x"}, 1, "broken"); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("error = %v, want ErrInvalidPattern", err)
	}
}

func TestUnknownLanguage(t *testing.T) {
	tk := NewTokenizer()
	if toks := tk.Tokenize(Source{BufferID: "x", Version: 1, Lines: []string{"a"}}, "cobol"); len(toks) != 0 {
		t.Errorf("tokens = %+v, want none", toks)
	}
	if _, err := tk.TokenizeLines(nil, 1, "cobol"); !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("error = %v, want ErrUnknownLanguage", err)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/app.ts", "typescript"},
		{"src/app.JS", "javascript"},
		{"main.go", "go"},
		{"lib.rs", "rust"},
		{"a/b/c.py", "python"},
		{"package.json", "json"},
		{"style.css", "css"},
		{"index.html", "html"},
		{"README.md", "markdown"},
		{"build.sh", "shell"},
		{"notes.txt", "plaintext"},
		{"Makefile", "plaintext"},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.path); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestBuiltinLanguagesCompile(t *testing.T) {
	for _, l := range BuiltinLanguages() {
		if _, err := l.compile(); err != nil {
			t.Errorf("%s: compile error = %v", l.Name, err)
		}
	}
}

func TestParseTokenType(t *testing.T) {
	for _, tt := range TokenTypes() {
		got, err := ParseTokenType(tt.String())
		if err != nil || got != tt {
			t.Errorf("ParseTokenType(%q) = %v, %v", tt.String(), got, err)
		}
	}
	if _, err := ParseTokenType("bogus"); !errors.Is(err, ErrUnknownTokenType) {
		t.Errorf("error = %v, want ErrUnknownTokenType", err)
	}
}
