package highlight

import (
	"path"
	"regexp"
	"regexp/syntax"
	"sort"
	"strings"
)

// Rule defines a tokenization rule.
type Rule struct {
	// Pattern is the regex pattern to match.
	Pattern string

	// Type is the type to assign to matches.
	Type TokenType

	// Group is the submatch index to use (0 for whole match).
	Group int

	// Until turns the rule into a block: Pattern matches the opener and the
	// token extends to the first match of Until, possibly on a later line.
	Until string

	// Modifiers are copied onto every token the rule produces.
	Modifiers []string
}

// Language is an ordered rule table for one language.
// Earlier rules take precedence over later ones.
type Language struct {
	Name       string
	Extensions []string
	Rules      []Rule
}

// NewLanguage creates an empty language.
func NewLanguage(name string, extensions ...string) *Language {
	return &Language{Name: name, Extensions: extensions}
}

// AddRule appends a rule.
func (l *Language) AddRule(pattern string, tokenType TokenType, modifiers ...string) *Language {
	l.Rules = append(l.Rules, Rule{Pattern: pattern, Type: tokenType, Modifiers: modifiers})
	return l
}

// AddGroupRule appends a rule that only claims submatch group.
func (l *Language) AddGroupRule(pattern string, group int, tokenType TokenType) *Language {
	l.Rules = append(l.Rules, Rule{Pattern: pattern, Type: tokenType, Group: group})
	return l
}

// AddBlock appends a multi-line rule from open to close.
func (l *Language) AddBlock(open, close string, tokenType TokenType) *Language {
	l.Rules = append(l.Rules, Rule{Pattern: open, Until: close, Type: tokenType})
	return l
}

// AddKeywords appends a whole-word rule for the given words.
func (l *Language) AddKeywords(tokenType TokenType, words ...string) *Language {
	return l.AddRule(wordsPattern(words...), tokenType)
}

func wordsPattern(words ...string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return `\b(?:` + strings.Join(quoted, "|") + `)\b`
}

// compiledRule is a Rule with its expressions compiled.
type compiledRule struct {
	Rule
	re    *regexp.Regexp
	until *regexp.Regexp

	// anchored and boundary record line-start and word-boundary assertions
	// in the pattern.
	anchored bool
	boundary bool
}

// compile compiles every rule. Any invalid pattern fails the whole language.
func (l *Language) compile() ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(l.Rules))
	for _, r := range l.Rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, err
		}
		cr := compiledRule{Rule: r, re: re}
		if parsed, err := syntax.Parse(r.Pattern, syntax.Perl); err == nil {
			cr.anchored, cr.boundary = assertions(parsed)
		}
		if r.Until != "" {
			if cr.until, err = regexp.Compile(r.Until); err != nil {
				return nil, err
			}
		}
		out = append(out, cr)
	}
	return out, nil
}

// assertions reports whether re contains line-start or word-boundary
// assertions.
func assertions(re *syntax.Regexp) (anchored, boundary bool) {
	switch re.Op {
	case syntax.OpBeginLine, syntax.OpBeginText:
		anchored = true
	case syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		boundary = true
	}
	for _, sub := range re.Sub {
		a, b := assertions(sub)
		anchored = anchored || a
		boundary = boundary || b
	}
	return anchored, boundary
}

const (
	patternLineComment  = `//.*$`
	patternHashComment  = `#.*$`
	patternDoubleString = `"(?:[^"\\]|\\.)*"`
	patternSingleString = `'(?:[^'\\]|\\.)*'`
	patternNumber       = `\b(?:0[xX][0-9a-fA-F_]+|0[oO][0-7_]+|0[bB][01_]+|\d[\d_]*\.?[\d_]*(?:[eE][+-]?\d+)?)\b`
	patternOperator     = `[+\-*/%=&|^!<>?~]+`
	patternPunctuation  = `[{}()\[\];,.:]`
	patternDecorator    = `@[A-Za-z_][\w.]*`
)

// GoLanguage returns the rules for Go.
func GoLanguage() *Language {
	return NewLanguage("go", ".go").
		AddRule(patternLineComment, TokenComment).
		AddBlock(`/\*`, `\*/`, TokenComment).
		AddRule(patternDoubleString, TokenString).
		AddRule(`'(?:[^'\\]|\\.)'`, TokenString).
		AddBlock("`", "`", TokenString).
		AddGroupRule(`\btype\s+([A-Za-z_]\w*)`, 1, TokenClass).
		AddKeywords(TokenKeyword,
			"break", "case", "chan", "const", "continue", "default", "defer",
			"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
			"interface", "map", "package", "range", "return", "select",
			"struct", "switch", "type", "var", "true", "false", "nil", "iota").
		AddRule(patternNumber, TokenNumber).
		AddRule(`:=|\.\.\.|<-|`+patternOperator, TokenOperator).
		AddRule(patternPunctuation, TokenPunctuation)
}

// JavaScriptLanguage returns the rules for JavaScript.
func JavaScriptLanguage() *Language {
	return scriptLanguage("javascript", []string{".js", ".jsx", ".mjs", ".cjs"}, nil)
}

// TypeScriptLanguage returns the rules for TypeScript.
func TypeScriptLanguage() *Language {
	return scriptLanguage("typescript", []string{".ts", ".tsx", ".mts", ".cts"}, []string{
		"type", "interface", "enum", "namespace", "declare", "readonly",
		"public", "private", "protected", "abstract", "implements",
		"keyof", "infer", "satisfies",
	})
}

func scriptLanguage(name string, exts, extra []string) *Language {
	keywords := append([]string{
		"async", "await", "break", "case", "catch", "class", "const",
		"continue", "debugger", "default", "delete", "do", "else", "export",
		"extends", "finally", "for", "from", "function", "if", "import", "in",
		"instanceof", "let", "new", "of", "return", "static", "super",
		"switch", "this", "throw", "try", "typeof", "var", "void", "while",
		"yield", "true", "false", "null", "undefined",
	}, extra...)
	return NewLanguage(name, exts...).
		AddRule(patternLineComment, TokenComment).
		AddBlock(`/\*`, `\*/`, TokenComment).
		AddRule(patternDoubleString, TokenString).
		AddRule(patternSingleString, TokenString).
		AddBlock("`", "`", TokenString).
		AddRule(patternDecorator, TokenDecorator).
		AddGroupRule(`\b(?:class|interface|extends|implements|new)\s+([A-Za-z_$][\w$]*)`, 1, TokenClass).
		AddKeywords(TokenKeyword, keywords...).
		AddRule(patternNumber, TokenNumber).
		AddRule(`=>|[+\-*/%=&|^!<>?~]+`, TokenOperator).
		AddRule(patternPunctuation, TokenPunctuation)
}

// PythonLanguage returns the rules for Python.
func PythonLanguage() *Language {
	return NewLanguage("python", ".py", ".pyw", ".pyi").
		AddBlock(`"""`, `"""`, TokenString).
		AddBlock(`'''`, `'''`, TokenString).
		AddRule(patternHashComment, TokenComment).
		AddRule(patternDoubleString, TokenString).
		AddRule(patternSingleString, TokenString).
		AddRule(patternDecorator, TokenDecorator).
		AddGroupRule(`\bclass\s+([A-Za-z_]\w*)`, 1, TokenClass).
		AddKeywords(TokenKeyword,
			"and", "as", "assert", "async", "await", "break", "class",
			"continue", "def", "del", "elif", "else", "except", "finally",
			"for", "from", "global", "if", "import", "in", "is", "lambda",
			"match", "case", "nonlocal", "not", "or", "pass", "raise",
			"return", "try", "while", "with", "yield", "True", "False", "None").
		AddRule(patternNumber, TokenNumber).
		AddRule(patternOperator, TokenOperator).
		AddRule(patternPunctuation, TokenPunctuation)
}

// RustLanguage returns the rules for Rust.
func RustLanguage() *Language {
	return NewLanguage("rust", ".rs").
		AddRule(patternLineComment, TokenComment).
		AddBlock(`/\*`, `\*/`, TokenComment).
		AddRule(`#!?\[[^\]]*\]`, TokenDecorator).
		AddRule(`b?"(?:[^"\\]|\\.)*"`, TokenString).
		AddRule(`'(?:[^'\\]|\\.)'`, TokenString).
		AddGroupRule(`\b(?:struct|enum|trait|impl|type)\s+([A-Za-z_]\w*)`, 1, TokenClass).
		AddKeywords(TokenKeyword,
			"as", "async", "await", "break", "const", "continue", "crate",
			"dyn", "else", "enum", "extern", "fn", "for", "if", "impl", "in",
			"let", "loop", "match", "mod", "move", "mut", "pub", "ref",
			"return", "self", "Self", "static", "struct", "super", "trait",
			"type", "unsafe", "use", "where", "while", "true", "false").
		AddRule(patternNumber, TokenNumber).
		AddRule(patternOperator, TokenOperator).
		AddRule(patternPunctuation, TokenPunctuation)
}

// JSONLanguage returns the rules for JSON.
func JSONLanguage() *Language {
	return NewLanguage("json", ".json", ".jsonc").
		AddRule(patternLineComment, TokenComment).
		AddGroupRule(`("(?:[^"\\]|\\.)*")\s*:`, 1, TokenKeyword).
		AddRule(patternDoubleString, TokenString).
		AddKeywords(TokenKeyword, "true", "false", "null").
		AddRule(`-?\b\d+(?:\.\d+)?(?:[eE][+-]?\d+)?\b`, TokenNumber).
		AddRule(`[{}\[\],:]`, TokenPunctuation)
}

// CSSLanguage returns the rules for CSS.
func CSSLanguage() *Language {
	return NewLanguage("css", ".css", ".scss", ".less").
		AddBlock(`/\*`, `\*/`, TokenComment).
		AddRule(patternDoubleString, TokenString).
		AddRule(patternSingleString, TokenString).
		AddRule(`@[\w-]+`, TokenDecorator).
		AddRule(`[.#][A-Za-z_-][\w-]*`, TokenClass).
		AddGroupRule(`([\w-]+)\s*:`, 1, TokenKeyword).
		AddRule(`#[0-9a-fA-F]{3,8}\b|-?\b\d+(?:\.\d+)?(?:px|em|rem|%|vh|vw|s|ms)?`, TokenNumber).
		AddRule(`[>+~*=]`, TokenOperator).
		AddRule(`[{}();,:]`, TokenPunctuation)
}

// HTMLLanguage returns the rules for HTML.
func HTMLLanguage() *Language {
	return NewLanguage("html", ".html", ".htm", ".xhtml").
		AddBlock(`<!--`, `-->`, TokenComment).
		AddRule(patternDoubleString, TokenString).
		AddRule(patternSingleString, TokenString).
		AddGroupRule(`</?([A-Za-z][\w-]*)`, 1, TokenKeyword).
		AddGroupRule(`\s([A-Za-z_:][\w:.-]*)=`, 1, TokenClass).
		AddRule(`&[A-Za-z0-9#]+;`, TokenNumber).
		AddRule(`</?|/?>|=`, TokenPunctuation)
}

// MarkdownLanguage returns the rules for Markdown.
func MarkdownLanguage() *Language {
	return NewLanguage("markdown", ".md", ".markdown").
		AddBlock("^```", "^```", TokenString).
		AddRule(`<!--.*?-->`, TokenComment).
		AddRule(`^#{1,6}\s+.*$`, TokenKeyword).
		AddRule("`[^`]+`", TokenString).
		AddRule(`\*\*[^*]+\*\*|__[^_]+__`, TokenClass, "bold").
		AddRule(`\*[^*]+\*|_[^_]+_`, TokenClass, "italic").
		AddRule(`\[[^\]]+\]\([^)]+\)`, TokenDecorator).
		AddRule(`^\s*(?:[-*+]|\d+\.)\s+`, TokenPunctuation).
		AddRule(`^>\s?`, TokenOperator)
}

// ShellLanguage returns the rules for POSIX shells.
func ShellLanguage() *Language {
	return NewLanguage("shell", ".sh", ".bash", ".zsh").
		AddGroupRule(`(?:^|\s)(#.*)$`, 1, TokenComment).
		AddRule(patternDoubleString, TokenString).
		AddRule(`'[^']*'`, TokenString).
		AddRule(`\$\{[^}]*\}|\$\w+`, TokenClass).
		AddKeywords(TokenKeyword,
			"if", "then", "else", "elif", "fi", "for", "while", "until", "do",
			"done", "case", "esac", "in", "function", "return", "local",
			"export", "readonly", "shift", "exit", "set", "unset").
		AddRule(`\b\d+\b`, TokenNumber).
		AddRule(`&&|\|\||[|&;<>]+|=`, TokenOperator).
		AddRule(`[{}()\[\]]`, TokenPunctuation)
}

// BuiltinLanguages returns every built-in language.
func BuiltinLanguages() []*Language {
	return []*Language{
		JavaScriptLanguage(),
		TypeScriptLanguage(),
		PythonLanguage(),
		GoLanguage(),
		RustLanguage(),
		JSONLanguage(),
		CSSLanguage(),
		HTMLLanguage(),
		MarkdownLanguage(),
		ShellLanguage(),
	}
}

var extensionLanguage = func() map[string]string {
	m := make(map[string]string)
	for _, l := range BuiltinLanguages() {
		for _, ext := range l.Extensions {
			m[ext] = l.Name
		}
	}
	return m
}()

// DetectLanguage returns the language name for a file path by extension,
// or "plaintext" when nothing matches.
func DetectLanguage(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if name, ok := extensionLanguage[ext]; ok {
		return name
	}
	return "plaintext"
}

// LanguageNames returns the sorted names of the built-in languages.
func LanguageNames() []string {
	names := make([]string, 0, len(BuiltinLanguages()))
	for _, l := range BuiltinLanguages() {
		names = append(names, l.Name)
	}
	sort.Strings(names)
	return names
}
