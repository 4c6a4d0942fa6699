package highlight

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dshills/textcore/internal/analysis/cache"
)

// Source is the input of a cached tokenization.
type Source struct {
	BufferID   string
	Generation uint64
	Version    uint64
	Lines      []string

	// EOLWidth is the byte width of the buffer's line ending, used to
	// compute absolute offsets.
	EOLWidth int
}

func (s Source) key(language string) cache.Key {
	return cache.Key{BufferID: s.BufferID, Language: language, Generation: s.Generation}
}

// Tokenizer tokenizes buffers with per-language rule tables and caches the
// result per (buffer, language) at the buffer's version.
// It is safe for concurrent use.
type Tokenizer struct {
	mu        sync.RWMutex
	languages map[string]*Language
	compiled  map[string]compiledLanguage

	cache  *cache.Versioned[[]Token]
	logger *slog.Logger
}

type compiledLanguage struct {
	rules []compiledRule
	err   error
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithLogger sets the logger used for pattern warnings.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tokenizer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithCacheSize bounds the number of cached token lists.
func WithCacheSize(n int) Option {
	return func(t *Tokenizer) {
		t.cache = cache.New[[]Token](n)
	}
}

// WithLanguage registers an extra language or replaces a built-in one.
func WithLanguage(l *Language) Option {
	return func(t *Tokenizer) {
		t.languages[l.Name] = l
	}
}

// NewTokenizer creates a tokenizer with the built-in languages.
func NewTokenizer(opts ...Option) *Tokenizer {
	t := &Tokenizer{
		languages: make(map[string]*Language),
		compiled:  make(map[string]compiledLanguage),
		cache:     cache.New[[]Token](cache.DefaultMaxEntries),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, l := range BuiltinLanguages() {
		t.languages[l.Name] = l
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Register adds or replaces a language and drops anything cached for it.
func (t *Tokenizer) Register(l *Language) {
	t.mu.Lock()
	t.languages[l.Name] = l
	delete(t.compiled, l.Name)
	t.mu.Unlock()

	// Cached results may have been produced by the old rules.
	t.cache.Clear()
}

// HasLanguage reports whether name is registered.
func (t *Tokenizer) HasLanguage(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.languages[name]
	return ok
}

// rules returns the compiled rules for a language, compiling on first use.
func (t *Tokenizer) rules(name string) ([]compiledRule, error) {
	t.mu.RLock()
	cl, ok := t.compiled[name]
	t.mu.RUnlock()
	if ok {
		return cl.rules, cl.err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if cl, ok := t.compiled[name]; ok {
		return cl.rules, cl.err
	}
	lang, ok := t.languages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, name)
	}
	rules, err := lang.compile()
	if err != nil {
		err = fmt.Errorf("%w: %s: %v", ErrInvalidPattern, name, err)
		t.logger.Warn("language disabled", "language", name, "error", err)
	}
	t.compiled[name] = compiledLanguage{rules: rules, err: err}
	return rules, err
}

// Tokenize returns the tokens of src in the given language. A cached result
// is returned only when it was computed at src.Version. Unknown languages
// and languages with invalid patterns yield an empty result.
func (t *Tokenizer) Tokenize(src Source, language string) []Token {
	key := src.key(language)
	if toks, ok := t.cache.Get(key, src.Version); ok {
		return toks
	}

	toks, err := t.TokenizeLines(src.Lines, src.EOLWidth, language)
	if err != nil {
		toks = []Token{}
	}
	t.cache.Put(key, src.Version, toks)
	return toks
}

// Cached reports whether a result for src in language is in the cache.
// Lines is ignored.
func (t *Tokenizer) Cached(src Source, language string) bool {
	_, ok := t.cache.Get(src.key(language), src.Version)
	return ok
}

// Invalidate drops every cached result for bufferID.
func (t *Tokenizer) Invalidate(bufferID string) {
	t.cache.InvalidateBuffer(bufferID)
}

// Stats returns cache counters.
func (t *Tokenizer) Stats() cache.Stats {
	return t.cache.Stats()
}

// TokenizeLines tokenizes lines without touching the cache.
func (t *Tokenizer) TokenizeLines(lines []string, eolWidth int, language string) ([]Token, error) {
	rules, err := t.rules(language)
	if err != nil {
		return nil, err
	}

	tokens := make([]Token, 0)
	offset := 0
	state := 0
	for ln, line := range lines {
		var spans []span
		spans, state = scanLine(rules, line, state)
		for _, sp := range spans {
			r := rules[sp.rule]
			tokens = append(tokens, Token{
				Type:      r.Type,
				Start:     offset + sp.start,
				End:       offset + sp.end,
				Line:      ln,
				Column:    sp.start,
				Modifiers: r.Modifiers,
			})
		}
		offset += len(line) + eolWidth
	}
	return tokens, nil
}

// span is a claimed byte range of a line produced by rule.
type span struct {
	start, end int
	rule       int
}

// scanLine tokenizes one line left to right. At each offset the rules are
// tried in order and the first one matching there claims its bytes; the scan
// resumes after them. state is 1 + the index of the block rule left open by
// the previous line, or 0.
func scanLine(rules []compiledRule, line string, state int) ([]span, int) {
	spans := make([]span, 0)
	pos := 0

	// Handle continuation of multi-line constructs
	if state > 0 {
		r := rules[state-1]
		loc := r.until.FindStringIndex(line)
		if loc == nil {
			if len(line) > 0 {
				spans = append(spans, span{start: 0, end: len(line), rule: state - 1})
			}
			return spans, state
		}
		if loc[1] > 0 {
			spans = append(spans, span{start: 0, end: loc[1], rule: state - 1})
		}
		pos = loc[1]
	}

	scanners := make([]*ruleScanner, len(rules))
	for i := range rules {
		scanners[i] = newRuleScanner(rules[i], line)
	}

	for pos < len(line) {
		best, bestRule := candidate{}, -1
		for i, sc := range scanners {
			c, ok := sc.next(pos)
			if ok && (bestRule < 0 || c.start < best.start) {
				best, bestRule = c, i
			}
		}
		if bestRule < 0 {
			break
		}

		end := best.end
		if until := rules[bestRule].until; until != nil {
			c := until.FindStringIndex(line[best.to:])
			if c == nil || (c[0] == 0 && c[1] == 0) {
				spans = append(spans, span{start: best.start, end: len(line), rule: bestRule})
				return spans, bestRule + 1
			}
			end = best.to + c[1]
		}
		spans = append(spans, span{start: best.start, end: end, rule: bestRule})
		pos = end
	}
	return spans, 0
}

// candidate is one match of a rule. start and end bound the claimed bytes;
// to is the end of the whole regexp match. For block rules the match is the
// opener.
type candidate struct {
	start, end int
	to         int
}

// ruleScanner yields the matches of one rule on one line in order.
type ruleScanner struct {
	rule       compiledRule
	line       string
	candidates []candidate
	idx        int
}

func newRuleScanner(r compiledRule, line string) *ruleScanner {
	sc := &ruleScanner{rule: r, line: line}
	sc.candidates = sc.find(0)
	return sc
}

// next returns the first match claiming bytes at or after pos. A skipped
// match that ran past pos may have hidden later matches, so the line is
// searched again from pos.
func (sc *ruleScanner) next(pos int) (candidate, bool) {
	rescan := false
	for sc.idx < len(sc.candidates) && sc.candidates[sc.idx].start < pos {
		if sc.candidates[sc.idx].to > pos {
			rescan = true
		}
		sc.idx++
	}
	if rescan {
		sc.candidates, sc.idx = sc.find(pos), 0
	}
	if sc.idx < len(sc.candidates) {
		return sc.candidates[sc.idx], true
	}
	return candidate{}, false
}

// find returns the matches of the rule in line[pos:] as line offsets.
// Matches at pos are dropped when the rule's anchors could see a different
// context in the substring than in the full line.
func (sc *ruleScanner) find(pos int) []candidate {
	r := sc.rule
	wordBefore := pos > 0 && isWordByte(sc.line[pos-1])

	out := make([]candidate, 0)
	for _, m := range r.re.FindAllStringSubmatchIndex(sc.line[pos:], -1) {
		if pos > 0 && m[0] == 0 && (r.anchored || (r.boundary && wordBefore)) {
			continue
		}
		start, end := m[0], m[1]
		if r.Group > 0 {
			if len(m) <= r.Group*2+1 {
				continue
			}
			start, end = m[r.Group*2], m[r.Group*2+1]
		}
		if start < 0 || end <= start {
			continue
		}
		out = append(out, candidate{start: pos + start, end: pos + end, to: pos + m[1]})
	}
	return out
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
