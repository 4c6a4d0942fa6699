// Package highlight provides regex-based tokenization for syntax coloring.
//
// Each language is an ordered table of rules. Every rule is bound to one
// token type (keyword, string, comment, number, operator, punctuation,
// class, decorator). Block rules carry an Until expression and may span
// lines, like block comments and template strings.
//
// # Overlap policy
//
// Lines are scanned left to right. At each offset the rules are tried in
// table order and the first one matching there claims its bytes; scanning
// resumes after them. A comment marker inside a string is therefore part of
// the string. Tokens are returned sorted by (line, start) and never overlap.
//
// # Caching
//
// Tokenizer caches results per (buffer id, language, generation) in a
// bounded LRU. An
// entry stores the buffer version it was computed from and only hits for
// that version. Returned slices are shared and must not be modified.
//
// A language with an invalid pattern is disabled: tokenizing it yields an
// empty result and a warning is logged once.
//
// # Rendering
//
// HighlightedRanges is a pure projection of tokens onto a viewport with
// colors from a Theme.
package highlight
