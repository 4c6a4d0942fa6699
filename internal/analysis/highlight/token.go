package highlight

import (
	"fmt"
	"strings"
)

// TokenType represents the semantic type of a token.
type TokenType uint8

// Token types produced by the tokenizer.
const (
	TokenNone TokenType = iota
	TokenKeyword
	TokenString
	TokenComment
	TokenNumber
	TokenOperator
	TokenPunctuation
	TokenClass
	TokenDecorator

	// Sentinel for iteration
	tokenTypeCount
)

var tokenTypeNames = [...]string{
	TokenNone:        "none",
	TokenKeyword:     "keyword",
	TokenString:      "string",
	TokenComment:     "comment",
	TokenNumber:      "number",
	TokenOperator:    "operator",
	TokenPunctuation: "punctuation",
	TokenClass:       "class",
	TokenDecorator:   "decorator",
}

// String returns the string representation of a token type.
func (t TokenType) String() string {
	if t < tokenTypeCount {
		return tokenTypeNames[t]
	}
	return "unknown"
}

// ParseTokenType converts a name such as "keyword" to a TokenType.
func ParseTokenType(name string) (TokenType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i := TokenType(1); i < tokenTypeCount; i++ {
		if tokenTypeNames[i] == name {
			return i, nil
		}
	}
	return TokenNone, fmt.Errorf("%w: %q", ErrUnknownTokenType, name)
}

// TokenTypes returns every concrete token type in declaration order.
func TokenTypes() []TokenType {
	out := make([]TokenType, 0, tokenTypeCount-1)
	for i := TokenType(1); i < tokenTypeCount; i++ {
		out = append(out, i)
	}
	return out
}

// MarshalText encodes the type by name.
func (t TokenType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name.
func (t *TokenType) UnmarshalText(b []byte) error {
	v, err := ParseTokenType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Token is a classified span of a buffer.
//
// Start and End are absolute byte offsets into the buffer content (End is
// exclusive). Line and Column are 0-based; Column is a byte column.
type Token struct {
	Type      TokenType `json:"type"`
	Start     int       `json:"start"`
	End       int       `json:"end"`
	Line      int       `json:"line"`
	Column    int       `json:"column"`
	Modifiers []string  `json:"modifiers,omitempty"`
}

// Len returns the length of the token in bytes.
func (t Token) Len() int {
	return t.End - t.Start
}

// EndColumn returns the exclusive end column on the token's line.
func (t Token) EndColumn() int {
	return t.Column + t.Len()
}

// Contains returns true if the 0-based line/column is within the token.
func (t Token) Contains(line, col int) bool {
	return line == t.Line && col >= t.Column && col < t.EndColumn()
}
