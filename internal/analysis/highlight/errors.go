package highlight

import "errors"

// Errors returned by the highlight package.
var (
	ErrUnknownLanguage  = errors.New("unknown language")
	ErrUnknownTokenType = errors.New("unknown token type")
	ErrInvalidPattern   = errors.New("invalid pattern")
	ErrInvalidColor     = errors.New("invalid color")
)
