package buffer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names the character encoding a buffer is stored in on disk.
// Content is always held in memory as UTF-8; the encoding determines the
// reported ByteLength and how ingested bytes are decoded.
type Encoding string

const (
	// EncodingUTF8 is UTF-8 encoding (default).
	EncodingUTF8 Encoding = "utf-8"

	// EncodingUTF16LE is UTF-16 Little Endian.
	EncodingUTF16LE Encoding = "utf-16le"

	// EncodingUTF16BE is UTF-16 Big Endian.
	EncodingUTF16BE Encoding = "utf-16be"

	// EncodingLatin1 is ISO-8859-1 (Latin-1).
	EncodingLatin1 Encoding = "iso-8859-1"
)

// BOM (Byte Order Mark) constants
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ParseEncoding maps a user-supplied encoding name onto a known Encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf8", "utf-8":
		return EncodingUTF8, nil
	case "utf16le", "utf-16le", "utf-16":
		return EncodingUTF16LE, nil
	case "utf16be", "utf-16be":
		return EncodingUTF16BE, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return EncodingLatin1, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

// codec returns the x/text encoding for e.
func (e Encoding) codec() encoding.Encoding {
	switch e {
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case EncodingLatin1:
		return charmap.ISO8859_1
	default:
		return unicode.UTF8
	}
}

// Encode converts UTF-8 content into e. Runes that e cannot represent are
// replaced with the encoding's replacement character.
func (e Encoding) Encode(s string) ([]byte, error) {
	if e == EncodingUTF8 || e == "" {
		return []byte(s), nil
	}
	enc := encoding.ReplaceUnsupported(e.codec().NewEncoder())
	out, err := enc.String(s)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", e, err)
	}
	return []byte(out), nil
}

// EncodedLen returns the byte length of s once encoded in e.
func (e Encoding) EncodedLen(s string) int {
	switch e {
	case EncodingUTF8, "":
		return len(s)
	case EncodingLatin1:
		return utf8.RuneCountInString(s)
	}
	out, err := e.Encode(s)
	if err != nil {
		return len(s)
	}
	return len(out)
}

// DetectEncoding attempts to detect the encoding of file content.
// It checks for BOM markers first, then validates UTF-8.
// Falls back to Latin-1 which accepts all byte sequences.
func DetectEncoding(content []byte) Encoding {
	switch {
	case bytes.HasPrefix(content, bomUTF8):
		return EncodingUTF8
	case bytes.HasPrefix(content, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(content, bomUTF16BE):
		return EncodingUTF16BE
	case utf8.Valid(content):
		return EncodingUTF8
	default:
		return EncodingLatin1
	}
}

// Decode detects the encoding of data and returns its UTF-8 text with any
// byte order mark removed.
func Decode(data []byte) (string, Encoding, error) {
	enc := DetectEncoding(data)
	switch enc {
	case EncodingUTF8:
		return string(bytes.TrimPrefix(data, bomUTF8)), enc, nil
	case EncodingUTF16LE:
		data = bytes.TrimPrefix(data, bomUTF16LE)
	case EncodingUTF16BE:
		data = bytes.TrimPrefix(data, bomUTF16BE)
	}
	out, err := enc.codec().NewDecoder().Bytes(data)
	if err != nil {
		return "", enc, fmt.Errorf("decoding %s: %w", enc, err)
	}
	return string(out), enc, nil
}
