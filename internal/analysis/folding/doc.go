// Package folding computes foldable line ranges from indentation and
// bracket structure.
//
// Compute makes one top-down pass with a stack of open-block markers. A
// marker is pushed at the indentation of every line ending in '{' or ':'.
// Markers close when:
//
//   - a line starts with '}': markers at or deeper than its indentation
//     close on that line
//   - a blank line is followed by a line indented no deeper than a marker:
//     the marker closes on the last non-blank line
//   - a non-blank line dedents to or past a ':' marker
//   - the input ends: remaining markers close on the last non-blank line
//
// Import runs, #region/#endregion pairs and multi-line block comments are
// detected independently of indentation. The kind of an indentation block
// is sniffed from its opening line.
//
// Analyzer wraps Compute with a version-checked cache and keeps the
// collapsed state of ranges per buffer, keyed by start line.
package folding
