// Package buffer provides the in-memory text buffers that back the editor
// core. It is the single source of truth for content, encoding, line and
// byte counts, and the per-buffer version counter.
//
// The buffer package provides:
//
//   - A Store that owns every buffer, keyed by id (a file path for files,
//     a generated id for scratch buffers)
//   - TextBuffer values: immutable snapshots handed to readers
//   - Coordinate conversion between 1-based line/column positions and
//     absolute byte offsets
//   - Line ending detection and normalization
//   - Encoding-aware byte lengths for utf-8, utf-16 and latin-1 buffers
//
// Basic usage:
//
//	s := buffer.NewStore()
//	s.Create("src/main.go", "src/main.go", "package main\n")
//
//	off, _ := s.Offset("src/main.go", buffer.Position{Line: 2, Column: 1})
//	snap, _ := s.Commit("src/main.go", "package main\n\nfunc main() {}\n")
//	_ = snap.Version // 2
//
// Position Types:
//
//   - Position: 1-based line and 1-based column, the column counted in runes
//   - Range: a Start/End pair of Positions, End exclusive
//
// Thread Safety:
//
// All Store methods are safe for concurrent use. The editor core still
// expects callers to serialize edits to a single buffer; the lock only keeps
// background readers (analysis jobs) from observing torn state.
package buffer
