package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dshills/textcore/internal/analysis/diff"
)

// paint returns a color that honors the session's color mode.
func (s *session) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if s.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// printUnified writes res as a unified diff, coloring headers, hunk lines,
// additions and deletions.
func (s *session) printUnified(w io.Writer, res diff.Result, oldName, newName string) {
	if !res.HasChanges() {
		return
	}
	header := s.paint(color.Bold)
	hunk := s.paint(color.FgCyan)
	added := s.paint(color.FgGreen)
	removed := s.paint(color.FgRed)

	header.Fprintf(w, "--- %s\n", oldName)
	header.Fprintf(w, "+++ %s\n", newName)
	for _, h := range res.Hunks {
		hunk.Fprintln(w, h.Header())
		for _, line := range h.Lines {
			switch {
			case strings.HasPrefix(line, "+"):
				added.Fprintln(w, line)
			case strings.HasPrefix(line, "-"):
				removed.Fprintln(w, line)
			default:
				fmt.Fprintln(w, line)
			}
		}
	}
	fmt.Fprintf(w, "%d insertions(+), %d deletions(-)\n", res.Added(), res.Removed())
}
