// Package search provides linear content search over in-memory documents
// and file name lookup over a path list.
//
// No index is built. Every call scans the lines it is given, which is
// adequate for interactive editing of projects with thousands of lines.
//
// Content search supports three query modes, combined with case
// sensitivity:
//
//   - literal: the query is matched as-is
//   - whole word: the literal or pattern must sit on word boundaries
//   - regex: the query is an RE2 regular expression
//
// Matches report 1-based line and rune columns:
//
//	matches, err := search.Search(doc, "TODO", search.DefaultOptions())
//	for _, m := range matches {
//		fmt.Printf("%s:%d:%d %s\n", m.Path, m.Line, m.Column, m.LineText)
//	}
//
// FindFileByName ranks paths by how well their base name matches a query,
// using exact, prefix, substring and then fuzzy matching.
package search
