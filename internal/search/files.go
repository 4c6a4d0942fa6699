package search

import (
	"sort"
	"strings"
)

// FileMatch is a file name search result.
type FileMatch struct {
	// Path is the full path to the file
	Path string `json:"path" msgpack:"path"`

	// Name is the base name
	Name string `json:"name" msgpack:"name"`

	// Score indicates match quality (higher is better, 1.0 is exact)
	Score float64 `json:"score" msgpack:"score"`

	// Positions are the byte indexes of matched characters in Name
	Positions []int `json:"positions,omitempty" msgpack:"positions,omitempty"`
}

// FindFileByName ranks paths by how well their base name matches name,
// case-insensitively. Exact names score 1.0, then prefixes, substrings and
// finally in-order fuzzy matches. Ties sort by path.
func FindFileByName(paths []string, name string) []FileMatch {
	results := make([]FileMatch, 0)
	if name == "" {
		return results
	}

	for _, path := range paths {
		base := path[strings.LastIndex(path, "/")+1:]
		score, positions := nameScore(name, base)
		if score == 0 {
			continue
		}
		results = append(results, FileMatch{
			Path:      path,
			Name:      base,
			Score:     score,
			Positions: positions,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})
	return results
}

func nameScore(query, name string) (float64, []int) {
	q := strings.ToLower(query)
	n := strings.ToLower(name)

	switch {
	case q == n:
		return 1.0, span(0, len(n))
	case strings.HasPrefix(n, q):
		return 0.9 + 0.05*float64(len(q))/float64(len(n)), span(0, len(q))
	case strings.Contains(n, q):
		at := strings.Index(n, q)
		return 0.7 + 0.05*float64(len(q))/float64(len(n)), span(at, at+len(q))
	}

	score, positions := fuzzyMatch(q, n)
	// Keep fuzzy results below every substring match.
	return score * 0.7, positions
}

func span(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

// fuzzyMatch returns a score in (0, 1) when every pattern byte appears in
// target in order, and the positions of the matched bytes. Both inputs
// must already be case-folded.
func fuzzyMatch(p, t string) (float64, []int) {
	pLen := len(p)
	tLen := len(t)
	if pLen == 0 || pLen > tLen {
		return 0, nil
	}

	pIdx := 0
	matches := make([]int, 0, pLen)
	for tIdx := 0; tIdx < tLen && pIdx < pLen; tIdx++ {
		if p[pIdx] == t[tIdx] {
			matches = append(matches, tIdx)
			pIdx++
		}
	}
	if pIdx != pLen {
		return 0, nil
	}

	// Score on coverage, consecutive runs, word starts and the position of
	// the first match.
	baseScore := float64(pLen) / float64(tLen) * 0.5

	consecutiveBonus := 0.0
	if pLen > 1 {
		consecutive := 0
		for i := 1; i < len(matches); i++ {
			if matches[i] == matches[i-1]+1 {
				consecutive++
			}
		}
		consecutiveBonus = float64(consecutive) / float64(pLen-1) * 0.3
	}

	boundaries := 0
	for _, idx := range matches {
		if idx == 0 || !isAlphaNum(t[idx-1]) {
			boundaries++
		}
	}
	wordBoundaryBonus := float64(boundaries) / float64(pLen) * 0.15

	positionBonus := (1.0 - float64(matches[0])/float64(tLen)) * 0.05

	score := baseScore + consecutiveBonus + wordBoundaryBonus + positionBonus
	if score > 0.95 {
		score = 0.95
	}
	return score, matches
}

func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
