// Package diff computes line diffs between two texts.
//
// Two algorithms produce the edit script:
//
//   - Myers: minimal edit script. The default. Inputs above MaxLines, or
//     searches whose trace would exceed MaxMemoryMB, fall back to the
//     heuristic.
//   - Heuristic: a lockstep walk of both inputs. On a mismatch it searches
//     a bounded number of lines ahead in each side for a resync point and
//     classifies the gap as an insertion or a deletion; when neither side
//     resyncs the two lines become a one-line replace pair.
//
// Either way the script is grouped into unified-diff style hunks with
// ContextLines of context. Identical inputs yield zero hunks.
package diff

import "errors"

// ErrUnknownAlgorithm is returned by ParseAlgorithm.
var ErrUnknownAlgorithm = errors.New("unknown diff algorithm")
