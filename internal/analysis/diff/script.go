package diff

// opKind is the type of a single edit.
type opKind uint8

const (
	opEqual opKind = iota
	opDelete
	opInsert
)

// op is one step of an edit script. oldIndex and newIndex are the 0-based
// cursors into each side when the op applies.
type op struct {
	kind     opKind
	oldIndex int
	newIndex int
}

// myers implements the Myers diff algorithm. ok is false when the trace
// would grow past budget ints; budget < 0 means unlimited.
func myers(oldLines, newLines []string, eq func(a, b string) bool, budget int64) ([]op, bool) {
	// Strip the common prefix and suffix; they are always equal runs.
	prefix := 0
	for prefix < len(oldLines) && prefix < len(newLines) && eq(oldLines[prefix], newLines[prefix]) {
		prefix++
	}
	suffix := 0
	for suffix < len(oldLines)-prefix && suffix < len(newLines)-prefix &&
		eq(oldLines[len(oldLines)-1-suffix], newLines[len(newLines)-1-suffix]) {
		suffix++
	}

	a := oldLines[prefix : len(oldLines)-suffix]
	b := newLines[prefix : len(newLines)-suffix]

	ops := make([]op, 0, len(oldLines)+len(newLines))
	for i := 0; i < prefix; i++ {
		ops = append(ops, op{kind: opEqual})
	}
	middle, ok := myersCore(a, b, eq, budget)
	if !ok {
		return nil, false
	}
	ops = append(ops, middle...)
	for i := 0; i < suffix; i++ {
		ops = append(ops, op{kind: opEqual})
	}
	return ops, true
}

func myersCore(a, b []string, eq func(x, y string) bool, budget int64) ([]op, bool) {
	n := len(a)
	m := len(b)

	// Handle trivial cases
	if n == 0 || m == 0 {
		ops := make([]op, 0, n+m)
		for i := 0; i < n; i++ {
			ops = append(ops, op{kind: opDelete})
		}
		for j := 0; j < m; j++ {
			ops = append(ops, op{kind: opInsert})
		}
		return ops, true
	}

	maxD := n + m
	offset := maxD // V[-max..max] maps to slice[0..2*max]
	width := int64(2*maxD + 1)
	v := make([]int, 2*maxD+1)

	var (
		trace [][]int
		used  int64
	)

outer:
	for d := 0; d <= maxD; d++ {
		used += width
		if budget >= 0 && used > budget {
			return nil, false
		}
		// Save trace BEFORE processing this d
		vCopy := make([]int, len(v))
		copy(vCopy, v)
		trace = append(trace, vCopy)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k

			// Extend diagonal (equal elements)
			for x < n && y < m && eq(a[x], b[y]) {
				x++
				y++
			}
			v[offset+k] = x

			if x >= n && y >= m {
				break outer
			}
		}
	}

	return backtrack(trace, n, m, offset), true
}

// backtrack reconstructs the edit script from the trace, newest step first,
// then reverses it.
func backtrack(trace [][]int, n, m, offset int) []op {
	x, y := n, m
	var ops []op

	for d := len(trace) - 1; d >= 0; d-- {
		v := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}

		prevX := 0
		if d > 0 {
			prevX = v[offset+prevK]
		}
		prevY := prevX - prevK
		if d == 0 {
			prevY = 0
		}

		// Walk back diagonals (equal elements)
		for x > prevX && y > prevY {
			x--
			y--
			ops = append(ops, op{kind: opEqual})
		}

		if d > 0 {
			if x > prevX {
				x--
				ops = append(ops, op{kind: opDelete})
			} else if y > prevY {
				y--
				ops = append(ops, op{kind: opInsert})
			}
		}
	}

	// Reverse the ops (we built them backwards)
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
	return ops
}

// heuristic walks both inputs in lockstep. On a mismatch it looks up to
// lookahead lines ahead in each side for the line the other side is at,
// classifying the gap as a deletion or insertion. If neither side
// resyncs, the two lines form a one-line replace pair.
func heuristic(oldLines, newLines []string, eq func(a, b string) bool, lookahead int) []op {
	n, m := len(oldLines), len(newLines)
	ops := make([]op, 0, n+m)
	i, j := 0, 0

	for i < n && j < m {
		if eq(oldLines[i], newLines[j]) {
			ops = append(ops, op{kind: opEqual})
			i++
			j++
			continue
		}

		resynced := false
		for k := 1; k <= lookahead; k++ {
			if i+k < n && eq(oldLines[i+k], newLines[j]) {
				for ; k > 0; k-- {
					ops = append(ops, op{kind: opDelete})
					i++
				}
				resynced = true
				break
			}
			if j+k < m && eq(oldLines[i], newLines[j+k]) {
				for ; k > 0; k-- {
					ops = append(ops, op{kind: opInsert})
					j++
				}
				resynced = true
				break
			}
		}
		if !resynced {
			ops = append(ops, op{kind: opDelete}, op{kind: opInsert})
			i++
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, op{kind: opDelete})
	}
	for ; j < m; j++ {
		ops = append(ops, op{kind: opInsert})
	}
	return ops
}

// normalize orders deletes before inserts inside every change run and
// assigns the side cursors to each op.
func normalize(ops []op) []op {
	out := make([]op, 0, len(ops))
	for start := 0; start < len(ops); {
		if ops[start].kind == opEqual {
			out = append(out, ops[start])
			start++
			continue
		}
		end := start
		for end < len(ops) && ops[end].kind != opEqual {
			end++
		}
		for _, o := range ops[start:end] {
			if o.kind == opDelete {
				out = append(out, o)
			}
		}
		for _, o := range ops[start:end] {
			if o.kind == opInsert {
				out = append(out, o)
			}
		}
		start = end
	}

	i, j := 0, 0
	for idx := range out {
		out[idx].oldIndex = i
		out[idx].newIndex = j
		switch out[idx].kind {
		case opEqual:
			i++
			j++
		case opDelete:
			i++
		case opInsert:
			j++
		}
	}
	return out
}

// buildHunks groups changes closer than 2*context lines into hunks.
func buildHunks(oldLines, newLines []string, ops []op, context int) []Hunk {
	hunks := make([]Hunk, 0)

	for idx := 0; idx < len(ops); {
		if ops[idx].kind == opEqual {
			idx++
			continue
		}

		// Extend the group while the next change is within reach.
		first := idx
		last := idx
		for k := idx + 1; k < len(ops); k++ {
			if ops[k].kind == opEqual {
				if k-last > 2*context {
					break
				}
				continue
			}
			last = k
		}

		start := first - context
		if start < 0 {
			start = 0
		}
		end := last + context + 1
		if end > len(ops) {
			end = len(ops)
		}
		hunks = append(hunks, makeHunk(oldLines, newLines, ops[start:end]))
		idx = end
	}
	return hunks
}

func makeHunk(oldLines, newLines []string, ops []op) Hunk {
	h := Hunk{Lines: make([]string, 0, len(ops))}
	for _, o := range ops {
		switch o.kind {
		case opEqual:
			h.Lines = append(h.Lines, " "+oldLines[o.oldIndex])
			h.OldLines++
			h.NewLines++
		case opDelete:
			h.Lines = append(h.Lines, "-"+oldLines[o.oldIndex])
			h.OldLines++
		case opInsert:
			h.Lines = append(h.Lines, "+"+newLines[o.newIndex])
			h.NewLines++
		}
	}
	h.OldStart = ops[0].oldIndex
	if h.OldLines > 0 {
		h.OldStart++
	}
	h.NewStart = ops[0].newIndex
	if h.NewLines > 0 {
		h.NewStart++
	}
	return h
}
