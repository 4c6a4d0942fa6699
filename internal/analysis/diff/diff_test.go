package diff

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func opts(algo Algorithm, context int) Options {
	o := DefaultOptions()
	o.Algorithm = algo
	o.ContextLines = context
	return o
}

func TestIdenticalInputsHaveNoHunks(t *testing.T) {
	for _, algo := range []Algorithm{AlgorithmMyers, AlgorithmHeuristic} {
		res := Strings("a\nb\nc", "a\nb\nc", opts(algo, 3))
		if len(res.Hunks) != 0 {
			t.Errorf("%s: got %d hunks, want 0", algo, len(res.Hunks))
		}
		if res.HasChanges() {
			t.Errorf("%s: HasChanges = true", algo)
		}
	}
}

func TestHunks(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		context  int
		want     []Hunk
	}{
		{
			name: "replace with context",
			old:  "a\nb\nc", new: "a\nx\nc",
			context: 1,
			want: []Hunk{{
				OldStart: 1, OldLines: 3, NewStart: 1, NewLines: 3,
				Lines: []string{" a", "-b", "+x", " c"},
			}},
		},
		{
			name: "pure insertion",
			old:  "a\nb", new: "a\nnew\nb",
			context: 0,
			want: []Hunk{{
				OldStart: 1, OldLines: 0, NewStart: 2, NewLines: 1,
				Lines: []string{"+new"},
			}},
		},
		{
			name: "pure deletion",
			old:  "a\ngone\nb", new: "a\nb",
			context: 0,
			want: []Hunk{{
				OldStart: 2, OldLines: 1, NewStart: 1, NewLines: 0,
				Lines: []string{"-gone"},
			}},
		},
		{
			name: "insert at start",
			old:  "b", new: "a\nb",
			context: 0,
			want: []Hunk{{
				OldStart: 0, OldLines: 0, NewStart: 1, NewLines: 1,
				Lines: []string{"+a"},
			}},
		},
	}

	for _, tt := range tests {
		for _, algo := range []Algorithm{AlgorithmMyers, AlgorithmHeuristic} {
			t.Run(tt.name+"/"+string(algo), func(t *testing.T) {
				res := Strings(tt.old, tt.new, opts(algo, tt.context))
				if !reflect.DeepEqual(res.Hunks, tt.want) {
					t.Errorf("Hunks = %+v, want %+v", res.Hunks, tt.want)
				}
			})
		}
	}
}

func TestHeuristicReplacePairs(t *testing.T) {
	res := Lines([]string{"a", "b"}, []string{"x", "y"}, opts(AlgorithmHeuristic, 0))
	if len(res.Hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(res.Hunks))
	}
	want := []string{"-a", "-b", "+x", "+y"}
	if !reflect.DeepEqual(res.Hunks[0].Lines, want) {
		t.Errorf("Lines = %v, want %v", res.Hunks[0].Lines, want)
	}
}

func TestDistantChangesSplitHunks(t *testing.T) {
	old := strings.Split("1\n2\n3\n4\n5\n6\n7\n8\n9\n10", "\n")
	cur := append([]string(nil), old...)
	cur[0] = "one"
	cur[9] = "ten"

	res := Lines(old, cur, opts(AlgorithmMyers, 2))
	if len(res.Hunks) != 2 {
		t.Fatalf("got %d hunks, want 2", len(res.Hunks))
	}
	if h := res.Hunks[1]; h.OldStart != 8 || h.OldLines != 3 || h.NewStart != 8 || h.NewLines != 3 {
		t.Errorf("second hunk header = %s, want @@ -8,3 +8,3 @@", h.Header())
	}
	if res.Added() != 2 || res.Removed() != 2 {
		t.Errorf("Added/Removed = %d/%d, want 2/2", res.Added(), res.Removed())
	}
}

func TestMyersIsMinimal(t *testing.T) {
	old := []string{"a", "b", "c", "d", "e"}
	cur := []string{"b", "c", "d", "e", "a"}
	res := Lines(old, cur, opts(AlgorithmMyers, 0))
	if res.Added() != 1 || res.Removed() != 1 {
		t.Errorf("Added/Removed = %d/%d, want 1/1", res.Added(), res.Removed())
	}
	if res.Algorithm != AlgorithmMyers {
		t.Errorf("Algorithm = %s, want myers", res.Algorithm)
	}
}

func TestMaxLinesFallsBackToHeuristic(t *testing.T) {
	o := opts(AlgorithmMyers, 0)
	o.MaxLines = 1
	res := Strings("a\nb", "a\nc", o)
	if res.Algorithm != AlgorithmHeuristic {
		t.Errorf("Algorithm = %s, want heuristic", res.Algorithm)
	}
	if res.Added() != 1 || res.Removed() != 1 {
		t.Errorf("Added/Removed = %d/%d, want 1/1", res.Added(), res.Removed())
	}
}

func TestIgnoreOptions(t *testing.T) {
	o := opts(AlgorithmMyers, 0)
	o.IgnoreCase = true
	o.IgnoreWhitespace = true
	if res := Strings("Hello\n  World", "hello\nworld  ", o); res.HasChanges() {
		t.Errorf("expected no changes, got %+v", res.Hunks)
	}
}

func TestUnified(t *testing.T) {
	res := Strings("a\nb\nc", "a\nx\nc", opts(AlgorithmMyers, 1))
	got := Unified(res, "a.txt", "b.txt")
	want := "--- a.txt\n+++ b.txt\n@@ -1,3 +1,3 @@\n a\n-b\n+x\n c\n"
	if got != want {
		t.Errorf("Unified =\n%s\nwant\n%s", got, want)
	}
	if Unified(Strings("a", "a", DefaultOptions()), "x", "y") != "" {
		t.Error("Unified of no changes should be empty")
	}
}

func TestParseAlgorithm(t *testing.T) {
	if a, err := ParseAlgorithm("Heuristic"); err != nil || a != AlgorithmHeuristic {
		t.Errorf("ParseAlgorithm(Heuristic) = %v, %v", a, err)
	}
	if a, err := ParseAlgorithm(""); err != nil || a != AlgorithmMyers {
		t.Errorf("ParseAlgorithm(\"\") = %v, %v", a, err)
	}
	if _, err := ParseAlgorithm("patience"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("error = %v, want ErrUnknownAlgorithm", err)
	}
}
