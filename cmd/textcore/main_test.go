package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func project(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"main.go":     "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n",
		"pkg/util.go": "package pkg\n\nfunc Util() {}\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--color", "off", "--log-level", "error"))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, errOut.String())
	}
	return out.String()
}

func TestTreeCommand(t *testing.T) {
	root := project(t)
	got := execute(t, "tree", "--root", root, "--format", "pretty")
	want := "pkg/\n  util.go\nmain.go\n"
	if got != want {
		t.Errorf("tree =\n%s\nwant\n%s", got, want)
	}
}

func TestSearchCommand(t *testing.T) {
	root := project(t)
	got := execute(t, "search", "func", "--root", root, "--format", "pretty")
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 {
		t.Fatalf("search output =\n%s", got)
	}
	if !strings.HasPrefix(lines[0], "main.go:3:1:") || !strings.HasPrefix(lines[1], "pkg/util.go:3:1:") {
		t.Errorf("search output =\n%s", got)
	}
}

func TestFoldCommandJSON(t *testing.T) {
	root := project(t)
	got := execute(t, "fold", "main.go", "--root", root, "--format", "json")
	var ranges []struct {
		StartLine int    `json:"startLine"`
		EndLine   int    `json:"endLine"`
		Kind      string `json:"kind"`
	}
	if err := json.Unmarshal([]byte(got), &ranges); err != nil {
		t.Fatalf("fold output is not JSON: %v\n%s", err, got)
	}
	if len(ranges) == 0 || ranges[0].StartLine != 2 || ranges[0].EndLine != 4 {
		t.Errorf("ranges = %+v, want one starting at line 2", ranges)
	}
}

func TestDiffCommand(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	os.WriteFile(a, []byte("one\ntwo\nthree"), 0o644)
	os.WriteFile(b, []byte("one\n2\nthree"), 0o644)

	got := execute(t, "diff", a, b, "--format", "pretty", "-U", "1")
	for _, want := range []string{"@@ -1,3 +1,3 @@", "-two", "+2", "1 insertions(+), 1 deletions(-)"} {
		if !strings.Contains(got, want) {
			t.Errorf("diff output missing %q:\n%s", want, got)
		}
	}
}

func TestContextCommand(t *testing.T) {
	root := project(t)
	got := execute(t, "context", "--root", root, "--format", "json", "--active", "main.go")
	var ctx struct {
		ActiveFile string            `json:"activeFile"`
		Language   string            `json:"language"`
		Files      map[string]string `json:"files"`
	}
	if err := json.Unmarshal([]byte(got), &ctx); err != nil {
		t.Fatalf("context output is not JSON: %v", err)
	}
	if ctx.ActiveFile != "main.go" || ctx.Language != "go" || len(ctx.Files) != 2 {
		t.Errorf("context = %+v", ctx)
	}
}

func TestConfigCommand(t *testing.T) {
	got := execute(t, "config", "--format", "toml")
	if !strings.Contains(got, "undoLimit = 50") {
		t.Errorf("config output =\n%s", got)
	}
}
