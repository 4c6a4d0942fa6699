package tree

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestBuild(t *testing.T) {
	tr := Build([]string{"src/main.go", "src/util/str.go", "README.md", "/src//lib.go", "src/main.go"})

	// root, src, util, str.go, main.go, lib.go, README.md
	if tr.Len() != 7 {
		t.Errorf("Len = %d, want 7", tr.Len())
	}

	root := tr.Root()
	if root.Parent != NoParent || root.Type != NodeTypeFolder {
		t.Errorf("root = %+v", root)
	}

	src, ok := tr.Lookup("src")
	if !ok || src.Type != NodeTypeFolder {
		t.Fatalf("src = %+v, %v", src, ok)
	}
	var names []string
	for _, c := range tr.Children("src") {
		names = append(names, c.Name)
	}
	want := []string{"util", "lib.go", "main.go"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("src children = %v, want %v", names, want)
	}

	main, _ := tr.Lookup("src/main.go")
	if main.Language != "go" || main.Type != NodeTypeFile {
		t.Errorf("main.go = %+v", main)
	}
	parent, _ := tr.Node(main.Parent)
	if parent.Path != "src" {
		t.Errorf("main.go parent = %q, want src", parent.Path)
	}
}

func TestFilesOrder(t *testing.T) {
	tr := Build([]string{"b.txt", "a/z.go", "a/b/c.go"})
	want := []string{"a/b/c.go", "a/z.go", "b.txt"}
	if got := tr.Files(); !reflect.DeepEqual(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}
}

func TestFileBecomesFolder(t *testing.T) {
	tr := Build([]string{"a", "a/b"})
	n, _ := tr.Lookup("a")
	if n.Type != NodeTypeFolder || len(n.Children) != 1 {
		t.Errorf("a = %+v, want folder with one child", n)
	}
}

func TestFormat(t *testing.T) {
	var sb strings.Builder
	if err := Build([]string{"src/a.go", "x.md"}).Format(&sb); err != nil {
		t.Fatal(err)
	}
	want := "src/\n  a.go\nx.md\n"
	if sb.String() != want {
		t.Errorf("Format =\n%s\nwant\n%s", sb.String(), want)
	}
}

func TestEntriesJSON(t *testing.T) {
	data, err := json.Marshal(Build([]string{"d/f.py"}).Entries())
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"name":"d","path":"d","type":"folder","children":[{"name":"f.py","path":"d/f.py","type":"file","language":"python"}]}]`
	if string(data) != want {
		t.Errorf("json = %s\nwant %s", data, want)
	}
}

func TestNodesTable(t *testing.T) {
	tr := Build([]string{"d/f.py", "a.go"})
	nodes := tr.Nodes()
	if len(nodes) != 4 {
		t.Fatalf("got %d nodes, want 4", len(nodes))
	}
	root := nodes[0]
	if root.Parent != NoParent || len(root.Children) != 2 {
		t.Fatalf("root = %+v", root)
	}
	d := nodes[root.Children[0]]
	if d.Name != "d" || d.Type != NodeTypeFolder || d.Parent != 0 {
		t.Errorf("first child = %+v, want folder d", d)
	}
	f := nodes[d.Children[0]]
	if f.Path != "d/f.py" || nodes[f.Parent].Name != "d" {
		t.Errorf("leaf = %+v", f)
	}

	// The copy does not alias the tree.
	nodes[0].Children[0] = 99
	if tr.Root().Children[0] == 99 {
		t.Error("Nodes shares child slices with the tree")
	}
}

func TestEmpty(t *testing.T) {
	tr := Build(nil)
	if tr.Len() != 1 || len(tr.Files()) != 0 || tr.Entries() != nil {
		t.Errorf("empty tree = %+v", tr.Entries())
	}
}
