// Package tree builds a project tree from a flat list of buffer paths.
//
// The tree is an arena: nodes live in one slice and refer to their parent
// and children by index. Folder nodes are synthesized from shared path
// prefixes. The tree is rebuilt on demand and never updated in place.
package tree

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dshills/textcore/internal/analysis/highlight"
)

// NodeType indicates the kind of node.
type NodeType uint8

const (
	// NodeTypeFolder is a synthetic folder built from a path prefix.
	NodeTypeFolder NodeType = iota
	// NodeTypeFile is a buffer path.
	NodeTypeFile
)

// String returns the string representation of a NodeType.
func (t NodeType) String() string {
	switch t {
	case NodeTypeFolder:
		return "folder"
	case NodeTypeFile:
		return "file"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t NodeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *NodeType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "folder":
		*t = NodeTypeFolder
	case "file":
		*t = NodeTypeFile
	default:
		return fmt.Errorf("unknown node type %q", b)
	}
	return nil
}

// NoParent is the Parent index of the root.
const NoParent = -1

// Node is one entry of the arena.
type Node struct {
	// Name is the last path segment. Empty for the root.
	Name string `json:"name" msgpack:"name"`
	// Path is the slash-separated path from the root.
	Path string `json:"path" msgpack:"path"`
	// Type is file or folder.
	Type NodeType `json:"type" msgpack:"type"`
	// Language is the detected language of a file node.
	Language string `json:"language,omitempty" msgpack:"language,omitempty"`
	// Parent is the index of the parent node, NoParent for the root.
	Parent int `json:"parent" msgpack:"parent"`
	// Children are indexes of child nodes, folders first, then by name.
	Children []int `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Tree is an immutable project tree. Index 0 is the root folder.
type Tree struct {
	nodes []Node
	index map[string]int
}

// Build groups paths into a tree. Leading and repeated slashes are
// ignored and duplicate paths collapse into one node. A path used both as
// a file and as a prefix of another path becomes a folder.
func Build(paths []string) *Tree {
	t := &Tree{
		nodes: []Node{{Type: NodeTypeFolder, Parent: NoParent}},
		index: map[string]int{"": 0},
	}

	for _, p := range paths {
		segments := splitPath(p)
		if len(segments) == 0 {
			continue
		}
		parent := 0
		for i, seg := range segments {
			key := strings.Join(segments[:i+1], "/")
			last := i == len(segments)-1
			idx, ok := t.index[key]
			if !ok {
				n := Node{Name: seg, Path: key, Type: NodeTypeFolder, Parent: parent}
				if last {
					n.Type = NodeTypeFile
					n.Language = highlight.DetectLanguage(key)
				}
				idx = len(t.nodes)
				t.nodes = append(t.nodes, n)
				t.index[key] = idx
				t.nodes[parent].Children = append(t.nodes[parent].Children, idx)
			} else if !last && t.nodes[idx].Type == NodeTypeFile {
				t.nodes[idx].Type = NodeTypeFolder
				t.nodes[idx].Language = ""
			}
			parent = idx
		}
	}

	for i := range t.nodes {
		t.sortChildren(i)
	}
	return t
}

func splitPath(p string) []string {
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (t *Tree) sortChildren(i int) {
	children := t.nodes[i].Children
	sort.Slice(children, func(a, b int) bool {
		na, nb := t.nodes[children[a]], t.nodes[children[b]]
		if na.Type != nb.Type {
			return na.Type == NodeTypeFolder
		}
		return na.Name < nb.Name
	})
}

// Len returns the number of nodes, including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Root returns the root node.
func (t *Tree) Root() Node {
	return t.nodes[0]
}

// Node returns the node at index i.
func (t *Tree) Node(i int) (Node, bool) {
	if i < 0 || i >= len(t.nodes) {
		return Node{}, false
	}
	return t.nodes[i], true
}

// Lookup finds a node by path.
func (t *Tree) Lookup(path string) (Node, bool) {
	idx, ok := t.index[strings.Join(splitPath(path), "/")]
	if !ok {
		return Node{}, false
	}
	return t.nodes[idx], true
}

// Children returns the children of the node at path.
func (t *Tree) Children(path string) []Node {
	n, ok := t.Lookup(path)
	if !ok {
		return nil
	}
	out := make([]Node, len(n.Children))
	for i, c := range n.Children {
		out[i] = t.nodes[c]
	}
	return out
}

// Files returns every file path in depth-first display order.
func (t *Tree) Files() []string {
	var files []string
	t.Walk(func(_ int, n Node) bool {
		if n.Type == NodeTypeFile {
			files = append(files, n.Path)
		}
		return true
	})
	return files
}

// Walk visits nodes depth-first in display order, skipping the root.
// Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(depth int, n Node) bool) {
	var visit func(idx, depth int)
	visit = func(idx, depth int) {
		for _, c := range t.nodes[idx].Children {
			if fn(depth, t.nodes[c]) {
				visit(c, depth+1)
			}
		}
	}
	visit(0, 0)
}

// Nodes returns a copy of the arena. Index 0 is the root and every node
// refers to its parent and children by index.
func (t *Tree) Nodes() []Node {
	out := make([]Node, len(t.nodes))
	for i, n := range t.nodes {
		n.Children = append([]int(nil), n.Children...)
		out[i] = n
	}
	return out
}

// Entry is the nested form of a node, used for display output.
type Entry struct {
	Name     string   `json:"name" msgpack:"name"`
	Path     string   `json:"path" msgpack:"path"`
	Type     NodeType `json:"type" msgpack:"type"`
	Language string   `json:"language,omitempty" msgpack:"language,omitempty"`
	Children []Entry  `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Entries returns the root's children as nested entries.
func (t *Tree) Entries() []Entry {
	return t.entries(0)
}

func (t *Tree) entries(idx int) []Entry {
	children := t.nodes[idx].Children
	if len(children) == 0 {
		return nil
	}
	out := make([]Entry, len(children))
	for i, c := range children {
		n := t.nodes[c]
		out[i] = Entry{
			Name:     n.Name,
			Path:     n.Path,
			Type:     n.Type,
			Language: n.Language,
			Children: t.entries(c),
		}
	}
	return out
}

// Format writes an indented listing of the tree, folders suffixed with "/".
func (t *Tree) Format(w io.Writer) error {
	var err error
	t.Walk(func(depth int, n Node) bool {
		if err != nil {
			return false
		}
		name := n.Name
		if n.Type == NodeTypeFolder {
			name += "/"
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), name)
		return true
	})
	return err
}
