package vfs

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Kind tells files and folders apart.
type Kind uint8

const (
	KindFile Kind = iota
	KindFolder
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// Node is an immutable file system node. A file carries opaque string
// content (plain text or a data URI); a folder maps child names to nodes.
//
// Nodes are never modified after construction, which lets several trees
// share them.
type Node struct {
	kind     Kind
	content  string
	children map[string]*Node
}

// NewFile returns a file node with the given content.
func NewFile(content string) *Node {
	return &Node{kind: KindFile, content: content}
}

// NewFolder returns a folder node holding a copy of children.
func NewFolder(children map[string]*Node) *Node {
	m := make(map[string]*Node, len(children))
	for name, child := range children {
		m[name] = child
	}
	return &Node{kind: KindFolder, children: m}
}

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// IsDir reports whether the node is a folder.
func (n *Node) IsDir() bool { return n.kind == KindFolder }

// Content returns the content of a file node, or "" for folders.
func (n *Node) Content() string { return n.content }

// Size returns the content length for files and the child count for folders.
func (n *Node) Size() int {
	if n.IsDir() {
		return len(n.children)
	}
	return len(n.content)
}

// Child returns the named child of a folder.
func (n *Node) Child(name string) (*Node, bool) {
	if !n.IsDir() {
		return nil, false
	}
	c, ok := n.children[name]
	return c, ok
}

// Names returns the child names of a folder in byte order.
func (n *Node) Names() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of nodes in the subtree rooted at n, n included.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.children {
		total += c.Count()
	}
	return total
}

// withChild returns a copy of folder n with name bound to child.
func (n *Node) withChild(name string, child *Node) *Node {
	m := make(map[string]*Node, len(n.children)+1)
	for k, v := range n.children {
		m[k] = v
	}
	m[name] = child
	return &Node{kind: KindFolder, children: m}
}

// withoutChild returns a copy of folder n without name.
func (n *Node) withoutChild(name string) *Node {
	m := make(map[string]*Node, len(n.children))
	for k, v := range n.children {
		if k != name {
			m[k] = v
		}
	}
	return &Node{kind: KindFolder, children: m}
}

// Equal reports whether a and b describe the same tree.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	if a.kind == KindFile {
		return a.content == b.content
	}
	if len(a.children) != len(b.children) {
		return false
	}
	for name, ac := range a.children {
		bc, ok := b.children[name]
		if !ok || !Equal(ac, bc) {
			return false
		}
	}
	return true
}

type fileJSON struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type folderJSON struct {
	Type     string           `json:"type"`
	Children map[string]*Node `json:"children"`
}

// MarshalJSON encodes the node as {"type":"file","content":...} or
// {"type":"folder","children":{...}}.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.IsDir() {
		children := n.children
		if children == nil {
			children = map[string]*Node{}
		}
		return json.Marshal(folderJSON{Type: "folder", Children: children})
	}
	return json.Marshal(fileJSON{Type: "file", Content: n.content})
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type     string           `json:"type"`
		Content  string           `json:"content"`
		Children map[string]*Node `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Type {
	case "file":
		*n = Node{kind: KindFile, content: raw.Content}
	case "folder":
		children := make(map[string]*Node, len(raw.Children))
		for name, child := range raw.Children {
			if child == nil {
				return fmt.Errorf("vfs: folder entry %q is null", name)
			}
			if err := ValidateName(name); err != nil {
				return fmt.Errorf("vfs: folder entry %q: %w", name, err)
			}
			children[name] = child
		}
		*n = Node{kind: KindFolder, children: children}
	default:
		return fmt.Errorf("vfs: unknown node type %q", raw.Type)
	}
	return nil
}
