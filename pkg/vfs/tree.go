package vfs

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Tree is an immutable snapshot of the file system. The zero value is not
// usable; build trees with New, NewTree, DefaultTree or by decoding JSON.
type Tree struct {
	root *Node
}

// New returns a tree holding only an empty root folder.
func New() *Tree {
	return &Tree{root: NewFolder(nil)}
}

// NewTree wraps root as a tree. The root must be a folder.
func NewTree(root *Node) (*Tree, error) {
	if root == nil || !root.IsDir() {
		return nil, pathErr("open", Root, ErrNotDir)
	}
	return &Tree{root: root}, nil
}

// Root returns the root folder node.
func (t *Tree) Root() *Node {
	return t.mustRoot()
}

func (t *Tree) mustRoot() *Node {
	if t == nil || t.root == nil {
		panic("vfs: use of nil tree")
	}
	return t.root
}

// Equal reports whether both trees have the same structure and content.
func (t *Tree) Equal(o *Tree) bool {
	return Equal(t.mustRoot(), o.mustRoot())
}

// Lookup returns the node at p.
func (t *Tree) Lookup(p Path) (*Node, error) {
	return lookup(t.mustRoot(), "lookup", p)
}

// Exists reports whether p names a node.
func (t *Tree) Exists(p Path) bool {
	_, err := t.Lookup(p)
	return err == nil
}

// ReadFile returns the content of the file at p.
func (t *Tree) ReadFile(p Path) (string, error) {
	n, err := lookup(t.mustRoot(), "read", p)
	if err != nil {
		return "", err
	}
	if n.IsDir() {
		return "", pathErr("read", p, ErrIsDir)
	}
	return n.content, nil
}

// Mutate applies fn to a working copy of t. If fn returns an error the
// original tree is returned with that error and nothing is changed.
func (t *Tree) Mutate(fn func(tx *Txn) error) (*Tree, error) {
	tx := &Txn{root: t.mustRoot()}
	if err := fn(tx); err != nil {
		return t, err
	}
	if tx.root == t.root {
		return t, nil
	}
	return &Tree{root: tx.root}, nil
}

// CreateFile returns a tree with a new file at p.
func (t *Tree) CreateFile(p Path, content string) (*Tree, error) {
	return t.Mutate(func(tx *Txn) error { return tx.CreateFile(p, content) })
}

// CreateFolder returns a tree with a new empty folder at p.
func (t *Tree) CreateFolder(p Path) (*Tree, error) {
	return t.Mutate(func(tx *Txn) error { return tx.CreateFolder(p) })
}

// WriteFile returns a tree where the file at p holds content, creating it
// if needed.
func (t *Tree) WriteFile(p Path, content string) (*Tree, error) {
	return t.Mutate(func(tx *Txn) error { return tx.WriteFile(p, content) })
}

// Delete returns a tree without the file or empty folder at p.
func (t *Tree) Delete(p Path) (*Tree, error) {
	return t.Mutate(func(tx *Txn) error { return tx.Delete(p) })
}

// Move returns a tree where src has been moved to dst.
func (t *Tree) Move(src, dst Path) (*Tree, error) {
	return t.Mutate(func(tx *Txn) error { return tx.Move(src, dst) })
}

// Copy returns a tree where src has been copied to dst.
func (t *Tree) Copy(src, dst Path) (*Tree, error) {
	return t.Mutate(func(tx *Txn) error { return tx.Copy(src, dst) })
}

// Upload stores content as a new file named name in dir. When the name is
// taken it picks stem(1).ext, stem(2).ext and so on. The chosen name is
// returned with the new tree.
func (t *Tree) Upload(dir Path, name, content string) (*Tree, string, error) {
	var chosen string
	next, err := t.Mutate(func(tx *Txn) error {
		var err error
		chosen, err = tx.Upload(dir, name, content)
		return err
	})
	return next, chosen, err
}

// MarshalJSON encodes the root folder.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.mustRoot())
}

// UnmarshalJSON decodes a root folder written by MarshalJSON.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return err
	}
	if !root.IsDir() {
		return fmt.Errorf("vfs: root must be a folder, got %s", root.kind)
	}
	t.root = &root
	return nil
}

// Txn is a working copy handed to Mutate callbacks. Every method replaces
// the working root with a path-copied version; nodes reachable from the
// original tree are never modified.
type Txn struct {
	root *Node
}

// Lookup returns the node at p in the working copy.
func (tx *Txn) Lookup(p Path) (*Node, error) {
	return lookup(tx.root, "lookup", p)
}

// Tree returns the working copy as a tree.
func (tx *Txn) Tree() *Tree {
	return &Tree{root: tx.root}
}

// CreateFile adds a file at p. The parent must be a folder and p must not
// exist.
func (tx *Txn) CreateFile(p Path, content string) error {
	return tx.create("create", p, NewFile(content))
}

// CreateFolder adds an empty folder at p.
func (tx *Txn) CreateFolder(p Path) error {
	return tx.create("mkdir", p, NewFolder(nil))
}

func (tx *Txn) create(op string, p Path, n *Node) error {
	if p.IsRoot() {
		return pathErr(op, p, ErrExists)
	}
	if err := ValidateName(p.Base()); err != nil {
		return pathErr(op, p, err)
	}
	if err := tx.parentFolder(op, p); err != nil {
		return err
	}
	if _, err := lookup(tx.root, op, p); err == nil {
		return pathErr(op, p, ErrExists)
	}
	return tx.put(op, p, n)
}

// WriteFile creates or overwrites the file at p.
func (tx *Txn) WriteFile(p Path, content string) error {
	const op = "write"
	if p.IsRoot() {
		return pathErr(op, p, ErrIsDir)
	}
	if err := ValidateName(p.Base()); err != nil {
		return pathErr(op, p, err)
	}
	if err := tx.parentFolder(op, p); err != nil {
		return err
	}
	if existing, err := lookup(tx.root, op, p); err == nil && existing.IsDir() {
		return pathErr(op, p, ErrIsDir)
	}
	return tx.put(op, p, NewFile(content))
}

// Delete removes the file or empty folder at p.
func (tx *Txn) Delete(p Path) error {
	const op = "remove"
	if p.IsRoot() {
		return pathErr(op, p, ErrInvalid)
	}
	n, err := lookup(tx.root, op, p)
	if err != nil {
		return err
	}
	if n.IsDir() && len(n.children) > 0 {
		return pathErr(op, p, ErrNotEmpty)
	}
	return tx.remove(op, p)
}

// Move relocates src to dst. If dst is an existing folder src is placed
// inside it under its own name.
func (tx *Txn) Move(src, dst Path) error {
	const op = "move"
	target, n, err := tx.placement(op, src, dst)
	if err != nil {
		return err
	}
	if err := tx.remove(op, src); err != nil {
		return err
	}
	return tx.put(op, target, n)
}

// Copy duplicates src at dst with the same placement rules as Move.
func (tx *Txn) Copy(src, dst Path) error {
	const op = "copy"
	target, n, err := tx.placement(op, src, dst)
	if err != nil {
		return err
	}
	// Nodes are immutable so the copy can share the source subtree.
	return tx.put(op, target, n)
}

// Upload stores a file in dir, renaming on collision, and returns the name
// it was stored under.
func (tx *Txn) Upload(dir Path, name, content string) (string, error) {
	const op = "upload"
	d, err := lookup(tx.root, op, dir)
	if err != nil {
		return "", err
	}
	if !d.IsDir() {
		return "", pathErr(op, dir, ErrNotDir)
	}
	if err := ValidateName(name); err != nil {
		return "", pathErr(op, dir.Join(name), err)
	}

	chosen := name
	stem, ext := SplitExt(name)
	for i := 1; ; i++ {
		if _, taken := d.children[chosen]; !taken {
			break
		}
		chosen = stem + "(" + strconv.Itoa(i) + ")" + ext
	}
	return chosen, tx.put(op, dir.Join(chosen), NewFile(content))
}

// placement resolves where src lands for a move or copy to dst.
func (tx *Txn) placement(op string, src, dst Path) (Path, *Node, error) {
	if src.IsRoot() {
		return nil, nil, pathErr(op, src, ErrInvalid)
	}
	n, err := lookup(tx.root, op, src)
	if err != nil {
		return nil, nil, err
	}

	target := dst
	if d, err := lookup(tx.root, op, dst); err == nil && d.IsDir() {
		target = dst.Join(src.Base())
	}
	if target.IsRoot() {
		return nil, nil, pathErr(op, dst, ErrExists)
	}
	if target.Equal(src) {
		return nil, nil, pathErr(op, src, ErrSameFile)
	}
	if n.IsDir() && target.HasPrefix(src) {
		return nil, nil, pathErr(op, target, ErrInvalid)
	}
	if err := tx.parentFolder(op, target); err != nil {
		return nil, nil, err
	}
	if existing, err := lookup(tx.root, op, target); err == nil {
		if existing.IsDir() || n.IsDir() {
			return nil, nil, pathErr(op, target, ErrExists)
		}
	}
	return target, n, nil
}

func (tx *Txn) parentFolder(op string, p Path) error {
	parent, err := lookup(tx.root, op, p.Dir())
	if err != nil {
		return err
	}
	if !parent.IsDir() {
		return pathErr(op, p.Dir(), ErrNotDir)
	}
	return nil
}

func (tx *Txn) put(op string, p Path, n *Node) error {
	root, err := put(tx.root, p, n)
	if err != nil {
		return pathErr(op, p, err)
	}
	tx.root = root
	return nil
}

func (tx *Txn) remove(op string, p Path) error {
	root, err := remove(tx.root, p)
	if err != nil {
		return pathErr(op, p, err)
	}
	tx.root = root
	return nil
}

func lookup(root *Node, op string, p Path) (*Node, error) {
	n := root
	for i, name := range p {
		if !n.IsDir() {
			return nil, pathErr(op, p[:i], ErrNotDir)
		}
		child, ok := n.children[name]
		if !ok {
			return nil, pathErr(op, p, ErrNotFound)
		}
		n = child
	}
	return n, nil
}

// put path-copies dir so that p is bound to n.
func put(dir *Node, p Path, n *Node) (*Node, error) {
	name := p[0]
	if len(p) == 1 {
		return dir.withChild(name, n), nil
	}
	child, ok := dir.children[name]
	if !ok {
		return nil, ErrNotFound
	}
	if !child.IsDir() {
		return nil, ErrNotDir
	}
	updated, err := put(child, p[1:], n)
	if err != nil {
		return nil, err
	}
	return dir.withChild(name, updated), nil
}

// remove path-copies dir without the node at p.
func remove(dir *Node, p Path) (*Node, error) {
	name := p[0]
	child, ok := dir.children[name]
	if !ok {
		return nil, ErrNotFound
	}
	if len(p) == 1 {
		return dir.withoutChild(name), nil
	}
	if !child.IsDir() {
		return nil, ErrNotDir
	}
	updated, err := remove(child, p[1:])
	if err != nil {
		return nil, err
	}
	return dir.withChild(name, updated), nil
}
