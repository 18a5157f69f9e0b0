package vfs

import (
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Entry describes one child of a folder.
type Entry struct {
	Name string `json:"name"`
	Kind Kind   `json:"-"`
	Type string `json:"type"`
	Size int    `json:"size"`
}

// IsDir reports whether the entry is a folder.
func (e Entry) IsDir() bool { return e.Kind == KindFolder }

// List returns the children of the folder at p, folders first and then by
// name using locale-aware collation.
func (t *Tree) List(p Path) ([]Entry, error) {
	n, err := lookup(t.mustRoot(), "list", p)
	if err != nil {
		return nil, err
	}
	if !n.IsDir() {
		return nil, pathErr("list", p, ErrNotDir)
	}

	entries := make([]Entry, 0, len(n.children))
	for name, child := range n.children {
		entries = append(entries, Entry{
			Name: name,
			Kind: child.kind,
			Type: child.kind.String(),
			Size: child.Size(),
		})
	}
	SortEntries(entries)
	return entries, nil
}

// SortEntries orders entries folders first, then by collated name.
func SortEntries(entries []Entry) {
	// Collators keep internal buffers and are not safe for concurrent use.
	c := collate.New(language.Und)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		if r := c.CompareString(a.Name, b.Name); r != 0 {
			return r < 0
		}
		return a.Name < b.Name
	})
}

// HasMeta reports whether s contains glob metacharacters.
func HasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// Glob returns the names in the folder at dir that match pattern, in byte
// order. A malformed pattern is reported as an error.
func (t *Tree) Glob(dir Path, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, pathErr("glob", dir.Join(pattern), ErrInvalid)
	}
	n, err := lookup(t.mustRoot(), "glob", dir)
	if err != nil {
		return nil, err
	}
	if !n.IsDir() {
		return nil, pathErr("glob", dir, ErrNotDir)
	}

	var matches []string
	for _, name := range n.Names() {
		// Hidden entries only match patterns that name the dot explicitly.
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(pattern, ".") {
			continue
		}
		if g.Match(name) {
			matches = append(matches, name)
		}
	}
	return matches, nil
}

// Expand resolves a shell argument against cwd. When the last segment of
// arg holds glob metacharacters it expands to every matching entry, keeping
// the directory part of arg as written; otherwise, or when nothing matches,
// arg is returned unchanged.
func (t *Tree) Expand(arg string, cwd Path) []string {
	i := strings.LastIndexAny(arg, "/\\")
	dirPart, pattern := arg[:i+1], arg[i+1:]
	if !HasMeta(pattern) {
		return []string{arg}
	}
	names, err := t.Glob(ResolvePath(dirPart, cwd), pattern)
	if err != nil || len(names) == 0 {
		return []string{arg}
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, dirPart+name)
	}
	return out
}
