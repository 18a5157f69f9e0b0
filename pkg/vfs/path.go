package vfs

import (
	"strings"
)

// MaxNameLength is the maximum allowed length of a single path segment.
const MaxNameLength = 255

// Path is a resolved location in the tree, as the list of segment names
// leading from the root. The root itself is the empty path.
type Path []string

// Root is the path of the root folder.
var Root = Path{}

// String renders the path with `/` separators. The root renders as "/".
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	return "/" + strings.Join(p, "/")
}

// IsRoot reports whether p names the root folder.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Base returns the last segment of the path, or "" for the root.
func (p Path) Base() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Dir returns the parent path. The parent of the root is the root.
func (p Path) Dir() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p.clone()[:len(p)-1]
}

// Join returns a new path with the names appended. p is not modified.
func (p Path) Join(names ...string) Path {
	out := make(Path, 0, len(p)+len(names))
	out = append(out, p...)
	return append(out, names...)
}

// Equal reports whether both paths name the same location.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether q is p or one of its ancestors.
func (p Path) HasPrefix(q Path) bool {
	if len(q) > len(p) {
		return false
	}
	return p[:len(q)].Equal(q)
}

func (p Path) clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// ResolvePath resolves raw against the working directory cwd.
//
// Paths starting with `/` are absolute; anything else is relative to cwd.
// Both `/` and `\` separate segments, empty segments and `.` are skipped,
// and `..` removes the previous segment but never climbs above the root.
// The result never aliases cwd.
func ResolvePath(raw string, cwd Path) Path {
	var out Path
	if strings.HasPrefix(raw, "/") {
		out = Path{}
	} else {
		out = cwd.clone()
	}

	for _, part := range strings.Split(strings.ReplaceAll(raw, "\\", "/"), "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, part)
		}
	}
	return out
}

// Clean normalizes a path string to its absolute form.
func Clean(p string) string {
	return ResolvePath(p, nil).String()
}

// Ext returns the lower-cased extension of name without the dot, or "".
func Ext(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// SplitExt splits name into its stem and extension (including the dot).
// Dotfiles such as ".profile" have no extension.
func SplitExt(name string) (stem, ext string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

// ValidateName checks that name can be stored as a folder entry.
func ValidateName(name string) error {
	switch {
	case name == "" || name == "." || name == "..":
		return ErrInvalidName
	case len(name) > MaxNameLength:
		return ErrNameTooLong
	case strings.ContainsAny(name, "/\\\x00"):
		return ErrInvalidName
	}
	return nil
}
