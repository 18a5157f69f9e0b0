package vfs

import (
	"testing"
)

func TestResolvePath(t *testing.T) {
	cwd := Path{"Documents", "work"}

	tests := []struct {
		raw      string
		expected string
	}{
		{"", "/Documents/work"},
		{".", "/Documents/work"},
		{"..", "/Documents"},
		{"../..", "/"},
		{"../../../..", "/"},
		{"/", "/"},
		{"/System", "/System"},
		{"/System/../readme.md", "/readme.md"},
		{"notes.txt", "/Documents/work/notes.txt"},
		{"./a//b/", "/Documents/work/a/b"},
		{"a\\b", "/Documents/work/a/b"},
		{"/..", "/"},
	}

	for _, tt := range tests {
		if got := ResolvePath(tt.raw, cwd).String(); got != tt.expected {
			t.Errorf("ResolvePath(%q) = %q, expected %q", tt.raw, got, tt.expected)
		}
	}
}

func TestResolvePathDoesNotAliasCwd(t *testing.T) {
	cwd := make(Path, 1, 4)
	cwd[0] = "Documents"

	a := ResolvePath("a", cwd)
	b := ResolvePath("b", cwd)
	if a.String() != "/Documents/a" || b.String() != "/Documents/b" {
		t.Errorf("got %s and %s", a, b)
	}
	if cwd.String() != "/Documents" {
		t.Errorf("cwd was modified: %s", cwd)
	}
}

func TestResolveThenLookupIsIdempotent(t *testing.T) {
	tree := DefaultTree()
	inputs := []string{"Documents", "/Documents/../Pictures", "System/config.sys", "./readme.md", ".."}

	for _, raw := range inputs {
		p := ResolvePath(raw, Path{"Documents"})
		again := ResolvePath(p.String(), Path{"Pictures"})
		if !p.Equal(again) {
			t.Errorf("resolving %q twice gave %s then %s", raw, p, again)
		}

		n1, err1 := tree.Lookup(p)
		n2, err2 := tree.Lookup(again)
		if (err1 == nil) != (err2 == nil) || n1 != n2 {
			t.Errorf("lookup of %s not idempotent", p)
		}
	}
}

func TestPathHelpers(t *testing.T) {
	p := Path{"a", "b", "c"}

	if p.Base() != "c" {
		t.Errorf("Base() = %q", p.Base())
	}
	if p.Dir().String() != "/a/b" {
		t.Errorf("Dir() = %s", p.Dir())
	}
	if Root.Dir().String() != "/" {
		t.Errorf("Root.Dir() = %s", Root.Dir())
	}
	if !p.HasPrefix(Path{"a"}) || !p.HasPrefix(Root) || p.HasPrefix(Path{"b"}) {
		t.Error("HasPrefix returned wrong result")
	}
	if j := p.Join("d"); j.String() != "/a/b/c/d" || p.String() != "/a/b/c" {
		t.Errorf("Join() = %s, original %s", j, p)
	}
	if Clean("x/../y//z") != "/y/z" {
		t.Errorf("Clean() = %q", Clean("x/../y//z"))
	}
}

func TestExt(t *testing.T) {
	tests := []struct {
		name string
		ext  string
	}{
		{"hello.py", "py"},
		{"Index.HTML", "html"},
		{"archive.tar.gz", "gz"},
		{".profile", ""},
		{"Makefile", ""},
		{"trailing.", ""},
	}

	for _, tt := range tests {
		if got := Ext(tt.name); got != tt.ext {
			t.Errorf("Ext(%q) = %q, expected %q", tt.name, got, tt.ext)
		}
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"a", "file.txt", "with space", ".hidden"}
	invalid := []string{"", ".", "..", "a/b", "a\\b", "nul\x00"}

	for _, name := range valid {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v", name, err)
		}
	}
	for _, name := range invalid {
		if err := ValidateName(name); err == nil {
			t.Errorf("ValidateName(%q) should fail", name)
		}
	}
}
