package vfs

import (
	"reflect"
	"testing"
)

func TestListOrder(t *testing.T) {
	tree := New()
	for _, name := range []string{"zeta.txt", "Alpha.txt", "beta.txt"} {
		tree, _ = tree.CreateFile(Path{name}, "")
	}
	for _, name := range []string{"photos", "Archive"} {
		tree, _ = tree.CreateFolder(Path{name})
	}

	entries, err := tree.List(Root)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	expected := []string{"Archive", "photos", "Alpha.txt", "beta.txt", "zeta.txt"}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("List() = %v, expected %v", names, expected)
	}
	if !entries[0].IsDir() || entries[0].Type != "folder" {
		t.Errorf("first entry should be a folder: %+v", entries[0])
	}

	if _, err := tree.List(Path{"Alpha.txt"}); err == nil {
		t.Error("listing a file should fail")
	}
}

func TestGlob(t *testing.T) {
	tree := DefaultTree()
	docs := Path{"Documents"}

	tests := []struct {
		pattern  string
		expected []string
	}{
		{"*.py", []string{"hello.py"}},
		{"*.{py,js}", []string{"hello.py", "script.js"}},
		{"?elcome.txt", []string{"welcome.txt"}},
		{"*.none", nil},
	}

	for _, tt := range tests {
		got, err := tree.Glob(docs, tt.pattern)
		if err != nil {
			t.Errorf("Glob(%q) failed: %v", tt.pattern, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Glob(%q) = %v, expected %v", tt.pattern, got, tt.expected)
		}
	}
}

func TestExpand(t *testing.T) {
	tree := DefaultTree()
	cwd := Path{"Documents"}

	tests := []struct {
		arg      string
		cwd      Path
		expected []string
	}{
		{"*.md", cwd, []string{"project_plan.md"}},
		{"/Documents/*.txt", Root, []string{"/Documents/welcome.txt"}},
		{"../Documents/*.{py,js}", cwd, []string{"../Documents/hello.py", "../Documents/script.js"}},
		{"*.zip", cwd, []string{"*.zip"}},
		{"plain.txt", cwd, []string{"plain.txt"}},
	}

	for _, tt := range tests {
		if got := tree.Expand(tt.arg, tt.cwd); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Expand(%q) = %v, expected %v", tt.arg, got, tt.expected)
		}
	}
}

func TestDataURI(t *testing.T) {
	uri := DataURI("image/png", []byte{1, 2, 3})

	if !IsDataURI(uri) {
		t.Fatal("IsDataURI() = false")
	}
	if mt := DataURIMediaType(uri); mt != "image/png" {
		t.Errorf("DataURIMediaType() = %q", mt)
	}
	data, ok := DecodeDataURI(uri)
	if !ok || !reflect.DeepEqual(data, []byte{1, 2, 3}) {
		t.Errorf("DecodeDataURI() = %v, %v", data, ok)
	}
	if IsDataURI("plain text") {
		t.Error("plain text reported as data URI")
	}
}

func TestEncodeContent(t *testing.T) {
	if got := EncodeContent("notes.txt", []byte("héllo\n")); got != "héllo\n" {
		t.Errorf("text upload = %q", got)
	}

	got := EncodeContent("photo.PNG", []byte{0x89, 'P', 'N', 'G', 0})
	if mt := DataURIMediaType(got); mt != "image/png" {
		t.Errorf("media type = %q, expected image/png", mt)
	}

	got = EncodeContent("blob", []byte{0xff, 0xfe})
	if mt := DataURIMediaType(got); mt != "application/octet-stream" {
		t.Errorf("media type = %q, expected application/octet-stream", mt)
	}
}
