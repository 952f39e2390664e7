package classifier

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSplitUploadName(t *testing.T) {
	cases := []struct{ in, stem, ext string }{
		{"cat.JPG", "cat", "jpg"},
		{`C:\pics\dog.png`, "dog", "png"},
		{"a/b/c.tar.gif", "c.tar", "gif"},
		{"noext", "noext", ""},
		{".png", "", "png"},
		{"dir/", "", ""},
	}
	for _, c := range cases {
		stem, ext := splitUploadName(c.in)
		if stem != c.stem || ext != c.ext {
			t.Fatalf("%q: got (%q,%q) want (%q,%q)", c.in, stem, ext, c.stem, c.ext)
		}
	}
}

func TestFileStoreCreatesDirAndSaves(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if fs.Dir() != dir {
		t.Fatalf("dir %q", fs.Dir())
	}
	a, err := fs.Save("x.png", "png", []byte("abc"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if a.Stored != "x.png" || a.Original != "x.png" || a.Path != filepath.Join(dir, "x.png") {
		t.Fatalf("unexpected asset %+v", a)
	}
	b, err := fs.Save("x.png", "png", []byte("def"))
	if err != nil {
		t.Fatalf("save again: %v", err)
	}
	if b.Stored == a.Stored {
		t.Fatalf("collision overwrote %q", a.Stored)
	}
	got, _ := os.ReadFile(a.Path)
	if string(got) != "abc" {
		t.Fatalf("original clobbered: %q", got)
	}
}

func TestFileStoreRejectsEmptyDir(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Fatalf("expected error")
	}
}
