package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func tempRoot(t *testing.T) (string, *FS) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return dir, s
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestList_DefaultPatternRecursive(t *testing.T) {
	root, s := tempRoot(t)
	write(t, root, "a.md", "a")
	write(t, root, "sub/deeper/b.md", "b")
	write(t, root, "readme.txt", "not md")

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].RelPath != "a.md" || items[1].RelPath != "sub/deeper/b.md" {
		t.Errorf("paths = %q, %q", items[0].RelPath, items[1].RelPath)
	}
	if !filepath.IsAbs(items[0].Path) {
		t.Errorf("path %q is not absolute", items[0].Path)
	}
}

func TestList_CustomPattern(t *testing.T) {
	root, s := tempRoot(t)
	write(t, root, "notes/a.txt", "a")
	write(t, root, "notes/b.md", "b")
	write(t, root, "other/c.txt", "c")

	items, err := s.List("notes/*.txt")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].RelPath != "notes/a.txt" {
		t.Errorf("items = %+v", items)
	}
}

func TestList_SkipsHiddenDirs(t *testing.T) {
	root, s := tempRoot(t)
	write(t, root, ".git/x.md", "x")
	write(t, root, "node_modules/pkg/y.md", "y")
	write(t, root, "z.md", "z")

	items, err := s.List("**/*.md")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].RelPath != "z.md" {
		t.Errorf("items = %+v", items)
	}
}

func TestList_InvalidPattern(t *testing.T) {
	_, s := tempRoot(t)
	if _, err := s.List("[unclosed"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestRead(t *testing.T) {
	root, s := tempRoot(t)
	write(t, root, "sub/note.md", "# Hello\n")
	got, err := s.Read("sub/note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "# Hello\n" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("missing.md"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file err = %v, want ErrNotExist", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	_, s := tempRoot(t)
	for _, p := range []string{"../../etc/passwd", "../outside.md", "/etc/shadow"} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS("/tmp/seekr-does-not-exist-" + t.Name()); err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "seekr-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
