package writer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestFSWriter_CreatesAndReplaces(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	w := &FSWriter{Root: root}
	ctx := context.Background()

	if err := w.Write(ctx, "src/main/App.java", []byte("one")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Write(ctx, "src/main/App.java", []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(root, "src", "main", "App.java"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "two" {
		t.Fatalf("content = %q, want two", b)
	}
	entries, err := os.ReadDir(filepath.Join(root, "src", "main"))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFSWriter_ExecutableModes(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	root := t.TempDir()
	w := &FSWriter{Root: root}
	if err := w.Write(context.Background(), "mvnw", []byte("#!/bin/sh\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Write(context.Background(), "README.md", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	st, err := os.Stat(filepath.Join(root, "mvnw"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm()&0o100 == 0 {
		t.Fatalf("mvnw not executable: %v", st.Mode())
	}
	st, err = os.Stat(filepath.Join(root, "README.md"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm()&0o100 != 0 {
		t.Fatalf("README.md executable: %v", st.Mode())
	}
}

func TestFSWriter_RejectsEscapes(t *testing.T) {
	t.Parallel()
	w := &FSWriter{Root: t.TempDir()}
	for _, rel := range []string{"../x", "/etc/passwd", "a/../../b", "", "."} {
		err := w.Write(context.Background(), rel, []byte("x"))
		if !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Write(%q) err = %v, want ErrOutsideRoot", rel, err)
		}
	}
}

func TestWriters_HonorCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, w := range []Writer{&FSWriter{Root: t.TempDir()}, NewMemoryWriter(), NewPlan()} {
		if err := w.Write(ctx, "a.txt", nil); !errors.Is(err, context.Canceled) {
			t.Errorf("%T: err = %v, want context.Canceled", w, err)
		}
	}
}

func TestMemoryWriter(t *testing.T) {
	t.Parallel()
	w := NewMemoryWriter()
	ctx := context.Background()
	content := []byte("b")
	_ = w.Write(ctx, "z/b.txt", content)
	_ = w.Write(ctx, "./a.txt", []byte("a"))
	content[0] = 'x'

	got := w.Paths()
	if len(got) != 2 || got[0] != "a.txt" || got[1] != "z/b.txt" {
		t.Fatalf("Paths = %v", got)
	}
	b, ok := w.File("z/b.txt")
	if !ok || string(b) != "b" {
		t.Fatalf("File = %q, %v", b, ok)
	}
}

func TestPlan(t *testing.T) {
	t.Parallel()
	p := NewPlan()
	ctx := context.Background()
	_ = p.Write(ctx, "scripts/run.sh", []byte("echo"))
	_ = p.Write(ctx, "go.mod", []byte("module x\n"))
	files := p.Files()
	if len(files) != 2 {
		t.Fatalf("planned %d files", len(files))
	}
	if files[0].RelPath != "go.mod" || files[0].Size != 9 || files[0].Mode != 0o644 {
		t.Fatalf("unexpected plan entry %+v", files[0])
	}
	if files[1].RelPath != "scripts/run.sh" || files[1].Mode != 0o755 {
		t.Fatalf("unexpected plan entry %+v", files[1])
	}
}
