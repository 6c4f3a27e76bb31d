package writer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrOutsideRoot is returned for destinations that would land outside the
// output directory.
var ErrOutsideRoot = errors.New("destination escapes output root")

// Writer persists one generated file. rel is slash separated and relative to
// the writer's root.
type Writer interface {
	Write(ctx context.Context, rel string, content []byte) error
}

// PlannedFile describes a file a run wrote or intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Clean validates rel and returns its canonical slash form.
func Clean(rel string) (string, error) {
	p := path.Clean(strings.ReplaceAll(strings.TrimSpace(rel), "\\", "/"))
	if p == "." || p == "" || path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	return p, nil
}

// ModeFor returns the file mode a generated file is written with. Scripts and
// build wrappers are executable.
func ModeFor(rel string) os.FileMode {
	base := path.Base(rel)
	switch {
	case strings.HasSuffix(base, ".sh"), base == "gradlew", base == "mvnw":
		return 0o755
	default:
		return 0o644
	}
}

// FSWriter writes files below Root, replacing each destination atomically.
type FSWriter struct {
	Root string
}

func (w *FSWriter) Write(ctx context.Context, rel string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := Clean(rel)
	if err != nil {
		return err
	}
	root, err := filepath.Abs(w.Root)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	dst := filepath.Join(root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	return writeFileAtomic(dst, content, ModeFor(clean))
}

// writeFileAtomic writes to a temp file in the destination directory and
// renames it over dst, so readers never observe a partial file.
func writeFileAtomic(dst string, content []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", dst, err)
	}
	name := tmp.Name()
	cleanup := func() { _ = os.Remove(name) }
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp %s: %w", dst, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp %s: %w", dst, err)
	}
	if err := os.Chmod(name, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", dst, err)
	}
	if err := os.Rename(name, dst); err != nil {
		cleanup()
		return fmt.Errorf("rename %s: %w", dst, err)
	}
	return nil
}

// MemoryWriter captures writes in memory. It is safe for concurrent use.
type MemoryWriter struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{files: map[string][]byte{}}
}

func (w *MemoryWriter) Write(ctx context.Context, rel string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := Clean(rel)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files == nil {
		w.files = map[string][]byte{}
	}
	w.files[clean] = append([]byte(nil), content...)
	return nil
}

// File returns the captured content of rel.
func (w *MemoryWriter) File(rel string) ([]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.files[rel]
	return b, ok
}

// Paths lists the captured files, sorted.
func (w *MemoryWriter) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Plan records the files a run would write without writing anything.
type Plan struct {
	mu      sync.Mutex
	planned map[string]PlannedFile
}

func NewPlan() *Plan {
	return &Plan{planned: map[string]PlannedFile{}}
}

func (p *Plan) Write(ctx context.Context, rel string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := Clean(rel)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.planned == nil {
		p.planned = map[string]PlannedFile{}
	}
	p.planned[clean] = PlannedFile{RelPath: clean, Size: len(content), Mode: ModeFor(clean)}
	return nil
}

// Files returns the planned files in path order.
func (p *Plan) Files() []PlannedFile {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PlannedFile, 0, len(p.planned))
	for _, f := range p.planned {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out
}
