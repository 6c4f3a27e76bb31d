package templates

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// ErrTemplateNotFound is returned when no layer provides a template.
var ErrTemplateNotFound = errors.New("template not found")

// Layer names reported by Lookup.
const (
	LayerOverride = "override"
	LayerBuiltin  = "builtin"
)

// Renderer renders templates looked up first in an optional override
// directory and then in each built-in layer, in order. It is safe for
// concurrent use.
type Renderer struct {
	mu       sync.RWMutex
	set      *pongo2.TemplateSet
	cache    map[string]*pongo2.Template
	override string
	layers   []fs.FS
}

type Option func(*Renderer)

// WithOverrideDir sets the directory checked before the built-in layers.
func WithOverrideDir(dir string) Option {
	return func(r *Renderer) { r.override = strings.TrimSpace(dir) }
}

var autoescapeOnce sync.Once

// New builds a renderer over the built-in layers, highest priority first.
func New(layers []fs.FS, opts ...Option) (*Renderer, error) {
	r := &Renderer{cache: map[string]*pongo2.Template{}}
	for _, opt := range opts {
		opt(r)
	}
	for _, l := range layers {
		if l != nil {
			r.layers = append(r.layers, l)
		}
	}

	var loaders []pongo2.TemplateLoader
	if r.override != "" {
		abs, err := filepath.Abs(r.override)
		if err != nil {
			return nil, fmt.Errorf("templates: resolve override dir: %w", err)
		}
		loader, err := pongo2.NewLocalFileSystemLoader(abs)
		if err != nil {
			return nil, fmt.Errorf("templates: override dir %s: %w", abs, err)
		}
		r.override = abs
		loaders = append(loaders, loader)
	}
	for _, l := range r.layers {
		loaders = append(loaders, pongo2.NewFSLoader(l))
	}
	if len(loaders) == 0 {
		return nil, errors.New("templates: no template layers")
	}

	// Generated output is source code, never HTML.
	autoescapeOnce.Do(func() { pongo2.SetAutoescape(false) })
	if err := registerFilters(); err != nil {
		return nil, err
	}
	r.set = pongo2.NewSet("swagger2code", loaders...)
	return r, nil
}

// Lookup reports which layer serves id: LayerOverride, or LayerBuiltin with
// the layer index.
func (r *Renderer) Lookup(id string) (layer string, index int, ok bool) {
	name := path.Clean(strings.TrimPrefix(id, "/"))
	if r.override != "" {
		if info, err := os.Stat(filepath.Join(r.override, filepath.FromSlash(name))); err == nil && !info.IsDir() {
			return LayerOverride, 0, true
		}
	}
	for i, l := range r.layers {
		if info, err := fs.Stat(l, name); err == nil && !info.IsDir() {
			return LayerBuiltin, i, true
		}
	}
	return "", 0, false
}

// Render executes template id with data.
func (r *Renderer) Render(id string, data map[string]any) (string, error) {
	if _, _, ok := r.Lookup(id); !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	tpl, err := r.template(id)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(pongo2.Context(data), &buf); err != nil {
		return "", fmt.Errorf("execute %s: %w", id, err)
	}
	return buf.String(), nil
}

func (r *Renderer) template(id string) (*pongo2.Template, error) {
	r.mu.RLock()
	tpl, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}
	tpl, err := r.set.FromFile(id)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	r.cache[id] = tpl
	return tpl, nil
}
