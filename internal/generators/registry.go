package generators

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mark3labs/swagger2code/internal/codegen"
	"github.com/mark3labs/swagger2code/internal/generators/goserver"
	"github.com/mark3labs/swagger2code/internal/generators/jaxrs"
	"github.com/mark3labs/swagger2code/internal/generators/spring"
)

// Registry stores plugins by generator id.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]codegen.Plugin
}

func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]codegen.Plugin)}
}

// Register adds a plugin by its ID(). Duplicate ids return an error.
func (r *Registry) Register(p codegen.Plugin) error {
	if p == nil {
		return fmt.Errorf("generators: plugin is required")
	}
	id := p.ID()
	if id == "" {
		return fmt.Errorf("generators: plugin id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.plugins[id]; exists {
		return fmt.Errorf("generators: plugin %q already registered", id)
	}
	r.plugins[id] = p
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(p codegen.Plugin) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Get returns the plugin registered as id. An unknown id is a ConfigError.
func (r *Registry) Get(id string) (codegen.Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[id]
	if !ok {
		return nil, &codegen.ConfigError{Generator: id, Reason: "unknown generator"}
	}
	return p, nil
}

// List returns the registered ids, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.plugins))
	for id := range r.plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.plugins[id]
	return ok
}

// NewConfig returns a fresh, CREATED config for the plugin id.
func (r *Registry) NewConfig(id string) (*codegen.Config, error) {
	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return codegen.NewConfig(p), nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry of built-in generators.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
		defaultReg.MustRegister(jaxrs.New())
		defaultReg.MustRegister(spring.New())
		defaultReg.MustRegister(goserver.New())
	})
	return defaultReg
}

// NewConfig is shorthand for Default().NewConfig(id).
func NewConfig(id string) (*codegen.Config, error) {
	return Default().NewConfig(id)
}
