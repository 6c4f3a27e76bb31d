package codegen

import (
	"io/fs"
	"sync"

	"github.com/mark3labs/swagger2code/internal/spec"
)

// Plugin is the contract every target language or framework implements.
// Plugins hold no per-run state; one Plugin value may serve many runs.
type Plugin interface {
	ID() string
	Description() string
	// Templates returns the built-in template layers, highest priority first.
	Templates() []fs.FS
	// ProcessOptions derives the run settings from opts. It must be a pure
	// function of opts.
	ProcessOptions(opts Options) (Settings, error)
	// Preprocess may normalize the run's private copy of the document.
	Preprocess(doc *spec.Document, s Settings) error
	ModelPath(m *Model, s Settings) string
	APIPath(g *OperationGroup, s Settings) string
}

// PostProcessor is implemented by plugins that rewrite rendered output, such
// as formatting generated source.
type PostProcessor interface {
	PostProcess(path string, content []byte) ([]byte, error)
}

type State int

const (
	StateCreated State = iota
	StateConfigured
	StatePreprocessed
	StateBuilding
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateConfigured:
		return "CONFIGURED"
	case StatePreprocessed:
		return "PREPROCESSED"
	case StateBuilding:
		return "BUILDING"
	case StateRendered:
		return "RENDERED"
	default:
		return "UNKNOWN"
	}
}

// Config binds one plugin to one run and enforces the lifecycle
// CREATED -> CONFIGURED -> PREPROCESSED -> BUILDING -> RENDERED.
type Config struct {
	mu       sync.Mutex
	plugin   Plugin
	state    State
	options  Options
	settings Settings
}

func NewConfig(p Plugin) *Config {
	return &Config{plugin: p, options: Options{}}
}

func (c *Config) Plugin() Plugin { return c.plugin }
func (c *Config) ID() string     { return c.plugin.ID() }

func (c *Config) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetOption seeds one option. Options are frozen once ProcessOptions ran.
func (c *Config) SetOption(key string, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCreated {
		return &StateError{Op: "SetOption", State: c.state}
	}
	c.options.Set(key, v)
	return nil
}

// SetOptions seeds every entry of opts.
func (c *Config) SetOptions(opts Options) error {
	for _, k := range opts.Keys() {
		if err := c.SetOption(k, opts[k]); err != nil {
			return err
		}
	}
	return nil
}

// Options returns a copy of the seeded options.
func (c *Config) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.options.Clone()
}

// ProcessOptions finalizes the settings. It may be repeated while the
// config is CONFIGURED; each call recomputes from the seeded options.
func (c *Config) ProcessOptions() (Settings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCreated && c.state != StateConfigured {
		return Settings{}, &StateError{Op: "ProcessOptions", State: c.state}
	}
	s, err := c.plugin.ProcessOptions(c.options.Clone())
	if err != nil {
		return Settings{}, err
	}
	c.settings = s
	c.state = StateConfigured
	return s.Clone(), nil
}

// Preprocess runs the plugin hook on doc, which must be the run's own copy.
func (c *Config) Preprocess(doc *spec.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConfigured {
		return &StateError{Op: "Preprocess", State: c.state}
	}
	if err := c.plugin.Preprocess(doc, c.settings.Clone()); err != nil {
		return err
	}
	c.state = StatePreprocessed
	return nil
}

// BeginBuild moves a preprocessed config to BUILDING.
func (c *Config) BeginBuild() error { return c.advance("BeginBuild", StatePreprocessed, StateBuilding) }

// FinishRender moves a building config to RENDERED.
func (c *Config) FinishRender() error { return c.advance("FinishRender", StateBuilding, StateRendered) }

func (c *Config) advance(op string, from, to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != from {
		return &StateError{Op: op, State: c.state}
	}
	c.state = to
	return nil
}

// Settings returns a copy of the finalized settings. Before ProcessOptions it
// returns the zero value.
func (c *Config) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings.Clone()
}

// Reset returns the config to CREATED, keeping the seeded options, so the
// same instance can drive another run.
func (c *Config) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateCreated
	c.settings = Settings{}
}
