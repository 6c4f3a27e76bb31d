package cli

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envPrefix namespaces every environment variable the CLI reads.
const envPrefix = "SWAGGER2CODE_"

// Environment holds settings read from SWAGGER2CODE_* variables. They sit
// between the built-in defaults and the config file.
type Environment struct {
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	Parallelism int           `env:"PARALLELISM" envDefault:"0"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	TemplateDir string        `env:"TEMPLATE_DIR"`
}

func loadEnvironment() (Environment, error) {
	var e Environment
	if err := env.ParseWithOptions(&e, env.Options{Prefix: envPrefix}); err != nil {
		return Environment{}, newUsageError(fmt.Sprintf("environment: %v", err))
	}
	return e, nil
}
