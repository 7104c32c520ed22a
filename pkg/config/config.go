// Package config holds the static values the model compiler needs to
// identify and version an exported model.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config describes the model being built and how to reach the compile
// service. Values come from the environment; CLI flags may override them.
type Config struct {
	Locale         string        `env:"SPEECHCORPUS_LOCALE"          env-default:"en_US"`
	Identifier     string        `env:"SPEECHCORPUS_IDENTIFIER"      env-default:"com.example.speechmodel"`
	Version        string        `env:"SPEECHCORPUS_VERSION"         env-default:"1.0"`
	CompilerURL    string        `env:"SPEECHCORPUS_COMPILER_URL"    env-default:"http://localhost:8572"`
	CompileTimeout time.Duration `env:"SPEECHCORPUS_COMPILE_TIMEOUT" env-default:"5m"`
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment config: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields the compiler treats as mandatory.
func (c Config) Validate() error {
	if c.Locale == "" {
		return fmt.Errorf("locale must be non-empty")
	}
	if c.Identifier == "" {
		return fmt.Errorf("identifier must be non-empty")
	}
	if c.Version == "" {
		return fmt.Errorf("version must be non-empty")
	}
	return nil
}
