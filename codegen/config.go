package codegen

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// DefaultHeader is the comment written at the top of every generated file.
const DefaultHeader = "Code generated by strata. DO NOT EDIT."

// Config configures the entity writer.
type Config struct {
	// Package is the name of the generated package.
	Package string `yaml:"package"`
	// Target is the directory the files are written to.
	Target string `yaml:"target"`
	// Header replaces DefaultHeader.
	Header string `yaml:"header,omitempty"`
	// Workers bounds the number of files generated in parallel. It defaults
	// to GOMAXPROCS.
	Workers int `yaml:"workers,omitempty"`
	// ActiveModels enables the generation of the writable form of every
	// model.
	ActiveModels bool `yaml:"active_models"`
	// Tables restricts generation to the named tables. All tables are
	// generated when empty.
	Tables []string `yaml:"tables,omitempty"`
}

// Option configures code generation.
type Option func(*Config) error

// WithPackage sets the name of the generated package.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("Workers", n, "workers cannot be negative")
		}
		c.Workers = n
		return nil
	}
}

// WithActiveModels enables the generation of active models.
func WithActiveModels() Option {
	return func(c *Config) error {
		c.ActiveModels = true
		return nil
	}
}

// WithTables restricts generation to the given tables.
func WithTables(tables ...string) Option {
	return func(c *Config) error {
		c.Tables = append(c.Tables, tables...)
		return nil
	}
}

// NewConfig returns a configuration with the given options applied.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadConfig reads a YAML configuration file and applies the options on
// top of it.
//
//	package: bakery
//	target: ./bakery
//	active_models: true
func LoadConfig(path string, opts ...Option) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("codegen: read config: %w", err)
	}
	c := &Config{}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, fmt.Errorf("codegen: parse config %s: %w", path, err)
	}
	if err := c.apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	if c.Package == "" {
		c.Package = "model"
	}
	if c.Header == "" {
		c.Header = DefaultHeader
	}
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("codegen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("codegen: config error for %q: %s", e.Option, e.Message)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}
