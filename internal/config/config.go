// Package config loads fieldgraph settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Schema    Schema    `yaml:"schema"`
	Server    Server    `yaml:"server"`
	Runtime   Runtime   `yaml:"runtime"`
	Telemetry Telemetry `yaml:"telemetry"`
	Log       Log       `yaml:"log"`
}

// Schema holds schema construction and execution settings.
type Schema struct {
	AutoCamelCase bool `yaml:"auto_camel_case"`
	// RelayMaxResults caps the page size of connection fields.
	RelayMaxResults         int      `yaml:"relay_max_results"`
	DisableFieldSuggestions bool     `yaml:"disable_field_suggestions"`
	MaxTokens               int      `yaml:"max_tokens"`
	Batching                Batching `yaml:"batching"`
	// Introspection serves __schema and __type.
	Introspection bool `yaml:"introspection"`
}

type Batching struct {
	Enabled       bool `yaml:"enabled"`
	MaxOperations int  `yaml:"max_operations"`
}

type Server struct {
	Addr           string        `yaml:"addr"`
	Path           string        `yaml:"path"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	Pretty         bool          `yaml:"pretty"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	ForwardHeaders []string      `yaml:"forward_headers"`
}

type Runtime struct {
	// Concurrency bounds resolvers running at once per batch. Zero means
	// GOMAXPROCS.
	Concurrency int `yaml:"concurrency"`
}

// Telemetry configures trace export. An empty endpoint disables it.
type Telemetry struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used for anything a file leaves out.
func Default() Config {
	return Config{
		Schema: Schema{
			AutoCamelCase:   true,
			RelayMaxResults: 100,
			Batching:        Batching{MaxOperations: 10},
			Introspection:   true,
		},
		Server: Server{
			Addr:         ":8080",
			Path:         "/graphql",
			Timeout:      10 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Telemetry: Telemetry{ServiceName: "fieldgraph"},
		Log:       Log{Level: "info", Format: "text"},
	}
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Schema.RelayMaxResults < 1 {
		errs = append(errs, errors.New("schema.relay_max_results must be positive"))
	}
	if c.Schema.MaxTokens < 0 {
		errs = append(errs, errors.New("schema.max_tokens must not be negative"))
	}
	if c.Schema.Batching.Enabled && c.Schema.Batching.MaxOperations < 1 {
		errs = append(errs, errors.New("schema.batching.max_operations must be positive when batching is enabled"))
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		errs = append(errs, fmt.Errorf("server.path %q must start with /", c.Server.Path))
	}
	if c.Runtime.Concurrency < 0 {
		errs = append(errs, errors.New("runtime.concurrency must not be negative"))
	}
	if _, err := c.Log.level(); err != nil {
		errs = append(errs, err)
	}
	if f := c.Log.Format; f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", f))
	}
	return errors.Join(errs...)
}

func (l Log) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// NewLogger returns a logger writing to w.
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := l.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
