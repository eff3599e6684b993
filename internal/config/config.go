// Package config loads pdlgen settings from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/reoring/pdlgen/revision"
)

// Config is the complete set of generator settings.
type Config struct {
	IncludeExperimental bool     `yaml:"include_experimental" toml:"include_experimental"`
	IncludeDeprecated   bool     `yaml:"include_deprecated" toml:"include_deprecated"`
	OutputDirectory     string   `yaml:"output_directory" toml:"output_directory"`
	Package             string   `yaml:"package" toml:"package"`
	Revision            string   `yaml:"revision" toml:"revision"`
	AllowList           string   `yaml:"allowlist" toml:"allowlist"`
	SourceDir           string   `yaml:"source_dir" toml:"source_dir"`
	Inputs              []string `yaml:"inputs" toml:"inputs"`
	MetricsFile         string   `yaml:"metrics_file" toml:"metrics_file"`
	LogLevel            string   `yaml:"log_level" toml:"log_level"`
}

// Default returns the settings used when no file overrides them.
func Default() Config {
	return Config{
		IncludeExperimental: true,
		IncludeDeprecated:   false,
		OutputDirectory:     "cdp",
		Package:             "cdp",
		SourceDir:           ".",
		Inputs:              []string{"js_protocol.pdl", "browser_protocol.pdl"},
		LogLevel:            "info",
	}
}

// Error reports an unreadable file or an invalid value.
type Error struct {
	Path  string
	Field string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Path != "":
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
	case e.Path != "":
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Code() string { return "config_error" }

// Load reads path, choosing the format by extension (.toml, .yaml, .yml),
// overlays it on Default and validates the result.
func Load(path string) (Config, error) {
	var (
		cfg Config
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		cfg, err = loadTOML(path)
	case ".yaml", ".yml":
		cfg, err = loadYAML(path)
	default:
		return Config{}, &Error{Path: path, Err: errors.New("unknown format (want .toml, .yaml or .yml)")}
	}
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// DecodeYAML overlays a YAML document on Default. Unknown keys are errors.
func DecodeYAML(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &Error{Err: err}
	}
	return cfg, nil
}

func loadYAML(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}
	defer f.Close()
	cfg, err := DecodeYAML(f)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// loadTOML overlays the keys defined in the file on Default.
func loadTOML(path string) (Config, error) {
	cfg := Default()

	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, &Error{Path: path, Field: undecoded[0].String(), Err: errors.New("unknown key")}
	}

	if meta.IsDefined("include_experimental") {
		cfg.IncludeExperimental = raw.IncludeExperimental
	}
	if meta.IsDefined("include_deprecated") {
		cfg.IncludeDeprecated = raw.IncludeDeprecated
	}
	if meta.IsDefined("output_directory") {
		cfg.OutputDirectory = strings.TrimSpace(raw.OutputDirectory)
	}
	if meta.IsDefined("package") {
		cfg.Package = strings.TrimSpace(raw.Package)
	}
	if meta.IsDefined("revision") {
		cfg.Revision = strings.TrimSpace(raw.Revision)
	}
	if meta.IsDefined("allowlist") {
		cfg.AllowList = strings.TrimSpace(raw.AllowList)
	}
	if meta.IsDefined("source_dir") {
		cfg.SourceDir = strings.TrimSpace(raw.SourceDir)
	}
	if meta.IsDefined("inputs") {
		cfg.Inputs = raw.Inputs
	}
	if meta.IsDefined("metrics_file") {
		cfg.MetricsFile = strings.TrimSpace(raw.MetricsFile)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	return cfg, nil
}

var logLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true,
}

// Validate checks every field.
func (c Config) Validate() error {
	if !token.IsIdentifier(c.Package) {
		return &Error{Field: "package", Err: fmt.Errorf("%q is not a Go identifier", c.Package)}
	}
	if c.OutputDirectory == "" {
		return &Error{Field: "output_directory", Err: errors.New("must not be empty")}
	}
	if len(c.Inputs) == 0 {
		return &Error{Field: "inputs", Err: errors.New("at least one input is required")}
	}
	if c.Revision != "" {
		if _, err := revision.Parse(c.Revision); err != nil {
			return &Error{Field: "revision", Err: err}
		}
	}
	if !logLevels[strings.ToLower(c.LogLevel)] {
		return &Error{Field: "log_level", Err: fmt.Errorf("unknown level %q", c.LogLevel)}
	}
	return nil
}
