package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !cfg.IncludeExperimental || cfg.IncludeDeprecated {
		t.Fatalf("stability defaults = %+v", cfg)
	}
}

func TestLoadTOMLOverlaysDefaults(t *testing.T) {
	path := write(t, "pdlgen.toml", `
include_experimental = false
package = "devtools"
inputs = ["a.pdl"]
revision = "1300000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.IncludeExperimental {
		t.Fatalf("include_experimental not applied")
	}
	if cfg.Package != "devtools" || cfg.Revision != "1300000" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Inputs, []string{"a.pdl"}) {
		t.Fatalf("inputs = %v", cfg.Inputs)
	}
	if cfg.OutputDirectory != "cdp" || cfg.LogLevel != "info" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "pdlgen.yaml", `
include_deprecated: true
output_directory: out/cdp
allowlist: cycles.yaml
log_level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.IncludeDeprecated || !cfg.IncludeExperimental {
		t.Fatalf("stability = %+v", cfg)
	}
	if cfg.OutputDirectory != "out/cdp" || cfg.AllowList != "cycles.yaml" || cfg.LogLevel != "debug" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	for _, tc := range []struct{ name, body string }{
		{"x.yaml", "pakage: cdp\n"},
		{"x.toml", "pakage = \"cdp\"\n"},
	} {
		_, err := Load(write(t, tc.name, tc.body))
		var ce *Error
		if !errors.As(err, &ce) {
			t.Fatalf("%s: err = %v, want *Error", tc.name, err)
		}
		if ce.Code() != "config_error" {
			t.Fatalf("code = %q", ce.Code())
		}
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		body  string
		field string
	}{
		{"package: 9lives\n", "package"},
		{"revision: \"12\"\n", "revision"},
		{"inputs: []\n", "inputs"},
		{"log_level: loud\n", "log_level"},
	}
	for _, tt := range tests {
		path := write(t, "c.yml", tt.body)
		_, err := Load(path)
		var ce *Error
		if !errors.As(err, &ce) || ce.Field != tt.field {
			t.Fatalf("%q: err = %v, want field %s", tt.body, err, tt.field)
		}
		if ce.Path != path || !strings.Contains(err.Error(), path) {
			t.Fatalf("path missing from %v", err)
		}
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	if _, err := Load(write(t, "c.json", "{}")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDecodeYAMLEmpty(t *testing.T) {
	cfg, err := DecodeYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("DecodeYAML() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("cfg = %+v", cfg)
	}
}
