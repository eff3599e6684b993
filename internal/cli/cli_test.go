package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reoring/pdlgen"
	"github.com/reoring/pdlgen/revision"
)

const sourceDir = "../../testdata"

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(append(args, "--log-level", "disabled"), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestGenerateWritesBindings(t *testing.T) {
	out := t.TempDir()
	code, stdout, stderr := run(t, "generate", "--source-dir", sourceDir, "--out", out)
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stdout, "5 domains") {
		t.Fatalf("stdout = %q", stdout)
	}
	src, err := os.ReadFile(filepath.Join(out, pdlgen.GeneratedFile))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(src, []byte("// Code generated by pdlgen. DO NOT EDIT.")) {
		t.Fatalf("unexpected file header")
	}
	m, err := revision.ReadMarker(filepath.Join(out, revision.MarkerFile))
	if err != nil || m.Revision.String() != "1300000" {
		t.Fatalf("marker = %+v, %v", m, err)
	}
}

func TestCheckDetectsStaleOutput(t *testing.T) {
	out := t.TempDir()
	if code, _, stderr := run(t, "generate", "-s", sourceDir, "-o", out); code != 0 {
		t.Fatalf("generate failed: %s", stderr)
	}
	if code, stdout, stderr := run(t, "check", "-s", sourceDir, "-o", out); code != 0 || !strings.Contains(stdout, "up to date") {
		t.Fatalf("fresh check: exit = %d, stdout = %q, stderr = %q", code, stdout, stderr)
	}

	path := filepath.Join(out, pdlgen.GeneratedFile)
	if err := os.WriteFile(path, []byte("package cdp\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, stderr := run(t, "check", "-s", sourceDir, "-o", out)
	if code != 1 || !strings.Contains(stderr, "generated code is out of date") {
		t.Fatalf("stale check: exit = %d, stderr = %q", code, stderr)
	}

	if code, _, _ := run(t, "check", "-s", sourceDir, "-o", out, "--update"); code != 1 {
		t.Fatalf("--update must still fail, exit = %d", code)
	}
	if code, _, stderr := run(t, "check", "-s", sourceDir, "-o", out); code != 0 {
		t.Fatalf("check after update: exit = %d, stderr = %q", code, stderr)
	}
}

func TestConfigFileAndLanguage(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pdlgen.toml")
	body := "source_dir = \"" + filepath.ToSlash(sourceDir) + "\"\n" +
		"output_directory = \"" + filepath.ToSlash(filepath.Join(dir, "out")) + "\"\n" +
		"metrics_file = \"" + filepath.ToSlash(filepath.Join(dir, "pdlgen.prom")) + "\"\n" +
		"package = \"devtools\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, stderr := run(t, "generate", "--config", cfgPath); code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr)
	}
	src, err := os.ReadFile(filepath.Join(dir, "out", pdlgen.GeneratedFile))
	if err != nil || !bytes.Contains(src, []byte("package devtools")) {
		t.Fatalf("generated file: %v", err)
	}
	prom, err := os.ReadFile(filepath.Join(dir, "pdlgen.prom"))
	if err != nil || !bytes.Contains(prom, []byte(`pdlgen_compiles_total{result="success"} 1`)) {
		t.Fatalf("metrics = %s, %v", prom, err)
	}

	code, _, stderr := run(t, "generate", "--config", cfgPath, "--package", "9x", "--lang", "ja")
	if code != 1 || !strings.Contains(stderr, "設定が不正です") {
		t.Fatalf("exit = %d, stderr = %q", code, stderr)
	}
}

func TestCompileErrorIsReported(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.pdl"), []byte("domain A\n  type X extends object\n    properties\n      B.Y y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, stderr := run(t, "generate", "-s", dir, "-o", filepath.Join(dir, "out"), "bad.pdl")
	if code != 1 || !strings.Contains(stderr, "unresolved reference") || !strings.Contains(stderr, "B.Y") {
		t.Fatalf("exit = %d, stderr = %q", code, stderr)
	}
}

func TestJSONSchemaCommand(t *testing.T) {
	code, stdout, stderr := run(t, "jsonschema", "-s", sourceDir)
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stdout, `"$defs"`) || !strings.Contains(stdout, `"DOM.Node"`) {
		t.Fatalf("stdout = %.200s", stdout)
	}
}

func TestRevisionCommand(t *testing.T) {
	code, stdout, _ := run(t, "revision", sourceDir)
	if code != 0 || strings.TrimSpace(stdout) != "revision 1300000 (protocol 1.3)" {
		t.Fatalf("exit = %d, stdout = %q", code, stdout)
	}
	if code, _, _ := run(t, "revision", sourceDir, "--runtime", "1400000"); code != 0 {
		t.Fatalf("newer runtime rejected")
	}
	code, _, stderr := run(t, "revision", sourceDir, "--runtime", "1200000")
	if code != 1 || !strings.Contains(stderr, "older than generated") {
		t.Fatalf("exit = %d, stderr = %q", code, stderr)
	}
}
