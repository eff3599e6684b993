package pdlgen

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/reoring/pdlgen/allowlist"
	"github.com/reoring/pdlgen/internal/ir"
	"github.com/reoring/pdlgen/jsonschema"
	"github.com/reoring/pdlgen/revision"
)

// GeneratedFile is the name of the Go file written by Result.WriteFiles.
const GeneratedFile = "cdp.go"

// Input is one schema document. The first input of a compilation is the
// primary document; its version header wins.
type Input struct {
	Name string
	Text string
}

// StageHook observes each pipeline stage after it finishes.
type StageHook func(stage string, took time.Duration, err error)

// Option configures a Generator.
type Option func(*Generator)

// WithExperimental keeps (true, the default) or prunes experimental items.
func WithExperimental(include bool) Option {
	return func(g *Generator) { g.includeExperimental = include }
}

// WithDeprecated keeps or prunes (false, the default) deprecated items.
func WithDeprecated(include bool) Option {
	return func(g *Generator) { g.includeDeprecated = include }
}

// WithOutDir makes CompileSources and CompileFiles write their output to dir.
// A failed write returns a nil Result.
func WithOutDir(dir string) Option {
	return func(g *Generator) { g.outDir = dir }
}

// WithAllowList replaces the default cycle allow-list. nil rejects every
// cycle.
func WithAllowList(l *allowlist.List) Option {
	return func(g *Generator) { g.allow = l }
}

// WithPackage sets the package clause of the generated file.
func WithPackage(name string) Option {
	return func(g *Generator) { g.pkg = name }
}

// WithRevision pins the schema revision, overriding the one a fetcher reports.
func WithRevision(rev string) Option {
	return func(g *Generator) { g.revision = rev }
}

// WithLogger sets the logger. Stages are logged at debug, warnings at warn.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// WithParallelParse lexes and parses inputs concurrently.
func WithParallelParse(enabled bool) Option {
	return func(g *Generator) { g.parallel = enabled }
}

// WithStageHook registers a hook called after every stage.
func WithStageHook(h StageHook) Option {
	return func(g *Generator) { g.hook = h }
}

// Stats counts what the generated file contains.
type Stats struct {
	Domains  int
	Types    int
	Commands int
	Events   int
}

func countStats(p *ir.Protocol) Stats {
	s := Stats{Domains: len(p.Domains)}
	for _, d := range p.Domains {
		s.Types += len(d.Types)
		s.Commands += len(d.Commands)
		s.Events += len(d.Events)
	}
	return s
}

// Result is a successful compilation.
type Result struct {
	// Code is the formatted Go source.
	Code []byte
	// Major and Minor come from the primary document's version header.
	Major, Minor string
	// Revision is zero when neither an option nor the fetcher supplied one.
	Revision revision.Revision
	Stats    Stats
	Warnings []string

	protocol *ir.Protocol
}

// Marker returns the revision marker describing r.
func (r *Result) Marker() revision.Marker {
	return revision.NewMarker(r.Revision, r.Major, r.Minor)
}

// WriteFiles writes GeneratedFile and the revision marker into dir,
// creating it when needed.
func (r *Result) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("pdlgen: create output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, GeneratedFile), r.Code, 0o644); err != nil {
		return fmt.Errorf("pdlgen: write %s: %w", GeneratedFile, err)
	}
	if err := revision.WriteMarker(filepath.Join(dir, revision.MarkerFile), r.Marker()); err != nil {
		return fmt.Errorf("pdlgen: %w", err)
	}
	return nil
}

// JSONSchema exports the compiled types as a JSON Schema document.
func (r *Result) JSONSchema() ([]byte, error) {
	return jsonschema.Marshal(jsonschema.Build(r.protocol))
}
