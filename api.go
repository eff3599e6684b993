package pdlgen

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/reoring/pdlgen/allowlist"
	"github.com/reoring/pdlgen/revision"
	"github.com/reoring/pdlgen/source"
)

// Generator compiles schema documents into Go bindings. It holds no state
// between compilations and may be used concurrently.
type Generator struct {
	includeExperimental bool
	includeDeprecated   bool
	outDir              string
	allow               *allowlist.List
	pkg                 string
	revision            string
	log                 zerolog.Logger
	parallel            bool
	hook                StageHook
}

// New returns a Generator with the defaults: experimental items kept,
// deprecated items pruned, the built-in allow-list and package "cdp".
func New(opts ...Option) *Generator {
	g := &Generator{
		includeExperimental: true,
		allow:               allowlist.Default(),
		pkg:                 "cdp",
		log:                 zerolog.Nop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Compile is New(opts...).CompileSources(inputs).
func Compile(inputs []Input, opts ...Option) (*Result, error) {
	return New(opts...).CompileSources(inputs)
}

// CompileSources compiles in-memory documents.
func (g *Generator) CompileSources(inputs []Input) (*Result, error) {
	res, err := g.compile(inputs, 0)
	if err != nil {
		return nil, err
	}
	if err := g.write(res); err != nil {
		return nil, err
	}
	return res, nil
}

// CompileFiles fetches names and everything they include, then compiles
// them in fetch order. The fetcher's revision is used unless WithRevision
// pinned one.
func (g *Generator) CompileFiles(ctx context.Context, f source.Fetcher, names ...string) (*Result, error) {
	docs, err := source.Expand(ctx, f, names...)
	if err != nil {
		return nil, fmt.Errorf("pdlgen: fetch: %w", err)
	}
	rev, err := f.Revision(ctx)
	if err != nil {
		return nil, fmt.Errorf("pdlgen: revision: %w", err)
	}
	inputs := make([]Input, len(docs))
	for i, d := range docs {
		inputs[i] = Input{Name: d.Name, Text: string(d.Text)}
	}
	res, err := g.compile(inputs, rev)
	if err != nil {
		return nil, err
	}
	if err := g.write(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (g *Generator) write(res *Result) error {
	if g.outDir == "" {
		return nil
	}
	if err := res.WriteFiles(g.outDir); err != nil {
		return err
	}
	g.log.Info().Str("dir", g.outDir).Int("domains", res.Stats.Domains).Msg("bindings written")
	return nil
}

// pinnedRevision resolves WithRevision against the fetcher's revision.
func (g *Generator) pinnedRevision(fetched revision.Revision) (revision.Revision, error) {
	if g.revision == "" {
		return fetched, nil
	}
	rev, err := revision.Parse(g.revision)
	if err != nil {
		return 0, &ConfigError{Field: "revision", Err: err}
	}
	return rev, nil
}
