package pdlgen

import (
	"errors"
	"sync"
	"time"

	"github.com/reoring/pdlgen/internal/diag"
	"github.com/reoring/pdlgen/internal/filter"
	"github.com/reoring/pdlgen/internal/gen"
	"github.com/reoring/pdlgen/internal/ir"
	"github.com/reoring/pdlgen/internal/merge"
	"github.com/reoring/pdlgen/internal/parser"
	"github.com/reoring/pdlgen/internal/resolve"
	"github.com/reoring/pdlgen/revision"
)

// Stage names passed to a StageHook.
const (
	StageParse    = "parse"
	StageMerge    = "merge"
	StageResolve  = "resolve"
	StageFilter   = "filter"
	StageGenerate = "generate"
)

// compile runs parse, merge, resolve, filter and generate. The first failing
// stage ends the run; no partial output is produced.
func (g *Generator) compile(inputs []Input, fetched revision.Revision) (*Result, error) {
	if len(inputs) == 0 {
		return nil, &ConfigError{Field: "inputs", Err: errors.New("no schema documents")}
	}
	rev, err := g.pinnedRevision(fetched)
	if err != nil {
		return nil, err
	}

	var (
		files    []*ir.File
		merged   *ir.Protocol
		res      *resolve.Resolution
		filtered *ir.Protocol
		code     []byte
	)
	err = g.stage(StageParse, func() (err error) {
		files, err = g.parse(inputs)
		return err
	})
	if err == nil {
		err = g.stage(StageMerge, func() (err error) {
			merged, err = merge.Merge(files)
			return err
		})
	}
	if err == nil {
		err = g.stage(StageResolve, func() (err error) {
			res, err = resolve.Resolve(merged, g.allow)
			return err
		})
	}
	if err == nil {
		err = g.stage(StageFilter, func() (err error) {
			filtered, err = filter.Apply(res.Protocol, filter.Options{
				IncludeExperimental: g.includeExperimental,
				IncludeDeprecated:   g.includeDeprecated,
			})
			return err
		})
	}
	if err == nil {
		err = g.stage(StageGenerate, func() (err error) {
			code, err = gen.Generate(res, filtered, gen.Options{Package: g.pkg, Revision: rev.String()})
			return err
		})
	}
	if err != nil {
		g.log.Error().Err(err).Str("code", CodeOf(err)).Int("errors", len(Errors(err))).Msg("compile failed")
		return nil, err
	}

	warnings := res.Warnings.List()
	for _, w := range warnings {
		g.log.Warn().Msg(w)
	}
	return &Result{
		Code:     code,
		Major:    filtered.Version.Major,
		Minor:    filtered.Version.Minor,
		Revision: rev,
		Stats:    countStats(filtered),
		Warnings: warnings,
		protocol: filtered,
	}, nil
}

func (g *Generator) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	took := time.Since(start)
	ev := g.log.Debug().Str("stage", name).Dur("took", took)
	if err != nil {
		ev = ev.Str("code", CodeOf(err))
	}
	ev.Msg("stage finished")
	if g.hook != nil {
		g.hook(name, took, err)
	}
	return err
}

// parse lexes and parses every input. Errors are reported in input order
// whether or not parsing ran in parallel.
func (g *Generator) parse(inputs []Input) ([]*ir.File, error) {
	files := make([]*ir.File, len(inputs))
	errs := make([]error, len(inputs))
	if g.parallel && len(inputs) > 1 {
		var wg sync.WaitGroup
		for i, in := range inputs {
			i, in := i, in
			wg.Add(1)
			go func() {
				defer wg.Done()
				files[i], errs[i] = parser.ParseText(in.Name, in.Text)
			}()
		}
		wg.Wait()
	} else {
		for i, in := range inputs {
			files[i], errs[i] = parser.ParseText(in.Name, in.Text)
		}
	}
	var list diag.List
	for _, err := range errs {
		if err != nil {
			list = append(list, err)
		}
	}
	return files, list.Err()
}
