package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reoring/pdlgen"
	"github.com/reoring/pdlgen/allowlist"
	"github.com/reoring/pdlgen/internal/config"
	"github.com/reoring/pdlgen/internal/metrics"
	"github.com/reoring/pdlgen/source"
)

// compileFlags are the flags shared by every command that compiles.
// Flags given on the command line override the config file.
type compileFlags struct {
	sourceDir    string
	outDir       string
	allowList    string
	pkg          string
	revision     string
	metricsFile  string
	experimental bool
	deprecated   bool
	parallel     bool
}

func (f *compileFlags) register(c *cobra.Command) {
	fs := c.Flags()
	fs.StringVarP(&f.sourceDir, "source-dir", "s", "", "directory holding the schema files")
	fs.StringVarP(&f.outDir, "out", "o", "", "output directory")
	fs.StringVar(&f.allowList, "allowlist", "", "YAML file replacing the built-in cycle allow-list")
	fs.StringVar(&f.pkg, "package", "", "package name of the generated file")
	fs.StringVar(&f.revision, "revision", "", "schema revision recorded in the output")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus textfile metrics here")
	fs.BoolVar(&f.experimental, "experimental", true, "keep experimental items")
	fs.BoolVar(&f.deprecated, "deprecated", false, "keep deprecated items")
	fs.BoolVar(&f.parallel, "parallel", false, "parse input files concurrently")
}

// resolve overlays changed flags and positional inputs on base.
func (f *compileFlags) resolve(c *cobra.Command, base config.Config, args []string) (config.Config, error) {
	cfg := base
	changed := c.Flags().Changed
	if changed("source-dir") {
		cfg.SourceDir = f.sourceDir
	}
	if changed("out") {
		cfg.OutputDirectory = f.outDir
	}
	if changed("allowlist") {
		cfg.AllowList = f.allowList
	}
	if changed("package") {
		cfg.Package = f.pkg
	}
	if changed("revision") {
		cfg.Revision = f.revision
	}
	if changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	if changed("experimental") {
		cfg.IncludeExperimental = f.experimental
	}
	if changed("deprecated") {
		cfg.IncludeDeprecated = f.deprecated
	}
	if len(args) > 0 {
		cfg.Inputs = args
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// compile runs the compiler over cfg. Output is written to outDir unless
// it is empty.
func (a *app) compile(ctx context.Context, cfg config.Config, outDir string, parallel bool) (*pdlgen.Result, error) {
	allow := allowlist.Default()
	if cfg.AllowList != "" {
		l, err := allowlist.LoadFile(cfg.AllowList)
		if err != nil {
			return nil, &config.Error{Field: "allowlist", Err: err}
		}
		allow = l
	}
	opts := []pdlgen.Option{
		pdlgen.WithExperimental(cfg.IncludeExperimental),
		pdlgen.WithDeprecated(cfg.IncludeDeprecated),
		pdlgen.WithAllowList(allow),
		pdlgen.WithPackage(cfg.Package),
		pdlgen.WithRevision(cfg.Revision),
		pdlgen.WithLogger(a.log),
		pdlgen.WithParallelParse(parallel),
		pdlgen.WithStageHook(a.metrics.ObserveStage),
	}
	if outDir != "" {
		opts = append(opts, pdlgen.WithOutDir(outDir))
	}
	res, err := pdlgen.New(opts...).CompileFiles(ctx, source.Dir{Root: cfg.SourceDir}, cfg.Inputs...)
	a.record(cfg, res, err)
	return res, err
}

func (a *app) record(cfg config.Config, res *pdlgen.Result, err error) {
	var c metrics.Counts
	if res != nil {
		c = metrics.Counts{
			Domains:  res.Stats.Domains,
			Types:    res.Stats.Types,
			Commands: res.Stats.Commands,
			Events:   res.Stats.Events,
			Warnings: len(res.Warnings),
		}
	}
	a.metrics.RecordCompile(c, err)
	if cfg.MetricsFile == "" {
		return
	}
	if werr := a.metrics.WriteTextfile(cfg.MetricsFile); werr != nil {
		a.log.Warn().Err(werr).Str("path", cfg.MetricsFile).Msg("write metrics")
	}
}

func generateCmd(a *app) *cobra.Command {
	var flags compileFlags

	c := &cobra.Command{
		Use:   "generate [inputs...]",
		Short: "Compile schema files and write Go bindings and the revision marker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd, a.cfg, args)
			if err != nil {
				return err
			}
			res, err := a.compile(cmd.Context(), cfg, cfg.OutputDirectory, flags.parallel)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "wrote %s (%d domains, %d types, %d commands, %d events)\n",
				filepath.Join(cfg.OutputDirectory, pdlgen.GeneratedFile),
				res.Stats.Domains, res.Stats.Types, res.Stats.Commands, res.Stats.Events)
			return nil
		},
	}
	flags.register(c)
	return c
}
