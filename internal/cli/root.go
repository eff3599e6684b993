// Package cli implements the pdlgen command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/pdlgen"
	"github.com/reoring/pdlgen/i18n"
	"github.com/reoring/pdlgen/internal/config"
	"github.com/reoring/pdlgen/internal/logging"
	"github.com/reoring/pdlgen/internal/metrics"
)

// Execute runs the command line with the process arguments and exits.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes args and returns the exit status.
func Run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		report(stderr, err)
		return 1
	}
	return 0
}

// app is the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logJSON    bool
	lang       string

	cfg     config.Config
	log     zerolog.Logger
	metrics *metrics.Recorder

	stdout, stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, log: logging.Nop()}

	cmd := &cobra.Command{
		Use:           "pdlgen",
		Short:         "Compile protocol-definition (PDL) files into Go bindings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error or disabled")
	pf.BoolVar(&a.logJSON, "log-json", false, "log JSON lines instead of console output")
	pf.StringVar(&a.lang, "lang", "en", "language of error headlines (en, ja)")

	cmd.AddCommand(generateCmd(a), checkCmd(a), jsonschemaCmd(a), revisionCmd(a))
	return cmd
}

func (a *app) setup() error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		return &config.Error{Field: "log_level", Err: fmt.Errorf("unknown level %q", cfg.LogLevel)}
	}

	a.cfg = cfg
	a.log = logging.New("pdlgen", logging.Config{Level: level, JSON: a.logJSON}, a.stderr)
	a.metrics = metrics.New()
	i18n.SetLanguage(a.lang)
	return nil
}

// report prints one localized headline per error followed by its detail.
func report(w io.Writer, err error) {
	for _, e := range pdlgen.Errors(err) {
		code := pdlgen.CodeOf(e)
		if code == "" {
			fmt.Fprintf(w, "pdlgen: %v\n", e)
			continue
		}
		fmt.Fprintf(w, "pdlgen: %s\n  %v\n", i18n.T(code, nil), e)
	}
}
