package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reoring/pdlgen"
	"github.com/reoring/pdlgen/revision"
)

// StaleError reports checked-in output that differs from a fresh run.
type StaleError struct {
	Dir   string
	Files []string
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s: %v differ from a fresh run; run pdlgen generate", e.Dir, e.Files)
}

func (e *StaleError) Code() string { return "stale_output" }

func checkCmd(a *app) *cobra.Command {
	var (
		flags  compileFlags
		update bool
	)

	c := &cobra.Command{
		Use:   "check [inputs...]",
		Short: "Fail when the generated files differ from a fresh compilation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd, a.cfg, args)
			if err != nil {
				return err
			}
			res, err := a.compile(cmd.Context(), cfg, "", flags.parallel)
			if err != nil {
				return err
			}
			stale, err := diffOutput(cfg.OutputDirectory, res)
			if err != nil {
				return err
			}
			if len(stale) == 0 {
				fmt.Fprintf(a.stdout, "%s is up to date\n", cfg.OutputDirectory)
				return nil
			}
			if update {
				if err := res.WriteFiles(cfg.OutputDirectory); err != nil {
					return err
				}
				a.log.Info().Str("dir", cfg.OutputDirectory).Strs("files", stale).Msg("stale output rewritten")
			}
			return &StaleError{Dir: cfg.OutputDirectory, Files: stale}
		},
	}
	flags.register(c)
	c.Flags().BoolVar(&update, "update", false, "rewrite stale files (the check still fails)")
	return c
}

// diffOutput lists the files in dir that are missing or differ from res.
func diffOutput(dir string, res *pdlgen.Result) ([]string, error) {
	marker, err := res.Marker().Encode()
	if err != nil {
		return nil, err
	}
	want := []struct {
		name string
		data []byte
	}{
		{pdlgen.GeneratedFile, res.Code},
		{revision.MarkerFile, marker},
	}
	var stale []string
	for _, w := range want {
		have, err := os.ReadFile(filepath.Join(dir, w.name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		if !bytes.Equal(have, w.data) {
			stale = append(stale, w.name)
		}
	}
	return stale, nil
}
