package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reoring/pdlgen/revision"
)

func revisionCmd(a *app) *cobra.Command {
	var require string

	c := &cobra.Command{
		Use:   "revision [dir]",
		Short: "Print the revision marker of generated bindings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := a.cfg.OutputDirectory
			if len(args) == 1 {
				dir = args[0]
			}
			m, err := revision.ReadMarker(filepath.Join(dir, revision.MarkerFile))
			if err != nil {
				return err
			}
			rev := m.Revision.String()
			if rev == "" {
				rev = "unknown"
			}
			fmt.Fprintf(a.stdout, "revision %s (protocol %s.%s)\n", rev, m.Protocol.Major, m.Protocol.Minor)

			if require == "" {
				return nil
			}
			runtime, err := revision.Parse(require)
			if err != nil {
				return err
			}
			if !revision.AtLeast(runtime, m.Revision) {
				return fmt.Errorf("runtime revision %s is older than generated revision %s", runtime, m.Revision)
			}
			return nil
		},
	}
	c.Flags().StringVar(&require, "runtime", "", "fail unless this runtime revision is at least the generated one")
	return c
}
