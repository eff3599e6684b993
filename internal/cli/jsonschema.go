package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func jsonschemaCmd(a *app) *cobra.Command {
	var (
		flags compileFlags
		out   string
	)

	c := &cobra.Command{
		Use:   "jsonschema [inputs...]",
		Short: "Export the compiled types as a JSON Schema document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd, a.cfg, args)
			if err != nil {
				return err
			}
			res, err := a.compile(cmd.Context(), cfg, "", flags.parallel)
			if err != nil {
				return err
			}
			doc, err := res.JSONSchema()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = a.stdout.Write(doc)
				return err
			}
			return os.WriteFile(out, doc, 0o644)
		},
	}
	flags.register(c)
	c.Flags().StringVar(&out, "schema-out", "", "write the document to this file instead of stdout")
	return c
}
