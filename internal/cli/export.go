package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dpshade/pocket-notes/internal/errors"
	"github.com/dpshade/pocket-notes/internal/renderer"
)

var exportFormats = []string{"json", "yaml"}

func newExportCmd(app *App) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every note as JSON or YAML",
		Example: `  pocket-notes export > notes.json
  pocket-notes export --format yaml --output notes.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOption("format", format, exportFormats); err != nil {
				return err
			}
			svc, err := app.loadService(cmd)
			if err != nil {
				return err
			}

			templates := svc.List()
			var text string
			if format == "yaml" {
				text, err = renderer.ExportYAML(templates)
			} else {
				text, err = renderer.ExportJSON(templates)
				text += "\n"
			}
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "export failed")
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}
			if err := os.WriteFile(output, []byte(text), 0644); err != nil {
				return errors.Wrap(err, errors.ErrCodeInvalidInput, "cannot write export file").WithContext("path", output)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d notes to %s\n", len(templates), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}
