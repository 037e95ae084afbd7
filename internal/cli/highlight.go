package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHighlightCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "highlight <ref>",
		Short: "Toggle the highlight flag of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.loadService(cmd)
			if err != nil {
				return err
			}
			index, t, err := svc.Resolve(args[0])
			if err != nil {
				return err
			}
			updated, err := svc.ToggleHighlightByID(t.ID)
			if err != nil {
				return err
			}

			state := "no longer highlighted"
			if updated.Highlighted {
				state = "highlighted"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note #%d %q is %s\n", index+1, updated.Title, state)
			return nil
		},
	}
}
