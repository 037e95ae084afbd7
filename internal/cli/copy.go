package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dpshade/pocket-notes/internal/clipboard"
	"github.com/dpshade/pocket-notes/internal/renderer"
)

func newCopyCmd(app *App) *cobra.Command {
	var subtopic int

	cmd := &cobra.Command{
		Use:   "copy <ref>",
		Short: "Copy a note or one subtopic to the clipboard",
		Long: `Copy a note to the clipboard as plain text. With --subtopic only that
subtopic's description is copied.

When no clipboard is available the text is printed instead.`,
		Example: `  pocket-notes copy 1
  pocket-notes copy 1 --subtopic 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.loadService(cmd)
			if err != nil {
				return err
			}
			_, t, err := svc.Resolve(args[0])
			if err != nil {
				return err
			}

			r := renderer.NewRenderer(t)
			text := r.RenderText()
			if subtopic != 0 {
				if text, err = r.RenderSubtopic(subtopic - 1); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			msg, err := clipboard.CopyWithFallbackTo(app.Clipboard, text)
			if err != nil {
				// Copy failures are not fatal: show why and print the text.
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
				fmt.Fprint(out, text)
				return nil
			}
			fmt.Fprintln(out, msg)
			return nil
		},
	}

	cmd.Flags().IntVar(&subtopic, "subtopic", 0, "Copy only the description of this 1-based subtopic")
	return cmd
}
