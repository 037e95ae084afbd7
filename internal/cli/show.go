package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dpshade/pocket-notes/internal/renderer"
)

var showFormats = []string{"text", "markdown", "json"}

const defaultWrapWidth = 80

func newShowCmd(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <ref>",
		Short: "Show one note",
		Long: `Show one note. The reference is a note id, an unambiguous id prefix or the
position printed by list.

Markdown output is styled when stdout is a terminal.`,
		Example: `  pocket-notes show 1
  pocket-notes show 3f2a --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOption("format", format, showFormats); err != nil {
				return err
			}
			svc, err := app.loadService(cmd)
			if err != nil {
				return err
			}
			_, t, err := svc.Resolve(args[0])
			if err != nil {
				return err
			}

			r := renderer.NewRenderer(t)
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				text, err := r.RenderJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, text)
			case "text":
				fmt.Fprint(out, r.RenderText())
			default:
				if width, ok := terminalWidth(out); ok {
					styled, err := r.RenderStyled(app.darkTheme(), width)
					if err != nil {
						return err
					}
					fmt.Fprint(out, styled)
					return nil
				}
				fmt.Fprint(out, r.RenderMarkdown())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format: text, markdown or json")
	return cmd
}

// terminalWidth reports the wrap width of w when it is a terminal
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWrapWidth, true
	}
	return min(width, 120), true
}
