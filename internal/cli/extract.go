package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newExtractCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the text of a PDF or DOCX document",
		Long: `Print the text of a PDF or DOCX document. The format is taken from the file
extension and, failing that, sniffed from the content. Nothing is stored; use
"create --from-file" to keep the text with a note.`,
		Example: `  pocket-notes extract paper.pdf
  pocket-notes extract minutes.docx > minutes.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.loadService(cmd)
			if err != nil {
				return err
			}
			text, err := extractFile(cmd, svc, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(text, "\n"))
			return nil
		},
	}
}
