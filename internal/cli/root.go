package cli

import (
	"github.com/spf13/cobra"

	"github.com/dpshade/pocket-notes/internal/service"
)

// NewRootCmd builds the command tree around app
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pocket-notes",
		Short: "Keep titled notes with subtopics in your terminal",
		Long: `pocket-notes keeps a collection of titled notes. Each note holds named
subtopics, tags from a fixed vocabulary, a highlight flag and optionally the
text extracted from a PDF or DOCX document.

Run without a command to open the interactive interface.`,
		Example: `  pocket-notes
  pocket-notes create --title "Morning run" --subtopic "Route=5k along the river" --tag fitness
  pocket-notes list --search run --highlight highlighted
  pocket-notes show 1 --format markdown
  pocket-notes copy 1 --subtopic 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.RunTUI == nil {
				return cmd.Help()
			}
			if err := app.setup(cmd.ErrOrStderr(), true); err != nil {
				return err
			}
			return app.RunTUI(cmd.Context(), app)
		},
	}

	if app.stdout != nil {
		rootCmd.SetOut(app.stdout)
	}
	if app.stderr != nil {
		rootCmd.SetErr(app.stderr)
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configFile, "config", "", "Config file (default <data-dir>/config.yaml)")
	flags.StringVar(&app.dataDir, "data-dir", "", "Data directory (default ~/.pocket-notes)")
	flags.StringVar(&app.backend, "backend", "", "Storage backend: file, sqlite or memory")
	flags.StringVar(&app.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "Show underlying causes of errors")

	rootCmd.AddGroup(
		&cobra.Group{ID: "notes", Title: "Note Commands:"},
		&cobra.Group{ID: "documents", Title: "Document Commands:"},
		&cobra.Group{ID: "info", Title: "Info Commands:"},
	)

	for _, cmd := range []*cobra.Command{
		newListCmd(app),
		newShowCmd(app),
		newCreateCmd(app),
		newEditCmd(app),
		newHighlightCmd(app),
		newCopyCmd(app),
		newExportCmd(app),
	} {
		cmd.GroupID = "notes"
		rootCmd.AddCommand(cmd)
	}

	extractCmd := newExtractCmd(app)
	extractCmd.GroupID = "documents"
	rootCmd.AddCommand(extractCmd)

	for _, cmd := range []*cobra.Command{
		newTagsCmd(app),
		newSuggestCmd(app),
		newConfigCmd(app),
		newVersionCmd(app),
	} {
		cmd.GroupID = "info"
		rootCmd.AddCommand(cmd)
	}

	return rootCmd
}

// loadService loads the app for a non-interactive command
func (a *App) loadService(cmd *cobra.Command) (*service.Service, error) {
	if err := a.setup(cmd.ErrOrStderr(), false); err != nil {
		return nil, err
	}
	return a.svc, nil
}
