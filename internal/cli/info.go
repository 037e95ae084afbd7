package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTagsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tag vocabulary with usage counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.loadService(cmd)
			if err != nil {
				return err
			}

			counts := make(map[string]int)
			for _, t := range svc.List() {
				for _, tag := range t.Tags {
					counts[tag]++
				}
			}

			out := cmd.OutOrStdout()
			for _, tag := range svc.Vocabulary() {
				fmt.Fprintf(out, "%-12s %d\n", tag, counts[tag])
			}
			return nil
		},
	}
}

func newSuggestCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest <term>",
		Short: "Find note titles that fuzzily match a term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.loadService(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			suggestions := svc.SuggestTitles(args[0], limit)
			if len(suggestions) == 0 {
				fmt.Fprintln(out, "No similar titles.")
				return nil
			}
			for _, s := range suggestions {
				fmt.Fprintf(out, "%3d. %s\n", s.Index+1, s.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum number of suggestions")
	return cmd
}

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.loadService(cmd); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), app.cfg.String())
			return nil
		},
	}
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pocket-notes version %s\n", app.Version)
		},
	}
}
