package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dpshade/pocket-notes/internal/models"
	"github.com/dpshade/pocket-notes/internal/query"
	"github.com/dpshade/pocket-notes/internal/renderer"
	"github.com/dpshade/pocket-notes/internal/validation"
)

var listFormats = []string{"text", "table", "json"}

type listOptions struct {
	search    string
	highlight string
	tags      []string
	page      int
	pageSize  int
	format    string
}

func newListCmd(app *App) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, most recent first",
		Long: `List notes one page at a time, most recent first.

The search term matches titles case-insensitively. Every --tag given must be
present on a note for it to match. The number in front of each note can be
passed to show, edit, highlight and copy.`,
		Example: `  pocket-notes list
  pocket-notes list --search plan --tag fitness --tag exercise
  pocket-notes list --highlight highlighted --page 2 --page-size 5
  pocket-notes list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Match titles containing this term")
	cmd.Flags().StringVar(&opts.highlight, "highlight", string(query.HighlightAll), "Highlight filter: all, highlighted or non-highlighted")
	cmd.Flags().StringSliceVarP(&opts.tags, "tag", "t", nil, "Require this tag (repeatable)")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Notes per page (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, table or json")

	return cmd
}

func runList(cmd *cobra.Command, app *App, opts *listOptions) error {
	if err := checkOption("format", opts.format, listFormats); err != nil {
		return err
	}
	highlight, err := query.ParseHighlightFilter(opts.highlight)
	if err != nil {
		return checkOption("highlight", opts.highlight, highlightNames())
	}

	svc, err := app.loadService(cmd)
	if err != nil {
		return err
	}

	if result := svc.ValidateTags(opts.tags); !result.Valid {
		return result.ToAppError()
	}

	size := opts.pageSize
	if size == 0 {
		size = app.pageSize()
	}
	if result := validation.ValidatePageSize(size, nil); !result.Valid {
		return result.ToAppError()
	}

	spec := query.Spec{
		SearchTerm: opts.search,
		Highlight:  highlight,
		Tags:       opts.tags,
		Page:       opts.page,
		PageSize:   size,
	}
	result := svc.Query(spec)

	out := cmd.OutOrStdout()
	switch opts.format {
	case "json":
		return printListJSON(out, result)
	case "table":
		printListTable(out, result)
	default:
		printListText(out, result)
		if result.TotalItems == 0 && opts.search != "" {
			printSuggestions(out, svc.SuggestTitles(opts.search, 3))
		}
	}
	return nil
}

type listItemJSON struct {
	Position int `json:"position"`
	models.Template
}

type listJSON struct {
	Items       []listItemJSON `json:"items"`
	TotalItems  int            `json:"totalItems"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

func printListJSON(w io.Writer, result query.Result) error {
	doc := listJSON{
		Items:       make([]listItemJSON, 0, len(result.Items)),
		TotalItems:  result.TotalItems,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
	}
	for _, item := range result.Items {
		doc.Items = append(doc.Items, listItemJSON{Position: item.Index + 1, Template: item.Template})
	}
	text, err := renderer.ExportJSON(doc)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, text)
	return nil
}

func printListTable(w io.Writer, result query.Result) {
	fmt.Fprintf(w, "%-4s %-36s %-30s %-3s %s\n", "#", "ID", "Title", "HL", "Posted At")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, item := range result.Items {
		t := item.Template
		title := t.ListTitle()
		if runes := []rune(title); len(runes) > 30 {
			title = string(runes[:27]) + "..."
		}
		mark := ""
		if t.Highlighted {
			mark = "★"
		}
		fmt.Fprintf(w, "%-4d %-36s %-30s %-3s %s\n",
			item.Index+1, t.ID, title, mark, models.FormatPostedAt(t.CreatedAt))
	}
}

func printListText(w io.Writer, result query.Result) {
	if result.TotalItems == 0 {
		fmt.Fprintln(w, "No notes found.")
		return
	}

	for _, item := range result.Items {
		t := item.Template
		mark := " "
		if t.Highlighted {
			mark = "★"
		}
		fmt.Fprintf(w, "%3d. %s %s\n", item.Index+1, mark, t.ListTitle())
		if desc := t.ListDescription(); desc != "" {
			fmt.Fprintf(w, "       %s\n", desc)
		}
	}

	if len(result.Items) == 0 {
		fmt.Fprintf(w, "Page %d is past the last page.\n", result.CurrentPage)
	}
	fmt.Fprintf(w, "\nPage %d of %d (%d notes)\n", result.CurrentPage, result.TotalPages, result.TotalItems)
}

func printSuggestions(w io.Writer, suggestions []query.Suggestion) {
	if len(suggestions) == 0 {
		return
	}
	titles := make([]string, len(suggestions))
	for i, s := range suggestions {
		titles[i] = fmt.Sprintf("%q (#%d)", s.Title, s.Index+1)
	}
	fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(titles, ", "))
}

func highlightNames() []string {
	names := make([]string, len(query.HighlightFilters))
	for i, f := range query.HighlightFilters {
		names[i] = string(f)
	}
	return names
}

// checkOption returns an INVALID_INPUT error unless value is one of options
func checkOption(field, value string, options []string) error {
	if result := validation.ValidateOption(field, value, options); !result.Valid {
		return result.ToAppError()
	}
	return nil
}
