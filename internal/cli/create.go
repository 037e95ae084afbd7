package cli

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dpshade/pocket-notes/internal/errors"
	"github.com/dpshade/pocket-notes/internal/models"
	"github.com/dpshade/pocket-notes/internal/service"
)

// draftFlags are the note fields shared by create and edit
type draftFlags struct {
	title      string
	subtopics  []string
	tags       []string
	parsedText string
	fromFile   string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Note title")
	cmd.Flags().StringArrayVar(&f.subtopics, "subtopic", nil, "Subtopic as name=description (repeatable)")
	cmd.Flags().StringSliceVarP(&f.tags, "tag", "t", nil, "Tag from the vocabulary (repeatable)")
	cmd.Flags().StringVar(&f.parsedText, "parsed-text", "", "Free text stored with the note")
	cmd.Flags().StringVar(&f.fromFile, "from-file", "", "Extract the parsed text from a PDF or DOCX file")
	cmd.MarkFlagsMutuallyExclusive("parsed-text", "from-file")
}

func newCreateCmd(app *App) *cobra.Command {
	flags := &draftFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		Long: `Create a note and put it first in the collection.

A note needs a title and at least one subtopic; every subtopic needs both a
name and a description. Tags must come from the configured vocabulary (see
"pocket-notes tags").`,
		Example: `  pocket-notes create --title "Training plan" \
    --subtopic "Monday=Intervals, 6x400m" \
    --subtopic "Thursday=Long run, 12k" \
    --tag fitness --tag exercise
  pocket-notes create --title "Lab results" --subtopic "Summary=Iron is low" --from-file paper.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.loadService(cmd)
			if err != nil {
				return err
			}

			subtopics, err := parseSubtopics(flags.subtopics)
			if err != nil {
				return err
			}
			draft := models.Draft{
				Title:      flags.title,
				Subtopics:  subtopics,
				Tags:       flags.tags,
				ParsedText: flags.parsedText,
			}
			if flags.fromFile != "" {
				if draft.ParsedText, err = extractFile(cmd, svc, flags.fromFile); err != nil {
					return err
				}
			}

			t, err := svc.Create(draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created note %s: %s\n", t.ID, t.Title)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	flags := &draftFlags{}
	var (
		removeSubtopics []int
		addTags         []string
		removeTags      []string
	)

	cmd := &cobra.Command{
		Use:   "edit <ref>",
		Short: "Edit a note",
		Long: `Edit the title, subtopics, tags or parsed text of a note. Only the fields
given on the command line change. The id and creation time are kept; saving
clears the highlight flag.

--subtopic appends subtopics after --remove-subtopic removed any. --tag
replaces all tags, --add-tag and --remove-tag adjust them.`,
		Example: `  pocket-notes edit 1 --title "Training plan (week 12)"
  pocket-notes edit 1 --remove-subtopic 2 --subtopic "Saturday=Rest day"
  pocket-notes edit 3f2a --add-tag nutrition --remove-tag fitness`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.loadService(cmd)
			if err != nil {
				return err
			}
			index, t, err := svc.Resolve(args[0])
			if err != nil {
				return err
			}

			draft := t.Draft()
			if cmd.Flags().Changed("title") {
				draft.Title = flags.title
			}

			positions := slices.Clone(removeSubtopics)
			sort.Sort(sort.Reverse(sort.IntSlice(positions)))
			for _, n := range slices.Compact(positions) {
				if n < 1 || n > len(draft.Subtopics) {
					return errors.IndexError(n-1, len(draft.Subtopics)).WithContext("field", "remove-subtopic")
				}
				draft.Subtopics = models.RemoveSubtopic(draft.Subtopics, n-1)
			}
			added, err := parseSubtopics(flags.subtopics)
			if err != nil {
				return err
			}
			if len(added) > 0 {
				draft.Subtopics = slices.DeleteFunc(draft.Subtopics, models.Subtopic.IsEmpty)
				draft.Subtopics = append(draft.Subtopics, added...)
			}

			if cmd.Flags().Changed("tag") {
				draft.Tags = flags.tags
			}
			draft.Tags = append(draft.Tags, addTags...)
			draft.Tags = slices.DeleteFunc(draft.Tags, func(tag string) bool {
				return slices.Contains(removeTags, tag)
			})

			if cmd.Flags().Changed("parsed-text") {
				draft.ParsedText = flags.parsedText
			}
			if flags.fromFile != "" {
				if draft.ParsedText, err = extractFile(cmd, svc, flags.fromFile); err != nil {
					return err
				}
			}

			updated, err := svc.UpdateByID(t.ID, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated note #%d: %s\n", index+1, updated.Title)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntSliceVar(&removeSubtopics, "remove-subtopic", nil, "Remove the subtopic at this 1-based position (repeatable)")
	cmd.Flags().StringSliceVar(&addTags, "add-tag", nil, "Add a tag (repeatable)")
	cmd.Flags().StringSliceVar(&removeTags, "remove-tag", nil, "Remove a tag (repeatable)")
	return cmd
}

// parseSubtopics parses name=description pairs
func parseSubtopics(values []string) ([]models.Subtopic, error) {
	subtopics := make([]models.Subtopic, 0, len(values))
	for _, v := range values {
		name, desc, ok := strings.Cut(v, "=")
		if !ok {
			return nil, errors.NewAppError(errors.ErrCodeInvalidInput,
				fmt.Sprintf("subtopic %q must be written as name=description", v)).
				WithContext("field", "subtopic")
		}
		subtopics = append(subtopics, models.NewSubtopic(strings.TrimSpace(name), strings.TrimSpace(desc)))
	}
	return subtopics, nil
}

// extractFile reads path and returns its extracted text
func extractFile(cmd *cobra.Command, svc *service.Service, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidInput, "cannot read file").WithContext("path", path)
	}
	return svc.ExtractText(cmd.Context(), data, path)
}
