package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/pocket-notes/internal/errors"
	"github.com/dpshade/pocket-notes/internal/models"
)

func validDraft() models.Draft {
	return models.Draft{
		Title:     "Flu Basics",
		Subtopics: []models.Subtopic{models.NewSubtopic("Symptoms", "Fever")},
		Tags:      []string{"health", "disease"},
	}
}

func TestValidateDraft(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name      string
		mutate    func(d *models.Draft)
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing title",
			mutate:    func(d *models.Draft) { d.Title = "" },
			wantField: "title",
			wantMsg:   "Title is required.",
		},
		{
			name:      "whitespace title",
			mutate:    func(d *models.Draft) { d.Title = "   " },
			wantField: "title",
			wantMsg:   "Title is required.",
		},
		{
			name:      "no subtopics",
			mutate:    func(d *models.Draft) { d.Subtopics = nil },
			wantField: "subtopics",
			wantMsg:   "At least one subtopic is required.",
		},
		{
			name: "second subtopic missing description",
			mutate: func(d *models.Draft) {
				d.Subtopics = append(d.Subtopics, models.NewSubtopic("Prevention", ""))
			},
			wantField: "subtopics[1].description",
			wantMsg:   "Both name and description are required for subtopic 2.",
		},
		{
			name: "subtopic missing name",
			mutate: func(d *models.Draft) {
				d.Subtopics = []models.Subtopic{models.NewSubtopic("", "text")}
			},
			wantField: "subtopics[0].name",
			wantMsg:   "Both name and description are required for subtopic 1.",
		},
		{
			name:      "unknown tag",
			mutate:    func(d *models.Draft) { d.Tags = []string{"health", "Health"} },
			wantField: "tags[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)

			result := v.ValidateDraft(d)

			require.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Equal(t, tt.wantField, result.Errors[0].Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, result.Errors[0].Message)
			}
		})
	}
}

func TestValidateDraftValid(t *testing.T) {
	result := NewValidator(nil).ValidateDraft(validDraft())

	assert.True(t, result.Valid)
	assert.Nil(t, result.ToAppError())
}

func TestValidateDraftOrdersTitleFirst(t *testing.T) {
	d := models.Draft{Subtopics: []models.Subtopic{{}}}

	result := NewValidator(nil).ValidateDraft(d)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, "title", result.Errors[0].Field)
	assert.Equal(t, "subtopics[0].name", result.Errors[1].Field)
}

func TestToAppError(t *testing.T) {
	d := models.Draft{Subtopics: []models.Subtopic{{}}}

	appErr := NewValidator(nil).ValidateDraft(d).ToAppError()

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCodeMissingField, appErr.Code)
	assert.Equal(t, "title", appErr.Field())
	assert.Equal(t, "Title is required.", appErr.Message)
	assert.Contains(t, appErr.Details, "subtopics[0].name")
}

func TestToAppErrorUnknownTag(t *testing.T) {
	d := validDraft()
	d.Tags = []string{"astrology"}

	appErr := NewValidator(nil).ValidateDraft(d).ToAppError()

	require.NotNil(t, appErr)
	assert.True(t, errors.HasCode(appErr, errors.ErrCodeUnknownTag))
	assert.Equal(t, "tags[0]", appErr.Field())
}

func TestCustomVocabulary(t *testing.T) {
	v := NewValidator([]string{"alpha"})

	assert.Equal(t, []string{"alpha"}, v.Vocabulary())
	assert.True(t, v.IsKnownTag("alpha"))
	assert.False(t, v.IsKnownTag("health"))
}

func TestValidateOption(t *testing.T) {
	assert.True(t, ValidateOption("format", "json", []string{"text", "json"}).Valid)

	result := ValidateOption("format", "xml", []string{"text", "json"})
	require.False(t, result.Valid)
	assert.Equal(t, "Field 'format' must be one of: text, json", result.Errors[0].Message)
	assert.Equal(t, errors.ErrCodeInvalidInput, result.ToAppError().Code)
}

func TestValidatePageSize(t *testing.T) {
	allowed := []int{5, 10, 20, 50}

	assert.True(t, ValidatePageSize(10, allowed).Valid)
	assert.True(t, ValidatePageSize(7, nil).Valid)
	assert.False(t, ValidatePageSize(7, allowed).Valid)
	assert.False(t, ValidatePageSize(0, nil).Valid)
}

func TestFieldErrors(t *testing.T) {
	d := models.Draft{Subtopics: []models.Subtopic{{}, models.NewSubtopic("x", "y")}}

	got := NewValidator(nil).ValidateDraft(d).FieldErrors()

	assert.Equal(t, map[string]string{
		"title":             "Title is required.",
		"subtopics[0].name": "Both name and description are required for subtopic 1.",
	}, got)
}
