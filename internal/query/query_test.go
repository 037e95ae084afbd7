package query

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/pocket-notes/internal/models"
)

func numbered(n int) []models.Template {
	out := make([]models.Template, n)
	for i := range out {
		out[i] = models.Template{
			ID:        fmt.Sprintf("id-%d", i),
			Title:     fmt.Sprintf("Note %d", i),
			Subtopics: []models.Subtopic{models.NewSubtopic("s", "d")},
		}
	}
	return out
}

func indexes(items []Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Index
	}
	return out
}

func TestRunPagination(t *testing.T) {
	t.Parallel()

	templates := numbered(23)

	t.Run("first page holds page size items", func(t *testing.T) {
		t.Parallel()

		r := Run(templates, Spec{Page: 1, PageSize: 20})

		assert.Equal(t, 2, r.TotalPages)
		assert.Equal(t, 23, r.TotalItems)
		assert.Len(t, r.Items, 20)
		assert.Equal(t, 0, r.Items[0].Index)
	})

	t.Run("last page holds the remainder", func(t *testing.T) {
		t.Parallel()

		r := Run(templates, Spec{Page: 2, PageSize: 20})

		assert.Equal(t, []int{20, 21, 22}, indexes(r.Items))
		assert.Equal(t, 2, r.CurrentPage)
	})

	t.Run("page beyond range is empty without error", func(t *testing.T) {
		t.Parallel()

		r := Run(templates, Spec{Page: 3, PageSize: 20})

		assert.Empty(t, r.Items)
		assert.NotNil(t, r.Items)
		assert.Equal(t, 2, r.TotalPages)
	})

	t.Run("huge page number is empty without error", func(t *testing.T) {
		t.Parallel()

		r := Run(templates, Spec{Page: math.MaxInt, PageSize: 20})

		assert.Empty(t, r.Items)
		assert.Equal(t, 2, r.TotalPages)
		assert.Equal(t, math.MaxInt, r.CurrentPage)
	})

	t.Run("huge page size holds everything on one page", func(t *testing.T) {
		t.Parallel()

		r := Run(templates, Spec{Page: 1, PageSize: math.MaxInt})

		assert.Equal(t, 1, r.TotalPages)
		assert.Len(t, r.Items, 23)

		r = Run(templates, Spec{Page: 2, PageSize: math.MaxInt})
		assert.Empty(t, r.Items)
	})

	t.Run("page below one is treated as one", func(t *testing.T) {
		t.Parallel()

		r := Run(templates, Spec{Page: 0, PageSize: 5})

		assert.Equal(t, 1, r.CurrentPage)
		assert.Equal(t, []int{0, 1, 2, 3, 4}, indexes(r.Items))
	})

	t.Run("non-positive page size uses the default", func(t *testing.T) {
		t.Parallel()

		r := Run(templates, Spec{Page: 1})

		assert.Len(t, r.Items, DefaultPageSize)
	})

	t.Run("empty collection has zero pages", func(t *testing.T) {
		t.Parallel()

		r := Run(nil, Spec{Page: 1, PageSize: 20})

		assert.Equal(t, 0, r.TotalPages)
		assert.Empty(t, r.Items)
	})
}

func TestRunFilters(t *testing.T) {
	t.Parallel()

	flu := models.Template{ID: "1", Title: "Flu Basics", Tags: []string{"health", "disease"}}
	yoga := models.Template{ID: "2", Title: "Yoga", Tags: []string{"fitness"}, Highlighted: true}
	templates := []models.Template{yoga, flu}

	tests := []struct {
		name string
		spec Spec
		want []int
	}{
		{"empty term matches all", Spec{}, []int{0, 1}},
		{"case-insensitive title substring", Spec{SearchTerm: "flu"}, []int{1}},
		{"upper case term", Spec{SearchTerm: "YOGA"}, []int{0}},
		{"term does not search tags", Spec{SearchTerm: "fitness"}, []int{}},
		{"highlighted only", Spec{Highlight: HighlightOnly}, []int{0}},
		{"non-highlighted only", Spec{Highlight: HighlightNotFlagged}, []int{1}},
		{"single tag", Spec{Tags: []string{"health"}}, []int{1}},
		{"tags are AND", Spec{Tags: []string{"health", "fitness"}}, []int{}},
		{"tag match is exact", Spec{Tags: []string{"Health"}}, []int{}},
		{"filters combine", Spec{SearchTerm: "u", Tags: []string{"disease"}, Highlight: HighlightNotFlagged}, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := Run(templates, tt.spec)

			assert.Equal(t, tt.want, indexes(r.Items))
			assert.Equal(t, len(tt.want), r.TotalItems)
		})
	}
}

func TestRunUnicodeCaseFolding(t *testing.T) {
	t.Parallel()

	templates := []models.Template{{Title: "STRAßE Safety"}, {Title: "Ernährung"}}

	assert.Equal(t, []int{0}, indexes(Run(templates, Spec{SearchTerm: "strasse"}).Items))
	assert.Equal(t, []int{1}, indexes(Run(templates, Spec{SearchTerm: "ERNÄHRUNG"}).Items))
}

func TestRunReturnsCopies(t *testing.T) {
	t.Parallel()

	templates := []models.Template{{Title: "Flu", Tags: []string{"health"}}}

	r := Run(templates, Spec{})
	r.Items[0].Template.Tags[0] = "changed"

	assert.Equal(t, "health", templates[0].Tags[0])
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	templates := numbered(57)
	for i := range templates {
		templates[i].Highlighted = i%3 == 0
		if i%2 == 0 {
			templates[i].Tags = []string{"health"}
		}
	}
	spec := Spec{SearchTerm: "note 1", Highlight: HighlightAll, Tags: []string{"health"}, Page: 1, PageSize: 5}

	first := Run(templates, spec)
	second := Run(templates, spec)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Run() not deterministic (-first +second):\n%s", diff)
	}
}

func TestPageWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 0, nil},
		{1, 1, []int{1}},
		{1, 3, []int{1, 2, 3}},
		{1, 10, []int{1, 2, 3, 4, 5}},
		{2, 10, []int{1, 2, 3, 4, 5}},
		{5, 10, []int{3, 4, 5, 6, 7}},
		{9, 10, []int{6, 7, 8, 9, 10}},
		{10, 10, []int{6, 7, 8, 9, 10}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d of %d", tt.current, tt.total), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, PageWindow(tt.current, tt.total, DefaultWindowWidth))
		})
	}
}

func TestParseHighlightFilter(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]HighlightFilter{
		"":                HighlightAll,
		"all":             HighlightAll,
		"Highlighted":     HighlightOnly,
		"non-highlighted": HighlightNotFlagged,
	} {
		got, err := ParseHighlightFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseHighlightFilter("starred")
	assert.Error(t, err)
}

func TestHighlightFilterNext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, HighlightOnly, HighlightAll.Next())
	assert.Equal(t, HighlightNotFlagged, HighlightOnly.Next())
	assert.Equal(t, HighlightAll, HighlightNotFlagged.Next())
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	templates := []models.Template{{Title: "Yoga"}, {Title: "Flu Basics"}, {Title: "Flu Shots"}}

	got := Suggest(templates, "Flu", 1)

	require.Len(t, got, 1)
	assert.Contains(t, []int{1, 2}, got[0].Index)
	assert.Empty(t, Suggest(templates, "", 5))
	assert.Empty(t, Suggest(nil, "Flu", 5))
}
