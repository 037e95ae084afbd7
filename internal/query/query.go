// Package query filters and paginates the template collection.
//
// Run is pure: the same collection and Spec always produce the same Result.
// Filtering never reorders the collection, and every returned item carries its
// position in the full collection so callers can address it for mutations.
package query

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/cases"

	"github.com/dpshade/pocket-notes/internal/models"
)

// DefaultPageSize is used when a Spec carries a non-positive page size
const DefaultPageSize = 20

// DefaultPageSizes are the page sizes offered by the surfaces
var DefaultPageSizes = []int{5, 10, 20, 50}

// DefaultWindowWidth is the number of page links shown by PageWindow
const DefaultWindowWidth = 5

// HighlightFilter restricts results by highlight state
type HighlightFilter string

const (
	HighlightAll        HighlightFilter = "all"
	HighlightOnly       HighlightFilter = "highlighted"
	HighlightNotFlagged HighlightFilter = "non-highlighted"
)

// HighlightFilters lists the filters in the order surfaces cycle through them
var HighlightFilters = []HighlightFilter{HighlightAll, HighlightOnly, HighlightNotFlagged}

// ParseHighlightFilter parses a filter name. The empty string means all.
func ParseHighlightFilter(s string) (HighlightFilter, error) {
	switch HighlightFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", HighlightAll:
		return HighlightAll, nil
	case HighlightOnly:
		return HighlightOnly, nil
	case HighlightNotFlagged:
		return HighlightNotFlagged, nil
	default:
		return HighlightAll, fmt.Errorf("unknown highlight filter %q (want all, highlighted or non-highlighted)", s)
	}
}

// Next returns the filter that follows f in HighlightFilters
func (f HighlightFilter) Next() HighlightFilter {
	for i, h := range HighlightFilters {
		if h == f {
			return HighlightFilters[(i+1)%len(HighlightFilters)]
		}
	}
	return HighlightAll
}

func (f HighlightFilter) matches(highlighted bool) bool {
	switch f {
	case HighlightOnly:
		return highlighted
	case HighlightNotFlagged:
		return !highlighted
	default:
		return true
	}
}

// Spec describes one query over the collection
type Spec struct {
	SearchTerm string
	Highlight  HighlightFilter
	Tags       []string // every tag must be present
	Page       int      // 1-based
	PageSize   int
}

// Item is a matching template with its position in the full collection
type Item struct {
	Index    int
	Template models.Template
}

// Result is one page of matching templates
type Result struct {
	Items       []Item
	TotalPages  int
	CurrentPage int
	TotalItems  int
}

// Run filters the collection by spec and returns the requested page. A page
// beyond the last one yields no items and no error.
func Run(templates []models.Template, spec Spec) Result {
	page := spec.Page
	if page < 1 {
		page = 1
	}
	size := spec.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	fold := cases.Fold()
	term := fold.String(spec.SearchTerm)

	var matched []int
	for i, t := range templates {
		if term != "" && !strings.Contains(fold.String(t.Title), term) {
			continue
		}
		if !spec.Highlight.matches(t.Highlighted) {
			continue
		}
		if !t.HasAllTags(spec.Tags) {
			continue
		}
		matched = append(matched, i)
	}

	total := len(matched)
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}
	result := Result{
		Items:       []Item{},
		TotalPages:  totalPages,
		CurrentPage: page,
		TotalItems:  total,
	}

	// Checked before multiplying; (page-1)*size can overflow
	if page > totalPages {
		return result
	}
	start := (page - 1) * size
	end := start + min(size, total-start)
	for _, idx := range matched[start:end] {
		result.Items = append(result.Items, Item{Index: idx, Template: templates[idx].Clone()})
	}
	return result
}

// PageWindow returns at most width consecutive page numbers around current,
// shifted to stay within 1..total. It returns nil when there are no pages.
func PageWindow(current, total, width int) []int {
	if total <= 0 {
		return nil
	}
	if width <= 0 {
		width = DefaultWindowWidth
	}

	half := width / 2
	start := current - half
	end := current + half
	if start < 1 {
		start = 1
		end = min(total, width)
	}
	if end > total {
		end = total
		start = max(1, end-width+1)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Suggestion is a fuzzy title match
type Suggestion struct {
	Index int
	Title string
	Score int
}

// Suggest returns up to limit templates whose titles fuzzily match term, best
// first. It is used to offer alternatives when a search finds nothing.
func Suggest(templates []models.Template, term string, limit int) []Suggestion {
	term = strings.TrimSpace(term)
	if term == "" || len(templates) == 0 {
		return nil
	}

	titles := make([]string, len(templates))
	for i, t := range templates {
		titles[i] = t.Title
	}

	matches := fuzzy.Find(term, titles)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Suggestion, 0, len(matches))
	for _, m := range matches {
		out = append(out, Suggestion{Index: m.Index, Title: m.Str, Score: m.Score})
	}
	return out
}
