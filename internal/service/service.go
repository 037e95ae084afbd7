// Package service implements the template lifecycle.
//
// Service is the only writer of the TemplateStore. Every mutation validates
// its input, builds the next collection and persists it through ReplaceAll
// before returning, so a returned success is durable. Failed mutations leave
// the collection untouched and never reach the blob store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dpshade/pocket-notes/internal/errors"
	"github.com/dpshade/pocket-notes/internal/extractor"
	"github.com/dpshade/pocket-notes/internal/models"
	"github.com/dpshade/pocket-notes/internal/query"
	"github.com/dpshade/pocket-notes/internal/storage"
	"github.com/dpshade/pocket-notes/internal/validation"
)

// Service provides business logic for template management
type Service struct {
	store     *storage.TemplateStore
	validator *validation.Validator
	extractor extractor.Extractor
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string

	mu sync.Mutex // serializes mutations
}

// Option configures a Service
type Option func(*Service)

// WithExtractor sets the document extractor used by ExtractText
func WithExtractor(e extractor.Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

// WithVocabulary sets the tag vocabulary
func WithVocabulary(tags []string) Option {
	return func(s *Service) { s.validator = validation.NewValidator(tags) }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock sets the time source used for createdAt
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator sets the id source used for new templates
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New creates a service over a loaded store
func New(store *storage.TemplateStore, opts ...Option) *Service {
	s := &Service{
		store:     store,
		validator: validation.NewValidator(nil),
		extractor: extractor.New(),
		logger:    slog.Default(),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Vocabulary returns the configured tag vocabulary
func (s *Service) Vocabulary() []string {
	return s.validator.Vocabulary()
}

// Validate checks a draft without mutating anything
func (s *Service) Validate(d models.Draft) *validation.ValidationResult {
	return s.validator.ValidateDraft(normalizeDraft(d))
}

// ValidateTags checks tag filter values against the vocabulary
func (s *Service) ValidateTags(tags []string) *validation.ValidationResult {
	return s.validator.ValidateTags(tags)
}

// Create validates the draft and prepends a new template to the collection
func (s *Service) Create(d models.Draft) (models.Template, error) {
	d = normalizeDraft(d)
	if result := s.validator.ValidateDraft(d); !result.Valid {
		return models.Template{}, result.ToAppError()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := models.Template{
		ID:          s.newID(),
		Title:       d.Title,
		Subtopics:   d.Subtopics,
		Tags:        d.Tags,
		CreatedAt:   s.now(),
		Highlighted: false,
		ParsedText:  d.ParsedText,
	}

	current := s.store.Templates()
	next := make([]models.Template, 0, len(current)+1)
	next = append(next, t)
	next = append(next, current...)
	if err := s.store.ReplaceAll(next); err != nil {
		return models.Template{}, err
	}

	s.logger.Info("template created", "id", t.ID, "title", t.Title)
	return t.Clone(), nil
}

// Update overwrites the template at index with the draft. The id and
// createdAt are kept; like a fresh save, the highlight flag is cleared.
func (s *Service) Update(index int, d models.Draft) (models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(index, d)
}

// UpdateByID is Update addressed by stable id
func (s *Service) UpdateByID(id string, d models.Draft) (models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.store.IndexOf(id)
	if index < 0 {
		return models.Template{}, templateNotFound(id)
	}
	return s.update(index, d)
}

func (s *Service) update(index int, d models.Draft) (models.Template, error) {
	current := s.store.Templates()
	if index < 0 || index >= len(current) {
		return models.Template{}, errors.IndexError(index, len(current))
	}

	d = normalizeDraft(d)
	if result := s.validator.ValidateDraft(d); !result.Valid {
		return models.Template{}, result.ToAppError()
	}

	t := current[index]
	t.Title = d.Title
	t.Subtopics = d.Subtopics
	t.Tags = d.Tags
	t.ParsedText = d.ParsedText
	t.Highlighted = false
	current[index] = t

	if err := s.store.ReplaceAll(current); err != nil {
		return models.Template{}, err
	}

	s.logger.Info("template updated", "id", t.ID, "index", index)
	return t.Clone(), nil
}

// ToggleHighlight flips the highlight flag of the template at index
func (s *Service) ToggleHighlight(index int) (models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.toggle(index)
}

// ToggleHighlightByID is ToggleHighlight addressed by stable id
func (s *Service) ToggleHighlightByID(id string) (models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.store.IndexOf(id)
	if index < 0 {
		return models.Template{}, templateNotFound(id)
	}
	return s.toggle(index)
}

func (s *Service) toggle(index int) (models.Template, error) {
	current := s.store.Templates()
	if index < 0 || index >= len(current) {
		return models.Template{}, errors.IndexError(index, len(current))
	}

	current[index].Highlighted = !current[index].Highlighted
	if err := s.store.ReplaceAll(current); err != nil {
		return models.Template{}, err
	}

	t := current[index]
	s.logger.Info("template highlight toggled", "id", t.ID, "highlighted", t.Highlighted)
	return t.Clone(), nil
}

// List returns the whole collection, most recent first
func (s *Service) List() []models.Template {
	return s.store.Templates()
}

// Len returns the collection size
func (s *Service) Len() int {
	return s.store.Len()
}

// Get returns the template at index
func (s *Service) Get(index int) (models.Template, error) {
	t, ok := s.store.At(index)
	if !ok {
		return models.Template{}, errors.IndexError(index, s.store.Len())
	}
	return t, nil
}

// GetByID returns the template with id
func (s *Service) GetByID(id string) (models.Template, error) {
	index := s.store.IndexOf(id)
	if index < 0 {
		return models.Template{}, templateNotFound(id)
	}
	return s.Get(index)
}

// Resolve finds a template from a user reference: an exact id, a 1-based
// position in the collection, or an unambiguous id prefix, tried in that order.
func (s *Service) Resolve(ref string) (int, models.Template, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, models.Template{}, errors.NewAppError(errors.ErrCodeInvalidInput, "template reference is empty")
	}

	templates := s.store.Templates()
	for i, t := range templates {
		if t.ID == ref {
			return i, t, nil
		}
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(templates) {
			return -1, models.Template{}, errors.IndexError(n-1, len(templates))
		}
		return n - 1, templates[n-1], nil
	}

	match := -1
	count := 0
	for i, t := range templates {
		if strings.HasPrefix(t.ID, ref) {
			match = i
			count++
		}
	}
	switch count {
	case 0:
		return -1, models.Template{}, templateNotFound(ref)
	case 1:
		return match, templates[match], nil
	default:
		return -1, models.Template{}, errors.AmbiguousError(ref, count)
	}
}

// Query filters and paginates the collection
func (s *Service) Query(spec query.Spec) query.Result {
	return query.Run(s.store.Templates(), spec)
}

// SuggestTitles returns fuzzy title matches for term
func (s *Service) SuggestTitles(term string, limit int) []query.Suggestion {
	return query.Suggest(s.store.Templates(), term, limit)
}

// ExtractText extracts the raw text of an uploaded document. hint is a file
// name, extension or MIME type; the content is sniffed when the hint is
// inconclusive. The collection is never touched.
func (s *Service) ExtractText(ctx context.Context, data []byte, hint string) (string, error) {
	if s.extractor == nil {
		return "", errors.InternalError("no document extractor configured")
	}
	format, err := extractor.ResolveFormat(hint, data)
	if err != nil {
		return "", err
	}
	return s.extractor.Extract(ctx, data, format)
}

func normalizeDraft(d models.Draft) models.Draft {
	out := models.Draft{
		Title:      d.Title,
		Subtopics:  append([]models.Subtopic{}, d.Subtopics...),
		Tags:       models.NormalizeTags(d.Tags),
		ParsedText: d.ParsedText,
	}
	return out
}

func templateNotFound(ref string) *errors.AppError {
	return errors.NotFoundError(fmt.Sprintf("template %q", ref)).WithContext("ref", ref)
}
