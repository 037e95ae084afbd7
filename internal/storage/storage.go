// Package storage persists the template collection.
//
// The whole collection is serialized as one JSON array under a single key of a
// BlobStore. TemplateStore owns the in-memory copy and is the only component
// that talks to the blob store.
package storage

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dpshade/pocket-notes/internal/errors"
	"github.com/dpshade/pocket-notes/internal/models"
)

// TemplatesKey is the blob key the collection is stored under
const TemplatesKey = "templates"

// TemplateStore holds the authoritative ordered template collection
type TemplateStore struct {
	blobs  BlobStore
	logger *slog.Logger

	mu        sync.RWMutex
	templates []models.Template
}

// NewTemplateStore creates an empty store backed by blobs. Call Load to read
// the persisted collection.
func NewTemplateStore(blobs BlobStore, logger *slog.Logger) *TemplateStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateStore{
		blobs:  blobs,
		logger: logger,
	}
}

// Load reads the persisted collection. An absent, unreadable or malformed
// blob yields an empty collection; the condition is logged, never returned.
func (s *TemplateStore) Load() {
	templates := s.read()

	s.mu.Lock()
	s.templates = templates
	s.mu.Unlock()
}

func (s *TemplateStore) read() []models.Template {
	blob, ok, err := s.blobs.Get(TemplatesKey)
	if err != nil {
		s.logger.Warn("reading stored templates failed, starting empty",
			"code", errors.ErrCodeStorageRead, "error", err)
		return []models.Template{}
	}
	if !ok || len(blob) == 0 {
		return []models.Template{}
	}

	var templates []models.Template
	if err := json.Unmarshal(blob, &templates); err != nil {
		s.logger.Warn("stored templates are malformed, starting empty",
			"code", errors.ErrCodeFileCorrupted, "error", err, "bytes", len(blob))
		return []models.Template{}
	}
	if templates == nil {
		return []models.Template{}
	}

	assigned := 0
	for i := range templates {
		if templates[i].ID == "" {
			templates[i].ID = uuid.New().String()
			assigned++
		}
	}
	if assigned > 0 {
		s.logger.Debug("assigned ids to stored templates", "count", assigned)
	}

	s.logger.Debug("loaded templates", "count", len(templates))
	return templates
}

// ReplaceAll persists templates as the whole collection and then makes it the
// in-memory collection. On a failed write the in-memory collection is left
// unchanged and a StorageError is returned.
func (s *TemplateStore) ReplaceAll(templates []models.Template) error {
	next := cloneAll(templates)
	if next == nil {
		next = []models.Template{}
	}
	for i := range next {
		if next[i].Tags == nil {
			next[i].Tags = []string{}
		}
		if next[i].Subtopics == nil {
			next[i].Subtopics = []models.Subtopic{}
		}
	}

	blob, err := json.Marshal(next)
	if err != nil {
		return errors.StorageError("serialize templates", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.blobs.Set(TemplatesKey, blob); err != nil {
		return errors.StorageError("write templates", err)
	}
	s.templates = next
	return nil
}

// Templates returns a deep copy of the collection in order
func (s *TemplateStore) Templates() []models.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := cloneAll(s.templates)
	if out == nil {
		return []models.Template{}
	}
	return out
}

// Len returns the number of templates
func (s *TemplateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.templates)
}

// At returns a copy of the template at index
func (s *TemplateStore) At(index int) (models.Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.templates) {
		return models.Template{}, false
	}
	return s.templates[index].Clone(), true
}

// IndexOf returns the position of the template with id, or -1
func (s *TemplateStore) IndexOf(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, t := range s.templates {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(templates []models.Template) []models.Template {
	if templates == nil {
		return nil
	}
	out := make([]models.Template, len(templates))
	for i, t := range templates {
		out[i] = t.Clone()
	}
	return out
}
