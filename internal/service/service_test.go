package service_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/pocket-notes/internal/errors"
	"github.com/dpshade/pocket-notes/internal/extractor"
	"github.com/dpshade/pocket-notes/internal/models"
	"github.com/dpshade/pocket-notes/internal/query"
	"github.com/dpshade/pocket-notes/internal/service"
	"github.com/dpshade/pocket-notes/internal/storage"
)

// countingBlobStore records writes and can be told to fail them.
type countingBlobStore struct {
	*storage.MemoryBlobStore
	sets    int
	failSet bool
}

func (c *countingBlobStore) Set(key string, blob []byte) error {
	c.sets++
	if c.failSet {
		return stderrors.New("disk full")
	}
	return c.MemoryBlobStore.Set(key, blob)
}

type stubExtractor struct {
	ExtractFn func(ctx context.Context, data []byte, format extractor.Format) (string, error)
}

func (s *stubExtractor) Extract(ctx context.Context, data []byte, format extractor.Format) (string, error) {
	return s.ExtractFn(ctx, data, format)
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...service.Option) (*service.Service, *countingBlobStore) {
	t.Helper()

	blobs := &countingBlobStore{MemoryBlobStore: storage.NewMemoryBlobStore()}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	store := storage.NewTemplateStore(blobs, logger)
	store.Load()

	ids := 0
	base := []service.Option{
		service.WithLogger(logger),
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("id-%04d", ids)
		}),
	}
	return service.New(store, append(base, opts...)...), blobs
}

func draft(title string, tags ...string) models.Draft {
	return models.Draft{
		Title:     title,
		Subtopics: []models.Subtopic{models.NewSubtopic("Overview", "About "+title)},
		Tags:      tags,
	}
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("prepends with createdAt and highlight off", func(t *testing.T) {
		t.Parallel()

		svc, blobs := newTestService(t)

		first, err := svc.Create(draft("Flu Basics", "health"))
		require.NoError(t, err)
		second, err := svc.Create(draft("Yoga", "fitness"))
		require.NoError(t, err)

		list := svc.List()
		require.Len(t, list, 2)
		assert.Equal(t, "Yoga", list[0].Title)
		assert.Equal(t, "Flu Basics", list[1].Title)
		assert.Equal(t, fixedNow, first.CreatedAt)
		assert.False(t, second.Highlighted)
		assert.Equal(t, "id-0001", first.ID)
		assert.Equal(t, 2, blobs.sets)
	})

	t.Run("invalid draft is rejected without persistence", func(t *testing.T) {
		t.Parallel()

		svc, blobs := newTestService(t)
		d := draft("")
		d.Subtopics = append(d.Subtopics, models.NewSubtopic("x", ""))

		_, err := svc.Create(d)

		require.Error(t, err)
		appErr := errors.GetAppError(err)
		assert.Equal(t, "title", appErr.Field())
		assert.Equal(t, 0, svc.Len())
		assert.Equal(t, 0, blobs.sets)
	})

	t.Run("second subtopic without description names that field", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestService(t)
		d := draft("Flu")
		d.Subtopics = append(d.Subtopics, models.NewSubtopic("Prevention", ""))

		_, err := svc.Create(d)

		require.Error(t, err)
		assert.Equal(t, "subtopics[1].description", errors.GetAppError(err).Field())
	})

	t.Run("unknown tag is rejected", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestService(t)

		_, err := svc.Create(draft("Flu", "astrology"))

		assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownTag))
	})

	t.Run("draft createdAt is ignored", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestService(t)
		d := draft("Flu")
		d.CreatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

		created, err := svc.Create(d)

		require.NoError(t, err)
		assert.Equal(t, fixedNow, created.CreatedAt)
	})

	t.Run("write failure leaves the collection unchanged", func(t *testing.T) {
		t.Parallel()

		svc, blobs := newTestService(t)
		_, err := svc.Create(draft("Flu"))
		require.NoError(t, err)
		blobs.failSet = true

		_, err = svc.Create(draft("Yoga"))

		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeStorageFailure))
		require.Equal(t, 1, svc.Len())
		assert.Equal(t, "Flu", svc.List()[0].Title)
	})
}

func TestService_Update(t *testing.T) {
	t.Parallel()

	t.Run("keeps id and createdAt, clears highlight", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestService(t)
		created, err := svc.Create(draft("Flu", "health"))
		require.NoError(t, err)
		_, err = svc.ToggleHighlight(0)
		require.NoError(t, err)

		d := draft("Influenza", "disease")
		d.ParsedText = "from pdf"
		updated, err := svc.Update(0, d)

		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		assert.False(t, updated.Highlighted)
		assert.Equal(t, "Influenza", updated.Title)
		assert.Equal(t, []string{"disease"}, updated.Tags)
		assert.Equal(t, "from pdf", updated.ParsedText)

		stored, err := svc.Get(0)
		require.NoError(t, err)
		assert.False(t, stored.Highlighted)
	})

	t.Run("out of range index never persists", func(t *testing.T) {
		t.Parallel()

		svc, blobs := newTestService(t)
		_, err := svc.Create(draft("Flu"))
		require.NoError(t, err)
		before := blobs.sets

		for _, index := range []int{-1, 1, 7} {
			_, err := svc.Update(index, draft("X"))
			assert.True(t, errors.HasCode(err, errors.ErrCodeIndexOutOfRange), "index %d", index)
		}
		assert.Equal(t, before, blobs.sets)
		assert.Equal(t, "Flu", svc.List()[0].Title)
	})

	t.Run("invalid draft leaves record unchanged", func(t *testing.T) {
		t.Parallel()

		svc, blobs := newTestService(t)
		_, err := svc.Create(draft("Flu"))
		require.NoError(t, err)
		before := blobs.sets

		_, err = svc.Update(0, models.Draft{Title: "New"})

		require.Error(t, err)
		assert.Equal(t, before, blobs.sets)
		assert.Equal(t, "Flu", svc.List()[0].Title)
	})

	t.Run("by id addresses the right record among duplicates", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestService(t)
		older, err := svc.Create(draft("Same"))
		require.NoError(t, err)
		_, err = svc.Create(draft("Same"))
		require.NoError(t, err)

		_, err = svc.UpdateByID(older.ID, draft("Renamed"))

		require.NoError(t, err)
		list := svc.List()
		assert.Equal(t, "Same", list[0].Title)
		assert.Equal(t, "Renamed", list[1].Title)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		t.Parallel()

		svc, blobs := newTestService(t)

		_, err := svc.UpdateByID("missing", draft("X"))

		assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
		assert.Equal(t, 0, blobs.sets)
	})
}

func TestService_ToggleHighlight(t *testing.T) {
	t.Parallel()

	t.Run("toggling twice restores the flag", func(t *testing.T) {
		t.Parallel()

		svc, blobs := newTestService(t)
		_, err := svc.Create(draft("Flu"))
		require.NoError(t, err)

		on, err := svc.ToggleHighlight(0)
		require.NoError(t, err)
		assert.True(t, on.Highlighted)

		off, err := svc.ToggleHighlight(0)
		require.NoError(t, err)
		assert.False(t, off.Highlighted)
		assert.Equal(t, 3, blobs.sets)
	})

	t.Run("out of range", func(t *testing.T) {
		t.Parallel()

		svc, blobs := newTestService(t)

		_, err := svc.ToggleHighlight(0)

		assert.True(t, errors.HasCode(err, errors.ErrCodeIndexOutOfRange))
		assert.Equal(t, 0, blobs.sets)
	})

	t.Run("by id", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestService(t)
		flu, err := svc.Create(draft("Flu"))
		require.NoError(t, err)
		_, err = svc.Create(draft("Yoga"))
		require.NoError(t, err)

		got, err := svc.ToggleHighlightByID(flu.ID)

		require.NoError(t, err)
		assert.True(t, got.Highlighted)
		assert.False(t, svc.List()[0].Highlighted)
		assert.True(t, svc.List()[1].Highlighted)
	})
}

func TestService_PersistsAcrossReload(t *testing.T) {
	t.Parallel()

	blobs := storage.NewMemoryBlobStore()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	store := storage.NewTemplateStore(blobs, logger)
	store.Load()
	svc := service.New(store, service.WithLogger(logger))
	created, err := svc.Create(draft("Flu", "health"))
	require.NoError(t, err)
	_, err = svc.ToggleHighlight(0)
	require.NoError(t, err)

	reloaded := storage.NewTemplateStore(blobs, logger)
	reloaded.Load()
	got, ok := reloaded.At(0)

	require.True(t, ok)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.Highlighted)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestService_QueryScenario(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Create(draft("Flu Basics", "health", "disease"))
	require.NoError(t, err)
	_, err = svc.Create(draft("Yoga", "fitness"))
	require.NoError(t, err)
	_, err = svc.ToggleHighlight(0)
	require.NoError(t, err)

	r := svc.Query(query.Spec{SearchTerm: "flu", Page: 1, PageSize: 20})
	require.Len(t, r.Items, 1)
	assert.Equal(t, "Flu Basics", r.Items[0].Template.Title)
	assert.Equal(t, 1, r.Items[0].Index)

	r = svc.Query(query.Spec{Highlight: query.HighlightOnly, Page: 1, PageSize: 20})
	require.Len(t, r.Items, 1)
	assert.Equal(t, "Yoga", r.Items[0].Template.Title)

	r = svc.Query(query.Spec{Tags: []string{"health", "fitness"}, Page: 1, PageSize: 20})
	assert.Empty(t, r.Items)
	assert.Equal(t, 0, r.TotalPages)
}

func TestService_Resolve(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, service.WithIDGenerator(func() func() string {
		ids := []string{"abc-111", "abd-222", "xyz-333"}
		n := 0
		return func() string {
			n++
			return ids[n-1]
		}
	}()))
	for _, title := range []string{"One", "Two", "Three"} {
		_, err := svc.Create(draft(title))
		require.NoError(t, err)
	}

	tests := []struct {
		ref       string
		wantIndex int
		wantCode  errors.ErrorCode
	}{
		{ref: "xyz-333", wantIndex: 0},
		{ref: "abc-111", wantIndex: 2},
		{ref: "1", wantIndex: 0},
		{ref: "3", wantIndex: 2},
		{ref: "abd", wantIndex: 1},
		{ref: "ab", wantCode: errors.ErrCodeAmbiguous},
		{ref: "4", wantCode: errors.ErrCodeIndexOutOfRange},
		{ref: "nope", wantCode: errors.ErrCodeNotFound},
		{ref: " ", wantCode: errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			index, _, err := svc.Resolve(tt.ref)
			if tt.wantCode != "" {
				assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIndex, index)
		})
	}
}

func TestService_Get(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	created, err := svc.Create(draft("Flu"))
	require.NoError(t, err)

	got, err := svc.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.Get(3)
	assert.True(t, errors.HasCode(err, errors.ErrCodeIndexOutOfRange))
	_, err = svc.GetByID("missing")
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestService_ExtractText(t *testing.T) {
	t.Parallel()

	t.Run("resolves format from the hint and leaves the collection alone", func(t *testing.T) {
		t.Parallel()

		var gotFormat extractor.Format
		stub := &stubExtractor{
			ExtractFn: func(ctx context.Context, data []byte, format extractor.Format) (string, error) {
				gotFormat = format
				return "text", nil
			},
		}
		svc, blobs := newTestService(t, service.WithExtractor(stub))

		text, err := svc.ExtractText(context.Background(), []byte("x"), "Report.DOCX")

		require.NoError(t, err)
		assert.Equal(t, "text", text)
		assert.Equal(t, extractor.FormatDOCX, gotFormat)
		assert.Equal(t, 0, blobs.sets)
	})

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestService(t)

		_, err := svc.ExtractText(context.Background(), []byte("hello"), "notes.txt")

		assert.True(t, errors.HasCode(err, errors.ErrCodeExtractionFailed))
	})
}

func TestService_Vocabulary(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, service.WithVocabulary([]string{"alpha", "beta"}))

	assert.Equal(t, []string{"alpha", "beta"}, svc.Vocabulary())
	_, err := svc.Create(draft("x", "health"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownTag))
	_, err = svc.Create(draft("x", "beta"))
	assert.NoError(t, err)
}

func TestService_SuggestTitles(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Create(draft("Flu Basics"))
	require.NoError(t, err)

	got := svc.SuggestTitles("Flu", 3)

	require.Len(t, got, 1)
	assert.Equal(t, "Flu Basics", got[0].Title)
}
