package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/pocket-notes/internal/errors"
)

// buildPDF writes a minimal PDF with one Helvetica text run per page.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	n := len(pages)
	fontObj := 3 + 2*n
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))

	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// buildDOCX writes a zip holding word/document.xml with the given body XML.
func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractPDF(t *testing.T) {
	t.Parallel()

	t.Run("joins pages in order with single spaces", func(t *testing.T) {
		t.Parallel()

		data := buildPDF(t, "Hello World", "Second page", "Third")

		text, err := New().Extract(context.Background(), data, FormatPDF)

		require.NoError(t, err)
		assert.Equal(t, "Hello World Second page Third", text)
	})

	t.Run("bounded concurrency gives the same text", func(t *testing.T) {
		t.Parallel()

		data := buildPDF(t, "a", "b", "c", "d")
		e := &DocumentExtractor{Concurrency: 1}

		text, err := e.Extract(context.Background(), data, FormatPDF)

		require.NoError(t, err)
		assert.Equal(t, "a b c d", text)
	})

	t.Run("invalid bytes fail without partial text", func(t *testing.T) {
		t.Parallel()

		text, err := New().Extract(context.Background(), []byte("not a pdf"), FormatPDF)

		require.Error(t, err)
		assert.Empty(t, text)
		assert.True(t, errors.HasCode(err, errors.ErrCodeExtractionFailed))
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New().Extract(ctx, buildPDF(t, "x"), FormatPDF)

		require.Error(t, err)
		assert.True(t, stderrors.Is(err, context.Canceled))
	})
}

func TestExtractDOCX(t *testing.T) {
	t.Parallel()

	t.Run("paragraphs tabs and breaks", func(t *testing.T) {
		t.Parallel()

		body := `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Flu</w:t></w:r>` +
			`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve"> Basics</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>Fever</w:t><w:tab/><w:t>Chills</w:t><w:br/><w:t>Aches</w:t></w:r></w:p>`
		data := buildDOCX(t, body)

		text, err := New().Extract(context.Background(), data, FormatDOCX)

		require.NoError(t, err)
		assert.Equal(t, "Flu Basics\n\nFever\tChills\nAches", text)
	})

	t.Run("table cell paragraphs are included", func(t *testing.T) {
		t.Parallel()

		body := `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
			`<w:p><w:r><w:delText>gone</w:delText><w:t>after</w:t></w:r></w:p>`
		data := buildDOCX(t, body)

		text, err := New().Extract(context.Background(), data, FormatDOCX)

		require.NoError(t, err)
		assert.Equal(t, "cell\n\nafter", text)
	})

	t.Run("not a zip", func(t *testing.T) {
		t.Parallel()

		_, err := New().Extract(context.Background(), []byte("plain text"), FormatDOCX)

		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeExtractionFailed))
	})

	t.Run("missing document part", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		_, err := zw.Create("other.xml")
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		_, err = New().Extract(context.Background(), buf.Bytes(), FormatDOCX)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "word/document.xml not found")
	})
}

func TestExtractRejects(t *testing.T) {
	t.Parallel()

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		_, err := New().Extract(context.Background(), []byte("x"), Format("txt"))

		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeExtractionFailed))
		assert.True(t, errors.HasCode(err, errors.ErrCodeUnsupportedFormat))
	})

	t.Run("oversized document", func(t *testing.T) {
		t.Parallel()

		e := &DocumentExtractor{MaxBytes: 4}

		_, err := e.Extract(context.Background(), []byte("12345"), FormatPDF)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "limit is 4")
	})
}

func TestResolveFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hint string
		data []byte
		want Format
	}{
		{"report.PDF", nil, FormatPDF},
		{"/tmp/notes.docx", nil, FormatDOCX},
		{".pdf", nil, FormatPDF},
		{"docx", nil, FormatDOCX},
		{"application/pdf", nil, FormatPDF},
		{MIMEDOCX, nil, FormatDOCX},
		{"upload.bin", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"), FormatPDF},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveFormat(tt.hint, tt.data)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()

		_, err := ResolveFormat("notes.txt", []byte("just text"))

		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeUnsupportedFormat))
	})
}

type stubExtractor struct {
	ExtractFn func(ctx context.Context, data []byte, format Format) (string, error)
}

func (s *stubExtractor) Extract(ctx context.Context, data []byte, format Format) (string, error) {
	return s.ExtractFn(ctx, data, format)
}

func TestLoggingExtractor(t *testing.T) {
	t.Parallel()

	t.Run("logs format bytes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &stubExtractor{
			ExtractFn: func(ctx context.Context, data []byte, format Format) (string, error) {
				return "hello", nil
			},
		}

		text, err := NewLoggingExtractor(inner, logger).Extract(context.Background(), []byte("abc"), FormatPDF)

		require.NoError(t, err)
		assert.Equal(t, "hello", text)
		output := buf.String()
		assert.Contains(t, output, "msg=extract")
		assert.Contains(t, output, "format=pdf")
		assert.Contains(t, output, "bytes=3")
		assert.Contains(t, output, "chars=5")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &stubExtractor{
			ExtractFn: func(ctx context.Context, data []byte, format Format) (string, error) {
				return "", stderrors.New("bad xref")
			},
		}

		_, err := NewLoggingExtractor(inner, logger).Extract(context.Background(), nil, FormatDOCX)

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "err=\"bad xref\"")
	})
}
