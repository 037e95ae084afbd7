// Package extractor turns uploaded PDF and DOCX documents into plain text.
//
// Extraction never touches the template collection. Callers pass raw bytes and
// a declared format; the result is either the whole text of the document or an
// EXTRACTION_FAILED AppError. Partial results are never returned.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dpshade/pocket-notes/internal/errors"
)

// Format is a supported document format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// MIME types of the supported formats
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DefaultMaxBytes caps the size of a document accepted for extraction
const DefaultMaxBytes = 32 << 20

// Extractor extracts plain text from a document.
type Extractor interface {
	// Extract returns the raw text of data interpreted as format.
	Extract(ctx context.Context, data []byte, format Format) (string, error)
}

// Ensure DocumentExtractor implements Extractor.
var _ Extractor = (*DocumentExtractor)(nil)

// DocumentExtractor extracts text from PDF and DOCX documents
type DocumentExtractor struct {
	// MaxBytes rejects larger documents. Zero means DefaultMaxBytes.
	MaxBytes int64
	// Concurrency bounds the number of PDF pages read at once. Zero means no limit.
	Concurrency int
}

// New creates a DocumentExtractor with default limits
func New() *DocumentExtractor {
	return &DocumentExtractor{MaxBytes: DefaultMaxBytes}
}

// Extract returns the raw text of data. An unknown format, unreadable bytes or
// a missing document part yields an EXTRACTION_FAILED error.
func (e *DocumentExtractor) Extract(ctx context.Context, data []byte, format Format) (string, error) {
	maxBytes := e.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if int64(len(data)) > maxBytes {
		return "", errors.ExtractionError(string(format),
			fmt.Errorf("document is %d bytes, limit is %d", len(data), maxBytes))
	}
	if err := ctx.Err(); err != nil {
		return "", errors.ExtractionError(string(format), err)
	}

	switch format {
	case FormatPDF:
		return extractPDF(ctx, data, e.Concurrency)
	case FormatDOCX:
		return extractDOCX(data)
	default:
		return "", errors.ExtractionError(string(format), unsupported(string(format)))
	}
}

// ResolveFormat determines the document format from a hint and, when the hint
// is inconclusive, from the content itself. The hint may be a file name, an
// extension with or without the dot, or a MIME type.
func ResolveFormat(hint string, data []byte) (Format, error) {
	h := strings.ToLower(strings.TrimSpace(hint))

	switch h {
	case MIMEPDF:
		return FormatPDF, nil
	case MIMEDOCX:
		return FormatDOCX, nil
	}

	ext := strings.TrimPrefix(filepath.Ext(h), ".")
	if ext == "" {
		ext = strings.TrimPrefix(h, ".")
	}
	switch Format(ext) {
	case FormatPDF:
		return FormatPDF, nil
	case FormatDOCX:
		return FormatDOCX, nil
	}

	if len(data) > 0 {
		m := mimetype.Detect(data)
		switch {
		case m.Is(MIMEPDF):
			return FormatPDF, nil
		case m.Is(MIMEDOCX):
			return FormatDOCX, nil
		}
	}

	return "", errors.ExtractionError(hint, unsupported(hint))
}

func unsupported(what string) *errors.AppError {
	return errors.NewAppError(errors.ErrCodeUnsupportedFormat,
		"Unsupported file format. Please upload a PDF or DOCX file.").
		WithContext("format", what)
}
