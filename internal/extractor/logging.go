package extractor

import (
	"context"
	"log/slog"
	"time"
)

// Ensure LoggingExtractor implements Extractor.
var _ Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging.
type LoggingExtractor struct {
	next   Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract logs the format, input size, output size and duration of the
// extraction and delegates to the wrapped extractor.
func (e *LoggingExtractor) Extract(ctx context.Context, data []byte, format Format) (text string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"format", string(format),
			"bytes", len(data),
			"chars", len(text),
			"duration", time.Since(begin),
		}
		if err != nil {
			e.logger.Warn("extract", append(attrs, "err", err)...)
			return
		}
		e.logger.Info("extract", attrs...)
	}(time.Now())
	return e.next.Extract(ctx, data, format)
}
