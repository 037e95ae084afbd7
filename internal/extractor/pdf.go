package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/dpshade/pocket-notes/internal/errors"
)

// extractPDF reads every page concurrently and joins the text runs of all
// pages, in page order, with single spaces. Any failing page fails the whole
// document.
func extractPDF(ctx context.Context, data []byte, concurrency int) (string, error) {
	r, err := openPDF(data)
	if err != nil {
		return "", errors.ExtractionError(string(FormatPDF), err)
	}
	numPages := r.NumPage()

	pages := make([][]string, numPages)
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i := 0; i < numPages; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runs, err := pageRuns(data, i+1)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			pages[i] = runs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", errors.ExtractionError(string(FormatPDF), err)
	}

	var all []string
	for _, runs := range pages {
		all = append(all, runs...)
	}
	return strings.Join(all, " "), nil
}

// openPDF parses the document structure. The decoder panics on some malformed
// input, so panics are turned into errors.
func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", p)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// pageRuns returns the text runs of page num (1-based) in reading order.
// Each call opens its own reader so pages can be decoded in parallel.
func pageRuns(data []byte, num int) (runs []string, err error) {
	defer func() {
		if p := recover(); p != nil {
			runs, err = nil, fmt.Errorf("malformed page: %v", p)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	page := r.Page(num)
	if page.V.IsNull() {
		return nil, nil
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		for _, text := range row.Content {
			runs = append(runs, text.S)
		}
	}
	return runs, nil
}
