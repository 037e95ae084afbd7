package extractor

import (
	"archive/zip"
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/dpshade/pocket-notes/internal/errors"
)

const docxMainPart = "word/document.xml"

// extractDOCX returns the raw text of the document body. Formatting is
// discarded; paragraphs are separated by a blank line.
func extractDOCX(data []byte) (string, error) {
	fail := func(err error) (string, error) {
		return "", errors.ExtractionError(string(FormatDOCX), err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fail(fmt.Errorf("reading archive: %w", err))
	}

	part, err := readPart(zr, docxMainPart)
	if err != nil {
		return fail(err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(part); err != nil {
		return fail(fmt.Errorf("parsing %s: %w", docxMainPart, err))
	}
	root := doc.Root()
	if root == nil {
		return fail(stderrors.New("empty document part"))
	}
	body := findFirst(root, "body")
	if body == nil {
		return fail(stderrors.New("document body not found"))
	}

	var paragraphs []string
	collectParagraphs(body, &paragraphs)
	return strings.Join(paragraphs, "\n\n"), nil
}

func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%s not found", name)
}

// findFirst returns the first element with the local name tag, depth first.
func findFirst(e *etree.Element, tag string) *etree.Element {
	if e.Tag == tag {
		return e
	}
	for _, child := range e.ChildElements() {
		if found := findFirst(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// collectParagraphs appends the text of every w:p under e, including those
// nested in tables.
func collectParagraphs(e *etree.Element, out *[]string) {
	for _, child := range e.ChildElements() {
		if child.Tag == "p" {
			var sb strings.Builder
			paragraphText(child, &sb)
			*out = append(*out, sb.String())
			continue
		}
		collectParagraphs(child, out)
	}
}

func paragraphText(e *etree.Element, sb *strings.Builder) {
	for _, child := range e.ChildElements() {
		switch child.Tag {
		case "t":
			sb.WriteString(child.Text())
		case "tab":
			sb.WriteByte('\t')
		case "br", "cr":
			sb.WriteByte('\n')
		case "pPr", "rPr", "delText", "instrText":
			// properties and non-visible text
		default:
			paragraphText(child, sb)
		}
	}
}
