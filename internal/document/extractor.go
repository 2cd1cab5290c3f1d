package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrMalformed means the byte stream could not be parsed as a PDF. It is a
// terminal ingestion failure and is never retried.
var ErrMalformed = errors.New("malformed document")

// Page is the trimmed text of a single non-blank PDF page. Numbers start at 1
// and ascend in document order.
type Page struct {
	Number int
	Text   string
}

// Extractor turns raw document bytes into page-level text. Blank pages are
// omitted from the result entirely.
type Extractor interface {
	Extract(ctx context.Context, data io.ReaderAt, size int64) ([]Page, error)
}

type pdfExtractor struct{}

func NewPDFExtractor() Extractor {
	return &pdfExtractor{}
}

func (e *pdfExtractor) Extract(ctx context.Context, data io.ReaderAt, size int64) ([]Page, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var pages []Page
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the whole document.
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		pages = append(pages, Page{Number: i, Text: text})
	}

	return pages, nil
}
