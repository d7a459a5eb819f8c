package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"law-rag-platform/internal/logger"
	"law-rag-platform/models"

	"github.com/ledongthuc/pdf"
)

// PDFService extracts per-page text from PDF documents. Page numbers are
// preserved because every chunk carries the page its article started on.
type PDFService struct {
	maxFileSize int64
}

func NewPDFService(maxFileSize int64) *PDFService {
	return &PDFService{maxFileSize: maxFileSize}
}

// ExtractPages returns the text of every page in order. Pages that fail to
// extract are kept as empty entries so page numbering stays aligned with
// the source document.
func (s *PDFService) ExtractPages(ctx context.Context, content []byte) ([]models.PageContent, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}
	if s.maxFileSize > 0 && int64(len(content)) > s.maxFileSize {
		return nil, fmt.Errorf("pdf size %d exceeds limit %d", len(content), s.maxFileSize)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pages := make([]models.PageContent, 0, numPages)
	extracted := 0

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, models.PageContent{PageNumber: i})
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("failed to extract page text", "page", i, "error", err)
			pages = append(pages, models.PageContent{PageNumber: i})
			continue
		}

		text = cleanPageText(text)
		if text != "" {
			extracted++
		}
		pages = append(pages, models.PageContent{PageNumber: i, Text: text})
	}

	if extracted == 0 {
		return nil, fmt.Errorf("no text extracted from %d pages", numPages)
	}

	logger.Debug("pdf extracted", "pages", numPages, "pages_with_text", extracted)
	return pages, nil
}

// cleanPageText collapses runs of spaces within lines and drops blank-only
// lines, keeping line breaks so paragraph boundaries survive.
func cleanPageText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
