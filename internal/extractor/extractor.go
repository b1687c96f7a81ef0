// Package extractor converts binary statement documents into plain text for
// the parsing pipeline.
//
// Extraction failures are deliberately swallowed: any corrupt or unreadable
// document yields empty text rather than an error, so callers treat "no
// usable text" uniformly as the trigger for the generative fallback path.
package extractor

import (
	"bytes"
	"math"
	"sort"
	"strings"
	"sync"

	"statement-import-service/pkg/logger"

	"github.com/ledongthuc/pdf"
)

// Extractor converts raw document bytes into plain text
type Extractor interface {
	Extract(data []byte) string
}

// columnGap is the horizontal distance, in PDF units, beyond which adjacent
// text fragments on one row are treated as separate columns.
const columnGap = 15.0

var initOnce sync.Once

// initLibrary configures the backing PDF library exactly once per process
func initLibrary() {
	initOnce.Do(func() {
		pdf.DebugOn = false
	})
}

// PDFExtractor extracts text from PDF documents with reading order
// preserved: rows top-to-bottom, fragments within a row left-to-right, so
// multi-column layouts flatten consistently.
type PDFExtractor struct {
	logger logger.Logger
}

// NewPDFExtractor creates a PDF text extractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{
		logger: logger.GetGlobalLogger().WithComponent("pdf_extractor"),
	}
}

// Extract returns the text content of a PDF document, pages separated by
// newlines. Any decode or parse failure returns an empty string.
func (e *PDFExtractor) Extract(data []byte) (text string) {
	initLibrary()

	// The PDF library panics on some malformed documents; a panic is just
	// another unreadable document here.
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithField("panic", r).Warn("PDF extraction panicked, treating document as unreadable")
			text = ""
		}
	}()

	if len(data) == 0 {
		return ""
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.WithError(err).Warn("Failed to open PDF document")
		return ""
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return ""
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		lines := linesFromContent(page.Content().Text)
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}

	result := strings.TrimSpace(strings.Join(pages, "\n"))
	e.logger.WithFields(logger.Fields{
		"pages": numPages,
		"chars": len(result),
	}).Debug("Extracted PDF text")

	return result
}

// linesFromContent reconstructs physical lines from positioned text
// fragments. Fragments are grouped into rows by rounded Y coordinate, rows
// ordered top-to-bottom (PDF Y grows bottom-to-top), and fragments within a
// row ordered left-to-right. Wide horizontal gaps become column separators.
func linesFromContent(texts []pdf.Text) []string {
	type fragment struct {
		x float64
		s string
	}

	rows := make(map[int][]fragment)
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		yKey := int(math.Round(t.Y))
		rows[yKey] = append(rows[yKey], fragment{x: t.X, s: t.S})
	}

	yKeys := make([]int, 0, len(rows))
	for y := range rows {
		yKeys = append(yKeys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	var lines []string
	for _, y := range yKeys {
		fragments := rows[y]
		sort.Slice(fragments, func(a, b int) bool {
			return fragments[a].x < fragments[b].x
		})

		var parts []string
		var prevX float64
		for i, f := range fragments {
			if i > 0 && f.x-prevX > columnGap {
				parts = append(parts, "  ")
			}
			parts = append(parts, f.s)
			prevX = f.x
		}

		line := strings.TrimSpace(strings.Join(parts, ""))
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}
