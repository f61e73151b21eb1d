// Package pdftext reads the text layer of uploaded PDF files.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned for input without a PDF header.
var ErrNotPDF = errors.New("not a pdf file")

// MaxSize bounds the input accepted by ExtractText.
const MaxSize = 32 << 20

// Extractor extracts plain text from PDF bytes.
type Extractor struct{}

// New creates an extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractText returns the page count and whitespace-collapsed plain text of
// a PDF document.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (pages int, text string, err error) {
	if err := ctx.Err(); err != nil {
		return 0, "", err
	}
	if !IsPDF(data) {
		return 0, "", ErrNotPDF
	}
	if len(data) > MaxSize {
		return 0, "", fmt.Errorf("pdf is %d bytes, limit is %d", len(data), MaxSize)
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages, text, err = 0, "", fmt.Errorf("pdf parse: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return 0, "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return 0, "", fmt.Errorf("pdf read: %w", err)
	}
	return r.NumPage(), collapseWhitespace(string(b)), nil
}

// IsPDF reports whether b starts with the PDF magic bytes.
func IsPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
