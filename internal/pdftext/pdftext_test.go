package pdftext_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/p-n-ai/materialbank/internal/pdftext"
)

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"pdf header", []byte("%PDF-1.7\n..."), true},
		{"short", []byte("%PD"), false},
		{"zip", []byte("PK\x03\x04"), false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pdftext.IsPDF(tt.data); got != tt.want {
				t.Errorf("IsPDF() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractText_RejectsNonPDF(t *testing.T) {
	_, _, err := pdftext.New().ExtractText(context.Background(), []byte("hello world"))
	if !errors.Is(err, pdftext.ErrNotPDF) {
		t.Fatalf("ExtractText() error = %v, want ErrNotPDF", err)
	}
}

func TestExtractText_MalformedPDF(t *testing.T) {
	_, _, err := pdftext.New().ExtractText(context.Background(), []byte("%PDF-1.4\nnot really a pdf"))
	if err == nil {
		t.Fatal("ExtractText() should fail for a truncated document")
	}
}

func TestExtractText_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := pdftext.New().ExtractText(ctx, []byte("%PDF-1.4"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ExtractText() error = %v, want context.Canceled", err)
	}
}

func TestExtractText_OnePageDocument(t *testing.T) {
	data, err := os.ReadFile("testdata/lesson.pdf")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	pages, text, err := pdftext.New().ExtractText(context.Background(), data)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if pages != 1 {
		t.Errorf("pages = %d, want 1", pages)
	}
	if !strings.Contains(text, "Linear Functions") {
		t.Errorf("text = %q, want it to contain %q", text, "Linear Functions")
	}
}
