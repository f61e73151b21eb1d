package generator_test

import (
	"testing"

	"github.com/p-n-ai/materialbank/internal/generator"
)

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"quadratic_functions.pdf", "Quadratic Functions"},
		{"cell-division.v2.pdf", "Cell Division V2"},
		{"photosynthesis", "Photosynthesis"},
		{"dir/sub/lesson_plan.PDF", "Lesson Plan"},
		{`C:\uploads\world_history.pdf`, "World History"},
		{"__spaced__out__.pdf", "Spaced Out"},
		{"一次関数_基礎.pdf", "一次関数 基礎"},
	}
	for _, tt := range tests {
		if got := generator.TitleFromFilename(tt.filename); got != tt.want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestPDFDraft(t *testing.T) {
	pc := generator.PDFContext{Subject: "英語", Grade: "中学1年生", Duration: 50, Difficulty: 2}

	draft := generator.PDFDraft("greetings.pdf", pc)
	if draft.Title != "Greetings" {
		t.Errorf("Title = %q, want Greetings", draft.Title)
	}
	if draft.Duration != 50 || draft.Difficulty != 2 || draft.Subject != "英語" {
		t.Errorf("draft = %+v, want context fields carried over", draft)
	}

	pc.Title = "あいさつ"
	if got := generator.PDFDraft("greetings.pdf", pc).Title; got != "あいさつ" {
		t.Errorf("Title = %q, want the explicit context title", got)
	}
}
