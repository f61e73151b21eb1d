package generator

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/p-n-ai/materialbank/internal/material"
)

const excerptLength = 200

// PDFContext is the partial material summary entered alongside an upload.
type PDFContext struct {
	Title      string `json:"title,omitempty"`
	Subject    string `json:"subject"`
	Grade      string `json:"grade"`
	Duration   int    `json:"duration"`
	Difficulty int    `json:"difficulty"`
}

// PDFUpload is an uploaded file.
type PDFUpload struct {
	Filename string
	Data     []byte
}

// PDFAnalysis is the draft material derived from an uploaded PDF.
type PDFAnalysis struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Details     material.MaterialDetails `json:"details"`
	PageCount   int                      `json:"pageCount,omitempty"`
	Excerpt     string                   `json:"excerpt,omitempty"`
}

// TitleFromFilename strips the extension, turns _ - and . into spaces and
// title-cases the result.
func TitleFromFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	// Casers are stateful, so each call gets its own.
	return cases.Title(language.English).String(strings.Join(strings.Fields(base), " "))
}

// PDFDraft builds the draft material for an upload without inspecting its
// bytes. An explicit context title wins over the filename.
func PDFDraft(filename string, pc PDFContext) material.Material {
	title := strings.TrimSpace(pc.Title)
	if title == "" {
		title = TitleFromFilename(filename)
	}
	return material.Material{
		Title: title,
		Description: fmt.Sprintf("%sの%s向け教材です。%d分の授業で、PDF資料をもとに基礎から応用まで段階的に学習します。",
			pc.Subject, pc.Grade, pc.Duration),
		Subject:    pc.Subject,
		Grade:      pc.Grade,
		Duration:   pc.Duration,
		Difficulty: pc.Difficulty,
	}
}

// AnalyzePDF derives a title, description and details for an upload.
func (g *Generator) AnalyzePDF(filename string, pc PDFContext) PDFAnalysis {
	draft := PDFDraft(filename, pc)
	return PDFAnalysis{
		Title:       draft.Title,
		Description: draft.Description,
		Details:     g.MaterialDetails(draft),
	}
}
