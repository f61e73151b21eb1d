// Package generator builds MaterialDetails and LessonGuide documents from a
// material summary. Generation is deterministic table-driven assembly: the
// same material always yields the same documents.
package generator

import (
	"fmt"
	"slices"

	"github.com/p-n-ai/materialbank/internal/classify"
	"github.com/p-n-ai/materialbank/internal/curriculum"
	"github.com/p-n-ai/materialbank/internal/material"
)

// StandardsSource looks up curriculum standards. *curriculum.Loader
// implements it.
type StandardsSource interface {
	Standards(level classify.SchoolLevel, subject classify.Subject) []curriculum.Standard
}

// versioned is implemented by standards sources whose content can change
// between processes.
type versioned interface {
	Version() string
}

// Generator derives pedagogical documents from materials.
type Generator struct {
	standards  StandardsSource
	classifier *classify.Classifier
}

// New creates a generator. A nil classifier uses the embedded default tables.
func New(standards StandardsSource, classifier *classify.Classifier) *Generator {
	if classifier == nil {
		classifier = classify.Default()
	}
	return &Generator{standards: standards, classifier: classifier}
}

// Classify returns the school level and normalized subject of a material.
func (g *Generator) Classify(m material.Material) (classify.SchoolLevel, classify.Subject) {
	return g.classifier.SchoolLevel(m.Grade), g.classifier.Subject(m.Subject)
}

// Standards returns the curriculum standards that apply to a material.
func (g *Generator) Standards(m material.Material) []curriculum.Standard {
	if g.standards == nil {
		return []curriculum.Standard{}
	}
	level, subject := g.Classify(m)
	return g.standards.Standards(level, subject)
}

// dataVersion identifies the classifier tables and curriculum data that
// generation reads.
func (g *Generator) dataVersion() string {
	v := fmt.Sprintf("c%d", g.classifier.Version())
	if src, ok := g.standards.(versioned); ok {
		v += "-s" + src.Version()
	}
	return v
}

// unionStrings appends the members of extra not already in base.
func unionStrings(base []string, extra ...string) []string {
	out := append([]string{}, base...)
	for _, s := range extra {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// unionBy appends the members of extra whose key is not already present.
func unionBy[T any](base, extra []T, key func(T) string) []T {
	out := append([]T{}, base...)
	seen := make(map[string]bool, len(out)+len(extra))
	for _, v := range out {
		seen[key(v)] = true
	}
	for _, v := range extra {
		if k := key(v); !seen[k] {
			seen[k] = true
			out = append(out, v)
		}
	}
	return out
}
