package generator

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/p-n-ai/materialbank/internal/material"
)

// Simulated backend latencies.
const (
	DetailsLatency = 1500 * time.Millisecond
	GuideLatency   = 1500 * time.Millisecond
	PDFMinLatency  = 2 * time.Second
	PDFMaxLatency  = 5 * time.Second
)

// TextExtractor reads the text layer of a PDF. *pdftext.Extractor
// implements it.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (pages int, text string, err error)
}

// ServiceConfig holds dependencies for the generation service.
type ServiceConfig struct {
	Generator       *Generator
	Cache           Cache         // optional, defaults to NopCache
	Extractor       TextExtractor // optional
	SimulateLatency bool
	// Jitter returns a value in [0, n). Defaults to math/rand.
	Jitter func(n int64) int64
}

// Service exposes the generators as backend calls with simulated latency.
// Cache hits skip the simulated latency. Waits honor context cancellation,
// which is the only error the service returns.
type Service struct {
	gen       *Generator
	cache     Cache
	extractor TextExtractor
	simulate  bool
	jitter    func(n int64) int64
}

// NewService creates a generation service.
func NewService(cfg ServiceConfig) *Service {
	c := cfg.Cache
	if c == nil {
		c = NopCache{}
	}
	jitter := cfg.Jitter
	if jitter == nil {
		jitter = rand.Int64N
	}
	return &Service{
		gen:       cfg.Generator,
		cache:     c,
		extractor: cfg.Extractor,
		simulate:  cfg.SimulateLatency,
		jitter:    jitter,
	}
}

// Generator returns the underlying generator.
func (s *Service) Generator() *Generator {
	return s.gen
}

// GenerateMaterialDetails returns the details document for m.
func (s *Service) GenerateMaterialDetails(ctx context.Context, m material.Material) (material.MaterialDetails, error) {
	key := fingerprint("details", s.gen.dataVersion(), m, nil)

	var details material.MaterialDetails
	if s.load(ctx, key, &details) {
		return details, nil
	}
	if err := s.wait(ctx, DetailsLatency); err != nil {
		return material.MaterialDetails{}, err
	}

	details = s.gen.MaterialDetails(m)
	s.store(ctx, key, details)
	return details, nil
}

// GenerateLessonGuide returns the lesson guide for m, folding in details
// when non-nil.
func (s *Service) GenerateLessonGuide(ctx context.Context, m material.Material, details *material.MaterialDetails) (material.LessonGuide, error) {
	key := fingerprint("guide", s.gen.dataVersion(), m, details)

	var guide material.LessonGuide
	if s.load(ctx, key, &guide) {
		return guide, nil
	}
	if err := s.wait(ctx, GuideLatency); err != nil {
		return material.LessonGuide{}, err
	}

	guide = s.gen.LessonGuide(m, details)
	s.store(ctx, key, guide)
	return guide, nil
}

// AnalyzePDF derives a draft material and its details from an upload. When
// an extractor is configured the page count and a text excerpt are added;
// extraction failures are logged and otherwise ignored.
func (s *Service) AnalyzePDF(ctx context.Context, upload PDFUpload, pc PDFContext) (PDFAnalysis, error) {
	spread := int64(PDFMaxLatency - PDFMinLatency)
	if err := s.wait(ctx, PDFMinLatency+time.Duration(s.jitter(spread+1))); err != nil {
		return PDFAnalysis{}, err
	}

	analysis := s.gen.AnalyzePDF(upload.Filename, pc)
	if s.extractor != nil && len(upload.Data) > 0 {
		pages, text, err := s.extractor.ExtractText(ctx, upload.Data)
		if err != nil {
			slog.Warn("failed to extract pdf text", "filename", upload.Filename, "error", err)
		} else {
			analysis.PageCount = pages
			analysis.Excerpt = truncateRunes(text, excerptLength)
		}
	}
	return analysis, nil
}

func (s *Service) wait(ctx context.Context, d time.Duration) error {
	if !s.simulate {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) load(ctx context.Context, key string, dst any) bool {
	hit, err := s.cache.Load(ctx, key, dst)
	if err != nil {
		slog.Warn("generator cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *Service) store(ctx context.Context, key string, v any) {
	if err := s.cache.Store(ctx, key, v); err != nil {
		slog.Warn("generator cache write failed", "key", key, "error", err)
	}
}
