package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/p-n-ai/materialbank/internal/export"
	"github.com/p-n-ai/materialbank/internal/generator"
	"github.com/p-n-ai/materialbank/internal/material"
	"github.com/p-n-ai/materialbank/internal/user"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleGenerateDetails generates details for a material and stores them
// when the caller is the author.
func (s *Server) handleGenerateDetails(w http.ResponseWriter, r *http.Request) {
	m, err := s.materials.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	details, err := s.gen.GenerateMaterialDetails(r.Context(), m)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if m.AuthorID == user.IDFromContext(r.Context()) {
		m.Details = &details
		if _, err := s.materials.Update(r.Context(), m); err != nil {
			writeErr(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, details)
}

// handleGenerateGuide generates a lesson guide, folding in stored details.
// The guide is stored when the caller is the author.
func (s *Server) handleGenerateGuide(w http.ResponseWriter, r *http.Request) {
	m, err := s.materials.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	guide, err := s.gen.GenerateLessonGuide(r.Context(), m, m.Details)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if m.AuthorID == user.IDFromContext(r.Context()) {
		m.Guide = &guide
		if _, err := s.materials.Update(r.Context(), m); err != nil {
			writeErr(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, guide)
}

func (s *Server) handleExportDetails(w http.ResponseWriter, r *http.Request) {
	m, err := s.materials.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	details := s.documents(m)
	s.writeWorkbook(w, r, m.ID+"-details.xlsx", func(buf io.Writer) error {
		return export.MaterialDetails(buf, details)
	})
}

func (s *Server) handleExportGuide(w http.ResponseWriter, r *http.Request) {
	m, err := s.materials.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	guide := m.Guide
	if guide == nil {
		details := s.documents(m)
		g := s.gen.Generator().LessonGuide(m, &details)
		guide = &g
	}
	s.writeWorkbook(w, r, m.ID+"-guide.xlsx", func(buf io.Writer) error {
		return export.LessonGuide(buf, *guide)
	})
}

// documents returns stored details or generates them without latency.
func (s *Server) documents(m material.Material) material.MaterialDetails {
	if m.Details != nil {
		return *m.Details
	}
	return s.gen.Generator().MaterialDetails(m)
}

func (s *Server) writeWorkbook(w http.ResponseWriter, r *http.Request, filename string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		writeErr(w, r, fmt.Errorf("export %s: %w", filename, err))
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (s *Server) handleAnalyzePDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	pc := generator.PDFContext{
		Title:   strings.TrimSpace(r.FormValue("title")),
		Subject: strings.TrimSpace(r.FormValue("subject")),
		Grade:   strings.TrimSpace(r.FormValue("grade")),
	}
	for _, f := range []struct {
		key string
		dst *int
	}{
		{"duration", &pc.Duration},
		{"difficulty", &pc.Difficulty},
	} {
		v := r.FormValue(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, f.key+" must be an integer")
			return
		}
		*f.dst = n
	}

	analysis, err := s.gen.AnalyzePDF(r.Context(), generator.PDFUpload{Filename: header.Filename, Data: data}, pc)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
