package server

import (
	"net/http"

	"github.com/p-n-ai/materialbank/internal/classify"
	"github.com/p-n-ai/materialbank/internal/curriculum"
	"github.com/p-n-ai/materialbank/internal/material"
	"github.com/p-n-ai/materialbank/internal/user"
)

type curriculumResponse struct {
	SchoolLevel classify.SchoolLevel  `json:"schoolLevel"`
	Subject     classify.Subject      `json:"subject,omitempty"`
	Subjects    []classify.Subject    `json:"subjects,omitempty"`
	Standards   []curriculum.Standard `json:"standards"`
}

type classifyResponse struct {
	SchoolLevel classify.SchoolLevel `json:"schoolLevel"`
	Subject     classify.Subject     `json:"subject"`
}

// handleCurriculum lists standards for a level and subject. The level can
// be given directly or derived from a grade. Without a subject the subjects
// available at the level are listed.
func (s *Server) handleCurriculum(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var level classify.SchoolLevel
	switch {
	case q.Get("level") != "":
		parsed, ok := classify.ParseSchoolLevel(q.Get("level"))
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown school level")
			return
		}
		level = parsed
	case q.Get("grade") != "":
		level = s.classifier.SchoolLevel(q.Get("grade"))
	default:
		writeError(w, http.StatusBadRequest, "level or grade is required")
		return
	}

	resp := curriculumResponse{SchoolLevel: level, Standards: []curriculum.Standard{}}
	if raw := q.Get("subject"); raw != "" {
		resp.Subject = s.classifier.Subject(raw)
		resp.Standards = s.curriculum.Standards(level, resp.Subject)
	} else {
		resp.Subjects = s.curriculum.Subjects(level)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, classifyResponse{
		SchoolLevel: s.classifier.SchoolLevel(q.Get("grade")),
		Subject:     s.classifier.Subject(q.Get("subject")),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	u, _ := user.FromContext(r.Context())
	if u.IsTeacher() {
		d, err := material.BuildTeacherDashboard(r.Context(), s.materials, u.ID)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
		return
	}
	d, err := material.BuildStudentDashboard(r.Context(), s.materials, u.Grade)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
