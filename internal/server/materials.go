package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/p-n-ai/materialbank/internal/classify"
	"github.com/p-n-ai/materialbank/internal/material"
	"github.com/p-n-ai/materialbank/internal/user"
)

type commentRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ms, err := s.materials.List(r.Context(), f)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func parseFilter(r *http.Request) (material.Filter, error) {
	q := r.URL.Query()
	f := material.Filter{
		Subject:  q.Get("subject"),
		Grade:    q.Get("grade"),
		AuthorID: q.Get("author"),
		Query:    q.Get("q"),
		Sort:     q.Get("sort"),
	}
	if level := q.Get("level"); level != "" {
		parsed, ok := classify.ParseSchoolLevel(level)
		if !ok {
			return material.Filter{}, fmt.Errorf("unknown school level %q", level)
		}
		f.SchoolLevel = parsed
	}
	if tags := q.Get("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"min_difficulty", &f.MinDifficulty},
		{"max_difficulty", &f.MaxDifficulty},
		{"limit", &f.Limit},
		{"offset", &f.Offset},
	}
	for _, p := range ints {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return material.Filter{}, fmt.Errorf("%s must be a non-negative integer", p.key)
		}
		*p.dst = n
	}
	return f, nil
}

func (s *Server) handleCreateMaterial(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := material.Validate(raw); err != nil {
		writeErr(w, r, err)
		return
	}
	var m material.Material
	if err := json.Unmarshal(raw, &m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	// Identity, counters and lineage are server-owned.
	m.ID = ""
	m.AuthorID = user.IDFromContext(r.Context())
	m.ForkedFrom = ""
	m.Views, m.Likes = 0, 0
	m.CreatedAt, m.UpdatedAt = time.Time{}, time.Time{}

	created, err := s.materials.Create(r.Context(), m)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetMaterial(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.materials.IncrementViews(r.Context(), id); err != nil {
		writeErr(w, r, err)
		return
	}
	m, err := s.materials.Get(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleUpdateMaterial(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.ownMaterial(w, r)
	if !ok {
		return
	}
	raw, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := material.Validate(raw); err != nil {
		writeErr(w, r, err)
		return
	}

	var m material.Material
	if err := json.Unmarshal(raw, &m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	m.ID = existing.ID
	m.AuthorID = existing.AuthorID
	m.ForkedFrom = existing.ForkedFrom
	m.CreatedAt = existing.CreatedAt
	if m.Details == nil {
		m.Details = existing.Details
	}
	if m.Guide == nil {
		m.Guide = existing.Guide
	}

	updated, err := s.materials.Update(r.Context(), m)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	m, ok := s.ownMaterial(w, r)
	if !ok {
		return
	}
	if err := s.materials.Delete(r.Context(), m.ID); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleForkMaterial(w http.ResponseWriter, r *http.Request) {
	forked, err := s.materials.Fork(r.Context(), r.PathValue("id"), user.IDFromContext(r.Context()))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, forked)
}

func (s *Server) handleLikeMaterial(w http.ResponseWriter, r *http.Request) {
	likes, err := s.materials.Like(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	cs, err := s.materials.Comments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var in commentRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		writeError(w, http.StatusBadRequest, "comment body is required")
		return
	}
	c, err := s.materials.AddComment(r.Context(), material.Comment{
		MaterialID: r.PathValue("id"),
		AuthorID:   user.IDFromContext(r.Context()),
		Body:       body,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ownMaterial loads the material named in the path and checks that the
// caller authored it.
func (s *Server) ownMaterial(w http.ResponseWriter, r *http.Request) (material.Material, bool) {
	m, err := s.materials.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, r, err)
		return material.Material{}, false
	}
	if m.AuthorID != user.IDFromContext(r.Context()) {
		writeErr(w, r, material.ErrForbidden)
		return material.Material{}, false
	}
	return m, true
}
