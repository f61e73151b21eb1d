package server

import (
	"net/http"
	"strings"

	"github.com/p-n-ai/materialbank/internal/material"
)

type chatRequest struct {
	Message    string `json:"message"`
	MaterialID string `json:"materialId,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var in chatRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	var m *material.Material
	if in.MaterialID != "" {
		found, err := s.materials.Get(r.Context(), in.MaterialID)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		m = &found
	}

	reply, err := s.chat.SendChatMessage(r.Context(), r.PathValue("session"), in.Message, m)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleChatSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.chat.Session(r.Context(), r.PathValue("session"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
