// Package chat carries assistant conversations over WebSocket connections.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/materialbank/internal/agent"
	"github.com/p-n-ai/materialbank/internal/material"
)

// Outbound frame types.
const (
	FrameTyping  = "typing"
	FrameMessage = "message"
	FrameError   = "error"
)

// InboundFrame is a message sent by the client.
type InboundFrame struct {
	Message    string `json:"message"`
	MaterialID string `json:"materialId,omitempty"`
}

// OutboundFrame is sent to the client. Message is set for FrameMessage and
// Error for FrameError.
type OutboundFrame struct {
	Type    string             `json:"type"`
	Message *agent.ChatMessage `json:"message,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Responder answers chat messages. *agent.Engine implements it.
type Responder interface {
	SendChatMessage(ctx context.Context, sessionID, text string, m *material.Material) (agent.ChatMessage, error)
}

// MaterialGetter resolves the material a message refers to.
type MaterialGetter interface {
	Get(ctx context.Context, id string) (material.Material, error)
}

// HandlerConfig holds dependencies for the WebSocket handler.
type HandlerConfig struct {
	Responder Responder
	Materials MaterialGetter
	// OriginPatterns lists allowed cross-origin hosts. Same-origin requests
	// are always accepted.
	OriginPatterns []string
	// ReplyTimeout bounds a single reply. Defaults to 30s.
	ReplyTimeout time.Duration
	// SessionParam is the path wildcard holding the session ID. Defaults to
	// "session".
	SessionParam string
}

// Handler serves one chat session per WebSocket connection.
type Handler struct {
	responder    Responder
	materials    MaterialGetter
	origins      []string
	replyTimeout time.Duration
	sessionParam string
}

// NewHandler creates a WebSocket chat handler.
func NewHandler(cfg HandlerConfig) *Handler {
	timeout := cfg.ReplyTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	param := cfg.SessionParam
	if param == "" {
		param = "session"
	}
	return &Handler{
		responder:    cfg.Responder,
		materials:    cfg.Materials,
		origins:      cfg.OriginPatterns,
		replyTimeout: timeout,
		sessionParam: param,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue(h.sessionParam)
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		slog.Warn("websocket accept failed", "session_id", sessionID, "error", err)
		return
	}
	defer conn.CloseNow()

	slog.Info("chat connection opened", "session_id", sessionID)
	err = h.serve(r.Context(), conn, sessionID)

	switch status := websocket.CloseStatus(err); {
	case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
		slog.Info("chat connection closed", "session_id", sessionID)
	case errors.Is(err, context.Canceled):
		slog.Info("chat connection cancelled", "session_id", sessionID)
	default:
		slog.Warn("chat connection failed", "session_id", sessionID, "error", err)
		conn.Close(websocket.StatusInternalError, "internal error")
	}
}

func (h *Handler) serve(ctx context.Context, conn *websocket.Conn, sessionID string) error {
	for {
		var in InboundFrame
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			return err
		}
		if strings.TrimSpace(in.Message) == "" {
			if err := wsjson.Write(ctx, conn, OutboundFrame{Type: FrameError, Error: "message is required"}); err != nil {
				return err
			}
			continue
		}

		var m *material.Material
		if in.MaterialID != "" && h.materials != nil {
			found, err := h.materials.Get(ctx, in.MaterialID)
			if errors.Is(err, material.ErrNotFound) {
				if err := wsjson.Write(ctx, conn, OutboundFrame{Type: FrameError, Error: "material not found"}); err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}
			m = &found
		}

		if err := wsjson.Write(ctx, conn, OutboundFrame{Type: FrameTyping}); err != nil {
			return err
		}

		replyCtx, cancel := context.WithTimeout(ctx, h.replyTimeout)
		reply, err := h.responder.SendChatMessage(replyCtx, sessionID, in.Message, m)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("chat reply failed", "session_id", sessionID, "error", err)
			if err := wsjson.Write(ctx, conn, OutboundFrame{Type: FrameError, Error: "failed to generate reply"}); err != nil {
				return err
			}
			continue
		}

		if err := wsjson.Write(ctx, conn, OutboundFrame{Type: FrameMessage, Message: &reply}); err != nil {
			return err
		}
	}
}
