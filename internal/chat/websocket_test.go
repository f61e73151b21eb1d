package chat_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/materialbank/internal/agent"
	"github.com/p-n-ai/materialbank/internal/chat"
	"github.com/p-n-ai/materialbank/internal/material"
)

type fakeResponder struct {
	mu       sync.Mutex
	sessions []string
	material *material.Material
	err      error
}

func (f *fakeResponder) SendChatMessage(_ context.Context, sessionID, text string, m *material.Material) (agent.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, sessionID)
	f.material = m
	if f.err != nil {
		return agent.ChatMessage{}, f.err
	}
	return agent.ChatMessage{ID: "r-1", Role: "assistant", Content: "echo: " + text}, nil
}

func newServer(t *testing.T, responder chat.Responder, materials chat.MaterialGetter) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle("GET /chat/{session}/ws", chat.NewHandler(chat.HandlerConfig{
		Responder: responder,
		Materials: materials,
	}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) (*websocket.Conn, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn, ctx
}

func read(t *testing.T, ctx context.Context, conn *websocket.Conn) chat.OutboundFrame {
	t.Helper()
	var out chat.OutboundFrame
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return out
}

func TestHandler_Reply(t *testing.T) {
	responder := &fakeResponder{}
	store := material.NewMemoryStore()
	m, _ := store.Create(context.Background(), material.Material{Title: "一次関数", Subject: "数学", Grade: "中学2年生", Duration: 50, Difficulty: 2})

	conn, ctx := dial(t, newServer(t, responder, store)+"/chat/sess-1/ws")

	if err := wsjson.Write(ctx, conn, chat.InboundFrame{Message: "導入は？", MaterialID: m.ID}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := read(t, ctx, conn); got.Type != chat.FrameTyping {
		t.Errorf("first frame = %q, want typing", got.Type)
	}
	got := read(t, ctx, conn)
	if got.Type != chat.FrameMessage || got.Message == nil || got.Message.Content != "echo: 導入は？" {
		t.Fatalf("reply frame = %+v", got)
	}

	responder.mu.Lock()
	defer responder.mu.Unlock()
	if responder.sessions[0] != "sess-1" {
		t.Errorf("session = %q, want sess-1", responder.sessions[0])
	}
	if responder.material == nil || responder.material.ID != m.ID {
		t.Errorf("material = %+v, want %s", responder.material, m.ID)
	}
}

func TestHandler_NoMaterialPassesNil(t *testing.T) {
	responder := &fakeResponder{}
	conn, ctx := dial(t, newServer(t, responder, material.NewMemoryStore())+"/chat/sess-2/ws")

	wsjson.Write(ctx, conn, chat.InboundFrame{Message: "こんにちは"})
	read(t, ctx, conn)
	if got := read(t, ctx, conn); got.Type != chat.FrameMessage {
		t.Fatalf("reply frame = %+v", got)
	}
	responder.mu.Lock()
	defer responder.mu.Unlock()
	if responder.material != nil {
		t.Errorf("material = %+v, want nil", responder.material)
	}
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name  string
		frame chat.InboundFrame
		want  string
	}{
		{"empty message", chat.InboundFrame{Message: "  "}, "message is required"},
		{"unknown material", chat.InboundFrame{Message: "質問", MaterialID: "missing"}, "material not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, ctx := dial(t, newServer(t, &fakeResponder{}, material.NewMemoryStore())+"/chat/s/ws")
			wsjson.Write(ctx, conn, tt.frame)
			got := read(t, ctx, conn)
			if got.Type != chat.FrameError || got.Error != tt.want {
				t.Errorf("frame = %+v, want error %q", got, tt.want)
			}
		})
	}
}

func TestHandler_ResponderFailureKeepsConnection(t *testing.T) {
	responder := &fakeResponder{err: errors.New("store down")}
	conn, ctx := dial(t, newServer(t, responder, nil)+"/chat/s/ws")

	wsjson.Write(ctx, conn, chat.InboundFrame{Message: "one"})
	read(t, ctx, conn)
	if got := read(t, ctx, conn); got.Type != chat.FrameError {
		t.Fatalf("frame = %+v, want error", got)
	}

	responder.mu.Lock()
	responder.err = nil
	responder.mu.Unlock()

	wsjson.Write(ctx, conn, chat.InboundFrame{Message: "two"})
	read(t, ctx, conn)
	if got := read(t, ctx, conn); got.Type != chat.FrameMessage {
		t.Errorf("frame after failure = %+v, want message", got)
	}
}
