package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("chat session not found")

// StoredMessage is a single message in a chat session.
type StoredMessage struct {
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	Model        string    `json:"model,omitempty"`
	InputTokens  int       `json:"inputTokens,omitempty"`
	OutputTokens int       `json:"outputTokens,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is a chat between a user and an assistant about one material.
type Session struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId,omitempty"`
	MaterialID  string          `json:"materialId,omitempty"`
	AssistantID string          `json:"assistantId,omitempty"`
	Messages    []StoredMessage `json:"messages"`
	StartedAt   time.Time       `json:"startedAt"`
	EndedAt     *time.Time      `json:"endedAt,omitempty"`
}

// SessionStore persists chat sessions and their message history.
type SessionStore interface {
	// CreateSession stores s. An empty ID is replaced with a generated one.
	CreateSession(ctx context.Context, s Session) (Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	AddMessage(ctx context.Context, sessionID string, msg StoredMessage) error
	EndSession(ctx context.Context, id string) error
}

// MemoryStore is an in-memory SessionStore.
type MemoryStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (s *MemoryStore) CreateSession(_ context.Context, sess Session) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}
	sess.Messages = append([]StoredMessage{}, sess.Messages...)
	s.sessions[sess.ID] = &sess
	return copySession(&sess), nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := copySession(sess)
	return &cp, nil
}

func (s *MemoryStore) AddMessage(_ context.Context, sessionID string, msg StoredMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	sess.Messages = append(sess.Messages, msg)
	return nil
}

func (s *MemoryStore) EndSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	now := time.Now()
	sess.EndedAt = &now
	return nil
}

func copySession(s *Session) Session {
	cp := *s
	cp.Messages = append([]StoredMessage{}, s.Messages...)
	if s.EndedAt != nil {
		t := *s.EndedAt
		cp.EndedAt = &t
	}
	return cp
}
