package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/materialbank/internal/ai"
	"github.com/p-n-ai/materialbank/internal/generator"
	"github.com/p-n-ai/materialbank/internal/material"
	"github.com/p-n-ai/materialbank/internal/user"
)

// Simulated thinking time before a reply.
const (
	MinThinkingDelay = 1 * time.Second
	MaxThinkingDelay = 3 * time.Second
)

// Fixed replies.
const (
	NoMaterialMessage = "申し訳ございません。教材の情報が見つからないため、具体的なアドバイスができません。" +
		"教材を選択してから、もう一度お試しください。"
	BudgetExceededMessage = "このセッションの利用上限に達しました。新しいチャットを開始してください。"
	FallbackMessage       = "申し訳ございません。ただいま応答を生成できません。しばらくしてからもう一度お試しください。"
)

// ChatMessage is a message as shown in the chat UI.
type ChatMessage struct {
	ID                  string               `json:"id"`
	Role                string               `json:"role"`
	Content             string               `json:"content"`
	Timestamp           time.Time            `json:"timestamp"`
	MaterialID          string               `json:"materialId,omitempty"`
	EducationalInsights *EducationalInsights `json:"educationalInsights,omitempty"`
}

// EducationalInsights accompanies replies about a material.
type EducationalInsights struct {
	LearningObjective string   `json:"learningObjective"`
	Difficulty        int      `json:"difficulty"`
	TeachingMethods   []string `json:"teachingMethods"`
}

// EngineConfig holds dependencies for the chat engine.
type EngineConfig struct {
	AIRouter  *ai.Router           // defaults to a router with a TemplateProvider
	Generator *generator.Generator // defaults to a generator with no standards
	Store     SessionStore         // defaults to a MemoryStore
	Events    EventLogger          // defaults to NopEventLogger
	Budget    ai.BudgetChecker     // optional, keyed by session ID
	// SimulateLatency enables the thinking delay.
	SimulateLatency bool
	// Jitter returns a value in [0, n). Defaults to math/rand.
	Jitter func(n int64) int64
}

// Engine composes assistant replies about materials.
type Engine struct {
	aiRouter *ai.Router
	gen      *generator.Generator
	store    SessionStore
	events   EventLogger
	budget   ai.BudgetChecker
	simulate bool
	jitter   func(n int64) int64
}

// NewEngine creates a new chat engine.
func NewEngine(cfg EngineConfig) *Engine {
	router := cfg.AIRouter
	if router == nil {
		router = ai.NewRouter()
		router.Register("template", ai.NewTemplateProvider())
	}
	gen := cfg.Generator
	if gen == nil {
		gen = generator.New(nil, nil)
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	jitter := cfg.Jitter
	if jitter == nil {
		jitter = rand.Int64N
	}
	return &Engine{
		aiRouter: router,
		gen:      gen,
		store:    store,
		events:   events,
		budget:   cfg.Budget,
		simulate: cfg.SimulateLatency,
		jitter:   jitter,
	}
}

// SendChatMessage answers text within a session. Without a material the
// fixed apology is returned. Backend failures produce a fallback reply;
// only context cancellation and storage failures are returned as errors.
func (e *Engine) SendChatMessage(ctx context.Context, sessionID, text string, m *material.Material) (ChatMessage, error) {
	userID := user.IDFromContext(ctx)
	slog.Info("processing chat message",
		"session_id", sessionID,
		"user_id", userID,
		"text_len", len(text),
		"has_material", m != nil,
	)

	if err := e.think(ctx); err != nil {
		return ChatMessage{}, err
	}

	if m == nil {
		return newReply(NoMaterialMessage, "", nil), nil
	}

	ec := BuildContext(e.gen, *m)
	assistant := SelectAssistant(ec.Subject)
	insights := ec.Insights()

	sess, err := e.session(ctx, sessionID, userID, m.ID, assistant.ID)
	if err != nil {
		return ChatMessage{}, err
	}

	if e.budget != nil {
		ok, err := e.budget.Check(sessionID)
		if err != nil {
			slog.Warn("budget check failed", "session_id", sessionID, "error", err)
		} else if !ok {
			e.logEvent(sessionID, userID, EventBudgetExceeded, nil)
			return newReply(BudgetExceededMessage, m.ID, nil), nil
		}
	}

	messages := []ai.Message{{Role: "system", Content: ec.SystemPrompt(assistant)}}
	for _, msg := range sess.Messages {
		messages = append(messages, ai.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, ai.Message{Role: "user", Content: text})

	resp, err := e.aiRouter.Complete(ctx, ai.CompletionRequest{
		Messages: messages,
		Task:     ai.TaskChat,
		Metadata: ec.Metadata(assistant, m.Subject, text),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ChatMessage{}, ctxErr
		}
		slog.Error("ai completion failed", "session_id", sessionID, "error", err)
		e.logEvent(sessionID, userID, EventAIFailed, map[string]any{"error": err.Error()})
		return newReply(FallbackMessage, m.ID, nil), nil
	}

	if err := e.store.AddMessage(ctx, sessionID, StoredMessage{Role: "user", Content: text}); err != nil {
		return ChatMessage{}, fmt.Errorf("save user message: %w", err)
	}
	if err := e.store.AddMessage(ctx, sessionID, StoredMessage{
		Role:         "assistant",
		Content:      resp.Content,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}); err != nil {
		return ChatMessage{}, fmt.Errorf("save assistant message: %w", err)
	}

	if e.budget != nil {
		if err := e.budget.Record(sessionID, resp.TotalTokens()); err != nil {
			slog.Warn("failed to record token usage", "session_id", sessionID, "error", err)
		}
	}
	e.logEvent(sessionID, userID, EventMessageSent, map[string]any{
		"material_id":   m.ID,
		"assistant_id":  assistant.ID,
		"model":         resp.Model,
		"input_tokens":  resp.InputTokens,
		"output_tokens": resp.OutputTokens,
	})

	return newReply(resp.Content, m.ID, &insights), nil
}

// Session returns a chat session with its history. Sessions are visible
// only to the user who started them; others get ErrSessionNotFound.
func (e *Engine) Session(ctx context.Context, sessionID string) (*Session, error) {
	return e.ownSession(ctx, sessionID, user.IDFromContext(ctx))
}

// EndSession marks the caller's session as finished.
func (e *Engine) EndSession(ctx context.Context, sessionID string) error {
	if _, err := e.ownSession(ctx, sessionID, user.IDFromContext(ctx)); err != nil {
		return err
	}
	return e.store.EndSession(ctx, sessionID)
}

func (e *Engine) ownSession(ctx context.Context, id, userID string) (*Session, error) {
	sess, err := e.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

func (e *Engine) session(ctx context.Context, id, userID, materialID, assistantID string) (*Session, error) {
	sess, err := e.store.GetSession(ctx, id)
	if err == nil {
		if sess.UserID != userID {
			slog.Warn("chat session belongs to another user", "session_id", id, "user_id", userID)
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return sess, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("get session: %w", err)
	}
	created, err := e.store.CreateSession(ctx, Session{
		ID:          id,
		UserID:      userID,
		MaterialID:  materialID,
		AssistantID: assistantID,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &created, nil
}

func (e *Engine) think(ctx context.Context) error {
	if !e.simulate {
		return ctx.Err()
	}
	spread := int64(MaxThinkingDelay - MinThinkingDelay)
	timer := time.NewTimer(MinThinkingDelay + time.Duration(e.jitter(spread+1)))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) logEvent(sessionID, userID, eventType string, data map[string]any) {
	if err := e.events.LogEvent(Event{
		SessionID: sessionID,
		UserID:    userID,
		EventType: eventType,
		Data:      data,
	}); err != nil {
		slog.Warn("failed to log event", "event_type", eventType, "error", err)
	}
}

func newReply(content, materialID string, insights *EducationalInsights) ChatMessage {
	return ChatMessage{
		ID:                  uuid.NewString(),
		Role:                "assistant",
		Content:             content,
		Timestamp:           time.Now(),
		MaterialID:          materialID,
		EducationalInsights: insights,
	}
}
