package agent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/p-n-ai/materialbank/internal/agent"
	"github.com/p-n-ai/materialbank/internal/platform/database/dbtest"
)

func runSessionStoreTests(t *testing.T, newStore func(t *testing.T) agent.SessionStore) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateSession(ctx, agent.Session{UserID: "u-1", MaterialID: "m-1", AssistantID: "math"})
		if err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}
		if created.ID == "" {
			t.Fatal("CreateSession() should assign an ID")
		}

		got, err := store.GetSession(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetSession() error = %v", err)
		}
		if got.UserID != "u-1" || got.MaterialID != "m-1" || got.AssistantID != "math" {
			t.Errorf("GetSession() = %+v", got)
		}
		if got.Messages == nil || len(got.Messages) != 0 {
			t.Errorf("Messages = %v, want empty non-nil", got.Messages)
		}
	})

	t.Run("ExplicitID", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.CreateSession(ctx, agent.Session{ID: "chat-42"}); err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}
		if _, err := store.GetSession(ctx, "chat-42"); err != nil {
			t.Errorf("GetSession(chat-42) error = %v", err)
		}
	})

	t.Run("Messages", func(t *testing.T) {
		store := newStore(t)
		sess, _ := store.CreateSession(ctx, agent.Session{})

		msgs := []agent.StoredMessage{
			{Role: "user", Content: "一次関数の導入は？"},
			{Role: "assistant", Content: "具体例から始めましょう。", Model: "template-v1", InputTokens: 10, OutputTokens: 12},
		}
		for _, m := range msgs {
			if err := store.AddMessage(ctx, sess.ID, m); err != nil {
				t.Fatalf("AddMessage() error = %v", err)
			}
		}

		got, err := store.GetSession(ctx, sess.ID)
		if err != nil {
			t.Fatalf("GetSession() error = %v", err)
		}
		if len(got.Messages) != 2 {
			t.Fatalf("len(Messages) = %d, want 2", len(got.Messages))
		}
		if got.Messages[0].Role != "user" || got.Messages[1].Model != "template-v1" || got.Messages[1].OutputTokens != 12 {
			t.Errorf("Messages = %+v", got.Messages)
		}
		if got.Messages[0].CreatedAt.IsZero() {
			t.Error("CreatedAt should be set")
		}
	})

	t.Run("End", func(t *testing.T) {
		store := newStore(t)
		sess, _ := store.CreateSession(ctx, agent.Session{})
		if err := store.EndSession(ctx, sess.ID); err != nil {
			t.Fatalf("EndSession() error = %v", err)
		}
		got, _ := store.GetSession(ctx, sess.ID)
		if got.EndedAt == nil {
			t.Error("EndedAt should be set")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.GetSession(ctx, "missing"); !errors.Is(err, agent.ErrSessionNotFound) {
			t.Errorf("GetSession() error = %v, want ErrSessionNotFound", err)
		}
		if err := store.AddMessage(ctx, "missing", agent.StoredMessage{Role: "user", Content: "x"}); !errors.Is(err, agent.ErrSessionNotFound) {
			t.Errorf("AddMessage() error = %v, want ErrSessionNotFound", err)
		}
		if err := store.EndSession(ctx, "missing"); !errors.Is(err, agent.ErrSessionNotFound) {
			t.Errorf("EndSession() error = %v, want ErrSessionNotFound", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runSessionStoreTests(t, func(*testing.T) agent.SessionStore { return agent.NewMemoryStore() })
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := agent.NewMemoryStore()
	sess, _ := store.CreateSession(ctx, agent.Session{})
	store.AddMessage(ctx, sess.ID, agent.StoredMessage{Role: "user", Content: "a"})

	got, _ := store.GetSession(ctx, sess.ID)
	got.Messages[0].Content = "changed"

	again, _ := store.GetSession(ctx, sess.ID)
	if again.Messages[0].Content != "a" {
		t.Errorf("stored message was mutated through a returned session")
	}
}

func TestNewPostgresStore_NilPool(t *testing.T) {
	if _, err := agent.NewPostgresStore(nil); err == nil {
		t.Fatal("expected error for nil pool")
	}
}

func TestPostgresStore(t *testing.T) {
	pool := dbtest.NewPool(t)
	runSessionStoreTests(t, func(t *testing.T) agent.SessionStore {
		if _, err := pool.Exec(context.Background(), `TRUNCATE chat_sessions CASCADE`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		store, err := agent.NewPostgresStore(pool)
		if err != nil {
			t.Fatalf("NewPostgresStore() error = %v", err)
		}
		return store
	})
}
