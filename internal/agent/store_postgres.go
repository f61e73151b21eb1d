package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed SessionStore over the chat_sessions
// and chat_messages tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed session store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, sess Session) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_sessions (id, user_id, material_id, assistant_id, started_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		sess.ID,
		nullIfEmpty(sess.UserID),
		nullIfEmpty(sess.MaterialID),
		nullIfEmpty(sess.AssistantID),
		sess.StartedAt,
	)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}

	for _, msg := range sess.Messages {
		if err := s.AddMessage(ctx, sess.ID, msg); err != nil {
			return Session{}, fmt.Errorf("save initial messages: %w", err)
		}
	}
	if sess.Messages == nil {
		sess.Messages = []StoredMessage{}
	}
	return sess, nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var (
		sess                            Session
		userID, materialID, assistantID *string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, material_id, assistant_id, started_at, ended_at
		 FROM chat_sessions
		 WHERE id = $1`,
		id,
	).Scan(&sess.ID, &userID, &materialID, &assistantID, &sess.StartedAt, &sess.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	sess.UserID = derefString(userID)
	sess.MaterialID = derefString(materialID)
	sess.AssistantID = derefString(assistantID)

	rows, err := s.pool.Query(ctx,
		`SELECT role, content, model, input_tokens, output_tokens, created_at
		 FROM chat_messages
		 WHERE session_id = $1
		 ORDER BY created_at ASC, id ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	sess.Messages = []StoredMessage{}
	for rows.Next() {
		var (
			msg           StoredMessage
			model         *string
			input, output *int
		)
		if err := rows.Scan(&msg.Role, &msg.Content, &model, &input, &output, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Model = derefString(model)
		if input != nil {
			msg.InputTokens = *input
		}
		if output != nil {
			msg.OutputTokens = *output
		}
		sess.Messages = append(sess.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return &sess, nil
}

func (s *PostgresStore) AddMessage(ctx context.Context, sessionID string, msg StoredMessage) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if msg.Role == "" {
		return fmt.Errorf("message role is required")
	}
	if msg.Content == "" {
		return fmt.Errorf("message content is required")
	}
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	cmd, err := s.pool.Exec(ctx,
		`INSERT INTO chat_messages (session_id, role, content, model, input_tokens, output_tokens, created_at)
		 SELECT s.id, $2, $3, $4, $5, $6, $7
		 FROM chat_sessions s
		 WHERE s.id = $1`,
		sessionID,
		msg.Role,
		msg.Content,
		nullIfEmpty(msg.Model),
		nullIfZero(msg.InputTokens),
		nullIfZero(msg.OutputTokens),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *PostgresStore) EndSession(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`UPDATE chat_sessions SET ended_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullIfZero(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
