package material

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

const materialColumns = `id, title, description, subject, grade, duration, difficulty, author_id,
	video_url, pdf_url, tags, teaching_points, views, likes, forked_from, details, guide,
	created_at, updated_at`

// PostgresStore is a PostgreSQL-backed Store. Details and guides are stored
// as JSONB documents.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed material store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Create(ctx context.Context, m Material) (Material, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	m.normalize()

	details, guide, err := encodeDocuments(m)
	if err != nil {
		return Material{}, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO materials (`+materialColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		m.ID,
		m.Title,
		m.Description,
		m.Subject,
		m.Grade,
		m.Duration,
		m.Difficulty,
		nullIfEmpty(m.AuthorID),
		nullIfEmpty(m.VideoURL),
		nullIfEmpty(m.PDFURL),
		m.Tags,
		m.TeachingPoints,
		m.Views,
		m.Likes,
		nullIfEmpty(m.ForkedFrom),
		details,
		guide,
		m.CreatedAt,
		m.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Material{}, fmt.Errorf("%w: %s", ErrExists, m.ID)
	}
	if err != nil {
		return Material{}, fmt.Errorf("insert material: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Material, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id)
	m, err := scanMaterial(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Material{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Material{}, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// List narrows by author in SQL and applies the remaining filter fields in
// Go, so subject and school-level matching share the classifier with
// MemoryStore.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Material, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `SELECT ` + materialColumns + ` FROM materials`
	var args []any
	if f.AuthorID != "" {
		query += ` WHERE author_id = $1`
		args = append(args, f.AuthorID)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	matched := []Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		if f.Matches(m) {
			matched = append(matched, m)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}

	SortMaterials(matched, f.Sort)
	return Paginate(matched, f.Offset, f.Limit), nil
}

func (s *PostgresStore) Update(ctx context.Context, m Material) (Material, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	m.normalize()
	details, guide, err := encodeDocuments(m)
	if err != nil {
		return Material{}, err
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE materials
		 SET title = $2, description = $3, subject = $4, grade = $5, duration = $6,
		     difficulty = $7, author_id = $8, video_url = $9, pdf_url = $10, tags = $11,
		     teaching_points = $12, details = $13, guide = $14, updated_at = $15
		 WHERE id = $1
		 RETURNING `+materialColumns,
		m.ID,
		m.Title,
		m.Description,
		m.Subject,
		m.Grade,
		m.Duration,
		m.Difficulty,
		nullIfEmpty(m.AuthorID),
		nullIfEmpty(m.VideoURL),
		nullIfEmpty(m.PDFURL),
		m.Tags,
		m.TeachingPoints,
		details,
		guide,
		time.Now().UTC(),
	)
	updated, err := scanMaterial(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Material{}, fmt.Errorf("%w: %s", ErrNotFound, m.ID)
		}
		return Material{}, fmt.Errorf("update material: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *PostgresStore) Fork(ctx context.Context, id, authorID string) (Material, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return Material{}, err
	}
	return s.Create(ctx, NewFork(src, authorID))
}

func (s *PostgresStore) IncrementViews(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx, `UPDATE materials SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *PostgresStore) Like(ctx context.Context, id string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var likes int
	err := s.pool.QueryRow(ctx,
		`UPDATE materials SET likes = likes + 1 WHERE id = $1 RETURNING likes`,
		id,
	).Scan(&likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return 0, fmt.Errorf("like material: %w", err)
	}
	return likes, nil
}

func (s *PostgresStore) AddComment(ctx context.Context, c Comment) (Comment, error) {
	if strings.TrimSpace(c.Body) == "" {
		return Comment{}, fmt.Errorf("comment body is required")
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	cmd, err := s.pool.Exec(ctx,
		`INSERT INTO comments (id, material_id, author_id, body, created_at)
		 SELECT $1, m.id, $3, $4, $5
		 FROM materials m
		 WHERE m.id = $2`,
		c.ID,
		c.MaterialID,
		nullIfEmpty(c.AuthorID),
		c.Body,
		c.CreatedAt,
	)
	if err != nil {
		return Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return Comment{}, fmt.Errorf("%w: %s", ErrNotFound, c.MaterialID)
	}
	return c, nil
}

func (s *PostgresStore) Comments(ctx context.Context, materialID string) ([]Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM materials WHERE id = $1)`,
		materialID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("lookup material: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, materialID)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, material_id, author_id, body, created_at
		 FROM comments
		 WHERE material_id = $1
		 ORDER BY created_at ASC`,
		materialID,
	)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		var authorID *string
		if err := rows.Scan(&c.ID, &c.MaterialID, &authorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if authorID != nil {
			c.AuthorID = *authorID
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

func scanMaterial(row pgx.Row) (Material, error) {
	var m Material
	var authorID, videoURL, pdfURL, forkedFrom *string
	var details, guide []byte

	err := row.Scan(
		&m.ID,
		&m.Title,
		&m.Description,
		&m.Subject,
		&m.Grade,
		&m.Duration,
		&m.Difficulty,
		&authorID,
		&videoURL,
		&pdfURL,
		&m.Tags,
		&m.TeachingPoints,
		&m.Views,
		&m.Likes,
		&forkedFrom,
		&details,
		&guide,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return Material{}, err
	}

	m.AuthorID = derefString(authorID)
	m.VideoURL = derefString(videoURL)
	m.PDFURL = derefString(pdfURL)
	m.ForkedFrom = derefString(forkedFrom)

	if len(details) > 0 {
		m.Details = &MaterialDetails{}
		if err := json.Unmarshal(details, m.Details); err != nil {
			return Material{}, fmt.Errorf("decode details: %w", err)
		}
	}
	if len(guide) > 0 {
		m.Guide = &LessonGuide{}
		if err := json.Unmarshal(guide, m.Guide); err != nil {
			return Material{}, fmt.Errorf("decode guide: %w", err)
		}
	}
	m.normalize()
	return m, nil
}

func encodeDocuments(m Material) (details, guide []byte, err error) {
	if m.Details != nil {
		if details, err = json.Marshal(m.Details); err != nil {
			return nil, nil, fmt.Errorf("encode details: %w", err)
		}
	}
	if m.Guide != nil {
		if guide, err = json.Marshal(m.Guide); err != nil {
			return nil, nil, fmt.Errorf("encode guide: %w", err)
		}
	}
	return details, guide, nil
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
