package material

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/materialbank/internal/classify"
)

// Sentinel errors returned by stores.
var (
	ErrNotFound  = errors.New("material not found")
	ErrExists    = errors.New("material already exists")
	ErrForbidden = errors.New("not the material's author")
)

// Sort orders for List.
const (
	SortNewest  = "newest"
	SortPopular = "popular"
	SortLikes   = "likes"
)

// Filter narrows a material listing. Zero values mean "any".
type Filter struct {
	Subject       string
	Grade         string
	SchoolLevel   classify.SchoolLevel
	AuthorID      string
	Query         string
	Tags          []string
	MinDifficulty int
	MaxDifficulty int
	Sort          string
	Limit         int
	Offset        int
}

// Store persists materials and their comments.
type Store interface {
	Create(ctx context.Context, m Material) (Material, error)
	Get(ctx context.Context, id string) (Material, error)
	List(ctx context.Context, f Filter) ([]Material, error)
	Update(ctx context.Context, m Material) (Material, error)
	Delete(ctx context.Context, id string) error
	Fork(ctx context.Context, id, authorID string) (Material, error)
	IncrementViews(ctx context.Context, id string) error
	Like(ctx context.Context, id string) (int, error)
	AddComment(ctx context.Context, c Comment) (Comment, error)
	Comments(ctx context.Context, materialID string) ([]Comment, error)
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	materials map[string]*Material
	comments  map[string][]Comment
	mu        sync.RWMutex
}

// NewMemoryStore creates an empty in-memory material store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		materials: make(map[string]*Material),
		comments:  make(map[string][]Comment),
	}
}

func (s *MemoryStore) Create(_ context.Context, m Material) (Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if _, ok := s.materials[m.ID]; ok {
		return Material{}, fmt.Errorf("%w: %s", ErrExists, m.ID)
	}
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	m.normalize()

	stored := m.Clone()
	s.materials[m.ID] = &stored
	return m, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.materials[id]
	if !ok {
		return Material{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]Material, error) {
	s.mu.RLock()
	matched := make([]Material, 0, len(s.materials))
	for _, m := range s.materials {
		if f.Matches(*m) {
			matched = append(matched, *m)
		}
	}
	s.mu.RUnlock()

	SortMaterials(matched, f.Sort)
	page := Paginate(matched, f.Offset, f.Limit)

	out := make([]Material, 0, len(page))
	for _, m := range page {
		out = append(out, m.Clone())
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, m Material) (Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.materials[m.ID]
	if !ok {
		return Material{}, fmt.Errorf("%w: %s", ErrNotFound, m.ID)
	}
	m.CreatedAt = existing.CreatedAt
	m.Views = existing.Views
	m.Likes = existing.Likes
	m.ForkedFrom = existing.ForkedFrom
	m.UpdatedAt = time.Now()
	m.normalize()

	stored := m.Clone()
	s.materials[m.ID] = &stored
	return m, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.materials[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.materials, id)
	delete(s.comments, id)
	return nil
}

func (s *MemoryStore) Fork(ctx context.Context, id, authorID string) (Material, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return Material{}, err
	}
	return s.Create(ctx, NewFork(src, authorID))
}

func (s *MemoryStore) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.materials[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.Views++
	return nil
}

func (s *MemoryStore) Like(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.materials[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.Likes++
	return m.Likes, nil
}

func (s *MemoryStore) AddComment(_ context.Context, c Comment) (Comment, error) {
	if strings.TrimSpace(c.Body) == "" {
		return Comment{}, fmt.Errorf("comment body is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.materials[c.MaterialID]; !ok {
		return Comment{}, fmt.Errorf("%w: %s", ErrNotFound, c.MaterialID)
	}
	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.comments[c.MaterialID] = append(s.comments[c.MaterialID], c)
	return c, nil
}

func (s *MemoryStore) Comments(_ context.Context, materialID string) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.materials[materialID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, materialID)
	}
	return append([]Comment{}, s.comments[materialID]...), nil
}

// NewFork derives a new material from src. Content, details and guide are
// deep-copied; identity and counters are reset.
func NewFork(src Material, authorID string) Material {
	fork := src.Clone()
	fork.ID = ""
	fork.AuthorID = authorID
	fork.ForkedFrom = src.ID
	fork.Views = 0
	fork.Likes = 0
	fork.CreatedAt = time.Time{}
	fork.UpdatedAt = time.Time{}
	return fork
}

// Matches reports whether m satisfies every set field of the filter.
func (f Filter) Matches(m Material) bool {
	if f.Subject != "" && classify.NormalizeSubject(f.Subject) != classify.NormalizeSubject(m.Subject) {
		return false
	}
	if f.Grade != "" && m.Grade != f.Grade {
		return false
	}
	if f.SchoolLevel != "" && classify.SchoolLevelOf(m.Grade) != f.SchoolLevel {
		return false
	}
	if f.AuthorID != "" && m.AuthorID != f.AuthorID {
		return false
	}
	if f.MinDifficulty > 0 && m.Difficulty < f.MinDifficulty {
		return false
	}
	if f.MaxDifficulty > 0 && m.Difficulty > f.MaxDifficulty {
		return false
	}
	for _, tag := range f.Tags {
		if !slices.Contains(m.Tags, tag) {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		haystack := strings.ToLower(m.Title + "\n" + m.Description + "\n" + strings.Join(m.Tags, " "))
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

// SortMaterials orders materials in place. Unknown orders sort newest first.
func SortMaterials(ms []Material, order string) {
	var less func(a, b Material) bool
	switch order {
	case SortPopular:
		less = func(a, b Material) bool { return a.Views > b.Views }
	case SortLikes:
		less = func(a, b Material) bool { return a.Likes > b.Likes }
	default:
		less = func(a, b Material) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(ms, func(i, j int) bool {
		if less(ms[i], ms[j]) {
			return true
		}
		if less(ms[j], ms[i]) {
			return false
		}
		return ms[i].ID < ms[j].ID
	})
}

// Paginate applies offset and limit. A non-positive limit returns everything
// after offset.
func Paginate(ms []Material, offset, limit int) []Material {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ms) {
		return []Material{}
	}
	ms = ms[offset:]
	if limit > 0 && limit < len(ms) {
		ms = ms[:limit]
	}
	return ms
}

func (m *Material) normalize() {
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.TeachingPoints == nil {
		m.TeachingPoints = []string{}
	}
}
