package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository stores user accounts.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	Get(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, role string) ([]User, error)
}

// MemoryRepository is an in-memory Repository. Emails are unique
// case-insensitively.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
	order   []string
}

// NewMemoryRepository creates a repository holding seed.
func NewMemoryRepository(seed ...User) (*MemoryRepository, error) {
	r := &MemoryRepository{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
	for _, u := range seed {
		if _, err := r.Create(context.Background(), u); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *MemoryRepository) Create(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = normalizeEmail(u.Email)
	if _, ok := r.byEmail[u.Email]; ok {
		return User{}, ErrEmailExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	if u.Subjects == nil {
		u.Subjects = []string{}
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	r.order = append(r.order, u.ID)
	return clone(u), nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return clone(r.byID[id]), nil
}

// List returns users in creation order. An empty role lists everyone.
func (r *MemoryRepository) List(_ context.Context, role string) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []User{}
	for _, id := range r.order {
		u := r.byID[id]
		if role == "" || u.Role == role {
			out = append(out, clone(u))
		}
	}
	return out, nil
}

func clone(u User) User {
	u.Subjects = append([]string{}, u.Subjects...)
	u.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return u
}
