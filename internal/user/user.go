// Package user holds accounts and the mock authentication flow.
package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Roles.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidRole        = errors.New("role must be teacher or student")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// User is a teacher or student account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Grade        string    `json:"grade,omitempty"`
	School       string    `json:"school,omitempty"`
	Subjects     []string  `json:"subjects"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) IsTeacher() bool { return u.Role == RoleTeacher }

func (u User) IsStudent() bool { return u.Role == RoleStudent }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type ctxKey struct{}

// NewContext returns a context carrying u.
func NewContext(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the user stored by NewContext.
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

// IDFromContext returns the ID of the user in ctx, or "" for anonymous
// requests.
func IDFromContext(ctx context.Context) string {
	u, _ := FromContext(ctx)
	return u.ID
}
