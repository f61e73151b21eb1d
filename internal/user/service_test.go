package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/p-n-ai/materialbank/internal/user"
)

func newService(t *testing.T, now func() time.Time) *user.Service {
	t.Helper()
	repo, err := user.NewMemoryRepository()
	if err != nil {
		t.Fatalf("NewMemoryRepository() error = %v", err)
	}
	svc, err := user.NewService(user.ServiceConfig{
		Repo:       repo,
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		Now:        now,
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

var teacher = user.RegisterInput{
	Name:     "田中先生",
	Email:    "Tanaka@Example.com",
	Password: "secret1",
	Role:     user.RoleTeacher,
	Subjects: []string{"数学"},
}

func TestNewService_Validation(t *testing.T) {
	repo, _ := user.NewMemoryRepository()
	if _, err := user.NewService(user.ServiceConfig{JWTSecret: "x"}); err == nil {
		t.Error("expected error for nil repository")
	}
	if _, err := user.NewService(user.ServiceConfig{Repo: repo}); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestRegister(t *testing.T) {
	svc := newService(t, nil)
	u, err := svc.Register(context.Background(), teacher)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.ID == "" || u.Email != "tanaka@example.com" || !u.IsTeacher() {
		t.Errorf("Register() = %+v", u)
	}
	if string(u.PasswordHash) == teacher.Password {
		t.Error("password should be hashed")
	}
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *user.RegisterInput)
		want   error
	}{
		{"short password", func(in *user.RegisterInput) { in.Password = "12345" }, user.ErrWeakPassword},
		{"bad role", func(in *user.RegisterInput) { in.Role = "admin" }, user.ErrInvalidRole},
		{"duplicate email", func(in *user.RegisterInput) { in.Email = "TANAKA@example.com" }, user.ErrEmailExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, nil)
			if _, err := svc.Register(context.Background(), teacher); err != nil {
				t.Fatalf("seed Register() error = %v", err)
			}
			in := teacher
			tt.mutate(&in)
			if _, err := svc.Register(context.Background(), in); !errors.Is(err, tt.want) {
				t.Errorf("Register() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegister_SixCharacterPasswordAccepted(t *testing.T) {
	svc := newService(t, nil)
	in := teacher
	in.Password = "abcdef"
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Errorf("Register() error = %v, want a 6 character password accepted", err)
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	registered, _ := svc.Register(ctx, teacher)

	token, u, err := svc.Login(ctx, "tanaka@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" || u.ID != registered.ID {
		t.Fatalf("Login() = %q, %+v", token, u)
	}

	got, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != registered.ID || got.Role != user.RoleTeacher {
		t.Errorf("Authenticate() = %+v", got)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	svc.Register(ctx, teacher)

	if _, _, err := svc.Login(ctx, "tanaka@example.com", "wrong-password"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) error = %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Errorf("Login(unknown email) error = %v", err)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := newService(t, clock)
	ctx := context.Background()
	svc.Register(ctx, teacher)
	token, _, err := svc.Login(ctx, "tanaka@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if _, err := svc.Authenticate(ctx, "not-a-token"); !errors.Is(err, user.ErrInvalidToken) {
		t.Errorf("Authenticate(garbage) error = %v", err)
	}

	other := newService(t, clock)
	if _, err := other.Authenticate(ctx, token); !errors.Is(err, user.ErrInvalidToken) {
		t.Errorf("Authenticate(unknown subject) error = %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, user.ErrInvalidToken) {
		t.Errorf("Authenticate(expired) error = %v", err)
	}
}

func TestSeedDemo_Idempotent(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	for range 2 {
		if err := user.SeedDemo(ctx, svc); err != nil {
			t.Fatalf("SeedDemo() error = %v", err)
		}
	}
	all, _ := svc.List(ctx, "")
	if len(all) != len(user.DemoAccounts) {
		t.Errorf("users = %d, want %d", len(all), len(user.DemoAccounts))
	}
	students, _ := svc.List(ctx, user.RoleStudent)
	if len(students) != 1 || students[0].Grade != "中学2年生" {
		t.Errorf("students = %+v", students)
	}
	if _, _, err := svc.Login(ctx, "teacher@example.com", user.DemoPassword); err != nil {
		t.Errorf("demo login error = %v", err)
	}
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := user.FromContext(ctx); ok {
		t.Error("FromContext() on empty context should report false")
	}
	if id := user.IDFromContext(ctx); id != "" {
		t.Errorf("IDFromContext() = %q, want empty", id)
	}

	ctx = user.NewContext(ctx, user.User{ID: "u-1", Role: user.RoleStudent})
	u, ok := user.FromContext(ctx)
	if !ok || u.ID != "u-1" || !u.IsStudent() {
		t.Errorf("FromContext() = %+v, %v", u, ok)
	}
}
