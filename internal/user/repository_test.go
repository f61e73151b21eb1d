package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/p-n-ai/materialbank/internal/platform/database/dbtest"
	"github.com/p-n-ai/materialbank/internal/user"
)

func runRepositoryTests(t *testing.T, newRepo func(t *testing.T) user.Repository) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, user.User{
			Name: "佐藤", Email: " Sato@Example.com ", Role: user.RoleTeacher,
			School: "さくら中学校", Subjects: []string{"理科"}, PasswordHash: []byte("hash"),
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		got, err := repo.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Email != "sato@example.com" || got.School != "さくら中学校" || len(got.Subjects) != 1 || string(got.PasswordHash) != "hash" {
			t.Errorf("Get() = %+v", got)
		}
		byEmail, err := repo.GetByEmail(ctx, "SATO@example.com")
		if err != nil || byEmail.ID != created.ID {
			t.Errorf("GetByEmail() = %+v, %v", byEmail, err)
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo := newRepo(t)
		repo.Create(ctx, user.User{Name: "a", Email: "a@example.com", Role: user.RoleStudent, PasswordHash: []byte("h")})
		_, err := repo.Create(ctx, user.User{Name: "b", Email: "A@example.com", Role: user.RoleStudent, PasswordHash: []byte("h")})
		if !errors.Is(err, user.ErrEmailExists) {
			t.Errorf("Create() error = %v, want ErrEmailExists", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := newRepo(t)
		if _, err := repo.Get(ctx, "missing"); !errors.Is(err, user.ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
		if _, err := repo.GetByEmail(ctx, "missing@example.com"); !errors.Is(err, user.ErrNotFound) {
			t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListByRole", func(t *testing.T) {
		repo := newRepo(t)
		repo.Create(ctx, user.User{Name: "t", Email: "t@example.com", Role: user.RoleTeacher, PasswordHash: []byte("h")})
		repo.Create(ctx, user.User{Name: "s", Email: "s@example.com", Role: user.RoleStudent, Grade: "小学5年生", PasswordHash: []byte("h")})

		all, err := repo.List(ctx, "")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(all) != 2 {
			t.Errorf("List(all) = %d users, want 2", len(all))
		}
		students, _ := repo.List(ctx, user.RoleStudent)
		if len(students) != 1 || students[0].Grade != "小学5年生" {
			t.Errorf("List(student) = %+v", students)
		}
	})
}

func TestMemoryRepository(t *testing.T) {
	runRepositoryTests(t, func(t *testing.T) user.Repository {
		repo, err := user.NewMemoryRepository()
		if err != nil {
			t.Fatalf("NewMemoryRepository() error = %v", err)
		}
		return repo
	})
}

func TestNewMemoryRepository_DuplicateSeed(t *testing.T) {
	u := user.User{Email: "x@example.com", Role: user.RoleStudent}
	if _, err := user.NewMemoryRepository(u, u); !errors.Is(err, user.ErrEmailExists) {
		t.Errorf("NewMemoryRepository() error = %v, want ErrEmailExists", err)
	}
}

func TestNewPostgresRepository_NilPool(t *testing.T) {
	if _, err := user.NewPostgresRepository(nil); err == nil {
		t.Fatal("expected error for nil pool")
	}
}

func TestPostgresRepository(t *testing.T) {
	pool := dbtest.NewPool(t)
	runRepositoryTests(t, func(t *testing.T) user.Repository {
		if _, err := pool.Exec(context.Background(), `TRUNCATE users CASCADE`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		repo, err := user.NewPostgresRepository(pool)
		if err != nil {
			t.Fatalf("NewPostgresRepository() error = %v", err)
		}
		return repo
	})
}
