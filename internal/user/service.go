package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	tokenIssuer       = "materialbank"
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     string   `json:"role"`
	Grade    string   `json:"grade,omitempty"`
	School   string   `json:"school,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
}

// Claims are the access token claims.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ServiceConfig holds dependencies for the auth service.
type ServiceConfig struct {
	Repo      Repository
	JWTSecret string
	TokenTTL  time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service registers users and issues access tokens.
type Service struct {
	repo   Repository
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// NewService creates an auth service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repo == nil {
		return nil, fmt.Errorf("user repository is nil")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: cfg.Repo, secret: []byte(cfg.JWTSecret), ttl: ttl, cost: cost, now: now}, nil
}

// Register creates an account. The password policy is length only.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return User{}, ErrWeakPassword
	}
	if in.Role != RoleTeacher && in.Role != RoleStudent {
		return User{}, ErrInvalidRole
	}
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("invalid email %q", in.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.Create(ctx, User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Role:         in.Role,
		Grade:        in.Grade,
		School:       in.School,
		Subjects:     in.Subjects,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return User{}, err
	}
	slog.Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login checks credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", User{}, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	token, err := s.issue(u)
	if err != nil {
		return "", User{}, err
	}
	return token, u, nil
}

// Authenticate resolves the user an access token was issued to.
func (s *Service) Authenticate(ctx context.Context, token string) (User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return User{}, ErrInvalidToken
	}

	u, err := s.repo.Get(ctx, claims.Subject)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidToken
	}
	if err != nil {
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// List returns users with the given role, or all users for "".
func (s *Service) List(ctx context.Context, role string) ([]User, error) {
	return s.repo.List(ctx, role)
}

func (s *Service) issue(u User) (string, error) {
	now := s.now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
