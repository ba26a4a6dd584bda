package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrobles-dev/tienda/internal/auth/domain"
	"github.com/mrobles-dev/tienda/internal/auth/token"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUserExists     = errors.New("user or email already exists")
	ErrBadCredentials = errors.New("bad credentials")
)

type Service struct {
	repo   UserRepo
	tokens *token.Manager
}

func NewService(repo UserRepo, tokens *token.Manager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, email, username, password string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	if !strings.Contains(email, "@") || len(password) < 8 || len(username) < 3 {
		return domain.User{}, ErrInvalidInput
	}

	exists, err := s.repo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return domain.User{}, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return domain.User{}, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and returns a signed session token. A missing
// user and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrBadCredentials
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrBadCredentials
	}

	signed, err := s.tokens.Issue(user.ID, user.Email, user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}
