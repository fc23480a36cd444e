package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"budget/internal/storage"
)

var (
	ErrUsernameTooShort   = errors.New("username must be at least 3 characters")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

// UserStore is the slice of the repository the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (storage.User, error)
	GetUserByUsername(ctx context.Context, username string) (storage.User, error)
	TouchLastLogin(ctx context.Context, userID int64) error
}

type Service struct {
	store UserStore
	cost  int
}

func NewService(store UserStore) *Service {
	return &Service{store: store, cost: bcrypt.DefaultCost}
}

// Register creates a new account. The username is trimmed and matched
// case-sensitively; the password is stored as a bcrypt hash.
func (s *Service) Register(ctx context.Context, username, password string) (storage.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen {
		return storage.User{}, ErrUsernameTooShort
	}
	if len(password) < minPasswordLen {
		return storage.User{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return storage.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, string(hash))
	if errors.Is(err, storage.ErrUsernameTaken) {
		return storage.User{}, ErrUsernameTaken
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and touches last_login. A missing user and
// a wrong password report the same error.
func (s *Service) Login(ctx context.Context, username, password string) (storage.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return storage.User{}, ErrInvalidCredentials
	}

	if err := s.store.TouchLastLogin(ctx, user.ID); err != nil {
		slog.WarnContext(ctx, "Failed to update last login", "user_id", user.ID, "error", err)
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID, "username", user.Username)
	return user, nil
}
