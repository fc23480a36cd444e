package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"budget/internal/storage"
)

type fakeUserStore struct {
	users      map[string]storage.User
	nextID     int64
	lastTouch  int64
	touchCalls int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]storage.User{}, nextID: 1}
}

func (f *fakeUserStore) CreateUser(_ context.Context, username, passwordHash string) (storage.User, error) {
	if _, ok := f.users[username]; ok {
		return storage.User{}, storage.ErrUsernameTaken
	}
	u := storage.User{ID: f.nextID, Username: username, PasswordHash: passwordHash}
	f.nextID++
	f.users[username] = u
	return u, nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (storage.User, error) {
	u, ok := f.users[username]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) TouchLastLogin(_ context.Context, userID int64) error {
	f.lastTouch = userID
	f.touchCalls++
	return nil
}

func TestRegisterValidation(t *testing.T) {
	s := NewService(newFakeUserStore())
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"short username", "ab", "secret123", ErrUsernameTooShort},
		{"whitespace username", "  a  ", "secret123", ErrUsernameTooShort},
		{"short password", "alice", "12345", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Register(ctx, tt.username, tt.password); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	store := newFakeUserStore()
	s := NewService(store)

	user, err := s.Register(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	if user.PasswordHash == "secret123" {
		t.Fatal("password stored in the clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := NewService(newFakeUserStore())
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "secret123"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Register(ctx, "alice", "different456"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	store := newFakeUserStore()
	s := NewService(store)
	ctx := context.Background()

	registered, err := s.Register(ctx, "alice", "secret123")
	if err != nil {
		t.Fatal(err)
	}

	user, err := s.Login(ctx, "alice", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %d, got %d", registered.ID, user.ID)
	}
	if store.touchCalls != 1 || store.lastTouch != registered.ID {
		t.Fatalf("expected last_login touched for user %d, got %d calls for %d",
			registered.ID, store.touchCalls, store.lastTouch)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := NewService(newFakeUserStore())
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "secret123"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Login(ctx, "alice", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := s.Login(ctx, "nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}
