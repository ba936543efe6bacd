package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// User is an account allowed to sign in
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// UserStore looks up accounts by username
type UserStore interface {
	ByUsername(ctx context.Context, username string) (User, bool, error)
}

// MemoryUserStore keeps accounts in memory. Usernames are case-insensitive.
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[string]User
	nextID int64
}

// NewMemoryUserStore creates an empty store
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]User), nextID: 1}
}

// Add registers a user with an existing bcrypt hash and returns it with its id
func (s *MemoryUserStore) Add(username, passwordHash string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, fmt.Errorf("username is required")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return User{}, fmt.Errorf("password hash for %q is not a bcrypt hash: %w", username, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(username)
	if _, exists := s.users[key]; exists {
		return User{}, fmt.Errorf("user %q already exists", username)
	}
	u := User{ID: s.nextID, Username: username, PasswordHash: passwordHash}
	s.users[key] = u
	s.nextID++
	return u, nil
}

// ByUsername implements UserStore
func (s *MemoryUserStore) ByUsername(_ context.Context, username string) (User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(username))]
	return u, ok, nil
}

// Len returns the number of registered users
func (s *MemoryUserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
