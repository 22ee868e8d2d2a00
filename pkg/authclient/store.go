package authclient

import (
	"context"
	"sync"
)

// Storage keys shared by every persistent SessionStore.
const (
	AccessTokenKey  = "token"
	RefreshTokenKey = "refreshToken"
)

// Pair is the access/refresh couple held by one client session.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// SessionStore holds the credential pair of one client session. Missing values
// are reported as empty strings, not errors.
type SessionStore interface {
	SetPair(ctx context.Context, pair Pair) error
	Access(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// MemoryStore is a process-local SessionStore.
type MemoryStore struct {
	mu   sync.RWMutex
	pair Pair
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SetPair(_ context.Context, pair Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	return nil
}

func (s *MemoryStore) Access(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.AccessToken, nil
}

func (s *MemoryStore) Refresh(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.RefreshToken, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	return nil
}
