package memory

import (
	"context"
	"sync"
	"time"

	"github.com/abaila/abaila/internal/storage"
)

type refreshRecord struct {
	userID    int64
	expiresAt time.Time
}

type RefreshTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]refreshRecord
	byUser map[int64]string
}

func NewRefreshTokenStore() *RefreshTokenStore {
	return &RefreshTokenStore{
		tokens: make(map[string]refreshRecord),
		byUser: make(map[int64]string),
	}
}

func (s *RefreshTokenStore) Save(_ context.Context, userID int64, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byUser[userID]; ok {
		delete(s.tokens, old)
	}
	s.tokens[token] = refreshRecord{userID: userID, expiresAt: time.Now().Add(ttl)}
	s.byUser[userID] = token
	return nil
}

func (s *RefreshTokenStore) UserID(_ context.Context, token string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.tokens[token]
	if !ok || time.Now().After(rec.expiresAt) {
		return 0, storage.ErrRefreshNotFound
	}
	return rec.userID, nil
}

func (s *RefreshTokenStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.tokens[token]; ok {
		delete(s.byUser, rec.userID)
		delete(s.tokens, token)
	}
	return nil
}

func (s *RefreshTokenStore) DeleteAllForUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.byUser[userID]; ok {
		delete(s.tokens, token)
		delete(s.byUser, userID)
	}
	return nil
}
