package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/abaila/abaila/internal/models"
)

type AlertStore struct {
	mu     sync.RWMutex
	alerts map[int64][]models.Alert
}

func NewAlertStore() *AlertStore {
	return &AlertStore{alerts: make(map[int64][]models.Alert)}
}

func (s *AlertStore) CreateAlert(_ context.Context, userID int64, alert models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts[userID] = append(s.alerts[userID], alert)
	return nil
}

func (s *AlertStore) ListAlertsByCreator(_ context.Context, userID int64) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Alert, len(s.alerts[userID]))
	copy(out, s.alerts[userID])
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
