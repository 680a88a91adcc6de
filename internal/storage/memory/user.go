package memory

import (
	"context"
	"sync"
	"time"

	"github.com/abaila/abaila/internal/models"
	"github.com/abaila/abaila/internal/storage"
)

type UserStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[int64]models.User)}
}

func (s *UserStore) CreateUser(_ context.Context, username, email, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			return nil, storage.ErrUserExists
		}
	}

	s.nextID++
	user := models.User{
		ID:           s.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[user.ID] = user
	return &user, nil
}

func (s *UserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (s *UserStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return &u, nil
}

func (s *UserStore) UpdateProfile(_ context.Context, id int64, email, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}

	for otherID, other := range s.users {
		if otherID != id && (other.Email == email || other.Username == username) {
			return storage.ErrUserExists
		}
	}

	u.Email = email
	u.Username = username
	s.users[id] = u
	return nil
}
