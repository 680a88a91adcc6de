package client

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// RefreshTokenKey is the secret-store key the refresh credential lives
// under.
const RefreshTokenKey = "refreshToken"

var ErrSecretNotFound = errors.New("secret not found")

// SecretStore is an opaque scoped key-value store for long-lived
// credentials: the device keychain on mobile, a protected file on desktop.
// Implementations must survive process restarts where the platform allows.
type SecretStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

type MemorySecretStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

func NewMemorySecretStore() *MemorySecretStore {
	return &MemorySecretStore{secrets: make(map[string]string)}
}

func (s *MemorySecretStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.secrets[key]
	if !ok {
		return "", ErrSecretNotFound
	}
	return value, nil
}

func (s *MemorySecretStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.secrets[key] = value
	return nil
}

func (s *MemorySecretStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.secrets, key)
	return nil
}

// FileSecretStore keeps one 0600-perm file per key under a scoped
// directory, so credentials outlive the process.
type FileSecretStore struct {
	dir string
}

func NewFileSecretStore(dir string) (*FileSecretStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileSecretStore{dir: dir}, nil
}

func (s *FileSecretStore) Get(key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrSecretNotFound
		}
		return "", err
	}
	return string(data), nil
}

func (s *FileSecretStore) Set(key, value string) error {
	return os.WriteFile(s.path(key), []byte(value), 0o600)
}

func (s *FileSecretStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileSecretStore) path(key string) string {
	return filepath.Join(s.dir, filepath.Base(key))
}
