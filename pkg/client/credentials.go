package client

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

// Credentials is the persisted session: all three parts must be present for
// a restore to succeed.
type Credentials struct {
	Token  string    `json:"token"`
	APIKey string    `json:"apiKey"`
	User   *Merchant `json:"user"`
}

func (c Credentials) complete() bool {
	return c.Token != "" && c.APIKey != "" && c.User != nil
}

// CredentialStore persists credentials between runs.
type CredentialStore interface {
	Save(creds Credentials) error
	Load() (Credentials, error)
	Clear() error
}

// FileStore keeps credentials in a JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(creds Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) Load() (Credentials, error) {
	var creds Credentials
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return creds, nil
	}
	if err != nil {
		return creds, err
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		// Corrupt state is treated as logged out, not an error.
		return Credentials{}, nil
	}
	return creds, nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStore keeps credentials in memory only.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	return nil
}

func (s *MemoryStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	return nil
}
