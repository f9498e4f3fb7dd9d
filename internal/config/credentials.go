package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zalando/go-keyring"
)

// Keyring coordinates for the API key
const (
	KeyringService = "ragchat"
	KeyringUser    = "api_key"
)

// CredentialStore persists the single API key. Load returns "" when nothing is stored.
type CredentialStore interface {
	Load() (string, error)
	Save(value string) error
	Clear() error
}

// OpenCredentialStore returns the store selected by cfg.CredentialStore
func OpenCredentialStore(cfg Config) (CredentialStore, error) {
	switch cfg.CredentialStore {
	case "", CredentialStoreFile:
		path, err := GetCredentialPath()
		if err != nil {
			return nil, err
		}
		return NewFileCredentialStore(path), nil
	case CredentialStoreKeyring:
		return NewKeyringCredentialStore(KeyringService, KeyringUser), nil
	default:
		return nil, fmt.Errorf("unknown credential store: %s", cfg.CredentialStore)
	}
}

type credentialFile struct {
	APIKey string `json:"api_key"`
}

// FileCredentialStore keeps the key in a 0600 JSON file
type FileCredentialStore struct {
	path string
	mu   sync.Mutex
}

// NewFileCredentialStore creates a store backed by path
func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

// Path returns the backing file path
func (s *FileCredentialStore) Path() string {
	return s.path
}

// Load reads the key; a missing file yields ""
func (s *FileCredentialStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read credential file: %w", err)
	}

	var cf credentialFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return "", fmt.Errorf("invalid credential file: %w", err)
	}
	return cf.APIKey, nil
}

// Save writes the key, overwriting any previous value
func (s *FileCredentialStore) Save(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	data, err := json.MarshalIndent(credentialFile{APIKey: value}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	// Owner read/write only
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}

// Clear removes the file. Clearing an absent credential is not an error.
func (s *FileCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}

// KeyringCredentialStore keeps the key in the OS keyring
type KeyringCredentialStore struct {
	service string
	user    string
}

// NewKeyringCredentialStore creates a keyring-backed store
func NewKeyringCredentialStore(service, user string) *KeyringCredentialStore {
	return &KeyringCredentialStore{service: service, user: user}
}

// Load reads the key; a missing entry yields ""
func (s *KeyringCredentialStore) Load() (string, error) {
	value, err := keyring.Get(s.service, s.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read keyring: %w", err)
	}
	return value, nil
}

// Save writes the key to the keyring
func (s *KeyringCredentialStore) Save(value string) error {
	if err := keyring.Set(s.service, s.user, value); err != nil {
		return fmt.Errorf("failed to write keyring: %w", err)
	}
	return nil
}

// Clear deletes the keyring entry
func (s *KeyringCredentialStore) Clear() error {
	if err := keyring.Delete(s.service, s.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keyring entry: %w", err)
	}
	return nil
}

// MemoryCredentialStore is a process-local store, used with --no-persist and in tests
type MemoryCredentialStore struct {
	mu    sync.Mutex
	value string
	saves int
}

// NewMemoryCredentialStore creates an in-memory store holding initial
func NewMemoryCredentialStore(initial string) *MemoryCredentialStore {
	return &MemoryCredentialStore{value: initial}
}

func (s *MemoryCredentialStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, nil
}

func (s *MemoryCredentialStore) Save(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.saves++
	return nil
}

func (s *MemoryCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = ""
	return nil
}

// Saves returns how many times Save was called
func (s *MemoryCredentialStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
