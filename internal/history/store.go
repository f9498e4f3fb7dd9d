// Package history keeps saved chat transcripts under the config directory.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/ragchat/internal/config"
	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
)

const titleMaxRunes = 50

// Message is one saved transcript entry
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
	Failed  bool   `json:"failed,omitempty"`
}

// Conversation is a saved transcript
type Conversation struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Model            string    `json:"model"`
	DeveloperMessage string    `json:"developer_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	Messages         []Message `json:"messages"`
}

// Store reads and writes one JSON file per conversation
type Store struct {
	dir   string
	mu    sync.RWMutex
	now   func() time.Time
	newID func() string
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithClock sets the time source used for CreatedAt
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates the history directory under baseDir
func NewStore(baseDir string, opts ...StoreOption) (*Store, error) {
	dir := filepath.Join(baseDir, "history")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	s := &Store{
		dir:   dir,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultStore opens the store in ~/.ragchat/history
func DefaultStore() (*Store, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStore(dir)
}

// Dir returns the directory holding the conversation files
func (s *Store) Dir() string {
	return s.dir
}

// Save writes a snapshot of a transcript. The streaming placeholder, if
// any, is left out. A transcript with nothing settled is rejected.
func (s *Store) Save(model, developer string, messages []models.ChatMessage) (*Conversation, error) {
	conv := &Conversation{
		ID:               s.newID(),
		Model:            model,
		DeveloperMessage: developer,
		CreatedAt:        s.now(),
	}

	for _, m := range messages {
		if m.Streaming() {
			continue
		}
		conv.Messages = append(conv.Messages, Message{
			Role:    m.Role.String(),
			Content: m.Content,
			Failed:  m.IsError(),
		})
		if conv.Title == "" && m.Role == models.RoleUser {
			conv.Title = titleFrom(m.Content)
		}
	}
	if len(conv.Messages) == 0 {
		return nil, apierrors.NewEmptyInputError("transcript")
	}
	if conv.Title == "" {
		conv.Title = "Chat " + conv.CreatedAt.Format("2006-01-02 15:04")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Get loads a conversation by ID
func (s *Store) Get(id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(id)
}

// List returns every readable conversation, newest first
func (s *Store) List() ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var out []*Conversation
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		conv, err := s.read(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // corrupted file
		}
		out = append(out, conv)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes one conversation
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("conversation not found: %s", id)
		}
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// ClearAll deletes every conversation and returns how many were removed
func (s *Store) ClearAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read history directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("failed to delete %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+".json")
}

func (s *Store) read(id string) (*Conversation, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("conversation not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to parse conversation: %w", err)
	}
	return &conv, nil
}

func (s *Store) write(conv *Conversation) error {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	if err := os.WriteFile(s.path(conv.ID), data, 0o600); err != nil {
		return fmt.Errorf("failed to write conversation: %w", err)
	}
	return nil
}

func titleFrom(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	runes := []rune(title)
	if len(runes) > titleMaxRunes {
		return string(runes[:titleMaxRunes]) + "..."
	}
	return title
}
