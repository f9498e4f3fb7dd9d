// Package credential holds the API key used for gateway calls and
// validates candidate keys against the gateway.
package credential

import (
	"context"
	"strings"
	"sync"

	"github.com/diogo/ragchat/internal/config"
	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
)

// Status is the outcome of the last validation
type Status int

const (
	StatusUnknown Status = iota
	StatusValid
	StatusInvalid
	StatusTransportError
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	case StatusTransportError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is the user-facing text for the status; empty for StatusUnknown
func (s Status) Message() string {
	switch s {
	case StatusValid:
		return "API key is valid and working!"
	case StatusInvalid:
		return "Invalid API key. Please check and try again."
	case StatusTransportError:
		return "Error validating API key. Please check your connection."
	default:
		return ""
	}
}

// Prober is the part of the gateway client used for validation
type Prober interface {
	Health(ctx context.Context) (*models.HealthStatus, error)
	StreamChat(ctx context.Context, req models.ChatRequest, onChunk func(chunk string)) error
}

// Manager owns the in-memory credential. Storage is touched only by Save, Clear and Load.
type Manager struct {
	mu     sync.RWMutex
	store  config.CredentialStore
	prober Prober
	model  string
	value  string
	status Status
	// gen changes whenever value is replaced, so a validation that
	// started against an older value does not overwrite status.
	gen uint64
}

// Option configures a Manager
type Option func(*Manager)

// WithProbeModel sets the model used for the validation round-trip
func WithProbeModel(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.model = name
		}
	}
}

// NewManager creates a manager backed by store. prober may be nil when
// validation is never needed.
func NewManager(store config.CredentialStore, prober Prober, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		prober: prober,
		model:  models.DefaultModel.Name,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads the persisted credential into memory, once at startup
func (m *Manager) Load() error {
	value, err := m.store.Load()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.value = strings.TrimSpace(value)
	m.mu.Unlock()
	return nil
}

// Value returns the current credential, or ""
func (m *Manager) Value() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value
}

// HasCredential reports whether a non-empty credential is held
func (m *Manager) HasCredential() bool {
	return m.Value() != ""
}

// Status returns the last validation outcome
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Set replaces the in-memory credential without persisting it
func (m *Manager) Set(value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = strings.TrimSpace(value)
	m.status = StatusUnknown
	m.gen++
}

// Save trims value, holds it and overwrites durable storage immediately
func (m *Manager) Save(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return apierrors.NewEmptyInputError("api key")
	}
	if err := m.store.Save(value); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.value != value {
		m.status = StatusUnknown
		m.gen++
	}
	m.value = value
	return nil
}

// Clear removes the stored entry, then empties the in-memory value and the
// status. On a storage error the held credential is left untouched.
func (m *Manager) Clear() error {
	if err := m.store.Clear(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = ""
	m.status = StatusUnknown
	m.gen++
	return nil
}

// Validate probes the gateway with a candidate credential: a health check,
// then a minimal chat round-trip. It never returns an error; every failure
// is folded into the returned Status. The status is recorded only when
// value is still the held credential once the round-trip finishes.
func (m *Manager) Validate(ctx context.Context, value string) Status {
	value = strings.TrimSpace(value)

	m.mu.RLock()
	gen := m.gen
	m.mu.RUnlock()

	status := m.probe(ctx, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen == gen && m.value == value {
		m.status = status
	}
	return status
}

func (m *Manager) probe(ctx context.Context, value string) Status {
	if value == "" {
		return StatusInvalid
	}
	if m.prober == nil {
		return StatusTransportError
	}

	if _, err := m.prober.Health(ctx); err != nil {
		return StatusTransportError
	}

	err := m.prober.StreamChat(ctx, models.ChatRequest{
		DeveloperMessage: models.ValidationDeveloperMessage,
		UserMessage:      models.ValidationUserMessage,
		Model:            m.model,
		APIKey:           value,
	}, func(string) {})

	return classify(err)
}

func classify(err error) Status {
	switch {
	case err == nil:
		return StatusValid
	case apierrors.IsCancelled(err), apierrors.IsNetworkError(err):
		return StatusTransportError
	case apierrors.IsAPIError(err):
		return StatusInvalid
	default:
		return StatusTransportError
	}
}
