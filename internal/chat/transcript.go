// Package chat holds the chat transcript and the exchange state machine
// that feeds streamed text into it.
package chat

import (
	"strings"

	"github.com/google/uuid"

	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
)

// Phase is the state of the current exchange
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingFirstByte
	PhaseStreaming
	PhaseSettled
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingFirstByte:
		return "awaiting-first-byte"
	case PhaseStreaming:
		return "streaming"
	case PhaseSettled:
		return "settled"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transcript is the ordered list of chat messages. While an exchange is in
// flight the last message is its streaming placeholder. Every mutation
// swaps in a new slice, so a slice returned by Messages is a stable snapshot.
type Transcript struct {
	messages   []models.ChatMessage
	phase      Phase
	exchangeID string
	newID      func() string
}

// NewTranscript creates an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{newID: uuid.NewString}
}

// Phase returns the state of the current exchange
func (t *Transcript) Phase() Phase {
	return t.phase
}

// InFlight reports whether an exchange is awaiting bytes or streaming
func (t *Transcript) InFlight() bool {
	return t.phase == PhaseAwaitingFirstByte || t.phase == PhaseStreaming
}

// ExchangeID returns the id of the in-flight exchange, or ""
func (t *Transcript) ExchangeID() string {
	if !t.InFlight() {
		return ""
	}
	return t.exchangeID
}

// Messages returns the current snapshot
func (t *Transcript) Messages() []models.ChatMessage {
	return t.messages
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Begin appends the user message and an empty streaming placeholder and
// returns the new exchange id.
func (t *Transcript) Begin(userText string) (string, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return "", apierrors.NewEmptyInputError("message")
	}
	if t.InFlight() {
		return "", apierrors.ErrExchangeInFlight
	}

	next := make([]models.ChatMessage, 0, len(t.messages)+2)
	next = append(next, t.messages...)
	next = append(next, models.UserMessage(userText), models.PlaceholderMessage())
	t.messages = next

	t.exchangeID = t.newID()
	t.phase = PhaseAwaitingFirstByte
	return t.exchangeID, nil
}

// Append concatenates chunk onto the placeholder. Chunks for any exchange
// other than the in-flight one are dropped and Append returns false.
func (t *Transcript) Append(id, chunk string) bool {
	if !t.owns(id) {
		return false
	}
	if chunk == "" {
		return true
	}

	last := t.messages[len(t.messages)-1]
	last.Content += chunk
	t.replaceLast(last)
	t.phase = PhaseStreaming
	return true
}

// Finish freezes the placeholder
func (t *Transcript) Finish(id string) bool {
	if !t.owns(id) {
		return false
	}

	last := t.messages[len(t.messages)-1]
	last.State = models.StateComplete
	t.replaceLast(last)
	t.phase = PhaseSettled
	return true
}

// Fail ends the exchange with an error. A placeholder that already holds
// text is frozen, an empty one is removed, then an error message is appended.
func (t *Transcript) Fail(id string, err error) bool {
	if !t.owns(id) {
		return false
	}

	t.settlePlaceholder()
	next := make([]models.ChatMessage, 0, len(t.messages)+1)
	next = append(next, t.messages...)
	t.messages = append(next, models.ErrorMessage(err))
	t.phase = PhaseFailed
	return true
}

// Abort ends the exchange without an error message, as when the user stops
// the response. Partial text is kept.
func (t *Transcript) Abort(id string) bool {
	if !t.owns(id) {
		return false
	}
	t.settlePlaceholder()
	t.phase = PhaseSettled
	return true
}

// Clear discards every message, including an in-flight placeholder. The
// caller is responsible for cancelling the request.
func (t *Transcript) Clear() {
	t.messages = nil
	t.exchangeID = ""
	t.phase = PhaseIdle
}

// StreamingCount returns how many messages are still streaming
func (t *Transcript) StreamingCount() int {
	n := 0
	for _, m := range t.messages {
		if m.Streaming() {
			n++
		}
	}
	return n
}

// LastAnswer returns the content of the most recent completed assistant reply
func (t *Transcript) LastAnswer() (string, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		m := t.messages[i]
		if m.Role == models.RoleAssistant && m.State == models.StateComplete && m.Content != "" {
			return m.Content, true
		}
	}
	return "", false
}

func (t *Transcript) owns(id string) bool {
	return id != "" && id == t.exchangeID && t.InFlight() &&
		len(t.messages) > 0 && t.messages[len(t.messages)-1].Streaming()
}

func (t *Transcript) settlePlaceholder() {
	last := t.messages[len(t.messages)-1]
	if last.Content == "" {
		next := make([]models.ChatMessage, len(t.messages)-1)
		copy(next, t.messages)
		t.messages = next
		return
	}
	last.State = models.StateComplete
	t.replaceLast(last)
}

func (t *Transcript) replaceLast(m models.ChatMessage) {
	next := make([]models.ChatMessage, len(t.messages))
	copy(next, t.messages)
	next[len(next)-1] = m
	t.messages = next
}
