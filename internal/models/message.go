package models

import (
	"errors"
	"fmt"

	apierrors "github.com/diogo/ragchat/internal/errors"
)

// Role identifies the author of a transcript entry
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// MessageState is the lifecycle state of a transcript entry
type MessageState int

const (
	// StateComplete is a frozen message
	StateComplete MessageState = iota
	// StateStreaming is the placeholder still receiving chunks
	StateStreaming
	// StateFailed is a synthetic assistant message carrying an error
	StateFailed
)

func (s MessageState) String() string {
	switch s {
	case StateComplete:
		return "complete"
	case StateStreaming:
		return "streaming"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("MessageState(%d)", int(s))
	}
}

// ChatMessage is one entry of the chat transcript
type ChatMessage struct {
	Role    Role
	Content string
	State   MessageState
}

// Streaming reports whether the message is the in-progress placeholder
func (m ChatMessage) Streaming() bool {
	return m.State == StateStreaming
}

// IsError reports whether the message carries an error
func (m ChatMessage) IsError() bool {
	return m.State == StateFailed
}

// UserMessage builds a frozen user entry
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content, State: StateComplete}
}

// PlaceholderMessage builds an empty streaming assistant entry
func PlaceholderMessage() ChatMessage {
	return ChatMessage{Role: RoleAssistant, State: StateStreaming}
}

// ErrorMessage builds the assistant entry shown when an exchange fails.
// Gateway and transport errors contribute only their own message.
func ErrorMessage(err error) ChatMessage {
	return ChatMessage{
		Role:    RoleAssistant,
		Content: "Sorry, I encountered an error: " + failureText(err),
		State:   StateFailed,
	}
}

func failureText(err error) string {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var netErr *apierrors.NetworkError
	if errors.As(err, &netErr) && netErr.Err != nil {
		return netErr.Err.Error()
	}
	return fmt.Sprint(err)
}

// ChatRequest is the JSON body of POST /chat
type ChatRequest struct {
	DeveloperMessage string `json:"developer_message"`
	UserMessage      string `json:"user_message"`
	Model            string `json:"model"`
	APIKey           string `json:"api_key"`
}

// RAGQuery is the JSON body of POST /rag-query
type RAGQuery struct {
	Query         string `json:"query"`
	APIKey        string `json:"api_key"`
	K             int    `json:"k"`
	ResponseStyle string `json:"response_style"`
}

// RAG query defaults
const (
	DefaultRAGK             = 4
	DefaultRAGResponseStyle = "detailed"
)

// RAGContext is one retrieved passage with its similarity score
type RAGContext struct {
	Content string
	Score   float64
}

// RAGAnswer is the decoded /rag-query response
type RAGAnswer struct {
	Answer           string
	ContextCount     int
	SimilarityScores []string
	Contexts         []RAGContext
}

// HealthStatus is the decoded /health response
type HealthStatus struct {
	Status       string
	HasDocuments bool
}
