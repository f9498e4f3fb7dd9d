package models

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	apierrors "github.com/diogo/ragchat/internal/errors"
)

func TestAllModels(t *testing.T) {
	models := AllModels()

	if len(models) != 3 {
		t.Fatalf("Expected 3 models, got %d", len(models))
	}

	for _, model := range models {
		if model.Name == "" {
			t.Error("Model name should not be empty")
		}
		if model.Label == "" {
			t.Error("Model label should not be empty")
		}
	}
}

func TestModelFromName(t *testing.T) {
	tests := []struct {
		name     string
		expected Model
	}{
		{"gpt-4.1-mini", ModelGPT41Mini},
		{"gpt-4", ModelGPT4},
		{"gpt-3.5-turbo", ModelGPT35},
		{"", DefaultModel},
		{"my-custom", Model{Name: "my-custom", Label: "my-custom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ModelFromName(tt.name)
			if got != tt.expected {
				t.Errorf("ModelFromName(%q) = %+v, want %+v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestNextModel(t *testing.T) {
	if got := NextModel(ModelGPT41Mini); got != ModelGPT4 {
		t.Errorf("NextModel(mini) = %v", got)
	}
	if got := NextModel(ModelGPT35); got != ModelGPT41Mini {
		t.Errorf("NextModel should wrap, got %v", got)
	}
	if got := NextModel(Model{Name: "other"}); got != ModelGPT41Mini {
		t.Errorf("NextModel(unknown) = %v", got)
	}
}

func TestRoleAndStateStrings(t *testing.T) {
	if RoleUser.String() != "user" || RoleAssistant.String() != "assistant" {
		t.Error("unexpected role strings")
	}
	if Role(9).String() != "Role(9)" {
		t.Errorf("unknown role = %s", Role(9).String())
	}
	if StateStreaming.String() != "streaming" || StateFailed.String() != "failed" || StateComplete.String() != "complete" {
		t.Error("unexpected state strings")
	}
}

func TestMessageConstructors(t *testing.T) {
	u := UserMessage("hi")
	if u.Role != RoleUser || u.Streaming() || u.IsError() {
		t.Errorf("UserMessage = %+v", u)
	}

	p := PlaceholderMessage()
	if p.Role != RoleAssistant || !p.Streaming() || p.Content != "" {
		t.Errorf("PlaceholderMessage = %+v", p)
	}

	e := ErrorMessage(errors.New("boom"))
	if !e.IsError() || e.Streaming() {
		t.Errorf("ErrorMessage state = %v", e.State)
	}
	if e.Content != "Sorry, I encountered an error: boom" {
		t.Errorf("ErrorMessage content = %q", e.Content)
	}
}

func TestErrorMessage_GatewayErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "http status",
			err:  apierrors.NewAPIError(500, PathChat, "HTTP error! status: 500"),
			want: "Sorry, I encountered an error: HTTP error! status: 500",
		},
		{
			name: "wrapped http status",
			err:  fmt.Errorf("send: %w", apierrors.NewAPIError(401, PathChat, "HTTP error! status: 401")),
			want: "Sorry, I encountered an error: HTTP error! status: 401",
		},
		{
			name: "transport",
			err:  apierrors.NewNetworkError("chat", PathChat, errors.New("connection refused")),
			want: "Sorry, I encountered an error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err).Content; got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUploadResultResolve(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name        string
		result      UploadResult
		wantContent string
		wantChunks  int
	}{
		{"both present", UploadResult{Content: "body", HasContent: true, Chunks: 3, HasChunks: true}, "body", 3},
		{"missing fields", UploadResult{}, FallbackDocumentContent, 0},
		{"empty content", UploadResult{Content: "", HasContent: true}, FallbackDocumentContent, 0},
		{"zero chunks", UploadResult{Content: "x", HasContent: true, Chunks: 0, HasChunks: true}, "x", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tt.result.Resolve("id-1", "a.txt", 10, "text/plain", at)
			if doc.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", doc.Content, tt.wantContent)
			}
			if doc.Chunks != tt.wantChunks {
				t.Errorf("Chunks = %d, want %d", doc.Chunks, tt.wantChunks)
			}
			if doc.ID != "id-1" || doc.Name != "a.txt" || doc.Size != 10 || !doc.UploadedAt.Equal(at) {
				t.Errorf("metadata not copied: %+v", doc)
			}
		})
	}
}

func TestDocumentPreview(t *testing.T) {
	short := Document{Content: "hello"}
	if short.Preview() != "hello..." {
		t.Errorf("Preview() = %q", short.Preview())
	}

	long := Document{Content: strings.Repeat("a", 400)}
	if got := long.Preview(); got != strings.Repeat("a", 150)+"..." {
		t.Errorf("Preview() length = %d", len(got))
	}
}

func TestMediaTypeForFile(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"notes.txt", "text/plain", true},
		{"paper.PDF", "application/pdf", true},
		{"README.md", "text/markdown", true},
		{"image.png", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		got, ok := MediaTypeForFile(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MediaTypeForFile(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
