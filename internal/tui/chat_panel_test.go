package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/ragchat/internal/api"
	"github.com/diogo/ragchat/internal/chat"
	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
	"github.com/diogo/ragchat/internal/render"
)

func settled(a App) bool {
	return !a.chat.transcript.InFlight()
}

func TestChatPanel_SendStreamsAnswer(t *testing.T) {
	client := &api.MockGatewayClient{ChatChunks: []string{"Hel", "lo ", "there"}}
	h := newHarness(t, client, "sk-test")

	h.runes("  hi  ")
	h.key(tea.KeyEnter)

	if h.app().chat.transcript.Phase() != chat.PhaseAwaitingFirstByte {
		t.Fatalf("phase after send = %s, want awaiting-first-byte", h.app().chat.transcript.Phase())
	}
	if got := h.app().chat.textarea.Value(); got != "" {
		t.Errorf("input not cleared after send: %q", got)
	}

	app := h.runUntil(settled)
	msgs := app.chat.transcript.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[0].Content != "hi" {
		t.Errorf("user message = %+v", msgs[0])
	}
	if msgs[1].Role != models.RoleAssistant || msgs[1].Content != "Hello there" || msgs[1].State != models.StateComplete {
		t.Errorf("assistant message = %+v", msgs[1])
	}
	if app.chat.transcript.StreamingCount() != 0 {
		t.Error("no message should be streaming after the exchange")
	}

	if client.ChatRequestCount() != 1 {
		t.Fatalf("chat requests = %d, want 1", client.ChatRequestCount())
	}
	req := client.ChatRequests[0]
	if req.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", req.APIKey)
	}
	if req.UserMessage != "hi" {
		t.Errorf("UserMessage = %q", req.UserMessage)
	}
	if req.Model != models.DefaultModel.Name {
		t.Errorf("Model = %q, want %q", req.Model, models.DefaultModel.Name)
	}
	if req.DeveloperMessage != models.DefaultDeveloperMessage {
		t.Errorf("DeveloperMessage = %q", req.DeveloperMessage)
	}
}

func TestChatPanel_EmptyInputIgnored(t *testing.T) {
	client := &api.MockGatewayClient{}
	h := newHarness(t, client, "sk-test")

	h.runes("   ")
	h.key(tea.KeyEnter)

	if h.app().chat.transcript.Len() != 0 {
		t.Error("whitespace input should not start an exchange")
	}
	if client.ChatRequestCount() != 0 {
		t.Error("no request expected")
	}
}

func TestChatPanel_MissingCredential(t *testing.T) {
	client := &api.MockGatewayClient{}
	h := newHarness(t, client, "")

	h.runes("hi")
	h.key(tea.KeyEnter)

	app := h.app()
	if app.chat.warning != MissingKeyWarning {
		t.Errorf("warning = %q, want %q", app.chat.warning, MissingKeyWarning)
	}
	if app.chat.transcript.Len() != 0 {
		t.Error("transcript should stay empty")
	}
	if client.ChatRequestCount() != 0 {
		t.Error("no request expected without a credential")
	}
	if !strings.Contains(app.View(), MissingKeyWarning) {
		t.Error("view should show the missing key warning")
	}
}

func TestChatPanel_FailureKeepsPartialText(t *testing.T) {
	tests := []struct {
		name      string
		chunks    []string
		err       error
		wantCount int
		wantError string
	}{
		{
			name:      "after partial text",
			chunks:    []string{"par", "tial"},
			err:       errors.New("connection reset"),
			wantCount: 3,
			wantError: "Sorry, I encountered an error: connection reset",
		},
		{
			name:      "before first byte",
			err:       apierrors.NewAPIError(500, models.PathChat, "HTTP error! status: 500"),
			wantCount: 2,
			wantError: "Sorry, I encountered an error: HTTP error! status: 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &api.MockGatewayClient{ChatChunks: tt.chunks, ChatErr: tt.err}
			h := newHarness(t, client, "sk-test")

			h.runes("hi")
			h.key(tea.KeyEnter)
			app := h.runUntil(settled)

			if app.chat.transcript.Phase() != chat.PhaseFailed {
				t.Errorf("phase = %s, want failed", app.chat.transcript.Phase())
			}
			msgs := app.chat.transcript.Messages()
			if len(msgs) != tt.wantCount {
				t.Fatalf("got %d messages, want %d", len(msgs), tt.wantCount)
			}
			last := msgs[len(msgs)-1]
			if !last.IsError() || last.Content != tt.wantError {
				t.Errorf("last message = %+v, want error %q", last, tt.wantError)
			}
			if len(tt.chunks) > 0 && msgs[1].Content != "partial" {
				t.Errorf("partial text = %q", msgs[1].Content)
			}
			if app.chat.transcript.StreamingCount() != 0 {
				t.Error("no message should still be streaming")
			}
		})
	}
}

func TestChatPanel_ClearCancelsExchange(t *testing.T) {
	client := &api.MockGatewayClient{ChatChunks: []string{"abc"}, BlockUntilDone: true}
	h := newHarness(t, client, "sk-test")

	h.runes("hi")
	h.key(tea.KeyEnter)
	h.runUntil(func(a App) bool { return a.chat.transcript.Phase() == chat.PhaseStreaming })

	h.key(tea.KeyCtrlL)
	app := h.app()
	if app.chat.transcript.Len() != 0 {
		t.Errorf("transcript has %d messages after clear", app.chat.transcript.Len())
	}
	if app.chat.transcript.InFlight() {
		t.Error("clear should end the exchange")
	}
	if app.chat.cancel != nil {
		t.Error("cancel func should be released")
	}
}

func TestChatPanel_StaleEventsDropped(t *testing.T) {
	h := newHarness(t, &api.MockGatewayClient{}, "sk-test")

	events := make(chan chat.Event)
	close(events)
	h.send(streamEventMsg{event: chat.Event{ExchangeID: "gone", Chunk: "late"}, events: events})
	h.send(streamEventMsg{event: chat.Event{ExchangeID: "gone", Done: true}, events: events})

	if h.app().chat.transcript.Len() != 0 {
		t.Error("events for an unknown exchange must not change the transcript")
	}
}

func TestChatPanel_ModelCycle(t *testing.T) {
	client := &api.MockGatewayClient{ChatChunks: []string{"ok"}}
	h := newHarness(t, client, "sk-test")

	before := h.app().chat.model
	h.key(tea.KeyCtrlO)
	after := h.app().chat.model
	if after.Name == before.Name {
		t.Fatal("ctrl+o should select the next model")
	}
	if !strings.Contains(h.app().View(), after.Label) {
		t.Error("view should show the selected model")
	}

	h.runes("hi")
	h.key(tea.KeyEnter)
	h.runUntil(settled)
	if got := client.ChatRequests[0].Model; got != after.Name {
		t.Errorf("request model = %q, want %q", got, after.Name)
	}
}

func TestChatPanel_SystemMessageEditor(t *testing.T) {
	client := &api.MockGatewayClient{ChatChunks: []string{"ok"}}
	h := newHarness(t, client, "sk-test")

	h.key(tea.KeyCtrlE)
	if !h.app().chat.editingSystem {
		t.Fatal("ctrl+e should open the system editor")
	}

	app := h.app()
	app.chat.systemInput.SetValue("")
	h.model = app
	h.runes("Answer in French.")
	h.key(tea.KeyEnter)

	if h.app().chat.editingSystem {
		t.Fatal("enter should close the system editor")
	}
	if got := h.app().chat.developerMessage; got != "Answer in French." {
		t.Errorf("developerMessage = %q", got)
	}

	h.runes("hi")
	h.key(tea.KeyEnter)
	h.runUntil(settled)
	if got := client.ChatRequests[0].DeveloperMessage; got != "Answer in French." {
		t.Errorf("request developer message = %q", got)
	}
}

func TestChatPanel_CopyLastAnswer(t *testing.T) {
	client := &api.MockGatewayClient{ChatChunks: []string{"copy ", "me"}}
	h := newHarness(t, client, "sk-test")

	h.key(tea.KeyCtrlY)
	if h.app().chat.warning != "Nothing to copy yet" {
		t.Errorf("warning = %q", h.app().chat.warning)
	}

	h.runes("hi")
	h.key(tea.KeyEnter)
	h.runUntil(settled)

	h.key(tea.KeyCtrlY)
	if len(h.copied) != 1 || h.copied[0] != "copy me" {
		t.Errorf("copied = %v", h.copied)
	}
}

func TestChatPanel_AutoCopy(t *testing.T) {
	client := &api.MockGatewayClient{ChatChunks: []string{"auto"}}
	h := newHarness(t, client, "sk-test")
	h.app().env.cfg.CopyToClipboard = true

	h.runes("hi")
	h.key(tea.KeyEnter)
	h.runUntil(settled)

	if len(h.copied) != 1 || h.copied[0] != "auto" {
		t.Errorf("copied = %v", h.copied)
	}
}

func TestChatPanel_SaveTranscript(t *testing.T) {
	client := &api.MockGatewayClient{ChatChunks: []string{"Go is ", "a language"}}
	h := newHarness(t, client, "sk-test")

	h.key(tea.KeyCtrlS)
	if h.app().chat.warning != "Nothing to save yet" {
		t.Errorf("warning = %q", h.app().chat.warning)
	}

	h.runes("What is Go?")
	h.key(tea.KeyEnter)
	h.runUntil(settled)

	h.key(tea.KeyCtrlS)
	if h.app().chat.warning != "" {
		t.Errorf("warning = %q", h.app().chat.warning)
	}
	if !strings.Contains(h.app().chat.notice, "What is Go?") {
		t.Errorf("notice = %q", h.app().chat.notice)
	}

	saved, err := h.history.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("saved conversations = %d, want 1", len(saved))
	}
	conv := saved[0]
	if conv.Title != "What is Go?" || conv.Model != models.DefaultModel.Name {
		t.Errorf("conversation = %+v", conv)
	}
	if len(conv.Messages) != 2 || conv.Messages[1].Content != "Go is a language" {
		t.Errorf("messages = %+v", conv.Messages)
	}
}

func TestChatPanel_SaveWhileStreaming(t *testing.T) {
	client := &api.MockGatewayClient{ChatChunks: []string{"partial"}, BlockUntilDone: true}
	h := newHarness(t, client, "sk-test")

	h.runes("hi")
	h.key(tea.KeyEnter)
	h.key(tea.KeyCtrlS)

	if h.app().chat.warning != "Wait for the answer to finish before saving" {
		t.Errorf("warning = %q", h.app().chat.warning)
	}
	if saved, _ := h.history.List(); len(saved) != 0 {
		t.Error("nothing should be saved mid-stream")
	}
}

func TestRenderMessage(t *testing.T) {
	opts := render.DefaultOptions()

	tests := []struct {
		name string
		msg  models.ChatMessage
		want string
	}{
		{"user", models.UserMessage("question"), "You"},
		{"streaming", models.ChatMessage{Role: models.RoleAssistant, Content: "par", State: models.StateStreaming}, "▌"},
		{"failed", models.ErrorMessage(errors.New("boom")), "boom"},
		{"complete", models.ChatMessage{Role: models.RoleAssistant, Content: "done", State: models.StateComplete}, "Assistant"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderMessage(tt.msg, opts, 60); !strings.Contains(got, tt.want) {
				t.Errorf("renderMessage() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer line", 8, "a lon..."},
		{"tiny", 3, "tiny"},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
