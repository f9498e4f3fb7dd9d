package render

import (
	"strings"

	"github.com/diogo/ragchat/internal/models"
)

// Markdown renders markdown for the terminal with a pooled renderer
func Markdown(content string, opts Options) (string, error) {
	renderer, release, err := acquire(opts)
	if err != nil {
		return "", err
	}
	defer release()

	return renderer.Render(content)
}

// MessageBody renders the body of a transcript entry. Completed assistant
// replies go through markdown; user text, errors and the text of a reply
// still streaming are shown as typed, since partial markdown reflows as
// it grows. Rendering errors fall back to the raw text.
func MessageBody(msg models.ChatMessage, opts Options) string {
	switch msg.Role {
	case models.RoleUser:
		return msg.Content
	case models.RoleAssistant:
		switch msg.State {
		case models.StateComplete:
			out, err := Markdown(msg.Content, opts)
			if err != nil {
				return msg.Content
			}
			return strings.Trim(out, "\n")
		case models.StateStreaming, models.StateFailed:
			return msg.Content
		}
	}
	return msg.Content
}
