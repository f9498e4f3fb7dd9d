package history

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format is an export format
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts "markdown", "md" or "json"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use markdown or json)", s)
	}
}

// Export renders conv in the given format
func Export(conv *Conversation, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(conv, "", "  ")
	case FormatMarkdown:
		return []byte(Markdown(conv)), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// Markdown renders conv as a markdown document
func Markdown(conv *Conversation) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(conv.Title)
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "**Model:** %s\n", conv.Model)
	fmt.Fprintf(&sb, "**Saved:** %s\n", conv.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "**Messages:** %d\n", len(conv.Messages))
	if conv.DeveloperMessage != "" {
		fmt.Fprintf(&sb, "\n> %s\n", strings.ReplaceAll(conv.DeveloperMessage, "\n", "\n> "))
	}
	sb.WriteString("\n---\n\n")

	for i, msg := range conv.Messages {
		role := "User"
		if msg.Role == "assistant" {
			role = "Assistant"
		}
		sb.WriteString("## ")
		sb.WriteString(role)
		if msg.Failed {
			sb.WriteString(" (error)")
		}
		sb.WriteString("\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(conv.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}
	return sb.String()
}
