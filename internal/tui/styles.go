// Package tui provides the terminal user interface for ragchat.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/render"
)

// Colour variables, refreshed from the active palette
var (
	colorSurface   lipgloss.Color
	colorBorder    lipgloss.Color
	colorActive    lipgloss.Color
	colorUser      lipgloss.Color
	colorAssistant lipgloss.Color
	colorSuccess   lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color
	colorText      lipgloss.Color
	colorMuted     lipgloss.Color
)

// Style variables (rebuilt when the palette changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	tabStyle       lipgloss.Style
	activeTabStyle lipgloss.Style

	panelStyle lipgloss.Style

	userLabelStyle       lipgloss.Style
	userBubbleStyle      lipgloss.Style
	assistantLabelStyle  lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	errorBubbleStyle     lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	successStyle lipgloss.Style

	docNameStyle     lipgloss.Style
	docSelectedStyle lipgloss.Style
	docMetaStyle     lipgloss.Style
	docPreviewStyle  lipgloss.Style

	sectionTitleStyle lipgloss.Style
	valueStyle        lipgloss.Style
	badgeOnStyle      lipgloss.Style
	badgeOffStyle     lipgloss.Style
)

func init() {
	UpdateTheme()
}

// UpdateTheme refreshes every style from render.CurrentPalette
func UpdateTheme() {
	p := render.CurrentPalette()

	colorSurface = p.Surface
	colorBorder = p.Border
	colorActive = p.ActiveTab
	colorUser = p.User
	colorAssistant = p.Assistant
	colorSuccess = p.Success
	colorWarning = p.Warning
	colorError = p.Error
	colorText = p.Text
	colorMuted = p.Muted

	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorActive).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorMuted)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Italic(true)

	tabStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Background(colorSurface).
		Bold(true).
		Underline(true).
		Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorUser).
		Bold(true).
		MarginLeft(4)

	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorUser).
		Padding(0, 1).
		MarginLeft(4)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorAssistant).
		Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorAssistant).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(4)

	errorBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorError).
		Foreground(colorError).
		Padding(0, 1).
		MarginRight(4)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorActive).
		Bold(true).
		MarginRight(1)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAssistant).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorMuted)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	warningStyle = lipgloss.NewStyle().
		Foreground(colorWarning)

	successStyle = lipgloss.NewStyle().
		Foreground(colorSuccess)

	docNameStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true)

	docSelectedStyle = lipgloss.NewStyle().
		Foreground(colorActive).
		Bold(true)

	docMetaStyle = lipgloss.NewStyle().
		Foreground(colorMuted)

	docPreviewStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Italic(true).
		PaddingLeft(2)

	sectionTitleStyle = lipgloss.NewStyle().
		Foreground(colorActive).
		Bold(true).
		MarginTop(1)

	valueStyle = lipgloss.NewStyle().
		Foreground(colorText)

	badgeOnStyle = lipgloss.NewStyle().
		Foreground(colorSurface).
		Background(colorSuccess).
		Bold(true).
		Padding(0, 1)

	badgeOffStyle = lipgloss.NewStyle().
		Foreground(colorSurface).
		Background(colorError).
		Bold(true).
		Padding(0, 1)
}

// renderShortcuts lays out key hints for a status bar
func renderShortcuts(width int, pairs ...string) string {
	var items []string
	for i := 0; i+1 < len(pairs); i += 2 {
		items = append(items, statusKeyStyle.Render(pairs[i])+statusDescStyle.Render(" "+pairs[i+1]))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// FormatError returns a styled error with the status code and a hint
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorMuted)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	switch {
	case errors.IsAuthError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check your API key with 'ragchat key validate'"))
	case errors.IsCancelled(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The request was cancelled"))
	case errors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Is the backend running? Check 'ragchat health'"))
	case errors.IsUploadError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Only .txt, .pdf and .md files are accepted"))
	}

	return sb.String()
}

// PrintError prints a styled error message
func PrintError(err error) {
	if err == nil {
		return
	}
	fmt.Println(FormatError(err))
}
