package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/diogo/ragchat/internal/render"
)

func successLine(msg string) string {
	p := render.CurrentPalette()
	check := lipgloss.NewStyle().Foreground(p.Success).Bold(true).Render("✓")
	return check + " " + lipgloss.NewStyle().Foreground(p.Success).Render(msg)
}

func warningLine(msg string) string {
	return lipgloss.NewStyle().Foreground(render.CurrentPalette().Warning).Render("⚠ " + msg)
}

func failureLine(msg string) string {
	return lipgloss.NewStyle().Foreground(render.CurrentPalette().Error).Render("✗ " + msg)
}

func dimLine(msg string) string {
	return lipgloss.NewStyle().Foreground(render.CurrentPalette().Muted).Render(msg)
}

// isTerminal reports whether w is a terminal
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or 80
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// readSecret reads a line from the terminal without echo
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// confirm asks a yes/no question on in
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// maskKey shows only the ends of a credential
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("•", len(key))
	}
	return key[:3] + strings.Repeat("•", 6) + key[len(key)-4:]
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
