package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/ragchat/internal/render"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"),
	lipgloss.Color("#feca57"),
	lipgloss.Color("#48dbfb"),
	lipgloss.Color("#ff9ff3"),
	lipgloss.Color("#54a0ff"),
	lipgloss.Color("#5f27cd"),
	lipgloss.Color("#00d2d3"),
	lipgloss.Color("#1dd1a1"),
}

// spinner draws an animated status line on a terminal writer
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	started bool
	stopped bool // Flag to prevent double-close
}

func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "▓", "▒", "░"}

	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	var bar strings.Builder
	for i := 0; i < 12; i++ {
		style := lipgloss.NewStyle().Foreground(gradientColors[(i+s.frame)%len(gradientColors)])
		bar.WriteString(style.Render(barChars[(i+s.frame/2)%len(barChars)]))
	}

	msg := lipgloss.NewStyle().Foreground(render.CurrentPalette().Text).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s", spinnerChar, bar.String(), msg)
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// halt clears the line; safe to call on a spinner that never started
func (s *spinner) halt() {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	s.stopOnce()
	if started {
		<-s.done
	}
}

// stopWithSuccess stops the spinner and shows a success message
func (s *spinner) stopWithSuccess(message string) {
	s.halt()
	fmt.Fprintln(s.out, successLine(message))
}

// startSpinner returns a running spinner, or nil when out is not a terminal
func startSpinner(out io.Writer, message string) *spinner {
	if !isTerminal(out) {
		return nil
	}
	s := newSpinner(out, message)
	s.start()
	return s
}
