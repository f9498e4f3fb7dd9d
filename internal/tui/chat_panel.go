package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/ragchat/internal/chat"
	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
	"github.com/diogo/ragchat/internal/render"
)

// MissingKeyWarning is shown when an action needs a credential and none is set
const MissingKeyWarning = "Please enter your OpenAI API key in Settings first"

// chatPanel is the transcript, the input box and the exchange in flight
type chatPanel struct {
	env *session

	transcript *chat.Transcript
	cancel     context.CancelFunc

	model            models.Model
	developerMessage string
	editingSystem    bool
	systemInput      textinput.Model

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	warning   string
	notice    string
	noticeSeq int

	width  int
	height int
	ready  bool
}

func newChatPanel(env *session) chatPanel {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorMuted)
	ta.BlurredStyle = ta.FocusedStyle

	si := textinput.New()
	si.Placeholder = "System message"
	si.CharLimit = 2000
	si.Prompt = "⚙ "

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	developer := env.cfg.DeveloperMessage
	if strings.TrimSpace(developer) == "" {
		developer = models.DefaultDeveloperMessage
	}

	return chatPanel{
		env:              env,
		transcript:       chat.NewTranscript(),
		model:            models.ModelFromName(env.cfg.DefaultModel),
		developerMessage: developer,
		systemInput:      si,
		textarea:         ta,
		spinner:          s,
	}
}

func (p chatPanel) Init() tea.Cmd {
	return textarea.Blink
}

func (p *chatPanel) setSize(width, height int) {
	p.width = width
	p.height = height

	// header line, system line, input box, warning line
	vpHeight := height - 8
	if vpHeight < 3 {
		vpHeight = 3
	}
	if !p.ready {
		p.viewport = viewport.New(width, vpHeight)
		p.ready = true
	} else {
		p.viewport.Width = width
		p.viewport.Height = vpHeight
	}
	p.textarea.SetWidth(width - 4)
	p.systemInput.Width = width - 6
	p.refresh()
}

func (p chatPanel) Update(msg tea.Msg, focused bool) (chatPanel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case streamEventMsg:
		return p.handleEvent(msg)

	case streamClosedMsg:
		// The producer stopped without a Done event: its context ended.
		if p.transcript.Abort(msg.exchangeID) {
			p.releaseExchange()
			p.refresh()
		}
		return p, nil

	case spinner.TickMsg:
		if p.transcript.InFlight() {
			p.spinner, cmd = p.spinner.Update(msg)
			return p, cmd
		}
		return p, nil

	case credentialChangedMsg:
		if p.warning == MissingKeyWarning {
			p.warning = ""
		}
		return p, nil

	case noticeClearMsg:
		if msg.owner == tabChat && msg.seq == p.noticeSeq {
			p.notice = ""
		}
		return p, nil

	case tea.KeyMsg:
		if !focused {
			return p, nil
		}
		if p.editingSystem {
			return p.updateSystemEditor(msg)
		}

		switch msg.String() {
		case "enter":
			return p.send()

		case "esc":
			if p.transcript.InFlight() {
				p.stop()
				return p, nil
			}

		case "ctrl+l":
			p.clear()
			return p, nil

		case "ctrl+o":
			p.model = models.NextModel(p.model)
			after := p.flash(fmt.Sprintf("Model: %s", p.model.Label))
			return p, after

		case "ctrl+e":
			p.editingSystem = true
			p.systemInput.SetValue(p.developerMessage)
			p.systemInput.CursorEnd()
			p.textarea.Blur()
			after := p.systemInput.Focus()
			return p, after

		case "ctrl+y":
			after := p.copyLastAnswer()
			return p, after

		case "ctrl+s":
			after := p.saveTranscript()
			return p, after

		case "pgup", "pgdown", "ctrl+up", "ctrl+down":
			p.viewport, cmd = p.viewport.Update(msg)
			return p, cmd
		}

		p.textarea, cmd = p.textarea.Update(msg)
		cmds = append(cmds, cmd)
		return p, tea.Batch(cmds...)

	case tea.MouseMsg:
		p.viewport, cmd = p.viewport.Update(msg)
		return p, cmd
	}

	return p, nil
}

// send starts a new exchange from the input box
func (p chatPanel) send() (chatPanel, tea.Cmd) {
	input := strings.TrimSpace(p.textarea.Value())
	if input == "" || p.transcript.InFlight() {
		return p, nil
	}
	if !p.env.creds.HasCredential() {
		p.warning = MissingKeyWarning
		return p, nil
	}
	p.warning = ""

	// Only one exchange is live at a time.
	p.releaseExchange()

	id, err := p.transcript.Begin(input)
	if err != nil {
		p.warning = err.Error()
		return p, nil
	}
	p.textarea.Reset()

	ctx, cancel := context.WithCancel(p.env.ctx)
	p.cancel = cancel

	req := models.ChatRequest{
		DeveloperMessage: p.developerMessage,
		UserMessage:      input,
		Model:            p.model.Name,
		APIKey:           p.env.creds.Value(),
	}
	log.Printf("chat: exchange %s started (model %s)", id, req.Model)

	events := chat.Stream(ctx, p.env.client, id, req)
	p.refresh()
	p.viewport.GotoBottom()

	return p, tea.Batch(waitForEvent(id, events), p.spinner.Tick)
}

func (p chatPanel) handleEvent(msg streamEventMsg) (chatPanel, tea.Cmd) {
	ev := msg.event
	if !p.transcript.Apply(ev) {
		log.Printf("chat: dropped event for stale exchange %s", ev.ExchangeID)
		if ev.Done {
			return p, nil
		}
		// Drain the stale stream so its goroutine can finish.
		return p, waitForEvent(ev.ExchangeID, msg.events)
	}

	atBottom := p.viewport.AtBottom()
	p.refresh()
	if atBottom {
		p.viewport.GotoBottom()
	}

	if ev.Done {
		if ev.Err != nil {
			log.Printf("chat: exchange %s failed: %v", ev.ExchangeID, ev.Err)
		} else {
			log.Printf("chat: exchange %s settled", ev.ExchangeID)
		}
		p.releaseExchange()
		after := p.autoCopy()
		return p, after
	}
	return p, waitForEvent(ev.ExchangeID, msg.events)
}

// stop cancels the running exchange and keeps whatever text arrived
func (p *chatPanel) stop() {
	id := p.transcript.ExchangeID()
	p.releaseExchange()
	if p.transcript.Abort(id) {
		log.Printf("chat: exchange %s stopped by user", id)
	}
	p.refresh()
}

// clear discards the transcript and cancels the exchange in flight
func (p *chatPanel) clear() {
	p.releaseExchange()
	p.transcript.Clear()
	p.warning = ""
	p.refresh()
}

// shutdown cancels any exchange; called when the app quits
func (p *chatPanel) shutdown() {
	p.releaseExchange()
}

func (p *chatPanel) releaseExchange() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p chatPanel) updateSystemEditor(msg tea.KeyMsg) (chatPanel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := strings.TrimSpace(p.systemInput.Value())
		if value == "" {
			value = models.DefaultDeveloperMessage
		}
		p.developerMessage = value
		p.editingSystem = false
		p.systemInput.Blur()
		after := tea.Batch(p.textarea.Focus(), p.flash("System message updated"))
		return p, after
	case "esc":
		p.editingSystem = false
		p.systemInput.Blur()
		after := p.textarea.Focus()
		return p, after
	}

	var cmd tea.Cmd
	p.systemInput, cmd = p.systemInput.Update(msg)
	return p, cmd
}

func (p *chatPanel) copyLastAnswer() tea.Cmd {
	answer, ok := p.transcript.LastAnswer()
	if !ok {
		p.warning = "Nothing to copy yet"
		return nil
	}
	if err := p.env.clipboard(answer); err != nil {
		p.warning = fmt.Sprintf("Copy failed: %v", err)
		return nil
	}
	return p.flash("Copied last answer to clipboard")
}

func (p *chatPanel) saveTranscript() tea.Cmd {
	switch {
	case p.env.history == nil:
		p.warning = "History is unavailable"
		return nil
	case p.transcript.InFlight():
		p.warning = "Wait for the answer to finish before saving"
		return nil
	}

	conv, err := p.env.history.Save(p.model.Name, p.developerMessage, p.transcript.Messages())
	if err != nil {
		if errors.Is(err, apierrors.ErrEmptyInput) {
			p.warning = "Nothing to save yet"
		} else {
			p.warning = fmt.Sprintf("Save failed: %v", err)
		}
		return nil
	}
	log.Printf("transcript saved as %s", conv.ID)
	p.warning = ""
	return p.flash(fmt.Sprintf("Saved \"%s\" to history", truncate(conv.Title, 40)))
}

func (p *chatPanel) autoCopy() tea.Cmd {
	if !p.env.cfg.CopyToClipboard || p.transcript.Phase() != chat.PhaseSettled {
		return nil
	}
	return p.copyLastAnswer()
}

func (p *chatPanel) flash(text string) tea.Cmd {
	p.noticeSeq++
	p.notice = text
	return clearNoticeAfter(tabChat, p.noticeSeq)
}

// refresh re-renders the transcript into the viewport
func (p *chatPanel) refresh() {
	if !p.ready {
		return
	}

	bubbleWidth := p.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}
	opts := render.OptionsFromConfig(p.env.cfg.Markdown, bubbleWidth-4)

	var content strings.Builder
	for i, msg := range p.transcript.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(renderMessage(msg, opts, bubbleWidth))
		content.WriteString("\n")
	}
	p.viewport.SetContent(content.String())
}

func renderMessage(msg models.ChatMessage, opts render.Options, width int) string {
	body := render.MessageBody(msg, opts)

	switch msg.Role {
	case models.RoleUser:
		return userLabelStyle.Render("● You") + "\n" + userBubbleStyle.Width(width).Render(body)
	case models.RoleAssistant:
		label := assistantLabelStyle.Render("✦ Assistant")
		switch msg.State {
		case models.StateFailed:
			return label + "\n" + errorBubbleStyle.Width(width).Render(body)
		case models.StateStreaming:
			return label + "\n" + assistantBubbleStyle.Width(width).Render(body+"▌")
		case models.StateComplete:
			return label + "\n" + assistantBubbleStyle.Width(width).Render(body)
		}
	}
	return body
}

func (p chatPanel) View() string {
	if !p.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		subtitleStyle.Render("Model: "),
		valueStyle.Render(p.model.Label),
	)
	sections = append(sections, header)

	if p.editingSystem {
		sections = append(sections, p.systemInput.View())
	} else {
		sections = append(sections, hintStyle.Render(truncate("System: "+p.developerMessage, p.width)))
	}

	if p.transcript.Len() == 0 {
		sections = append(sections, p.renderWelcome())
	} else {
		sections = append(sections, p.viewport.View())
	}

	var input string
	switch p.transcript.Phase() {
	case chat.PhaseAwaitingFirstByte:
		input = p.spinner.View() + loadingStyle.Render(" Thinking...") + hintStyle.Render("  (esc to stop)")
	case chat.PhaseStreaming:
		input = p.spinner.View() + loadingStyle.Render(" Responding...") + hintStyle.Render("  (esc to stop)")
	default:
		input = lipgloss.JoinVertical(lipgloss.Left, inputLabelStyle.Render("You"), p.textarea.View())
	}
	sections = append(sections, inputPanelStyle.Width(p.width).Render(input))

	switch {
	case p.warning != "":
		sections = append(sections, warningStyle.Render("⚠ "+p.warning))
	case p.notice != "":
		sections = append(sections, successStyle.Render(p.notice))
	case !p.env.creds.HasCredential():
		sections = append(sections, warningStyle.Render("⚠ "+MissingKeyWarning))
	default:
		sections = append(sections, "")
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (p chatPanel) renderWelcome() string {
	lines := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("✦ Start a conversation"),
		"",
		subtitleStyle.Render("Ask anything, or upload documents in the Documents tab"),
	)
	return lipgloss.Place(p.viewport.Width, p.viewport.Height, lipgloss.Center, lipgloss.Center, lines)
}

func (p chatPanel) shortcuts() []string {
	if p.editingSystem {
		return []string{"Enter", "Save", "Esc", "Cancel"}
	}
	if p.transcript.InFlight() {
		return []string{"Esc", "Stop", "Ctrl+L", "Clear", "PgUp/PgDn", "Scroll"}
	}
	return []string{"Enter", "Send", "Ctrl+O", "Model", "Ctrl+E", "System", "Ctrl+Y", "Copy", "Ctrl+S", "Save", "Ctrl+L", "Clear"}
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 3 || len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
