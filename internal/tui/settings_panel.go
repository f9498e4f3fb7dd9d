package tui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/ragchat/internal/config"
	"github.com/diogo/ragchat/internal/credential"
	"github.com/diogo/ragchat/internal/render"
)

// Preference rows, below the key input
const (
	prefDefaultModel = iota
	prefTUITheme
	prefMarkdownStyle
	prefCopyToClipboard
	prefCount
)

// settingsPanel manages the API key and a few persisted preferences
type settingsPanel struct {
	env *session

	keyInput   textinput.Model
	showKey    bool
	validating bool
	status     credential.Status
	// checkSeq identifies the newest validation; older results are dropped
	checkSeq int
	checking string

	// cursor is -1 on the key input, otherwise a pref row
	cursor int

	warning   string
	notice    string
	noticeSeq int

	width  int
	height int
}

func newSettingsPanel(env *session) settingsPanel {
	ki := textinput.New()
	ki.Placeholder = "sk-..."
	ki.Prompt = "🔑 "
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '•'
	ki.CharLimit = 256
	ki.SetValue(env.creds.Value())
	ki.Focus()

	return settingsPanel{
		env:      env,
		keyInput: ki,
		cursor:   -1,
		status:   env.creds.Status(),
	}
}

func (p *settingsPanel) setSize(width, height int) {
	p.width = width
	p.height = height
	p.keyInput.Width = width - 8
}

// typing reports whether keystrokes go to the key input
func (p settingsPanel) typing() bool {
	return p.cursor == -1 && p.keyInput.Focused()
}

func (p settingsPanel) Update(msg tea.Msg, focused bool) (settingsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case validationMsg:
		if msg.seq != p.checkSeq || !p.validating {
			log.Printf("settings: dropped stale validation result")
			return p, nil
		}
		p.validating = false
		p.checking = ""
		if msg.key != strings.TrimSpace(p.keyInput.Value()) {
			return p, nil
		}
		p.status = msg.status
		log.Printf("settings: validation finished: %s", msg.status)
		return p, nil

	case noticeClearMsg:
		if msg.owner == tabSettings && msg.seq == p.noticeSeq {
			p.notice = ""
		}
		return p, nil

	case tea.KeyMsg:
		if !focused {
			return p, nil
		}
		return p.handleKey(msg)
	}
	return p, nil
}

func (p settingsPanel) handleKey(msg tea.KeyMsg) (settingsPanel, tea.Cmd) {
	switch msg.String() {
	case "up":
		if p.cursor > -1 {
			p.cursor--
		}
		if p.cursor == -1 {
			after := p.keyInput.Focus()
			return p, after
		}
		return p, nil
	case "down":
		if p.cursor < prefCount-1 {
			p.cursor++
		}
		p.keyInput.Blur()
		return p, nil
	case "ctrl+r":
		p.showKey = !p.showKey
		if p.showKey {
			p.keyInput.EchoMode = textinput.EchoNormal
		} else {
			p.keyInput.EchoMode = textinput.EchoPassword
		}
		return p, nil
	case "ctrl+t":
		return p.validate()
	case "ctrl+d":
		return p.clearKey()
	}

	if p.cursor == -1 {
		if msg.String() == "enter" {
			return p.save()
		}
		if !p.keyInput.Focused() {
			after := p.keyInput.Focus()
			return p, after
		}
		var cmd tea.Cmd
		p.keyInput, cmd = p.keyInput.Update(msg)
		return p, cmd
	}

	switch msg.String() {
	case "enter", "right", "l", " ":
		return p.cyclePref(1)
	case "left", "h":
		return p.cyclePref(-1)
	}
	return p, nil
}

// save persists the typed key and probes it
func (p settingsPanel) save() (settingsPanel, tea.Cmd) {
	if err := p.env.creds.Save(p.keyInput.Value()); err != nil {
		p.warning = err.Error()
		return p, nil
	}
	p.warning = ""
	p.keyInput.SetValue(p.env.creds.Value())
	log.Printf("settings: api key saved")

	next, cmd := p.validate()
	flashCmd := next.flash("API key saved")
	return next, tea.Batch(cmd, flashCmd, func() tea.Msg { return credentialChangedMsg{} })
}

// validate checks the typed key against the gateway without saving it.
// A newer key supersedes a check still in flight.
func (p settingsPanel) validate() (settingsPanel, tea.Cmd) {
	key := strings.TrimSpace(p.keyInput.Value())
	if key == "" || (p.validating && p.checking == key) {
		return p, nil
	}
	p.checkSeq++
	p.validating = true
	p.checking = key
	p.status = credential.StatusUnknown

	seq := p.checkSeq
	creds := p.env.creds
	ctx := p.env.ctx
	return p, func() tea.Msg {
		return validationMsg{seq: seq, key: key, status: creds.Validate(ctx, key)}
	}
}

func (p settingsPanel) clearKey() (settingsPanel, tea.Cmd) {
	if err := p.env.creds.Clear(); err != nil {
		p.warning = err.Error()
		return p, nil
	}
	p.keyInput.Reset()
	p.checkSeq++
	p.validating = false
	p.checking = ""
	p.status = credential.StatusUnknown
	p.warning = ""
	log.Printf("settings: api key cleared")
	after := tea.Batch(p.flash("API key cleared"), func() tea.Msg { return credentialChangedMsg{} })
	return p, after
}

func (p settingsPanel) cyclePref(dir int) (settingsPanel, tea.Cmd) {
	cfg := p.env.cfg

	switch p.cursor {
	case prefDefaultModel:
		cfg.DefaultModel = cycle(config.AvailableModels(), cfg.DefaultModel, dir)
	case prefTUITheme:
		cfg.TUITheme = cycle(render.PaletteNames(), cfg.TUITheme, dir)
		render.SetPalette(cfg.TUITheme)
		UpdateTheme()
	case prefMarkdownStyle:
		cfg.Markdown.Style = cycle(render.MarkdownStyles(), cfg.Markdown.Style, dir)
	case prefCopyToClipboard:
		cfg.CopyToClipboard = !cfg.CopyToClipboard
	default:
		return p, nil
	}

	p.env.cfg = cfg
	if err := p.env.saveConfig(cfg); err != nil {
		p.warning = fmt.Sprintf("Failed to save config: %v", err)
		return p, nil
	}
	p.warning = ""
	after := p.flash("Preferences saved")
	return p, after
}

func cycle(options []string, current string, dir int) string {
	if len(options) == 0 {
		return current
	}
	for i, o := range options {
		if o == current {
			return options[(i+dir+len(options))%len(options)]
		}
	}
	return options[0]
}

func (p *settingsPanel) flash(text string) tea.Cmd {
	p.noticeSeq++
	p.notice = text
	return clearNoticeAfter(tabSettings, p.noticeSeq)
}

func (p settingsPanel) View() string {
	var sections []string

	badge := badgeOffStyle.Render("Not Connected")
	if p.env.creds.HasCredential() {
		badge = badgeOnStyle.Render("Connected")
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("Settings"), "  ", badge,
	))

	sections = append(sections, sectionTitleStyle.Render("OpenAI API key"))
	keyLine := p.keyInput.View()
	if p.cursor == -1 {
		keyLine = docSelectedStyle.Render("▸ ") + keyLine
	} else {
		keyLine = "  " + keyLine
	}
	sections = append(sections, keyLine)

	visibility := "hidden"
	if p.showKey {
		visibility = "visible"
	}
	sections = append(sections, hintStyle.Render(fmt.Sprintf("  Key is %s. Stored with the %q credential store.", visibility, p.env.cfg.CredentialStore)))

	switch {
	case p.validating:
		sections = append(sections, loadingStyle.Render("  Validating..."))
	case p.status == credential.StatusValid:
		sections = append(sections, successStyle.Render("  ✓ "+p.status.Message()))
	case p.status == credential.StatusInvalid || p.status == credential.StatusTransportError:
		sections = append(sections, errorStyle.Render("  ✗ "+p.status.Message()))
	}

	sections = append(sections, sectionTitleStyle.Render("Preferences"))
	cfg := p.env.cfg
	rows := []struct{ label, value string }{
		{"Default model", cfg.DefaultModel},
		{"TUI theme", cfg.TUITheme},
		{"Markdown style", cfg.Markdown.Style},
		{"Copy answers to clipboard", onOff(cfg.CopyToClipboard)},
	}
	for i, row := range rows {
		cursor := "  "
		label := subtitleStyle.Render(row.label)
		if i == p.cursor {
			cursor = docSelectedStyle.Render("▸ ")
			label = docSelectedStyle.Render(row.label)
		}
		sections = append(sections, fmt.Sprintf("%s%s: %s", cursor, label, valueStyle.Render(row.value)))
	}

	sections = append(sections, sectionTitleStyle.Render("Gateway"))
	sections = append(sections, "  "+valueStyle.Render(p.env.client.BaseURL()))

	if p.warning != "" {
		sections = append(sections, "", warningStyle.Render("⚠ "+p.warning))
	}
	if p.notice != "" {
		sections = append(sections, "", successStyle.Render(p.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (p settingsPanel) shortcuts() []string {
	if p.cursor == -1 {
		return []string{"Enter", "Save", "Ctrl+T", "Test", "Ctrl+R", "Show/Hide", "Ctrl+D", "Clear", "↓", "Preferences"}
	}
	return []string{"←→", "Change", "↑↓", "Select"}
}
