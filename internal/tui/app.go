package tui

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/ragchat/internal/api"
	"github.com/diogo/ragchat/internal/config"
	"github.com/diogo/ragchat/internal/credential"
	"github.com/diogo/ragchat/internal/history"
	"github.com/diogo/ragchat/internal/render"
)

// DebugLogEnv names the file that receives TUI debug logs
const DebugLogEnv = "RAGCHAT_DEBUG"

type tab int

const (
	tabChat tab = iota
	tabDocuments
	tabSettings
	tabCount
)

func (t tab) String() string {
	switch t {
	case tabChat:
		return "Chat"
	case tabDocuments:
		return "Documents"
	case tabSettings:
		return "Settings"
	}
	return "?"
}

// session is the state the panels share
type session struct {
	ctx        context.Context
	client     api.GatewayClientInterface
	creds      *credential.Manager
	cfg        config.Config
	clipboard  func(string) error
	saveConfig func(config.Config) error
	history    *history.Store
}

// Deps holds what the TUI needs from the outside
type Deps struct {
	Client      api.GatewayClientInterface
	Credentials *credential.Manager
	Config      config.Config

	// Optional; default to the system clipboard and config.SaveConfig
	Clipboard  func(string) error
	SaveConfig func(config.Config) error

	// History receives transcripts saved with ctrl+s; nil disables saving
	History *history.Store
}

// App switches between the chat, documents and settings panels.
// Only the visible panel receives keys; every other message reaches all
// panels so work started on a hidden tab keeps running.
type App struct {
	env    *session
	cancel context.CancelFunc

	active   tab
	chat     chatPanel
	docs     documentsPanel
	settings settingsPanel

	width  int
	height int
}

// NewApp builds the root model
func NewApp(deps Deps) App {
	ctx, cancel := context.WithCancel(context.Background())

	env := &session{
		ctx:        ctx,
		client:     deps.Client,
		creds:      deps.Credentials,
		cfg:        deps.Config,
		clipboard:  deps.Clipboard,
		saveConfig: deps.SaveConfig,
		history:    deps.History,
	}
	if env.clipboard == nil {
		env.clipboard = clipboard.WriteAll
	}
	if env.saveConfig == nil {
		env.saveConfig = config.SaveConfig
	}

	return App{
		env:      env,
		cancel:   cancel,
		active:   tabChat,
		chat:     newChatPanel(env),
		docs:     newDocumentsPanel(env),
		settings: newSettingsPanel(env),
	}
}

func (a App) Init() tea.Cmd {
	return a.chat.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// tab bar and status bar
		panelHeight := msg.Height - 4
		a.chat.setSize(msg.Width, panelHeight)
		a.docs.setSize(msg.Width, panelHeight)
		a.settings.setSize(msg.Width, panelHeight)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.quit()
			return a, tea.Quit
		case "tab":
			return a.switchTo((a.active + 1) % tabCount)
		case "shift+tab":
			return a.switchTo((a.active + tabCount - 1) % tabCount)
		case "alt+1":
			return a.switchTo(tabChat)
		case "alt+2":
			return a.switchTo(tabDocuments)
		case "alt+3":
			return a.switchTo(tabSettings)
		case "1", "2", "3":
			if !a.typing() {
				return a.switchTo(tab(msg.String()[0] - '1'))
			}
		}
		return a.updatePanels(msg)
	}

	return a.updatePanels(msg)
}

// typing reports whether the active panel has a text input focused
func (a App) typing() bool {
	switch a.active {
	case tabDocuments:
		return a.docs.typing()
	case tabSettings:
		return a.settings.typing()
	}
	return true
}

func (a App) switchTo(t tab) (tea.Model, tea.Cmd) {
	if t == a.active {
		return a, nil
	}
	log.Printf("tui: switched to %s", t)
	a.active = t
	return a, nil
}

// updatePanels delivers msg to every panel; only the active one sees keys
func (a App) updatePanels(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	a.chat, cmd = a.chat.Update(msg, a.active == tabChat)
	cmds = append(cmds, cmd)
	a.docs, cmd = a.docs.Update(msg, a.active == tabDocuments)
	cmds = append(cmds, cmd)
	a.settings, cmd = a.settings.Update(msg, a.active == tabSettings)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// quit cancels the exchange in flight and any running upload
func (a App) quit() {
	a.chat.shutdown()
	a.cancel()
}

func (a App) View() string {
	if a.width == 0 {
		return loadingStyle.Render("  Initializing...")
	}

	var body string
	var pairs []string
	switch a.active {
	case tabDocuments:
		body = a.docs.View()
		pairs = a.docs.shortcuts()
	case tabSettings:
		body = a.settings.View()
		pairs = a.settings.shortcuts()
	default:
		body = a.chat.View()
		pairs = a.chat.shortcuts()
	}
	pairs = append(pairs, "Tab", "Switch", "Ctrl+C", "Quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderTabs(),
		body,
		renderShortcuts(a.width, pairs...),
	)
}

func (a App) renderTabs() string {
	items := []string{titleStyle.Render("✦ ragchat") + "  "}
	for t := tabChat; t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", int(t)+1, t)
		if t == a.active {
			items = append(items, activeTabStyle.Render(label))
		} else {
			items = append(items, tabStyle.Render(label))
		}
	}
	if a.active != tabChat && a.chat.transcript.InFlight() {
		items = append(items, loadingStyle.Render("  ● responding"))
	}
	if a.active != tabDocuments && a.docs.progress.Active {
		items = append(items, loadingStyle.Render(fmt.Sprintf("  ⇪ %d%%", a.docs.progress.Percent)))
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(colorBorder).
		Width(a.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Center, items...))
}

// Run starts the TUI and blocks until it exits
func Run(deps Deps) error {
	if path := os.Getenv(DebugLogEnv); path != "" {
		f, err := tea.LogToFile(path, "ragchat")
		if err != nil {
			return fmt.Errorf("failed to open debug log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	render.SetPalette(deps.Config.TUITheme)
	UpdateTheme()

	app := NewApp(deps)
	// Exchanges and uploads derive from the app context.
	defer app.cancel()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
