package tui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/ragchat/internal/documents"
	"github.com/diogo/ragchat/internal/models"
)

type docsFocus int

const (
	focusList docsFocus = iota
	focusSearch
	focusPath
)

// documentsPanel lists uploaded documents and drives uploads
type documentsPanel struct {
	env *session

	library  *documents.Library
	uploader *documents.Uploader

	focus       docsFocus
	searchInput textinput.Model
	pathInput   textinput.Model
	cursor      int

	batch    int
	progress documents.Progress
	bar      progress.Model

	alerts    []string
	warning   string
	notice    string
	noticeSeq int

	width  int
	height int
}

func newDocumentsPanel(env *session) documentsPanel {
	search := textinput.New()
	search.Placeholder = "Search documents..."
	search.Prompt = "🔍 "
	search.CharLimit = 200

	path := textinput.New()
	path.Placeholder = "Path or glob of .txt, .pdf or .md files (space separated)"
	path.Prompt = "⇪ "
	path.CharLimit = 1000

	return documentsPanel{
		env:         env,
		library:     documents.NewLibrary(),
		uploader:    documents.NewUploader(env.client),
		searchInput: search,
		pathInput:   path,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (p *documentsPanel) setSize(width, height int) {
	p.width = width
	p.height = height
	p.searchInput.Width = width - 6
	p.pathInput.Width = width - 6
	p.bar.Width = width - 10
	if p.bar.Width < 10 {
		p.bar.Width = 10
	}
}

// typing reports whether keystrokes go to a text input
func (p documentsPanel) typing() bool {
	return p.focus != focusList
}

func (p documentsPanel) visible() []models.Document {
	return p.library.Search(p.searchInput.Value())
}

func (p documentsPanel) Update(msg tea.Msg, focused bool) (documentsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case uploadTickMsg:
		if msg.batch != p.batch || !p.progress.Active {
			return p, nil
		}
		p.progress.Tick()
		return p, uploadTick(p.batch)

	case uploadDoneMsg:
		if msg.batch != p.batch {
			return p, nil
		}
		return p.finishUpload(msg)

	case credentialChangedMsg:
		if p.warning == MissingKeyWarning {
			p.warning = ""
		}
		return p, nil

	case noticeClearMsg:
		if msg.owner == tabDocuments && msg.seq == p.noticeSeq {
			p.notice = ""
		}
		return p, nil

	case tea.KeyMsg:
		if !focused {
			return p, nil
		}
		switch p.focus {
		case focusSearch:
			return p.updateSearch(msg)
		case focusPath:
			return p.updatePath(msg)
		default:
			return p.updateList(msg)
		}
	}
	return p, nil
}

func (p documentsPanel) updateList(msg tea.KeyMsg) (documentsPanel, tea.Cmd) {
	docs := p.visible()

	switch msg.String() {
	case "/":
		p.focus = focusSearch
		after := p.searchInput.Focus()
		return p, after
	case "u", "a":
		p.focus = focusPath
		p.warning = ""
		after := p.pathInput.Focus()
		return p, after
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(docs)-1 {
			p.cursor++
		}
	case "d", "delete", "x":
		if p.cursor < len(docs) {
			doc := docs[p.cursor]
			p.library.Remove(doc.ID)
			p.clampCursor()
			after := p.flash(fmt.Sprintf("Removed %s", doc.Name))
			return p, after
		}
	case "esc":
		p.searchInput.SetValue("")
		p.alerts = nil
		p.warning = ""
		p.clampCursor()
	}
	return p, nil
}

func (p documentsPanel) updateSearch(msg tea.KeyMsg) (documentsPanel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		p.focus = focusList
		p.searchInput.Blur()
		return p, nil
	case "esc":
		p.searchInput.SetValue("")
		p.focus = focusList
		p.searchInput.Blur()
		p.clampCursor()
		return p, nil
	}

	var cmd tea.Cmd
	p.searchInput, cmd = p.searchInput.Update(msg)
	p.cursor = 0
	return p, cmd
}

func (p documentsPanel) updatePath(msg tea.KeyMsg) (documentsPanel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := p.pathInput.Value()
		p.focus = focusList
		p.pathInput.Blur()
		return p.startUpload(strings.Fields(value))
	case "esc":
		p.focus = focusList
		p.pathInput.Blur()
		return p, nil
	}

	var cmd tea.Cmd
	p.pathInput, cmd = p.pathInput.Update(msg)
	return p, cmd
}

// startUpload sends every file in patterns as one batch
func (p documentsPanel) startUpload(patterns []string) (documentsPanel, tea.Cmd) {
	if p.progress.Active {
		p.warning = "An upload is already running"
		return p, nil
	}
	if !p.env.creds.HasCredential() {
		p.warning = MissingKeyWarning
		return p, nil
	}
	paths, err := documents.ExpandPaths(patterns)
	if err != nil {
		p.warning = "Choose at least one file to upload"
		return p, nil
	}

	p.warning = ""
	p.alerts = nil
	p.pathInput.Reset()
	p.batch++
	p.progress.Start()

	batch := p.batch
	ctx := p.env.ctx
	uploader := p.uploader
	apiKey := p.env.creds.Value()
	log.Printf("documents: batch %d uploading %d file(s)", batch, len(paths))

	upload := func() tea.Msg {
		results, err := uploader.UploadFiles(ctx, paths, apiKey)
		return uploadDoneMsg{batch: batch, results: results, err: err}
	}
	return p, tea.Batch(upload, uploadTick(batch))
}

func (p documentsPanel) finishUpload(msg uploadDoneMsg) (documentsPanel, tea.Cmd) {
	p.progress.Settle()
	if msg.err != nil {
		p.warning = msg.err.Error()
		return p, nil
	}

	added := p.library.AddResults(msg.results)
	for _, err := range documents.Failures(msg.results) {
		p.alerts = append(p.alerts, err.Error())
		log.Printf("documents: %v", err)
	}
	if added == 0 {
		return p, nil
	}
	after := p.flash(fmt.Sprintf("Uploaded %d document(s)", added))
	return p, after
}

func (p *documentsPanel) clampCursor() {
	n := len(p.visible())
	if p.cursor >= n {
		p.cursor = n - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *documentsPanel) flash(text string) tea.Cmd {
	p.noticeSeq++
	p.notice = text
	return clearNoticeAfter(tabDocuments, p.noticeSeq)
}

func (p documentsPanel) View() string {
	var sections []string

	count := p.library.Len()
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("Documents"),
		subtitleStyle.Render(fmt.Sprintf("  %d document(s)", count)),
	))

	if !p.env.creds.HasCredential() {
		sections = append(sections, warningStyle.Render("⚠ "+MissingKeyWarning))
	}

	sections = append(sections, p.searchInput.View())
	if p.focus == focusPath {
		sections = append(sections, p.pathInput.View())
	}

	if p.progress.Active || (p.progress.Percent == 100 && p.batch > 0 && p.notice != "") {
		sections = append(sections, fmt.Sprintf("%s %3d%%", p.bar.ViewAs(p.progress.Fraction()), p.progress.Percent))
	}

	for _, alert := range p.alerts {
		sections = append(sections, errorStyle.Render("✗ "+alert))
	}
	if p.warning != "" {
		sections = append(sections, warningStyle.Render("⚠ "+p.warning))
	}
	if p.notice != "" {
		sections = append(sections, successStyle.Render(p.notice))
	}

	sections = append(sections, "", p.renderList())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (p documentsPanel) renderList() string {
	if p.library.Len() == 0 {
		return hintStyle.Render("No documents yet. Press u to upload .txt, .pdf or .md files.")
	}

	docs := p.visible()
	if len(docs) == 0 {
		return hintStyle.Render("No documents match your search")
	}

	var b strings.Builder
	for i, doc := range docs {
		cursor := "  "
		name := docNameStyle.Render(doc.Name)
		if i == p.cursor {
			cursor = docSelectedStyle.Render("▸ ")
			name = docSelectedStyle.Render(doc.Name)
		}

		meta := []string{documents.FormatSize(doc.Size), documents.FormatDate(doc.UploadedAt)}
		if doc.Chunks > 0 {
			meta = append(meta, fmt.Sprintf("%d chunks", doc.Chunks))
		}

		b.WriteString(cursor + name + "  " + docMetaStyle.Render(strings.Join(meta, " • ")) + "\n")
		b.WriteString(docPreviewStyle.Width(p.width-4).Render(doc.Preview()) + "\n")
	}
	return b.String()
}

func (p documentsPanel) shortcuts() []string {
	switch p.focus {
	case focusSearch:
		return []string{"Enter", "Done", "Esc", "Clear search"}
	case focusPath:
		return []string{"Enter", "Upload", "Esc", "Cancel"}
	}
	return []string{"u", "Upload", "/", "Search", "↑↓", "Select", "d", "Remove"}
}
