package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/ragchat/internal/chat"
	"github.com/diogo/ragchat/internal/credential"
	"github.com/diogo/ragchat/internal/documents"
)

// Message types delivered to the panels. Async results are routed to every
// panel, whichever tab is showing.
type (
	streamEventMsg struct {
		event  chat.Event
		events <-chan chat.Event
	}
	streamClosedMsg struct {
		exchangeID string
	}

	uploadDoneMsg struct {
		batch   int
		results []documents.Result
		err     error
	}
	uploadTickMsg struct {
		batch int
	}

	validationMsg struct {
		seq    int
		key    string
		status credential.Status
	}

	credentialChangedMsg struct{}

	noticeClearMsg struct {
		owner tab
		seq   int
	}
)

// waitForEvent reads the next event of a running exchange
func waitForEvent(exchangeID string, events <-chan chat.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{exchangeID: exchangeID}
		}
		return streamEventMsg{event: ev, events: events}
	}
}

func uploadTick(batch int) tea.Cmd {
	return tea.Tick(documents.ProgressInterval, func(time.Time) tea.Msg {
		return uploadTickMsg{batch: batch}
	})
}

// noticeTimeout is how long a transient notice stays visible
const noticeTimeout = 4 * time.Second

func clearNoticeAfter(owner tab, seq int) tea.Cmd {
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return noticeClearMsg{owner: owner, seq: seq}
	})
}
