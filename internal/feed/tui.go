// ABOUTME: Feed TUI for displaying connected players and stream progress
// ABOUTME: Real-time feed status display using bubbletea
package feed

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FeedTUI manages the feed TUI
type FeedTUI struct {
	mu       sync.Mutex
	program  *tea.Program
	stopped  bool
	updates  chan FeedStatus
	quitChan chan struct{}
}

// FeedStatus holds feed state for the TUI
type FeedStatus struct {
	Name    string
	Port    int
	Uptime  time.Duration
	Title   string
	Clients []ClientInfo
}

type tuiModel struct {
	status   FeedStatus
	quitting bool
	quitChan chan struct{}
}

type statusMsg FeedStatus

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	clientHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("220"))
)

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			select {
			case m.quitChan <- struct{}{}:
			default:
			}
			return m, tea.Quit
		}

	case statusMsg:
		m.status = FeedStatus(msg)
	}

	return m, nil
}

func (m tuiModel) View() string {
	if m.quitting {
		return "Shutting down feed...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Audio Analyzer Feed"))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Feed: "))
	b.WriteString(valueStyle.Render(m.status.Name))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Port: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.status.Port)))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Uptime: "))
	b.WriteString(valueStyle.Render(m.status.Uptime.Round(time.Second).String()))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Source: "))
	b.WriteString(valueStyle.Render(m.status.Title))
	b.WriteString("\n\n")

	b.WriteString(clientHeaderStyle.Render(fmt.Sprintf("Connected Players (%d)", len(m.status.Clients))))
	b.WriteString("\n\n")

	if len(m.status.Clients) == 0 {
		b.WriteString(valueStyle.Render("  No players connected"))
		b.WriteString("\n")
	} else {
		for _, c := range m.status.Clients {
			b.WriteString(fmt.Sprintf("  • %s", c.Addr))
			b.WriteString(valueStyle.Render(fmt.Sprintf(" (%s, %d frames)", c.Encoding, c.Frames)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press 'q' or Ctrl+C to quit"))

	return b.String()
}

// NewFeedTUI creates a new feed TUI
func NewFeedTUI() *FeedTUI {
	return &FeedTUI{
		updates:  make(chan FeedStatus, 10),
		quitChan: make(chan struct{}, 1),
	}
}

// Start runs the TUI until it quits
func (t *FeedTUI) Start(name string, port int, title string) error {
	m := tuiModel{
		status: FeedStatus{
			Name:  name,
			Port:  port,
			Title: title,
		},
		quitChan: t.quitChan,
	}

	program := tea.NewProgram(m, tea.WithAltScreen())

	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.program = program
	t.mu.Unlock()

	go func() {
		for status := range t.updates {
			program.Send(statusMsg(status))
		}
	}()

	_, err := program.Run()
	return err
}

// Update sends a status update to the TUI
func (t *FeedTUI) Update(status FeedStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}

	select {
	case t.updates <- status:
	default:
		// Don't block if channel is full
	}
}

// Stop stops the TUI
func (t *FeedTUI) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true

	if t.program != nil {
		t.program.Quit()
	}
	close(t.updates)
}

// QuitChan returns the channel that signals when user wants to quit
func (t *FeedTUI) QuitChan() <-chan struct{} {
	return t.quitChan
}
