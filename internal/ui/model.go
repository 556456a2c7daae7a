// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Defines application state, key handling and rendering
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

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

	runningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// Model represents the TUI state
type Model struct {
	// Connection
	connected  bool
	serverName string
	finished   bool

	// Output
	state      string
	sampleRate int
	lead       float64

	// Stats
	received       int64
	discarded      int64
	scheduled      int64
	dropped        int64
	unrecognized   int64
	decodeFailures int64
	bytesPerSec    int64

	control *PlaybackControl

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Audio Analyzer Player"))
	b.WriteString("\n")
	b.WriteString(m.renderConnection())
	b.WriteString(m.renderOutput())
	b.WriteString(m.renderStats())
	b.WriteString(m.renderHelp())

	return b.String()
}

func field(b *strings.Builder, name, value string) {
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-12s", name+":")))
	b.WriteString(value)
	b.WriteString("\n")
}

// renderConnection renders the feed connection
func (m Model) renderConnection() string {
	var b strings.Builder

	status := warnStyle.Render("Disconnected")
	if m.connected {
		status = valueStyle.Render("Connected to " + m.serverName)
	}
	if m.finished {
		status += valueStyle.Render(" (stream finished)")
	}
	field(&b, "Feed", status)

	incoming := warnStyle.Render("NO DATA incoming")
	if m.bytesPerSec > 0 {
		incoming = valueStyle.Render(fmt.Sprintf("DATA incoming (%s/sec)", formatBytes(m.bytesPerSec)))
	}
	field(&b, "Incoming", incoming)

	return b.String()
}

// renderOutput renders the output state and queue
func (m Model) renderOutput() string {
	var b strings.Builder

	state := warnStyle.Render(m.state)
	if m.state == "running" {
		state = runningStyle.Render(m.state)
	}
	field(&b, "Output", state)
	field(&b, "Raw rate", valueStyle.Render(fmt.Sprintf("%dHz", m.sampleRate)))
	field(&b, "Queued", valueStyle.Render(fmt.Sprintf("%.0fms", m.lead*1000)))

	return b.String()
}

// renderStats renders ingest and scheduling statistics
func (m Model) renderStats() string {
	var b strings.Builder

	b.WriteString("\n")
	field(&b, "Chunks", valueStyle.Render(fmt.Sprintf("RX: %d  Discarded: %d", m.received, m.discarded)))
	field(&b, "Buffers", valueStyle.Render(fmt.Sprintf("Scheduled: %d  Dropped: %d", m.scheduled, m.dropped)))

	if m.unrecognized > 0 || m.decodeFailures > 0 {
		field(&b, "Errors", warnStyle.Render(fmt.Sprintf("Unrecognized: %d  Decode: %d", m.unrecognized, m.decodeFailures)))
	}

	return b.String()
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	action := "play"
	if m.state == "running" {
		action = "pause"
	}
	return "\n" + helpStyle.Render(fmt.Sprintf("space/p: %s  q: quit", action)) + "\n"
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.control != nil {
			select {
			case m.control.Quit <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit
	case " ", "p":
		if m.control != nil {
			select {
			case m.control.Toggle <- struct{}{}:
			default:
			}
		}
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Connected != nil {
		m.connected = *msg.Connected
	}
	if msg.ServerName != "" {
		m.serverName = msg.ServerName
	}
	if msg.Finished {
		m.finished = true
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.SampleRate != 0 {
		m.sampleRate = msg.SampleRate
	}
	if msg.Stats != nil {
		m.received = msg.Stats.Received
		m.discarded = msg.Stats.Discarded
		m.scheduled = msg.Stats.Scheduled
		m.dropped = msg.Stats.Dropped
		m.unrecognized = msg.Stats.Unrecognized
		m.decodeFailures = msg.Stats.DecodeFailures
		m.lead = msg.Stats.Lead
	}
	if msg.BytesPerSec != nil {
		m.bytesPerSec = *msg.BytesPerSec
	}
}

// StatsSnapshot carries session counters to the TUI
type StatsSnapshot struct {
	Received       int64
	Discarded      int64
	Scheduled      int64
	Dropped        int64
	Unrecognized   int64
	DecodeFailures int64
	Lead           float64
}

// StatusMsg updates TUI state; zero fields leave the model unchanged
type StatusMsg struct {
	Connected   *bool
	ServerName  string
	Finished    bool
	State       string
	SampleRate  int
	Stats       *StatsSnapshot
	BytesPerSec *int64
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
