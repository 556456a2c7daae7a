// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// PlaybackControl carries user gestures from the TUI to the player
type PlaybackControl struct {
	Toggle chan struct{}
	Quit   chan struct{}
}

// NewPlaybackControl creates a new playback control handler
func NewPlaybackControl() *PlaybackControl {
	return &PlaybackControl{
		Toggle: make(chan struct{}, 10),
		Quit:   make(chan struct{}, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *PlaybackControl) Model {
	return Model{
		state:   "suspended",
		control: ctrl,
	}
}

// Run creates the TUI program; the caller runs it
func Run(ctrl *PlaybackControl) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	return p, nil
}
