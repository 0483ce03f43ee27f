package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// Events carries snapshots published off the UI goroutine, such as a
// search settling when the debounce timer fires, into the Bubble Tea loop.
// Only the latest snapshot is kept.
type Events struct {
	ch chan grid.View
}

// NewEvents returns an empty event channel.
func NewEvents() *Events {
	return &Events{ch: make(chan grid.View, 1)}
}

// Settled publishes v. Pass it to grid.WithOnSettle. It never blocks.
func (e *Events) Settled(v grid.View) {
	for {
		select {
		case e.ch <- v:
			return
		default:
		}
		select {
		case <-e.ch:
		default:
		}
	}
}

type settledMsg struct {
	view grid.View
}

// listen waits for the next snapshot.
func (e *Events) listen() tea.Cmd {
	return func() tea.Msg {
		return settledMsg{view: <-e.ch}
	}
}
