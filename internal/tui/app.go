package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wellsgz/reach/internal/ipc"
	"github.com/wellsgz/reach/internal/monitor"
)

// Init initializes the TUI
func (m Model) Init() tea.Cmd {
	if m.IsIPCMode() {
		return tea.Batch(
			waitForIPCSample(m.ipcSamples),
			fetchSnapshot(m.ipcClient),
			tick(),
		)
	}
	return tea.Batch(
		waitForSample(m.samples),
		tick(),
	)
}

// Run starts the TUI against an in-process monitor
func Run(mon *monitor.Monitor, opts Options) error {
	model := NewModel(mon, opts)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// RunWithIPC starts the TUI attached to a daemon over its socket
func RunWithIPC(client *ipc.Client, opts Options) error {
	if err := client.Subscribe(); err != nil {
		return fmt.Errorf("failed to subscribe to samples: %w", err)
	}

	snap, err := client.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to fetch daemon state: %w", err)
	}

	model := NewModelWithIPC(client, snap, opts)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
