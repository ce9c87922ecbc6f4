package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wellsgz/reach/internal/ipc"
	"github.com/wellsgz/reach/internal/monitor"
)

// refreshInterval paces periodic snapshot refreshes
const refreshInterval = 200 * time.Millisecond

// Message types
type (
	// SampleMsg is sent when a ping sample arrives from the monitor
	SampleMsg monitor.Sample

	// IPCSampleMsg is sent when a ping sample arrives over the socket
	IPCSampleMsg ipc.SampleData

	// SnapshotMsg carries a freshly fetched daemon snapshot
	SnapshotMsg monitor.Snapshot

	// TickMsg is sent periodically for refresh
	TickMsg time.Time

	// ErrMsg is sent when an error occurs
	ErrMsg struct{ Err error }
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case SampleMsg:
		m.snap = m.monitor.Snapshot()
		return m, waitForSample(m.samples)

	case IPCSampleMsg:
		return m, tea.Batch(
			fetchSnapshot(m.ipcClient),
			waitForIPCSample(m.ipcSamples),
		)

	case SnapshotMsg:
		m.snap = monitor.Snapshot(msg)
		return m, nil

	case TickMsg:
		if m.IsIPCMode() {
			return m, tea.Batch(fetchSnapshot(m.ipcClient), tick())
		}
		m.snap = m.monitor.Snapshot()
		return m, tick()

	case ErrMsg:
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "p", "P":
		return m.apply(
			func() { m.monitor.Pause() },
			func() error { return m.ipcClient.Pause() },
		)

	case "r", "R":
		return m.apply(
			func() { m.monitor.Resume() },
			func() error { return m.ipcClient.Resume() },
		)

	case "t", "T":
		return m.apply(
			func() { m.monitor.RequestTrace() },
			func() error { _, err := m.ipcClient.Trace(); return err },
		)

	case "f", "F":
		return m.apply(
			func() { m.monitor.ToggleFullTrace() },
			func() error { return m.ipcClient.ToggleFullTrace() },
		)

	case "h", "H":
		return m.apply(
			func() { m.monitor.ToggleHelp() },
			func() error { return m.ipcClient.ToggleHelp() },
		)

	case "k", "K":
		return m.apply(
			func() { m.monitor.ToggleControls() },
			func() error { return m.ipcClient.ToggleControls() },
		)

	case "up":
		return m.apply(
			func() { m.monitor.ScrollTrace(-1) },
			func() error { return m.ipcClient.Scroll(-1) },
		)

	case "down":
		return m.apply(
			func() { m.monitor.ScrollTrace(1) },
			func() error { return m.ipcClient.Scroll(1) },
		)

	case "+", "=":
		return m.apply(
			func() { m.monitor.AdjustWindow(monitor.WindowStep) },
			func() error { _, err := m.ipcClient.AdjustWindow(monitor.WindowStep); return err },
		)

	case "-", "_":
		return m.apply(
			func() { m.monitor.AdjustWindow(-monitor.WindowStep) },
			func() error { _, err := m.ipcClient.AdjustWindow(-monitor.WindowStep); return err },
		)

	case "l", "L":
		// Language is per dashboard, not engine state
		m.catalog = m.catalog.Cycle()
		return m, nil

	case "g", "G":
		m.showGraph = !m.showGraph
		return m, nil
	}

	return m, nil
}

// apply runs one control action in whichever mode the dashboard is in.
// Standalone mode acts on the monitor and re-snapshots synchronously;
// attached mode sends the command to the daemon and refreshes from its
// reply.
func (m Model) apply(direct func(), viaIPC func() error) (tea.Model, tea.Cmd) {
	if m.IsIPCMode() {
		client := m.ipcClient
		return m, func() tea.Msg {
			if err := viaIPC(); err != nil {
				return ErrMsg{Err: err}
			}
			snap, err := client.Snapshot()
			if err != nil {
				return ErrMsg{Err: err}
			}
			return SnapshotMsg(snap)
		}
	}

	direct()
	m.snap = m.monitor.Snapshot()
	return m, nil
}

// waitForSample creates a command that waits for a ping sample
func waitForSample(ch <-chan monitor.Sample) tea.Cmd {
	return func() tea.Msg {
		sample, ok := <-ch
		if !ok {
			return ErrMsg{Err: nil} // Channel closed
		}
		return SampleMsg(sample)
	}
}

// waitForIPCSample creates a command that waits for a sample from the daemon
func waitForIPCSample(ch <-chan ipc.SampleData) tea.Cmd {
	return func() tea.Msg {
		sample, ok := <-ch
		if !ok {
			return ErrMsg{Err: nil} // Channel closed
		}
		return IPCSampleMsg(sample)
	}
}

// fetchSnapshot creates a command that pulls the daemon state
func fetchSnapshot(client *ipc.Client) tea.Cmd {
	return func() tea.Msg {
		snap, err := client.Snapshot()
		if err != nil {
			return ErrMsg{Err: err}
		}
		return SnapshotMsg(snap)
	}
}

// tick schedules the next periodic refresh
func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
