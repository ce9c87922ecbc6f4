package tui

import (
	"github.com/wellsgz/reach/internal/i18n"
	"github.com/wellsgz/reach/internal/ipc"
	"github.com/wellsgz/reach/internal/monitor"
)

// Options configures the dashboard before it starts
type Options struct {
	Language    string
	Admin       bool
	ShortWindow int
	LongWindow  int
	APIAddr     string // empty hides the API hint in the header
}

// Model holds all application state
type Model struct {
	// Dependencies - either monitor (standalone) or ipcClient (attached)
	monitor    *monitor.Monitor
	ipcClient  *ipc.Client
	samples    <-chan monitor.Sample
	ipcSamples <-chan ipc.SampleData

	// Latest engine state, refreshed on samples and ticks
	snap monitor.Snapshot

	// Display settings
	catalog     *i18n.Catalog
	admin       bool
	shortWindow int
	longWindow  int
	showGraph   bool

	// UI state
	width  int
	height int
	ready  bool

	// API address for display
	apiAddr string

	// Error message
	err error
}

// NewModel creates a dashboard bound directly to a monitor
func NewModel(mon *monitor.Monitor, opts Options) Model {
	m := newModel(opts)
	m.monitor = mon
	m.samples = mon.Subscribe()
	m.snap = mon.Snapshot()
	return m
}

// NewModelWithIPC creates a dashboard attached to a daemon. The caller
// supplies the first snapshot so the dashboard never starts blank.
func NewModelWithIPC(client *ipc.Client, snap monitor.Snapshot, opts Options) Model {
	m := newModel(opts)
	m.ipcClient = client
	m.ipcSamples = client.Samples()
	m.snap = snap
	return m
}

func newModel(opts Options) Model {
	if opts.ShortWindow <= 0 {
		opts.ShortWindow = 10
	}
	if opts.LongWindow <= 0 {
		opts.LongWindow = 600
	}

	return Model{
		catalog:     i18n.Load(opts.Language),
		admin:       opts.Admin,
		shortWindow: opts.ShortWindow,
		longWindow:  opts.LongWindow,
		apiAddr:     opts.APIAddr,
	}
}

// IsIPCMode returns true if the model is attached to a daemon
func (m Model) IsIPCMode() bool {
	return m.ipcClient != nil
}
