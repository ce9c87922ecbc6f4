package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wellsgz/reach/internal/config"
	"github.com/wellsgz/reach/internal/monitor"
	"github.com/wellsgz/reach/internal/paths"
	"github.com/wellsgz/reach/internal/probe"
	"github.com/wellsgz/reach/internal/tui"
)

// Flags shared across commands. Config file values apply first, then
// any flag that was set overrides them.
var (
	configFlag   string
	hostFlag     string
	probeFlag    string
	portFlag     int
	intervalFlag string
	langFlag     string
	adminFlag    bool
)

// addMonitorFlags registers the target and pacing flags on a command
func addMonitorFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&hostFlag, "host", "", "target host to monitor")
	cmd.Flags().StringVar(&probeFlag, "probe", "", "probe type: system, icmp or tcp")
	cmd.Flags().IntVar(&portFlag, "port", 0, "TCP port for the tcp probe")
	cmd.Flags().StringVar(&intervalFlag, "interval", "", "probe interval (e.g. 1s, 500ms)")
}

// addDisplayFlags registers the dashboard flags on a command
func addDisplayFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&langFlag, "lang", "", "dashboard language (en or id)")
	cmd.Flags().BoolVar(&adminFlag, "admin", false, "show the extra loss windows")
}

// loadConfig reads the configuration, falling back to the built-in
// defaults when no file exists at the standard location
func loadConfig() (*config.Config, error) {
	if configFlag != "" {
		return config.Load(configFlag)
	}

	p, err := paths.DefaultPaths()
	if err != nil {
		return nil, err
	}
	return config.LoadOrDefault(p.ConfigFile)
}

// applyOverrides folds set flags into cfg and revalidates
func applyOverrides(cfg *config.Config) error {
	if hostFlag != "" {
		cfg.Target.Host = hostFlag
	}
	if probeFlag != "" {
		cfg.Target.Probe = probeFlag
	}
	if portFlag > 0 {
		cfg.Target.Port = portFlag
	}
	if intervalFlag != "" {
		d, err := time.ParseDuration(intervalFlag)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", intervalFlag, err)
		}
		cfg.Monitor.Interval = d
	}
	if langFlag != "" {
		cfg.UI.Language = langFlag
	}
	if adminFlag {
		cfg.UI.Admin = true
	}
	return cfg.Validate()
}

// buildMonitor assembles the engine for the configured target
func buildMonitor(cfg *config.Config) (*monitor.Monitor, error) {
	var pinger probe.Pinger
	switch cfg.Target.Probe {
	case config.ProbeICMP:
		pinger = probe.NewICMPPinger(cfg.Target.Host, cfg.Monitor.Timeout)
	case config.ProbeTCP:
		pinger = probe.NewTCPPinger(cfg.Target.Host, cfg.Target.Port, cfg.Monitor.Timeout)
	case config.ProbeSystem:
		pinger = probe.NewSystemPinger(cfg.Target.Host, cfg.Monitor.Timeout)
	default:
		return nil, fmt.Errorf("unknown probe type: %s", cfg.Target.Probe)
	}

	return monitor.New(monitor.Config{
		Target:       cfg.Target.Host,
		Interval:     cfg.Monitor.Interval,
		TraceTimeout: cfg.Trace.Timeout,
		TraceWait:    cfg.Trace.Wait,
		HistorySize:  cfg.Monitor.History,
		WindowSize:   cfg.Monitor.Window,
		MinWindow:    cfg.Monitor.MinWindow,
		TraceOnStart: cfg.Trace.OnStart,
	}, pinger, probe.NewSystemTracer(cfg.Target.Host)), nil
}

// tuiOptions maps config onto the dashboard options
func tuiOptions(cfg *config.Config, apiAddr string) tui.Options {
	return tui.Options{
		Language:    cfg.UI.Language,
		Admin:       cfg.UI.Admin,
		ShortWindow: cfg.Alerts.ShortWindow,
		LongWindow:  cfg.Alerts.LongWindow,
		APIAddr:     apiAddr,
	}
}
