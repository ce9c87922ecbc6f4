package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/wellsgz/reach/internal/i18n"
)

// DefaultHost is monitored when no host is configured
const DefaultHost = "www.youtube.com"

// Probe kinds
const (
	ProbeSystem = "system"
	ProbeICMP   = "icmp"
	ProbeTCP    = "tcp"
)

// Config represents the root configuration
type Config struct {
	Target  TargetConfig  `mapstructure:"target" json:"target"`
	Monitor MonitorConfig `mapstructure:"monitor" json:"monitor"`
	Trace   TraceConfig   `mapstructure:"trace" json:"trace"`
	Alerts  AlertsConfig  `mapstructure:"alerts" json:"alerts"`
	Server  ServerConfig  `mapstructure:"server" json:"server"`
	UI      UIConfig      `mapstructure:"ui" json:"ui"`
}

// TargetConfig identifies the monitored host and how to probe it
type TargetConfig struct {
	Host  string `mapstructure:"host" json:"host"`
	Probe string `mapstructure:"probe" json:"probe"`
	Port  int    `mapstructure:"port" json:"port,omitempty"`
}

// MonitorConfig holds sampler pacing and history sizing
type MonitorConfig struct {
	Interval  time.Duration `mapstructure:"interval" json:"interval"`
	Timeout   time.Duration `mapstructure:"timeout" json:"timeout"`
	History   int           `mapstructure:"history" json:"history"`
	Window    int           `mapstructure:"window" json:"window"`
	MinWindow int           `mapstructure:"min_window" json:"min_window"`
}

// TraceConfig holds path-trace settings
type TraceConfig struct {
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
	Wait    time.Duration `mapstructure:"wait" json:"wait"`
	OnStart bool          `mapstructure:"on_start" json:"on_start"`
}

// AlertsConfig holds the fixed windows used for alert detection
type AlertsConfig struct {
	ShortWindow int `mapstructure:"short_window" json:"short_window"`
	LongWindow  int `mapstructure:"long_window" json:"long_window"`
}

// ServerConfig holds HTTP API server settings
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Address string `mapstructure:"address" json:"address"`
}

// UIConfig holds terminal UI settings
type UIConfig struct {
	Language string `mapstructure:"language" json:"language"`
	Admin    bool   `mapstructure:"admin" json:"admin"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Target: TargetConfig{
			Host:  DefaultHost,
			Probe: ProbeSystem,
		},
		Monitor: MonitorConfig{
			Interval:  time.Second,
			Timeout:   5 * time.Second,
			History:   300,
			Window:    60,
			MinWindow: 10,
		},
		Trace: TraceConfig{
			Timeout: 5 * time.Minute,
			Wait:    5 * time.Second,
			OnStart: true,
		},
		Alerts: AlertsConfig{
			ShortWindow: 10,
			LongWindow:  600,
		},
		Server: ServerConfig{
			Enabled: false,
			Address: ":8080",
		},
		UI: UIConfig{
			Language: "en",
			Admin:    false,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("target.host", d.Target.Host)
	v.SetDefault("target.probe", d.Target.Probe)
	v.SetDefault("target.port", d.Target.Port)
	v.SetDefault("monitor.interval", d.Monitor.Interval)
	v.SetDefault("monitor.timeout", d.Monitor.Timeout)
	v.SetDefault("monitor.history", d.Monitor.History)
	v.SetDefault("monitor.window", d.Monitor.Window)
	v.SetDefault("monitor.min_window", d.Monitor.MinWindow)
	v.SetDefault("trace.timeout", d.Trace.Timeout)
	v.SetDefault("trace.wait", d.Trace.Wait)
	v.SetDefault("trace.on_start", d.Trace.OnStart)
	v.SetDefault("alerts.short_window", d.Alerts.ShortWindow)
	v.SetDefault("alerts.long_window", d.Alerts.LongWindow)
	v.SetDefault("server.enabled", d.Server.Enabled)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("ui.language", d.UI.Language)
	v.SetDefault("ui.admin", d.UI.Admin)
}

// Load reads configuration from the specified file
func Load(configPath string) (*Config, error) {
	return load(configPath, true)
}

// LoadOrDefault reads configuration from the specified file; a missing
// file yields the built-in defaults, so a fresh install runs without
// any configuration
func LoadOrDefault(configPath string) (*Config, error) {
	return load(configPath, false)
}

func load(configPath string, mustExist bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		if mustExist || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration for required fields and valid values
func (c *Config) Validate() error {
	if c.Target.Host == "" {
		return fmt.Errorf("target.host is required")
	}
	switch c.Target.Probe {
	case ProbeSystem, ProbeICMP:
	case ProbeTCP:
		if c.Target.Port == 0 {
			return fmt.Errorf("target.port is required for TCP probe")
		}
	default:
		return fmt.Errorf("target.probe must be 'system', 'icmp' or 'tcp', got %q", c.Target.Probe)
	}
	if c.Target.Port < 0 || c.Target.Port > 65535 {
		return fmt.Errorf("target.port must be between 0 and 65535")
	}

	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive")
	}
	if c.Monitor.Timeout <= 0 {
		return fmt.Errorf("monitor.timeout must be positive")
	}
	if c.Monitor.History < 1 {
		return fmt.Errorf("monitor.history must be at least 1")
	}
	if c.Monitor.MinWindow < 1 {
		return fmt.Errorf("monitor.min_window must be at least 1")
	}
	if c.Monitor.MinWindow > c.Monitor.History {
		return fmt.Errorf("monitor.min_window must not exceed monitor.history")
	}
	if c.Monitor.Window < c.Monitor.MinWindow || c.Monitor.Window > c.Monitor.History {
		return fmt.Errorf("monitor.window must be between monitor.min_window and monitor.history")
	}

	if c.Trace.Timeout <= 0 {
		return fmt.Errorf("trace.timeout must be positive")
	}
	if c.Trace.Wait <= 0 {
		return fmt.Errorf("trace.wait must be positive")
	}

	if c.Alerts.ShortWindow < 1 {
		return fmt.Errorf("alerts.short_window must be at least 1")
	}
	if c.Alerts.LongWindow < c.Alerts.ShortWindow {
		return fmt.Errorf("alerts.long_window must be at least alerts.short_window")
	}

	if c.Server.Enabled && c.Server.Address == "" {
		return fmt.Errorf("server.address is required when the server is enabled")
	}

	if !i18n.IsSupported(c.UI.Language) {
		return fmt.Errorf("ui.language must be one of: %s", strings.Join(i18n.Supported(), ", "))
	}

	return nil
}
