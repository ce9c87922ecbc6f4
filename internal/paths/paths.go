package paths

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
)

// Paths holds the resolved locations for the config file and the
// daemon control socket
type Paths struct {
	ConfigFile string
	SocketPath string
}

// DefaultPaths returns the default paths based on the current user.
// Root: /etc/reach/, /var/run/reach/. Non-root: ~/.reach/.
func DefaultPaths() (*Paths, error) {
	if os.Geteuid() == 0 {
		return &Paths{
			ConfigFile: "/etc/reach/config.yaml",
			SocketPath: "/var/run/reach/reach.sock",
		}, nil
	}

	usr, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	baseDir := filepath.Join(usr.HomeDir, ".reach")
	return &Paths{
		ConfigFile: filepath.Join(baseDir, "config.yaml"),
		SocketPath: filepath.Join(baseDir, "reach.sock"),
	}, nil
}

// EnsureDirectories creates the parent directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(p.ConfigFile),
		filepath.Dir(p.SocketPath),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ConfigExists checks if the config file exists
func (p *Paths) ConfigExists() bool {
	_, err := os.Stat(p.ConfigFile)
	return err == nil
}

// SocketExists checks if the socket file exists
func (p *Paths) SocketExists() bool {
	_, err := os.Stat(p.SocketPath)
	return err == nil
}

// RemoveSocket removes the socket file if it exists
func (p *Paths) RemoveSocket() error {
	if p.SocketExists() {
		return os.Remove(p.SocketPath)
	}
	return nil
}

// String returns a human-readable representation of the paths
func (p *Paths) String() string {
	return fmt.Sprintf("Config: %s, Socket: %s", p.ConfigFile, p.SocketPath)
}

// CreateDefaultConfig creates a commented default config file.
// Returns true if a new config was created, false if it already existed.
func (p *Paths) CreateDefaultConfig() (bool, error) {
	if p.ConfigExists() {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(p.ConfigFile), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# Reach configuration
# Every key is optional; the values below are the defaults.

target:
  host: "www.youtube.com"
  probe: system   # system | icmp | tcp
  # port: 443     # required for tcp

monitor:
  interval: 1s
  timeout: 5s
  history: 300
  window: 60
  min_window: 10

trace:
  timeout: 5m
  wait: 5s
  on_start: true

alerts:
  short_window: 10
  long_window: 600

# HTTP status API (disabled unless enabled here)
server:
  enabled: false
  address: ":8080"

ui:
  language: en    # en | id
  admin: false
`
	if err := os.WriteFile(p.ConfigFile, []byte(defaultConfig), 0644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}
