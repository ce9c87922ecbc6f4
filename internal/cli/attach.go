package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wellsgz/reach/internal/ipc"
	"github.com/wellsgz/reach/internal/logging"
	"github.com/wellsgz/reach/internal/paths"
	"github.com/wellsgz/reach/internal/tui"
)

// attachCmd connects a dashboard to a running daemon
var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Attach the dashboard to a running daemon",
	Long: `Open the dashboard against a daemon started with 'reach daemon'.

The dashboard mirrors the daemon's state over its unix socket; pause,
trace and window commands are forwarded to the daemon, so every
attached dashboard sees the same thing.

Examples:
  reach attach
  reach attach --lang id`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAttach()
	},
}

func init() {
	addDisplayFlags(attachCmd)
	rootCmd.AddCommand(attachCmd)
}

func runAttach() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg); err != nil {
		return err
	}

	p, err := paths.DefaultPaths()
	if err != nil {
		return err
	}
	if !p.SocketExists() {
		return fmt.Errorf("no daemon socket at %s (start one with 'reach daemon')", p.SocketPath)
	}

	client, err := ipc.Connect(p.SocketPath)
	if err != nil {
		return fmt.Errorf("%w (is the daemon still running?)", err)
	}
	defer client.Close()

	logging.SetWriter(io.Discard)

	apiAddr := ""
	if cfg.Server.Enabled {
		apiAddr = cfg.Server.Address
	}
	return tui.RunWithIPC(client, tuiOptions(cfg, apiAddr))
}
