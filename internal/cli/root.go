package cli

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wellsgz/reach/internal/api"
	"github.com/wellsgz/reach/internal/logging"
	"github.com/wellsgz/reach/internal/tui"
)

// rootCmd runs the standalone dashboard with the engine in-process
var rootCmd = &cobra.Command{
	Use:   "reach",
	Short: "Terminal dashboard for host reachability and latency",
	Long: `Monitor one host with periodic pings and on-demand path traces.

The dashboard shows live latency, windowed loss and jitter statistics,
a quality rating, and the most recent traceroute. Without a config
file it watches ` + "www.youtube.com" + ` once a second.

Examples:
  reach
  reach --host example.org
  reach --host example.org --probe tcp --port 443
  reach --lang id --admin`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStandalone()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
	addMonitorFlags(rootCmd)
	addDisplayFlags(rootCmd)
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runStandalone() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg); err != nil {
		return err
	}

	// The alternate screen owns the terminal, so logs go nowhere
	logging.SetWriter(io.Discard)

	mon, err := buildMonitor(cfg)
	if err != nil {
		return err
	}
	mon.Start()
	defer mon.Stop()

	apiAddr := ""
	if cfg.Server.Enabled {
		apiServer := api.NewServer(mon, cfg)
		apiServer.StartAsync(cfg.Server.Address)
		defer apiServer.Shutdown(5 * time.Second)
		apiAddr = cfg.Server.Address
	}

	return tui.Run(mon, tuiOptions(cfg, apiAddr))
}
