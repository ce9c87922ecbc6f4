package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wellsgz/reach/internal/api"
	"github.com/wellsgz/reach/internal/ipc"
	"github.com/wellsgz/reach/internal/logging"
	"github.com/wellsgz/reach/internal/paths"
)

var logFormatFlag string

// daemonCmd runs the engine headless behind the IPC socket
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the engine headless with the control socket",
	Long: `Run the monitoring engine without a dashboard.

The daemon keeps probing in the background and serves its state over
a unix socket. Attach a dashboard at any time with 'reach attach'.
When the API server is enabled in the config it is started as well.

Examples:
  reach daemon
  reach daemon --host example.org --interval 2s
  reach daemon --log-format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

func init() {
	addMonitorFlags(daemonCmd)
	daemonCmd.Flags().StringVar(&logFormatFlag, "log-format", "text", "log output format: text or json")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon() error {
	switch logging.Format(logFormatFlag) {
	case logging.FormatText, logging.FormatJSON:
		logging.SetFormat(logging.Format(logFormatFlag))
	default:
		return fmt.Errorf("invalid log format %q (use text or json)", logFormatFlag)
	}

	p, err := paths.DefaultPaths()
	if err != nil {
		return err
	}
	if err := p.EnsureDirectories(); err != nil {
		return err
	}
	if configFlag == "" {
		created, err := p.CreateDefaultConfig()
		if err != nil {
			return err
		}
		if created {
			log.Printf("[Daemon] Created default config at %s", p.ConfigFile)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg); err != nil {
		return err
	}

	mon, err := buildMonitor(cfg)
	if err != nil {
		return err
	}

	ipcServer := ipc.NewServer(p.SocketPath)
	ipcServer.SetMonitor(mon)

	mon.Start()
	if err := ipcServer.Start(); err != nil {
		mon.Stop()
		return err
	}

	var apiServer *api.Server
	if cfg.Server.Enabled {
		apiServer = api.NewServer(mon, cfg)
		apiServer.StartAsync(cfg.Server.Address)
	}

	log.Printf("[Daemon] Monitoring %s (socket %s)", cfg.Target.Host, p.SocketPath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Println("[Daemon] Shutting down...")
	if apiServer != nil {
		if err := apiServer.Shutdown(5 * time.Second); err != nil {
			log.Printf("[Daemon] API shutdown: %v", err)
		}
	}
	ipcServer.Stop()
	mon.Stop()
	return nil
}
