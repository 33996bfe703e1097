package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/api"
	"github.com/eliteGoblin/focusd/web_gate/internal/daemon"
	"github.com/eliteGoblin/focusd/web_gate/internal/infra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local API and the extension watchdog",
	Long: `Seeds the default platform rules, then serves the API the browser
extension calls and watches the extension's heartbeat until interrupted.
Use --detach to keep it running after the terminal closes.`,
	RunE: runServe,
}

var serveDetach bool

func init() {
	serveCmd.Flags().BoolVar(&serveDetach, "detach", false, "Run in the background")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	dataDir := resolveDataDir()

	if serveDetach {
		pid, err := daemon.StartDetached(dataDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "webgate serving in the background (pid %d)\n", pid)
		fmt.Fprintf(cmd.OutOrStdout(), "Logs: %s\n", filepath.Join(dataDir, "webgate.log"))
		return nil
	}

	logger := createServeLogger(dataDir)
	defer func() { _ = logger.Sync() }()

	a, err := openApp(logger)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		return err
	}
	defer a.Close()

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	seeded, err := a.seeder.Seed(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed default rules: %w", err)
	}
	logger.Info("rules loaded", zap.Int("count", len(seeded)))

	pm := infra.NewProcessManager()
	heartbeats := infra.NewFileHeartbeatRegistry(a.cfg.DataDir)
	browsers := infra.NewBrowserDetector(pm, a.cfg.Browsers, logger)

	watchdog := daemon.NewWatchdog(
		daemon.WatchdogConfig{
			CheckInterval:    a.cfg.Watchdog.CheckInterval.Duration,
			HeartbeatTimeout: a.cfg.Watchdog.HeartbeatTimeout.Duration,
			SweepInterval:    a.cfg.Watchdog.SweepInterval.Duration,
		},
		heartbeats,
		browsers,
		a.pings,
		a.clock,
		pm.GetCurrentPID(),
		Version,
		logger,
	)

	router := api.NewRouter(api.RouterConfig{
		Engine:     a.engine,
		Progress:   a.progress,
		Rules:      a.rules,
		Heartbeats: heartbeats,
		Clock:      a.clock,
		APIToken:   a.cfg.APIToken,
		Version:    Version,
		Logger:     logger,
	})

	watchdogDone := make(chan struct{})
	go func() {
		defer close(watchdogDone)
		_ = watchdog.Run(ctx)
	}()

	err = api.Serve(ctx, a.cfg.Listen, router, logger)
	cancel()
	<-watchdogDone
	return err
}
