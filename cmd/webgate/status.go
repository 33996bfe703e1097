package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/config"
	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
	"github.com/eliteGoblin/focusd/web_gate/internal/infra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check server, extension and rule status",
	Long:  `Shows whether the server is running, whether the browser extension is reporting in, and what is currently blocked.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pm := infra.NewProcessManager()
	heartbeats := infra.NewFileHeartbeatRegistry(cfg.DataDir)
	now := time.Now()

	fmt.Fprintln(out, "\n=== webgate Status ===")
	fmt.Fprintf(out, "Mode: %s\n", config.DetectMode())
	fmt.Fprintf(out, "Data dir: %s\n", cfg.DataDir)
	fmt.Fprintf(out, "Encrypted store: %v\n", cfg.Encrypted)

	printServerStatus(out, pm, heartbeats, cfg, now)
	printExtensionStatus(out, heartbeats, cfg, now)

	browsers := infra.NewBrowserDetector(pm, cfg.Browsers, zap.NewNop()).Running()
	if len(browsers) > 0 {
		fmt.Fprintf(out, "Browsers running: %s\n", strings.Join(browsers, ", "))
	} else {
		fmt.Fprintln(out, "Browsers running: none")
	}

	err = withApp(func(ctx context.Context, a *app) error {
		return printStoreStatus(ctx, out, a)
	})
	if err != nil {
		fmt.Fprintf(out, "\nStore: unavailable (%v)\n", err)
	}

	fmt.Fprintln(out, "=====================")
	return nil
}

func printServerStatus(out io.Writer, pm domain.ProcessManager, heartbeats domain.HeartbeatRegistry, cfg *config.Config, now time.Time) {
	hb, err := heartbeats.Last(domain.RoleDesktop)
	if err != nil || hb == nil {
		fmt.Fprintln(out, "\nServer: NOT RUNNING")
		fmt.Fprintln(out, "        Run 'webgate serve --detach' to start it.")
		return
	}
	if hb.Active && pm.IsRunning(hb.PID) {
		fmt.Fprintf(out, "\nServer: RUNNING (pid %d, %s)\n", hb.PID, cfg.Listen)
	} else {
		fmt.Fprintln(out, "\nServer: STOPPED")
	}
	fmt.Fprintf(out, "Last heartbeat: %s ago\n", hb.Age(now).Round(time.Second))
}

func printExtensionStatus(out io.Writer, heartbeats domain.HeartbeatRegistry, cfg *config.Config, now time.Time) {
	hb, err := heartbeats.Last(domain.RoleExtension)
	switch {
	case err != nil:
		fmt.Fprintf(out, "Extension: UNKNOWN (%v)\n", err)
	case hb == nil:
		fmt.Fprintln(out, "Extension: no heartbeat yet")
	case hb.Age(now) < cfg.Watchdog.HeartbeatTimeout.Duration:
		fmt.Fprintf(out, "Extension: CONNECTED (v%s)\n", hb.Version)
	default:
		fmt.Fprintf(out, "Extension: SILENT (last seen %s ago)\n", hb.Age(now).Round(time.Second))
	}
}

func printStoreStatus(ctx context.Context, out io.Writer, a *app) error {
	rules, err := a.rules.List(ctx)
	if err != nil {
		return err
	}
	enabled := 0
	for _, r := range rules {
		if r.Enabled {
			enabled++
		}
	}
	fmt.Fprintf(out, "\nRules: %d (%d enabled)\n", len(rules), enabled)

	p, err := a.progress.Today(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Today: %d steps, %d workout min\n", p.Steps, p.WorkoutMinutes)

	windows, err := a.pings.Active(ctx)
	if err != nil {
		return err
	}
	if len(windows) > 0 {
		fmt.Fprintln(out, "Open ping windows:")
		for _, w := range windows {
			fmt.Fprintf(out, "  - %s (%s left)\n", w.Key, w.ExpiresAt.Sub(a.clock.Now()).Round(time.Second))
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
