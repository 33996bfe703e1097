// Package daemon runs the background side of webgate: the extension
// watchdog and the detached serve process.
package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// BrowserChecker lists running browsers.
type BrowserChecker interface {
	Running() []string
}

// Sweeper drops expired state such as ping windows.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// WatchdogConfig holds watchdog configuration.
type WatchdogConfig struct {
	CheckInterval    time.Duration // how often to beat and check the extension
	HeartbeatTimeout time.Duration // extension heartbeat age that counts as silent
	SweepInterval    time.Duration // how often to sweep expired ping windows
}

// DefaultWatchdogConfig returns default watchdog configuration.
func DefaultWatchdogConfig() WatchdogConfig {
	return WatchdogConfig{
		CheckInterval:    5 * time.Second,
		HeartbeatTimeout: 30 * time.Second,
		SweepInterval:    time.Minute,
	}
}

// ExtensionState is the watchdog's view of the browser extension.
type ExtensionState string

const (
	ExtensionUnknown ExtensionState = "unknown" // never seen a heartbeat
	ExtensionAlive   ExtensionState = "alive"
	ExtensionSilent  ExtensionState = "silent" // stale heartbeat while a browser runs
	ExtensionIdle    ExtensionState = "idle"   // stale heartbeat, no browser running
)

// Watchdog is the desktop half of a mutual liveness check with the browser
// extension. It writes its own heartbeat each tick and raises an alert when
// the extension stops beating while a browser is open, which usually means
// the extension was disabled.
type Watchdog struct {
	config   WatchdogConfig
	registry domain.HeartbeatRegistry
	browsers BrowserChecker
	sweeper  Sweeper
	clock    domain.Clock
	pid      int
	version  string
	logger   *zap.Logger

	state ExtensionState
}

// NewWatchdog creates a watchdog. sweeper may be nil.
func NewWatchdog(
	config WatchdogConfig,
	registry domain.HeartbeatRegistry,
	browsers BrowserChecker,
	sweeper Sweeper,
	clock domain.Clock,
	pid int,
	version string,
	logger *zap.Logger,
) *Watchdog {
	return &Watchdog{
		config:   config,
		registry: registry,
		browsers: browsers,
		sweeper:  sweeper,
		clock:    clock,
		pid:      pid,
		version:  version,
		logger:   logger,
		state:    ExtensionUnknown,
	}
}

// State returns the last observed extension state.
func (w *Watchdog) State() ExtensionState {
	return w.state
}

// Run starts the watchdog loop.
// This blocks until context is canceled.
func (w *Watchdog) Run(ctx context.Context) error {
	w.logger.Info("watchdog started",
		zap.Int("pid", w.pid),
		zap.Duration("heartbeat_timeout", w.config.HeartbeatTimeout))

	w.Check()

	checkTicker := time.NewTicker(w.config.CheckInterval)
	sweepTicker := time.NewTicker(w.config.SweepInterval)
	defer func() {
		checkTicker.Stop()
		sweepTicker.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			w.beat(false)
			w.logger.Info("watchdog stopping")
			return ctx.Err()

		case <-checkTicker.C:
			w.Check()

		case <-sweepTicker.C:
			w.sweep(ctx)
		}
	}
}

// Check writes the desktop heartbeat and re-evaluates the extension.
func (w *Watchdog) Check() ExtensionState {
	w.beat(true)

	hb, err := w.registry.Last(domain.RoleExtension)
	if err != nil {
		w.logger.Warn("failed to read extension heartbeat", zap.Error(err))
		return w.state
	}
	if hb == nil {
		w.logger.Debug("no extension heartbeat yet")
		return w.state
	}

	age := hb.Age(w.clock.Now())
	if age < w.config.HeartbeatTimeout {
		if w.state == ExtensionSilent {
			w.logger.Info("extension heartbeat restored", zap.Duration("age", age))
		}
		w.state = ExtensionAlive
		return w.state
	}

	running := w.browsers.Running()
	if len(running) == 0 {
		if w.state != ExtensionIdle {
			w.logger.Debug("extension silent but no browser running", zap.Duration("age", age))
		}
		w.state = ExtensionIdle
		return w.state
	}

	if w.state != ExtensionSilent {
		w.logger.Warn("extension went silent while a browser is running",
			zap.Duration("age", age),
			zap.Strings("browsers", running))
	}
	w.state = ExtensionSilent
	return w.state
}

func (w *Watchdog) beat(active bool) {
	hb := domain.Heartbeat{
		Timestamp: w.clock.Now().Unix(),
		PID:       w.pid,
		Active:    active,
		Version:   w.version,
	}
	if err := w.registry.Beat(domain.RoleDesktop, hb); err != nil {
		w.logger.Warn("failed to write heartbeat", zap.Error(err))
	}
}

func (w *Watchdog) sweep(ctx context.Context) {
	if w.sweeper == nil {
		return
	}
	n, err := w.sweeper.Sweep(ctx)
	if err != nil {
		w.logger.Warn("sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		w.logger.Debug("sweep completed", zap.Int("removed", n))
	}
}
