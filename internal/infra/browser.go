package infra

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// DefaultBrowsers are the process names the watchdog looks for.
var DefaultBrowsers = []string{"chrome", "chromium", "firefox", "msedge", "brave", "vivaldi", "opera"}

// BrowserDetector reports which browsers are running.
type BrowserDetector struct {
	pm     domain.ProcessManager
	names  []string
	logger *zap.Logger
}

// NewBrowserDetector creates a detector for the given process names.
func NewBrowserDetector(pm domain.ProcessManager, names []string, logger *zap.Logger) *BrowserDetector {
	if len(names) == 0 {
		names = DefaultBrowsers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserDetector{pm: pm, names: names, logger: logger}
}

// Running returns the configured names with at least one live process.
func (d *BrowserDetector) Running() []string {
	var running []string
	for _, name := range d.names {
		pids, err := d.pm.FindByName(name)
		if err != nil {
			d.logger.Debug("process lookup failed", zap.String("name", name), zap.Error(err))
			continue
		}
		if len(pids) > 0 {
			running = append(running, name)
		}
	}
	return running
}
