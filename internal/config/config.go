// Package config loads webgate settings from <dataDir>/config.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/eliteGoblin/focusd/web_gate/internal/condition"
)

const (
	// HomeEnvVar overrides the data directory.
	HomeEnvVar = "WEBGATE_HOME"

	// FileName is the config file inside the data directory.
	FileName = "config.json"

	systemDataDir = "/var/lib/webgate"
	userDataDir   = ".webgate"
)

// ErrInvalidConfig wraps every validation and parse failure.
var ErrInvalidConfig = errors.New("invalid config")

// Duration is a time.Duration read from and written as "3m", "30s" etc.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// WatchdogConfig tunes the extension watchdog.
type WatchdogConfig struct {
	CheckInterval    Duration `json:"check_interval"`
	HeartbeatTimeout Duration `json:"heartbeat_timeout"`
	SweepInterval    Duration `json:"sweep_interval"`
}

// DefaultsConfig holds the targets of the seeded platform rules.
type DefaultsConfig struct {
	StepsTarget    int    `json:"steps_target"`
	WorkoutMinutes int    `json:"workout_minutes"`
	DiscordUntil   string `json:"discord_until"`
}

// Config holds application configuration.
type Config struct {
	// DataDir is where the database, key, logs and heartbeats live.
	// It is resolved, not read from the file.
	DataDir string `json:"-"`

	// Encrypted selects the SQLCipher store over plain SQLite.
	Encrypted bool `json:"encrypted"`

	// Listen is the local API address.
	Listen string `json:"listen"`

	// APIToken, when set, must be sent as a bearer token to /v1 endpoints.
	APIToken string `json:"api_token,omitempty"`

	// PingWindow is how long a personal mention unlocks a conversation.
	PingWindow Duration `json:"ping_window"`

	Watchdog WatchdogConfig `json:"watchdog"`
	Defaults DefaultsConfig `json:"defaults"`

	// Browsers are process names whose presence makes a silent extension suspicious.
	Browsers []string `json:"browsers,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Encrypted:  true,
		Listen:     "127.0.0.1:7719",
		PingWindow: Duration{3 * time.Minute},
		Watchdog: WatchdogConfig{
			CheckInterval:    Duration{5 * time.Second},
			HeartbeatTimeout: Duration{30 * time.Second},
			SweepInterval:    Duration{time.Minute},
		},
		Defaults: DefaultsConfig{
			StepsTarget:    10000,
			WorkoutMinutes: 30,
			DiscordUntil:   "17:00",
		},
	}
}

// Load reads dataDir/config.json over the defaults. A missing file yields
// the defaults.
func Load(dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	data, err := os.ReadFile(Path(dataDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Unmarshal over the defaults so absent keys keep their default.
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config file, creating the data directory if needed.
func Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(Path(cfg.DataDir), append(data, '\n'), 0600)
}

// Path returns the config file path for dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Validate checks values a JSON decode cannot.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("%w: listen address is required", ErrInvalidConfig)
	}
	if c.PingWindow.Duration <= 0 {
		return fmt.Errorf("%w: ping_window must be positive", ErrInvalidConfig)
	}
	w := c.Watchdog
	if w.CheckInterval.Duration <= 0 || w.HeartbeatTimeout.Duration <= 0 || w.SweepInterval.Duration <= 0 {
		return fmt.Errorf("%w: watchdog intervals must be positive", ErrInvalidConfig)
	}
	if c.Defaults.StepsTarget < 0 || c.Defaults.WorkoutMinutes < 0 {
		return fmt.Errorf("%w: default targets must not be negative", ErrInvalidConfig)
	}
	if _, err := condition.ParseClockTime(c.Defaults.DiscordUntil); err != nil {
		return fmt.Errorf("%w: defaults.discord_until: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DiscordUntil returns the parsed discord_until time. Call after Validate.
func (c *Config) DiscordUntil() condition.ClockTime {
	t, err := condition.ParseClockTime(c.Defaults.DiscordUntil)
	if err != nil {
		return condition.ClockTime{Hour: 17}
	}
	return t
}

// Mode says whether webgate runs per-user or system-wide.
type Mode string

const (
	ModeUser   Mode = "user"
	ModeSystem Mode = "system"
)

// DetectMode returns system mode when running as root.
func DetectMode() Mode {
	if os.Geteuid() == 0 {
		return ModeSystem
	}
	return ModeUser
}

// ResolveDataDir picks $WEBGATE_HOME, else /var/lib/webgate for root,
// else ~/.webgate of the real (pre-sudo) user.
func ResolveDataDir() string {
	if dir := strings.TrimSpace(os.Getenv(HomeEnvVar)); dir != "" {
		return dir
	}
	if DetectMode() == ModeSystem && os.Getenv("SUDO_USER") == "" {
		return systemDataDir
	}
	return filepath.Join(RealUserHome(), userDataDir)
}

// RealUserHome returns the invoking user's home directory, even under sudo.
func RealUserHome() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir
		}
	}
	home, _ := os.UserHomeDir()
	return home
}
