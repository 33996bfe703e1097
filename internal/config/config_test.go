package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/web_gate/internal/condition"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	want := DefaultConfig()
	want.DataDir = dir
	assert.Equal(t, want, cfg)
	assert.True(t, cfg.Encrypted)
	assert.Equal(t, 3*time.Minute, cfg.PingWindow.Duration)
	assert.Equal(t, condition.ClockTime{Hour: 17}, cfg.DiscordUntil())
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{
		"encrypted": false,
		"ping_window": "5m",
		"watchdog": {"heartbeat_timeout": "1m"},
		"defaults": {"steps_target": 8000, "discord_until": "18:30"},
		"browsers": ["firefox"]
	}`), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.False(t, cfg.Encrypted)
	assert.Equal(t, "127.0.0.1:7719", cfg.Listen)
	assert.Equal(t, 5*time.Minute, cfg.PingWindow.Duration)
	assert.Equal(t, time.Minute, cfg.Watchdog.HeartbeatTimeout.Duration)
	assert.Equal(t, 5*time.Second, cfg.Watchdog.CheckInterval.Duration)
	assert.Equal(t, 8000, cfg.Defaults.StepsTarget)
	assert.Equal(t, 30, cfg.Defaults.WorkoutMinutes)
	assert.Equal(t, condition.ClockTime{Hour: 18, Minute: 30}, cfg.DiscordUntil())
	assert.Equal(t, []string{"firefox"}, cfg.Browsers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"bad duration", `{"ping_window": "soon"}`},
		{"numeric duration", `{"ping_window": 180}`},
		{"zero window", `{"ping_window": "0s"}`},
		{"empty listen", `{"listen": " "}`},
		{"bad clock", `{"defaults": {"discord_until": "5pm"}}`},
		{"negative target", `{"defaults": {"steps_target": -1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.body), 0600))
			_, err := Load(dir)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestSave_RoundTrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "nested")
	cfg.APIToken = "s3cret"
	cfg.PingWindow = Duration{90 * time.Second}

	require.NoError(t, Save(cfg))

	data, err := os.ReadFile(Path(cfg.DataDir))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ping_window": "1m30s"`)

	loaded, err := Load(cfg.DataDir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestResolveDataDir_EnvOverride(t *testing.T) {
	t.Setenv(HomeEnvVar, "/tmp/webgate-test")
	assert.Equal(t, "/tmp/webgate-test", ResolveDataDir())
}

func TestResolveDataDir_Default(t *testing.T) {
	t.Setenv(HomeEnvVar, "")
	t.Setenv("SUDO_USER", "")

	got := ResolveDataDir()
	if os.Geteuid() == 0 {
		assert.Equal(t, "/var/lib/webgate", got)
		assert.Equal(t, ModeSystem, DetectMode())
		return
	}
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".webgate"), got)
	assert.Equal(t, ModeUser, DetectMode())
}
