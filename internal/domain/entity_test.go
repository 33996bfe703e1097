package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/web_gate/internal/condition"
)

func TestMode_Blocks(t *testing.T) {
	tests := []struct {
		mode Mode
		met  bool
		want bool
	}{
		{ModeUntil, false, true},
		{ModeUntil, true, false},
		{ModeDuring, true, true},
		{ModeDuring, false, false},
		{ModeAllowDuring, true, false},
		{ModeAllowDuring, false, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.mode.Blocks(tt.met), "%s met=%v", tt.mode, tt.met)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("allow_during")
	require.NoError(t, err)
	assert.Equal(t, ModeAllowDuring, m)

	_, err = ParseMode("SOMETIMES")
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestRule_Validate(t *testing.T) {
	valid := Rule{ID: "r1", Items: []string{"youtube.com"}, Mode: ModeUntil, Condition: condition.Steps{Target: 100}, Enabled: true}
	assert.NoError(t, valid.Validate())

	empty := valid
	empty.Items = nil
	assert.ErrorIs(t, empty.Validate(), ErrEmptyItems)

	disabledEmpty := empty
	disabledEmpty.Enabled = false
	assert.NoError(t, disabledEmpty.Validate(), "disabled rules may be inert")

	noID := valid
	noID.ID = " "
	assert.ErrorIs(t, noID.Validate(), ErrInvalidRule)

	noCond := valid
	noCond.Condition = nil
	assert.ErrorIs(t, noCond.Validate(), ErrInvalidRule)

	badMode := valid
	badMode.Mode = "NEVER"
	assert.ErrorIs(t, badMode.Validate(), ErrInvalidRule)
}

func TestRule_Describe(t *testing.T) {
	r := Rule{
		Items:     []string{"netflix.com", "youtube.com", "tiktok.com", "reddit.com", "x.com"},
		Mode:      ModeUntil,
		Condition: condition.Steps{Target: 10000},
	}
	assert.Equal(t, "NO netflix.com, youtube.com, tiktok.com +2 UNTIL 10000 steps", r.Describe())

	r = Rule{
		Items:     []string{"discord.com"},
		Mode:      ModeAllowDuring,
		Condition: condition.TimeRange{Start: condition.MustClockTime("18:00"), End: condition.MustClockTime("19:00")},
	}
	assert.Equal(t, "NO discord.com EXCEPT DURING 18:00-19:00", r.Describe())
}

func TestRule_JSONRoundTripNormalizesLegacyRecords(t *testing.T) {
	legacy := `{
		"id": "r1",
		"items": ["youtube.com"],
		"condition": {"type": "steps", "steps_target": 5000},
		"enabled": true,
		"created_at": "2024-01-01T10:00:00Z"
	}`

	var r Rule
	require.NoError(t, json.Unmarshal([]byte(legacy), &r))
	assert.Equal(t, ModeUntil, r.Mode, "missing mode defaults to UNTIL")
	assert.Equal(t, condition.Steps{Target: 5000}, r.Condition)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), r.CreatedAt)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"target":5000`)
	assert.Contains(t, string(data), `"exceptions":[]`)
	assert.NotContains(t, string(data), "steps_target")
}

func TestHeartbeat_Age(t *testing.T) {
	now := time.Unix(1_700_000_100, 0)
	hb := Heartbeat{Timestamp: 1_700_000_000}
	assert.Equal(t, 100*time.Second, hb.Age(now))
}
