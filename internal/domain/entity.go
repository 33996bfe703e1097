// Package domain contains core business entities and interfaces.
// This is the innermost layer: it depends only on the condition sum type.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eliteGoblin/focusd/web_gate/internal/condition"
)

// Mode says how a rule's condition turns into a block.
type Mode string

const (
	ModeUntil       Mode = "UNTIL"        // blocked until the condition is met
	ModeDuring      Mode = "DURING"       // blocked while the condition is active
	ModeAllowDuring Mode = "ALLOW_DURING" // allowed only while the condition is active
)

// ParseMode accepts the persisted mode names case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case ModeUntil, ModeDuring, ModeAllowDuring:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidRule, s)
}

// Blocks reports whether a rule in this mode blocks given whether its
// condition is met (or active). UNTIL and ALLOW_DURING both block while the
// condition does not hold; they differ only in how the condition is read.
func (m Mode) Blocks(met bool) bool {
	if m == ModeDuring {
		return met
	}
	return !met
}

// Keyword is the word used between items and condition in a description.
func (m Mode) Keyword() string {
	switch m {
	case ModeDuring:
		return "DURING"
	case ModeAllowDuring:
		return "EXCEPT DURING"
	default:
		return "UNTIL"
	}
}

// Rule is a persisted user intent: block Items under Mode and Condition.
type Rule struct {
	ID         string
	Items      []string // hostnames or partial hostnames
	Mode       Mode
	Condition  condition.Condition
	Exceptions []string // hostnames exempted via subdomain match
	Enabled    bool
	CreatedAt  time.Time
}

// Validate checks the invariants enforced at rule creation.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRule)
	}
	if r.Enabled && len(r.Items) == 0 {
		return ErrEmptyItems
	}
	if _, err := ParseMode(string(r.Mode)); err != nil {
		return err
	}
	if r.Condition == nil {
		return fmt.Errorf("%w: condition is required", ErrInvalidRule)
	}
	return nil
}

// Describe renders the rule as "NO a, b, c +2 UNTIL 10000 steps".
func (r Rule) Describe() string {
	shown := r.Items
	if len(shown) > 3 {
		shown = shown[:3]
	}
	items := strings.Join(shown, ", ")
	if extra := len(r.Items) - len(shown); extra > 0 {
		items += fmt.Sprintf(" +%d", extra)
	}

	desc := "unknown"
	if r.Condition != nil {
		desc = r.Condition.Describe()
	}
	return fmt.Sprintf("NO %s %s %s", items, r.Mode.Keyword(), desc)
}

type ruleJSON struct {
	ID         string          `json:"id"`
	Items      []string        `json:"items"`
	Mode       Mode            `json:"mode"`
	Condition  json.RawMessage `json:"condition"`
	Exceptions []string        `json:"exceptions"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  time.Time       `json:"created_at"`
}

// MarshalJSON writes the canonical rule schema.
func (r Rule) MarshalJSON() ([]byte, error) {
	cond, err := condition.Marshal(r.Condition)
	if err != nil {
		return nil, err
	}
	items, exceptions := r.Items, r.Exceptions
	if items == nil {
		items = []string{}
	}
	if exceptions == nil {
		exceptions = []string{}
	}
	return json.Marshal(ruleJSON{
		ID:         r.ID,
		Items:      items,
		Mode:       r.Mode,
		Condition:  cond,
		Exceptions: exceptions,
		Enabled:    r.Enabled,
		CreatedAt:  r.CreatedAt,
	})
}

// UnmarshalJSON reads a rule, normalizing the condition and mode.
// A record without a mode predates modes and is an UNTIL rule.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw ruleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	mode := ModeUntil
	if raw.Mode != "" {
		m, err := ParseMode(string(raw.Mode))
		if err != nil {
			return err
		}
		mode = m
	}
	cond, err := condition.Unmarshal(raw.Condition)
	if err != nil {
		return err
	}
	*r = Rule{
		ID:         raw.ID,
		Items:      raw.Items,
		Mode:       mode,
		Condition:  cond,
		Exceptions: raw.Exceptions,
		Enabled:    raw.Enabled,
		CreatedAt:  raw.CreatedAt,
	}
	return nil
}

// Progress is today's sensor-fed progress. Date is the local calendar day
// (YYYY-MM-DD) the counters belong to.
type Progress struct {
	Steps          int    `json:"steps"`
	WorkoutMinutes int    `json:"workout_minutes"`
	Date           string `json:"date,omitempty"`
}

// DateLayout formats Progress.Date.
const DateLayout = "2006-01-02"

// PageMetadata is what a media page exposes beyond its URL.
type PageMetadata struct {
	URL         string
	Title       string
	Description string
	Channel     string
	Category    string
}

// Decision is the engine's verdict for one navigation.
type Decision struct {
	Blocked  bool
	Rule     *Rule
	Mode     Mode
	Status   string
	Progress int
}

// Allowed is the zero decision.
func Allowed() Decision {
	return Decision{}
}

// PingWindow temporarily unlocks one conversation after a personal mention.
type PingWindow struct {
	Key       string // platform-qualified, e.g. "discord:<channelId>"
	ExpiresAt time.Time
}

// HeartbeatRole identifies which side of the watchdog pair wrote a heartbeat.
type HeartbeatRole string

const (
	RoleDesktop   HeartbeatRole = "desktop"
	RoleExtension HeartbeatRole = "extension"
)

// Heartbeat is the liveness record each side writes for the other.
type Heartbeat struct {
	Timestamp int64  `json:"timestamp"`
	PID       int    `json:"pid,omitempty"`
	Active    bool   `json:"active"`
	Version   string `json:"version,omitempty"`
}

// Age returns how long ago the heartbeat was written.
func (h Heartbeat) Age(now time.Time) time.Duration {
	return now.Sub(time.Unix(h.Timestamp, 0))
}
