package domain

import (
	"context"
	"time"
)

// RuleRepository persists rules in their stored order.
type RuleRepository interface {
	// ListRules returns all rules in stored order.
	ListRules(ctx context.Context) ([]Rule, error)

	// SaveRule updates a rule in place, or appends it if the ID is new.
	SaveRule(ctx context.Context, rule Rule) error

	// DeleteRule removes a rule. Returns ErrRuleNotFound if absent.
	DeleteRule(ctx context.Context, id string) error

	// ReplaceRules atomically replaces the whole rule list.
	ReplaceRules(ctx context.Context, rules []Rule) error
}

// ProgressStore persists today's progress counters.
type ProgressStore interface {
	// GetProgress returns the stored progress, zero-valued if none.
	GetProgress(ctx context.Context) (Progress, error)

	// SaveProgress overwrites the stored progress.
	SaveProgress(ctx context.Context, p Progress) error

	// AddProgress atomically adds deltas to the counters stamped with date
	// and returns the result. Counters stamped with another date are
	// replaced by the deltas.
	AddProgress(ctx context.Context, date string, steps, workoutMinutes int) (Progress, error)
}

// KeyValueStore is a string map used for ping windows and unlock grants.
type KeyValueStore interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes a value, overwriting any previous one (last write wins).
	Set(ctx context.Context, key, value string) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all entries whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string]string, error)
}

// SecretStore provides encrypted persistent storage for secrets
// such as password-condition hashes.
type SecretStore interface {
	// GetSecret returns ErrSecretNotFound if the key is absent.
	GetSecret(ctx context.Context, key string) (string, error)

	SetSecret(ctx context.Context, key, value string) error

	DeleteSecret(ctx context.Context, key string) error
}

// Store is everything the engine persists, backed by one database.
type Store interface {
	RuleRepository
	ProgressStore
	KeyValueStore
	SecretStore

	// Close releases the database connection.
	Close() error
}

// Clock abstracts wall-clock time for testing.
type Clock interface {
	Now() time.Time
}

// ProcessManager inspects OS processes.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// FindByName returns PIDs of processes matching the pattern.
	FindByName(pattern string) ([]int, error)

	// IsRunning checks if a PID exists and is running.
	IsRunning(pid int) bool

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}

// HeartbeatRegistry exchanges liveness records between the desktop daemon
// and the browser extension.
type HeartbeatRegistry interface {
	// Beat records a heartbeat for role.
	Beat(role HeartbeatRole, hb Heartbeat) error

	// Last returns the latest heartbeat for role, or nil if none was written.
	Last(role HeartbeatRole) (*Heartbeat, error)

	// Path returns the file backing role (for status output and tests).
	Path(role HeartbeatRole) string
}

// Engine decides whether navigations are blocked.
type Engine interface {
	// CheckURL decides for a navigation about to complete.
	CheckURL(ctx context.Context, rawURL string) Decision

	// CheckURLWithMetadata runs music detection before CheckURL.
	CheckURLWithMetadata(ctx context.Context, page PageMetadata) Decision

	// RecordPersonalMention opens a ping window for a conversation.
	RecordPersonalMention(ctx context.Context, platform, channelKey string) error
}

// KeyProvider supplies the store encryption key.
type KeyProvider interface {
	// GetKey returns the 256-bit key.
	GetKey() ([]byte, error)

	// StoreKey persists a newly generated key.
	StoreKey(key []byte) error

	// KeyExists reports whether a key is available.
	KeyExists() bool
}
