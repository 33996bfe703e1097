// Package pingwindow tracks short-lived unlocks of chat conversations that
// follow a personal mention.
package pingwindow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// DefaultLifetime is how long a mention keeps a conversation open.
const DefaultLifetime = 3 * time.Minute

// keyPrefix namespaces ping windows inside the shared key-value store.
const keyPrefix = "ping:"

// ErrEmptyKey is returned when opening a window without a conversation key.
var ErrEmptyKey = errors.New("ping window key is empty")

// Key builds the platform-qualified key, e.g. Key("Discord", "123") is "discord:123".
func Key(platform, channel string) string {
	return strings.ToLower(strings.TrimSpace(platform)) + ":" + strings.TrimSpace(channel)
}

// Store keeps window expiries as epoch milliseconds in a KeyValueStore.
// Expiry is lazy: an expired window is deleted by the read that finds it.
// Concurrent writers to the same key simply overwrite each other.
type Store struct {
	kv       domain.KeyValueStore
	clock    domain.Clock
	lifetime time.Duration
	logger   *zap.Logger
}

// NewStore creates a store with the default lifetime.
func NewStore(kv domain.KeyValueStore, clock domain.Clock, logger *zap.Logger) *Store {
	return NewStoreWithLifetime(kv, clock, DefaultLifetime, logger)
}

// NewStoreWithLifetime creates a store with a custom window lifetime.
func NewStoreWithLifetime(kv domain.KeyValueStore, clock domain.Clock, lifetime time.Duration, logger *zap.Logger) *Store {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, clock: clock, lifetime: lifetime, logger: logger}
}

// Lifetime returns the window duration.
func (s *Store) Lifetime() time.Duration {
	return s.lifetime
}

// Open starts (or restarts) the window for key.
func (s *Store) Open(ctx context.Context, key string) (domain.PingWindow, error) {
	if strings.TrimSpace(key) == "" {
		return domain.PingWindow{}, ErrEmptyKey
	}
	expires := s.clock.Now().Add(s.lifetime)
	value := strconv.FormatInt(expires.UnixMilli(), 10)
	if err := s.kv.Set(ctx, keyPrefix+key, value); err != nil {
		return domain.PingWindow{}, fmt.Errorf("failed to open ping window %s: %w", key, err)
	}
	s.logger.Debug("ping window opened", zap.String("key", key), zap.Time("expires_at", expires))
	return domain.PingWindow{Key: key, ExpiresAt: expires}, nil
}

// IsActive reports whether the window for key is open. Missing, expired and
// unreadable windows are all inactive; expired and corrupt ones are deleted.
func (s *Store) IsActive(ctx context.Context, key string) bool {
	value, ok, err := s.kv.Get(ctx, keyPrefix+key)
	if err != nil {
		s.logger.Warn("failed to read ping window", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	expires, valid := parseExpiry(value)
	if valid && s.clock.Now().Before(expires) {
		return true
	}
	s.remove(ctx, key, valid)
	return false
}

// Active lists the currently open windows, soonest expiry first.
func (s *Store) Active(ctx context.Context) ([]domain.PingWindow, error) {
	entries, err := s.kv.List(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list ping windows: %w", err)
	}
	now := s.clock.Now()
	var out []domain.PingWindow
	for k, v := range entries {
		expires, ok := parseExpiry(v)
		if !ok || !now.Before(expires) {
			continue
		}
		out = append(out, domain.PingWindow{Key: strings.TrimPrefix(k, keyPrefix), ExpiresAt: expires})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

// Sweep deletes every expired or corrupt window and returns how many went.
// Correctness does not depend on it; it only bounds storage.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	entries, err := s.kv.List(ctx, keyPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list ping windows: %w", err)
	}
	now := s.clock.Now()
	removed := 0
	for k, v := range entries {
		expires, ok := parseExpiry(v)
		if ok && now.Before(expires) {
			continue
		}
		if err := s.kv.Delete(ctx, k); err != nil {
			return removed, fmt.Errorf("failed to delete ping window %s: %w", k, err)
		}
		removed++
	}
	if removed > 0 {
		s.logger.Debug("swept ping windows", zap.Int("removed", removed))
	}
	return removed, nil
}

func (s *Store) remove(ctx context.Context, key string, valid bool) {
	if !valid {
		s.logger.Warn("discarding corrupt ping window", zap.String("key", key))
	}
	if err := s.kv.Delete(ctx, keyPrefix+key); err != nil {
		s.logger.Warn("failed to delete ping window", zap.String("key", key), zap.Error(err))
	}
}

func parseExpiry(value string) (time.Time, bool) {
	ms, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
