package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eliteGoblin/focusd/web_gate/internal/condition"
	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

const (
	unlockPrefix         = "unlock:"
	passwordSecretPrefix = "rule-password:"
)

// UnlockService is the side channel that resolves tomorrow and password
// conditions. A successful unlock stores a grant that lasts until the next
// local midnight; the rule itself is never modified.
type UnlockService struct {
	rules   domain.RuleRepository
	kv      domain.KeyValueStore
	secrets domain.SecretStore
	clock   domain.Clock
	cost    int
	logger  *zap.Logger
}

// NewUnlockService creates an unlock service hashing with bcrypt's default cost.
func NewUnlockService(
	rules domain.RuleRepository,
	kv domain.KeyValueStore,
	secrets domain.SecretStore,
	clock domain.Clock,
	logger *zap.Logger,
) *UnlockService {
	return NewUnlockServiceWithCost(rules, kv, secrets, clock, bcrypt.DefaultCost, logger)
}

// NewUnlockServiceWithCost creates an unlock service with a custom bcrypt cost (for testing).
func NewUnlockServiceWithCost(
	rules domain.RuleRepository,
	kv domain.KeyValueStore,
	secrets domain.SecretStore,
	clock domain.Clock,
	cost int,
	logger *zap.Logger,
) *UnlockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnlockService{rules: rules, kv: kv, secrets: secrets, clock: clock, cost: cost, logger: logger}
}

// SetPassword stores the bcrypt hash guarding a password rule.
func (s *UnlockService) SetPassword(ctx context.Context, ruleID, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrInvalidRule)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.secrets.SetSecret(ctx, passwordSecretPrefix+ruleID, string(hash)); err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}
	return nil
}

// Forget drops the password hash and any grant for a deleted rule.
func (s *UnlockService) Forget(ctx context.Context, ruleID string) error {
	if err := s.secrets.DeleteSecret(ctx, passwordSecretPrefix+ruleID); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		return fmt.Errorf("failed to delete password: %w", err)
	}
	if err := s.kv.Delete(ctx, unlockPrefix+ruleID); err != nil {
		return fmt.Errorf("failed to delete unlock grant: %w", err)
	}
	return nil
}

// Unlock grants a rule until the next midnight.
//   - password rules need the right password
//   - tomorrow rules unlock once the calendar day has moved past creation
//
// Other conditions are resolved by progress and cannot be unlocked.
func (s *UnlockService) Unlock(ctx context.Context, ruleID, password string) (time.Time, error) {
	rule, err := s.findRule(ctx, ruleID)
	if err != nil {
		return time.Time{}, err
	}

	now := s.clock.Now()
	switch rule.Condition.(type) {
	case condition.Password:
		if err := s.checkPassword(ctx, ruleID, password); err != nil {
			return time.Time{}, err
		}
	case condition.Tomorrow:
		created := rule.CreatedAt.In(now.Location()).Format(domain.DateLayout)
		if now.Format(domain.DateLayout) <= created {
			return time.Time{}, fmt.Errorf("%w: locked until tomorrow", domain.ErrUnlockNotAllowed)
		}
	default:
		return time.Time{}, fmt.Errorf("%w: %s rules unlock through progress", domain.ErrUnlockNotAllowed, rule.Condition.Kind())
	}

	expires := nextMidnight(now)
	if err := s.kv.Set(ctx, unlockPrefix+ruleID, strconv.FormatInt(expires.UnixMilli(), 10)); err != nil {
		return time.Time{}, fmt.Errorf("failed to store unlock grant: %w", err)
	}
	s.logger.Info("rule unlocked",
		zap.String("rule", ruleID),
		zap.Time("until", expires))
	return expires, nil
}

// IsUnlocked reports whether ruleID holds an unexpired grant.
// Expired and corrupt grants are deleted.
func (s *UnlockService) IsUnlocked(ctx context.Context, ruleID string) bool {
	value, ok, err := s.kv.Get(ctx, unlockPrefix+ruleID)
	if err != nil {
		s.logger.Warn("failed to read unlock grant", zap.String("rule", ruleID), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err == nil && s.clock.Now().Before(time.UnixMilli(ms)) {
		return true
	}
	if err := s.kv.Delete(ctx, unlockPrefix+ruleID); err != nil {
		s.logger.Warn("failed to delete unlock grant", zap.String("rule", ruleID), zap.Error(err))
	}
	return false
}

func (s *UnlockService) findRule(ctx context.Context, id string) (domain.Rule, error) {
	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return domain.Rule{}, fmt.Errorf("failed to load rules: %w", err)
	}
	for _, r := range rules {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Rule{}, fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
}

func (s *UnlockService) checkPassword(ctx context.Context, ruleID, password string) error {
	hash, err := s.secrets.GetSecret(ctx, passwordSecretPrefix+ruleID)
	if errors.Is(err, domain.ErrSecretNotFound) {
		return fmt.Errorf("%w: no password set", domain.ErrUnlockNotAllowed)
	}
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return domain.ErrWrongPassword
	}
	return nil
}

func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
