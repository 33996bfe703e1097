package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/condition"
	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// NewRule is the input for RuleService.Add.
type NewRule struct {
	Items      []string
	Mode       domain.Mode
	Condition  condition.Condition
	Exceptions []string
	Password   string // required for password conditions, ignored otherwise
}

// RuleService manages user-authored rules.
type RuleService struct {
	repo    domain.RuleRepository
	unlocks *UnlockService
	clock   domain.Clock
	newID   func() string
	logger  *zap.Logger
}

// NewRuleService creates a rule service.
func NewRuleService(repo domain.RuleRepository, unlocks *UnlockService, clock domain.Clock, logger *zap.Logger) *RuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleService{
		repo:    repo,
		unlocks: unlocks,
		clock:   clock,
		newID:   func() string { return "rule-" + uuid.NewString() },
		logger:  logger,
	}
}

// List returns all rules in evaluation order.
func (s *RuleService) List(ctx context.Context) ([]domain.Rule, error) {
	return s.repo.ListRules(ctx)
}

// Get returns one rule by ID.
func (s *RuleService) Get(ctx context.Context, id string) (domain.Rule, error) {
	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return domain.Rule{}, err
	}
	for _, r := range rules {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Rule{}, fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
}

// Add validates and appends a new enabled rule.
func (s *RuleService) Add(ctx context.Context, in NewRule) (domain.Rule, error) {
	rule := domain.Rule{
		ID:         s.newID(),
		Items:      cleanHosts(in.Items),
		Mode:       in.Mode,
		Condition:  in.Condition,
		Exceptions: cleanHosts(in.Exceptions),
		Enabled:    true,
		CreatedAt:  s.clock.Now(),
	}
	if rule.Mode == "" {
		rule.Mode = domain.ModeUntil
	}
	if err := rule.Validate(); err != nil {
		return domain.Rule{}, err
	}

	if _, ok := rule.Condition.(condition.Password); ok {
		if s.unlocks == nil {
			return domain.Rule{}, fmt.Errorf("%w: password rules are not supported here", domain.ErrInvalidRule)
		}
		if err := s.unlocks.SetPassword(ctx, rule.ID, in.Password); err != nil {
			return domain.Rule{}, err
		}
	}

	if err := s.repo.SaveRule(ctx, rule); err != nil {
		if s.unlocks != nil {
			if ferr := s.unlocks.Forget(ctx, rule.ID); ferr != nil {
				s.logger.Warn("failed to clean up rule secrets", zap.String("rule", rule.ID), zap.Error(ferr))
			}
		}
		return domain.Rule{}, fmt.Errorf("failed to save rule: %w", err)
	}
	s.logger.Info("rule added",
		zap.String("rule", rule.ID),
		zap.String("description", rule.Describe()))
	return rule, nil
}

// Remove deletes a rule and its password and unlock grant.
func (s *RuleService) Remove(ctx context.Context, id string) error {
	if err := s.repo.DeleteRule(ctx, id); err != nil {
		return err
	}
	if s.unlocks != nil {
		if err := s.unlocks.Forget(ctx, id); err != nil {
			s.logger.Warn("failed to clean up rule secrets", zap.String("rule", id), zap.Error(err))
		}
	}
	s.logger.Info("rule removed", zap.String("rule", id))
	return nil
}

// SetEnabled toggles a rule. Enabling a rule without items is rejected.
func (s *RuleService) SetEnabled(ctx context.Context, id string, enabled bool) (domain.Rule, error) {
	rule, err := s.Get(ctx, id)
	if err != nil {
		return domain.Rule{}, err
	}
	rule.Enabled = enabled
	if err := rule.Validate(); err != nil {
		return domain.Rule{}, err
	}
	if err := s.repo.SaveRule(ctx, rule); err != nil {
		return domain.Rule{}, fmt.Errorf("failed to save rule: %w", err)
	}
	s.logger.Info("rule toggled",
		zap.String("rule", id),
		zap.Bool("enabled", enabled))
	return rule, nil
}

func cleanHosts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, h := range in {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}
