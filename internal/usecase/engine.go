// Package usecase contains application business logic.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/condition"
	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
	"github.com/eliteGoblin/focusd/web_gate/internal/matcher"
	"github.com/eliteGoblin/focusd/web_gate/internal/music"
	"github.com/eliteGoblin/focusd/web_gate/internal/pingwindow"
	"github.com/eliteGoblin/focusd/web_gate/internal/platform"
)

// ErrEmptyMention is returned when a mention lacks its platform or channel.
var ErrEmptyMention = errors.New("mention needs a platform and a channel")

// UnlockChecker reports rules the user has temporarily unlocked.
type UnlockChecker interface {
	IsUnlocked(ctx context.Context, ruleID string) bool
}

// Engine implements domain.Engine. It holds no state of its own: every
// decision reads a fresh snapshot of rules and progress.
type Engine struct {
	rules      domain.RuleRepository
	progress   *ProgressService
	pings      *pingwindow.Store
	exceptions *matcher.ExceptionMatcher
	unlocks    UnlockChecker
	clock      domain.Clock
	logger     *zap.Logger
}

// NewEngine creates a decision engine over the default platform policies.
func NewEngine(
	rules domain.RuleRepository,
	progress *ProgressService,
	pings *pingwindow.Store,
	clock domain.Clock,
	logger *zap.Logger,
) *Engine {
	return NewEngineWithPlatforms(rules, progress, pings, platform.NewRegistry(), clock, logger)
}

// NewEngineWithPlatforms creates an engine with a custom policy registry.
func NewEngineWithPlatforms(
	rules domain.RuleRepository,
	progress *ProgressService,
	pings *pingwindow.Store,
	platforms *platform.Registry,
	clock domain.Clock,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		rules:      rules,
		progress:   progress,
		pings:      pings,
		exceptions: matcher.NewExceptionMatcher(platforms, pings),
		clock:      clock,
		logger:     logger,
	}
}

// WithUnlocks makes the engine skip rules unlocked through uc.
func (e *Engine) WithUnlocks(uc UnlockChecker) *Engine {
	e.unlocks = uc
	return e
}

// CheckURL decides for a navigation about to complete. It never fails:
// unreadable state or a panic below degrade to an allowed decision.
func (e *Engine) CheckURL(ctx context.Context, rawURL string) (d domain.Decision) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("decision panicked, allowing",
				zap.String("url", rawURL),
				zap.Any("panic", r))
			d = domain.Allowed()
		}
	}()

	rules, err := e.rules.ListRules(ctx)
	if err != nil {
		e.logger.Warn("failed to load rules, allowing",
			zap.String("url", rawURL),
			zap.Error(err))
		return domain.Allowed()
	}

	progress, err := e.progress.Today(ctx)
	if err != nil {
		e.logger.Warn("failed to load progress, allowing",
			zap.String("url", rawURL),
			zap.Error(err))
		return domain.Allowed()
	}

	return e.Decide(ctx, rawURL, rules, progress)
}

// CheckURLWithMetadata lets music through before any rule is consulted.
func (e *Engine) CheckURLWithMetadata(ctx context.Context, page domain.PageMetadata) domain.Decision {
	if music.IsMusicVideo(page.URL, page.Title, page.Description, page.Channel, page.Category) {
		e.logger.Debug("music detected, allowing",
			zap.String("url", page.URL),
			zap.String("title", page.Title))
		return domain.Allowed()
	}
	return e.CheckURL(ctx, page.URL)
}

// RecordPersonalMention opens the ping window for a conversation.
func (e *Engine) RecordPersonalMention(ctx context.Context, platformName, channelKey string) error {
	if strings.TrimSpace(platformName) == "" || strings.TrimSpace(channelKey) == "" {
		return ErrEmptyMention
	}
	w, err := e.pings.Open(ctx, pingwindow.Key(platformName, channelKey))
	if err != nil {
		return fmt.Errorf("failed to record mention: %w", err)
	}
	e.logger.Info("personal mention recorded",
		zap.String("key", w.Key),
		zap.Time("expires_at", w.ExpiresAt))
	return nil
}

// Decide walks the matching rules in stored order. An exempt or unlocked
// rule is skipped, not treated as an allow; the first rule whose mode
// blocks under its evaluated condition wins.
func (e *Engine) Decide(ctx context.Context, rawURL string, rules []domain.Rule, progress domain.Progress) domain.Decision {
	target, err := matcher.Parse(rawURL)
	if err != nil {
		e.logger.Debug("unparseable url, allowing",
			zap.String("url", rawURL),
			zap.Error(err))
		return domain.Allowed()
	}

	if !matcher.AnyEnabled(rules) {
		return domain.Allowed()
	}

	in := condition.Input{
		Steps:          progress.Steps,
		WorkoutMinutes: progress.WorkoutMinutes,
		Now:            e.clock.Now(),
	}

	for _, rule := range matcher.FindMatchingRules(target.Host, rules) {
		if e.exceptions.IsExempt(ctx, target, rule) {
			e.logger.Debug("url exempt from rule",
				zap.String("rule", rule.ID),
				zap.String("url", rawURL))
			continue
		}
		if e.unlocks != nil && e.unlocks.IsUnlocked(ctx, rule.ID) {
			e.logger.Debug("rule unlocked",
				zap.String("rule", rule.ID))
			continue
		}

		ev := condition.Evaluate(rule.Condition, in)
		if !rule.Mode.Blocks(ev.Met) {
			continue
		}

		blocking := rule
		e.logger.Info("navigation blocked",
			zap.String("rule", rule.ID),
			zap.String("host", target.Host),
			zap.String("mode", string(rule.Mode)),
			zap.String("status", ev.Status))
		return domain.Decision{
			Blocked:  true,
			Rule:     &blocking,
			Mode:     rule.Mode,
			Status:   ev.Status,
			Progress: ev.Progress,
		}
	}

	return domain.Allowed()
}

// Ensure Engine implements domain.Engine.
var _ domain.Engine = (*Engine)(nil)
