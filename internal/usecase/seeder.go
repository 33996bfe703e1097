package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/condition"
	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// ID prefixes of the rules the seeder owns.
const (
	YouTubeRulePrefix = "youtube-block-"
	TwitterRulePrefix = "twitter-block-"
	DiscordRulePrefix = "discord-block-"
	VideoRulePrefix   = "video-platforms-"
)

var defaultRulePrefixes = []string{YouTubeRulePrefix, TwitterRulePrefix, DiscordRulePrefix, VideoRulePrefix}

// IsDefaultRule reports whether id belongs to a seeded rule.
func IsDefaultRule(id string) bool {
	for _, p := range defaultRulePrefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

// SeedDefaults are the targets the seeded rules use.
type SeedDefaults struct {
	StepsTarget    int
	WorkoutMinutes int
	DiscordUntil   condition.ClockTime
}

// DefaultSeedDefaults returns the built-in targets.
func DefaultSeedDefaults() SeedDefaults {
	return SeedDefaults{
		StepsTarget:    10000,
		WorkoutMinutes: 30,
		DiscordUntil:   condition.ClockTime{Hour: 17},
	}
}

// Seeder reinstalls the baseline platform rules.
type Seeder struct {
	repo     domain.RuleRepository
	clock    domain.Clock
	defaults SeedDefaults
	logger   *zap.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(repo domain.RuleRepository, clock domain.Clock, defaults SeedDefaults, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{repo: repo, clock: clock, defaults: defaults, logger: logger}
}

// Seed drops every previously seeded rule and appends fresh copies after
// the user's rules. User rules keep their order. Edits made to a seeded
// rule are lost on the next start.
func (s *Seeder) Seed(ctx context.Context) ([]domain.Rule, error) {
	existing, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	merged := make([]domain.Rule, 0, len(existing)+len(defaultRulePrefixes))
	dropped := 0
	for _, r := range existing {
		if IsDefaultRule(r.ID) {
			dropped++
			continue
		}
		merged = append(merged, r)
	}
	merged = append(merged, s.DefaultRules()...)

	if err := s.repo.ReplaceRules(ctx, merged); err != nil {
		return nil, fmt.Errorf("failed to store seeded rules: %w", err)
	}
	s.logger.Info("default rules seeded",
		zap.Int("replaced", dropped),
		zap.Int("total", len(merged)))
	return merged, nil
}

// DefaultRules builds the baseline rules stamped with the current time.
func (s *Seeder) DefaultRules() []domain.Rule {
	now := s.clock.Now()
	suffix := fmt.Sprintf("%d", now.UnixMilli())
	d := s.defaults

	return []domain.Rule{
		{
			ID:         YouTubeRulePrefix + suffix,
			Items:      []string{"youtube.com", "youtu.be"},
			Mode:       domain.ModeUntil,
			Condition:  condition.Steps{Target: d.StepsTarget},
			Exceptions: []string{"music.youtube.com"},
			Enabled:    true,
			CreatedAt:  now,
		},
		{
			ID:        TwitterRulePrefix + suffix,
			Items:     []string{"twitter.com", "x.com"},
			Mode:      domain.ModeUntil,
			Condition: condition.Workout{Minutes: d.WorkoutMinutes},
			Enabled:   true,
			CreatedAt: now,
		},
		{
			ID:        DiscordRulePrefix + suffix,
			Items:     []string{"discord.com"},
			Mode:      domain.ModeUntil,
			Condition: condition.Time{At: d.DiscordUntil},
			Enabled:   true,
			CreatedAt: now,
		},
		{
			ID:        VideoRulePrefix + suffix,
			Items:     []string{"vk.com", "twitch.tv", "dailymotion.com", "dzen.ru", "bilibili.com"},
			Mode:      domain.ModeUntil,
			Condition: condition.Steps{Target: d.StepsTarget},
			Enabled:   true,
			CreatedAt: now,
		},
	}
}
