package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// ProgressService reads and writes today's counters. Counters stamped with
// an earlier date read as zero, so a new day starts from scratch without
// any background job.
type ProgressService struct {
	store  domain.ProgressStore
	clock  domain.Clock
	logger *zap.Logger
}

// NewProgressService creates a progress service.
func NewProgressService(store domain.ProgressStore, clock domain.Clock, logger *zap.Logger) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{store: store, clock: clock, logger: logger}
}

func (s *ProgressService) today() string {
	return s.clock.Now().Format(domain.DateLayout)
}

// Today returns the counters for the current local day.
func (s *ProgressService) Today(ctx context.Context) (domain.Progress, error) {
	p, err := s.store.GetProgress(ctx)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("failed to read progress: %w", err)
	}
	today := s.today()
	if p.Date != today {
		return domain.Progress{Date: today}, nil
	}
	return p, nil
}

// Set overwrites today's counters.
func (s *ProgressService) Set(ctx context.Context, steps, workoutMinutes int) (domain.Progress, error) {
	if steps < 0 || workoutMinutes < 0 {
		return domain.Progress{}, domain.ErrInvalidProgress
	}
	p := domain.Progress{Steps: steps, WorkoutMinutes: workoutMinutes, Date: s.today()}
	if err := s.store.SaveProgress(ctx, p); err != nil {
		return domain.Progress{}, fmt.Errorf("failed to save progress: %w", err)
	}
	s.logger.Info("progress updated",
		zap.Int("steps", p.Steps),
		zap.Int("workout_minutes", p.WorkoutMinutes))
	return p, nil
}

// Add increments today's counters, as step and workout sensors report deltas.
// The increment happens in the store, so concurrent callers never lose a delta.
func (s *ProgressService) Add(ctx context.Context, steps, workoutMinutes int) (domain.Progress, error) {
	if steps < 0 || workoutMinutes < 0 {
		return domain.Progress{}, domain.ErrInvalidProgress
	}
	p, err := s.store.AddProgress(ctx, s.today(), steps, workoutMinutes)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("failed to add progress: %w", err)
	}
	s.logger.Info("progress updated",
		zap.Int("steps", p.Steps),
		zap.Int("workout_minutes", p.WorkoutMinutes))
	return p, nil
}
