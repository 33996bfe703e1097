package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/config"
	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
	"github.com/eliteGoblin/focusd/web_gate/internal/infra"
	"github.com/eliteGoblin/focusd/web_gate/internal/pingwindow"
	"github.com/eliteGoblin/focusd/web_gate/internal/usecase"
)

// app is the object graph shared by every command that touches the store.
type app struct {
	cfg      *config.Config
	store    *infra.SQLStore
	clock    domain.Clock
	progress *usecase.ProgressService
	pings    *pingwindow.Store
	unlocks  *usecase.UnlockService
	rules    *usecase.RuleService
	engine   *usecase.Engine
	seeder   *usecase.Seeder
	logger   *zap.Logger
}

func resolveDataDir() string {
	if dataDirFlag != "" {
		return dataDirFlag
	}
	return config.ResolveDataDir()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveDataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func openApp(logger *zap.Logger) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(cfg, infra.RealClock{}, logger)
}

func newApp(cfg *config.Config, clock domain.Clock, logger *zap.Logger) (*app, error) {
	store, err := infra.OpenStore(cfg.DataDir, cfg.Encrypted, infra.ResolveKeyProvider(cfg.DataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	progress := usecase.NewProgressService(store, clock, logger)
	pings := pingwindow.NewStoreWithLifetime(store, clock, cfg.PingWindow.Duration, logger)
	unlocks := usecase.NewUnlockService(store, store, store, clock, logger)
	defaults := usecase.SeedDefaults{
		StepsTarget:    cfg.Defaults.StepsTarget,
		WorkoutMinutes: cfg.Defaults.WorkoutMinutes,
		DiscordUntil:   cfg.DiscordUntil(),
	}

	return &app{
		cfg:      cfg,
		store:    store,
		clock:    clock,
		progress: progress,
		pings:    pings,
		unlocks:  unlocks,
		rules:    usecase.NewRuleService(store, unlocks, clock, logger),
		engine:   usecase.NewEngine(store, progress, pings, clock, logger).WithUnlocks(unlocks),
		seeder:   usecase.NewSeeder(store, clock, defaults, logger),
		logger:   logger,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
}
