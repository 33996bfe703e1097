//go:build integration

package integration

import (
	"context"
	"time"

	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/infra"
	"github.com/eliteGoblin/focusd/web_gate/internal/pingwindow"
	"github.com/eliteGoblin/focusd/web_gate/internal/usecase"
)

// monday noon, local time, so unlock grants and daily rollover line up
// with the store's calendar dates.
func mondayNoon() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
}

// stack is the engine wired over a real encrypted store.
type stack struct {
	store    *infra.SQLStore
	clock    *infra.MockClock
	progress *usecase.ProgressService
	pings    *pingwindow.Store
	unlocks  *usecase.UnlockService
	rules    *usecase.RuleService
	seeder   *usecase.Seeder
	engine   *usecase.Engine
}

func newStack(store *infra.SQLStore, clock *infra.MockClock) *stack {
	logger := zap.NewNop()
	progress := usecase.NewProgressService(store, clock, logger)
	pings := pingwindow.NewStore(store, clock, logger)
	unlocks := usecase.NewUnlockServiceWithCost(store, store, store, clock, 4, logger)
	return &stack{
		store:    store,
		clock:    clock,
		progress: progress,
		pings:    pings,
		unlocks:  unlocks,
		rules:    usecase.NewRuleService(store, unlocks, clock, logger),
		seeder:   usecase.NewSeeder(store, clock, usecase.DefaultSeedDefaults(), logger),
		engine:   usecase.NewEngine(store, progress, pings, clock, logger).WithUnlocks(unlocks),
	}
}

func openEncrypted(dir string, key []byte) *infra.SQLStore {
	store, err := infra.OpenEncryptedStore(dir, key)
	Expect(err).NotTo(HaveOccurred())
	return store
}

func blocked(s *stack, url string) bool {
	return s.engine.CheckURL(context.Background(), url).Blocked
}
