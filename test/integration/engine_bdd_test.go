//go:build integration

package integration

import (
	"context"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/eliteGoblin/focusd/web_gate/internal/condition"
	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
	"github.com/eliteGoblin/focusd/web_gate/internal/infra"
	"github.com/eliteGoblin/focusd/web_gate/internal/usecase"
)

var _ = Describe("Decision engine over the encrypted store", func() {
	var (
		ctx    context.Context
		tmpDir string
		key    []byte
		s      *stack
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		tmpDir, err = os.MkdirTemp("", "webgate-integration-*")
		Expect(err).NotTo(HaveOccurred())

		key, err = infra.GenerateKey()
		Expect(err).NotTo(HaveOccurred())

		s = newStack(openEncrypted(tmpDir, key), infra.NewMockClock(mondayNoon()))
		_, err = s.seeder.Seed(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if s != nil {
			_ = s.store.Close()
		}
		os.RemoveAll(tmpDir)
	})

	Describe("seeded default rules", func() {
		It("should block youtube until the steps goal is met", func() {
			d := s.engine.CheckURL(ctx, "https://www.youtube.com/watch?v=abc")
			Expect(d.Blocked).To(BeTrue())
			Expect(d.Mode).To(Equal(domain.ModeUntil))
			Expect(d.Status).To(Equal("0/10000 steps"))
			Expect(d.Progress).To(Equal(0))

			_, err := s.progress.Set(ctx, 5000, 0)
			Expect(err).NotTo(HaveOccurred())
			d = s.engine.CheckURL(ctx, "https://www.youtube.com/watch?v=abc")
			Expect(d.Status).To(Equal("5000/10000 steps"))
			Expect(d.Progress).To(Equal(50))

			_, err = s.progress.Add(ctx, 5000, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(blocked(s, "https://www.youtube.com/watch?v=abc")).To(BeFalse())
		})

		It("should let youtube music, search and music videos through", func() {
			Expect(blocked(s, "https://music.youtube.com/watch?v=abc")).To(BeFalse())
			Expect(blocked(s, "https://www.youtube.com/results?search_query=lofi")).To(BeFalse())

			d := s.engine.CheckURLWithMetadata(ctx, domain.PageMetadata{
				URL:   "https://www.youtube.com/watch?v=abc",
				Title: "Artist - Song (Official Music Video)",
			})
			Expect(d.Blocked).To(BeFalse())
		})

		It("should keep twitter messages reachable", func() {
			Expect(blocked(s, "https://x.com/home")).To(BeTrue())
			Expect(blocked(s, "https://x.com/messages")).To(BeFalse())
		})

		It("should unblock discord at 17:00", func() {
			Expect(blocked(s, "https://discord.com/channels/1/2")).To(BeTrue())

			s.clock.Advance(5 * time.Hour)
			Expect(blocked(s, "https://discord.com/channels/1/2")).To(BeFalse())
		})

		It("should allow sites no rule names", func() {
			Expect(blocked(s, "https://golang.org/doc")).To(BeFalse())
		})

		It("should reset progress at midnight", func() {
			_, err := s.progress.Set(ctx, 12000, 45)
			Expect(err).NotTo(HaveOccurred())
			Expect(blocked(s, "https://youtube.com/")).To(BeFalse())

			s.clock.Advance(24 * time.Hour)
			Expect(blocked(s, "https://youtube.com/")).To(BeTrue())
		})
	})

	Describe("ping windows", func() {
		It("should open a blocked conversation for three minutes", func() {
			url := "https://discord.com/channels/900/42"
			Expect(blocked(s, url)).To(BeTrue())

			Expect(s.engine.RecordPersonalMention(ctx, "discord", "42")).To(Succeed())
			Expect(blocked(s, url)).To(BeFalse())
			Expect(blocked(s, "https://discord.com/channels/900/43")).To(BeTrue(), "other channels stay blocked")

			s.clock.Advance(3*time.Minute + time.Second)
			Expect(blocked(s, url)).To(BeTrue())

			n, err := s.pings.Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(0), "the expired window was already dropped by the read")
		})
	})

	Describe("unlocking", func() {
		It("should unlock a password rule until midnight", func() {
			rule, err := s.rules.Add(ctx, usecase.NewRule{
				Items:     []string{"news.ycombinator.com"},
				Condition: condition.Password{},
				Password:  "hunter2",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(blocked(s, "https://news.ycombinator.com/")).To(BeTrue())

			_, err = s.unlocks.Unlock(ctx, rule.ID, "wrong")
			Expect(err).To(MatchError(domain.ErrWrongPassword))

			_, err = s.unlocks.Unlock(ctx, rule.ID, "hunter2")
			Expect(err).NotTo(HaveOccurred())
			Expect(blocked(s, "https://news.ycombinator.com/")).To(BeFalse())

			s.clock.Advance(13 * time.Hour)
			Expect(blocked(s, "https://news.ycombinator.com/")).To(BeTrue())
		})

		It("should refuse a tomorrow rule on the day it was made", func() {
			rule, err := s.rules.Add(ctx, usecase.NewRule{
				Items:     []string{"reddit.com"},
				Condition: condition.Tomorrow{},
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = s.unlocks.Unlock(ctx, rule.ID, "")
			Expect(err).To(MatchError(domain.ErrUnlockNotAllowed))

			s.clock.Advance(24 * time.Hour)
			_, err = s.unlocks.Unlock(ctx, rule.ID, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(blocked(s, "https://reddit.com/r/golang")).To(BeFalse())
		})
	})

	Describe("persistence", func() {
		It("should keep rules and progress across restarts", func() {
			_, err := s.progress.Set(ctx, 7000, 10)
			Expect(err).NotTo(HaveOccurred())
			before, err := s.rules.List(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.store.Close()).To(Succeed())
			s = newStack(openEncrypted(tmpDir, key), s.clock)

			after, err := s.rules.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(HaveLen(len(before)))
			Expect(after[0].ID).To(Equal(before[0].ID))

			p, err := s.progress.Today(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Steps).To(Equal(7000))
		})

		It("should refuse to open with the wrong key", func() {
			Expect(s.store.Close()).To(Succeed())
			s = nil

			other, err := infra.GenerateKey()
			Expect(err).NotTo(HaveOccurred())
			_, err = infra.OpenEncryptedStore(tmpDir, other)
			Expect(err).To(HaveOccurred())
		})

		It("should reseed without duplicating defaults", func() {
			before, err := s.rules.List(ctx)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.seeder.Seed(ctx)
			Expect(err).NotTo(HaveOccurred())

			after, err := s.rules.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(HaveLen(len(before)))
		})
	})
})
