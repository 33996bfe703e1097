//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/api"
	"github.com/eliteGoblin/focusd/web_gate/internal/daemon"
	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
	"github.com/eliteGoblin/focusd/web_gate/internal/infra"
)

type stubBrowsers []string

func (b stubBrowsers) Running() []string { return b }

var _ = Describe("HTTP API", func() {
	const token = "test-token"

	var (
		tmpDir     string
		s          *stack
		heartbeats *infra.FileHeartbeatRegistry
		server     *httptest.Server
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "webgate-api-*")
		Expect(err).NotTo(HaveOccurred())

		store, err := infra.OpenPlainStore(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		s = newStack(store, infra.NewMockClock(mondayNoon()))
		_, err = s.seeder.Seed(context.Background())
		Expect(err).NotTo(HaveOccurred())

		heartbeats = infra.NewFileHeartbeatRegistry(tmpDir)
		server = httptest.NewServer(api.NewRouter(api.RouterConfig{
			Engine:     s.engine,
			Progress:   s.progress,
			Rules:      s.rules,
			Heartbeats: heartbeats,
			Clock:      s.clock,
			APIToken:   token,
			Version:    "test",
			Logger:     zap.NewNop(),
		}))
	})

	AfterEach(func() {
		server.Close()
		_ = s.store.Close()
		os.RemoveAll(tmpDir)
	})

	send := func(method, path, body string) *http.Response {
		req, err := http.NewRequest(method, server.URL+path, strings.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response) map[string]any {
		defer resp.Body.Close()
		var out map[string]any
		Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
		return out
	}

	It("should report a blocked navigation and clear it after progress", func() {
		resp := send(http.MethodPost, "/v1/check", `{"url":"https://www.youtube.com/watch?v=abc"}`)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		body := decode(resp)
		Expect(body["blocked"]).To(BeTrue())
		Expect(body["status"]).To(Equal("0/10000 steps"))
		Expect(body["rule"]).To(ContainSubstring("UNTIL 10000 steps"))

		resp = send(http.MethodPut, "/v1/progress", `{"steps":10000,"workout_minutes":0}`)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		resp.Body.Close()

		resp = send(http.MethodPost, "/v1/check", `{"url":"https://www.youtube.com/watch?v=abc"}`)
		Expect(decode(resp)).To(Equal(map[string]any{"blocked": false}))
	})

	It("should open a ping window through a mention", func() {
		url := `{"url":"https://twitter.com/i/chat/g123"}`
		Expect(decode(send(http.MethodPost, "/v1/check", url))["blocked"]).To(BeTrue())

		resp := send(http.MethodPost, "/v1/mentions", `{"platform":"twitter","channel":"g123"}`)
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		resp.Body.Close()

		Expect(decode(send(http.MethodPost, "/v1/check", url))["blocked"]).To(BeFalse())
	})

	It("should reject requests without the token", func() {
		resp, err := http.Post(server.URL+"/v1/check", "application/json", strings.NewReader(`{"url":"https://youtube.com"}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		resp.Body.Close()
	})

	It("should feed extension heartbeats to the watchdog", func() {
		watchdog := daemon.NewWatchdog(
			daemon.DefaultWatchdogConfig(),
			heartbeats,
			stubBrowsers{"firefox"},
			s.pings,
			s.clock,
			os.Getpid(),
			"test",
			zap.NewNop(),
		)
		Expect(watchdog.Check()).To(Equal(daemon.ExtensionUnknown))

		resp := send(http.MethodPost, "/v1/heartbeat", `{"version":"1.2.0"}`)
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		resp.Body.Close()
		Expect(watchdog.Check()).To(Equal(daemon.ExtensionAlive))

		s.clock.Advance(time.Minute)
		Expect(watchdog.Check()).To(Equal(daemon.ExtensionSilent))

		desktop, err := heartbeats.Last(domain.RoleDesktop)
		Expect(err).NotTo(HaveOccurred())
		Expect(desktop).NotTo(BeNil())
		Expect(desktop.PID).To(Equal(os.Getpid()))
	})
})
