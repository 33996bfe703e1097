package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// HeartbeatHandler records the extension's side of the watchdog pair.
type HeartbeatHandler struct {
	registry domain.HeartbeatRegistry
	clock    domain.Clock
	logger   *zap.Logger
}

// NewHeartbeatHandler creates a new heartbeat handler
func NewHeartbeatHandler(registry domain.HeartbeatRegistry, clock domain.Clock, logger *zap.Logger) *HeartbeatHandler {
	return &HeartbeatHandler{
		registry: registry,
		clock:    clock,
		logger:   logger.With(zap.String("component", "heartbeat-api")),
	}
}

// HeartbeatRequest is the optional body of POST /v1/heartbeat.
type HeartbeatRequest struct {
	Active  *bool  `json:"active"`
	Version string `json:"version"`
}

// Beat stamps the extension heartbeat with the server's clock.
// POST /v1/heartbeat
func (h *HeartbeatHandler) Beat(c *gin.Context) {
	var req HeartbeatRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "INVALID_REQUEST", err.Error())
			return
		}
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	hb := domain.Heartbeat{
		Timestamp: h.clock.Now().Unix(),
		Active:    active,
		Version:   req.Version,
	}
	if err := h.registry.Beat(domain.RoleExtension, hb); err != nil {
		h.logger.Error("failed to record extension heartbeat", zap.Error(err))
		internalError(c, err, "Failed to record heartbeat")
		return
	}
	c.Status(http.StatusNoContent)
}
