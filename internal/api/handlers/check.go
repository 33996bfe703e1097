package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
	"github.com/eliteGoblin/focusd/web_gate/internal/usecase"
)

// CheckHandler serves block decisions and records mentions.
type CheckHandler struct {
	engine domain.Engine
	logger *zap.Logger
}

// NewCheckHandler creates a new check handler
func NewCheckHandler(engine domain.Engine, logger *zap.Logger) *CheckHandler {
	return &CheckHandler{
		engine: engine,
		logger: logger.With(zap.String("component", "check-api")),
	}
}

// CheckRequest is the body of POST /v1/check.
type CheckRequest struct {
	URL string `json:"url" binding:"required"`
}

// MediaCheckRequest is the body of POST /v1/check/media.
type MediaCheckRequest struct {
	URL         string `json:"url" binding:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Channel     string `json:"channel"`
	Category    string `json:"category"`
}

// MentionRequest is the body of POST /v1/mentions.
type MentionRequest struct {
	Platform string `json:"platform" binding:"required"`
	Channel  string `json:"channel" binding:"required"`
}

// DecisionResponse is the wire form of domain.Decision.
type DecisionResponse struct {
	Blocked  bool   `json:"blocked"`
	RuleID   string `json:"rule_id,omitempty"`
	Rule     string `json:"rule,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Status   string `json:"status,omitempty"`
	Progress *int   `json:"progress,omitempty"`
}

// NewDecisionResponse converts a decision. Allowed decisions carry only
// the blocked flag.
func NewDecisionResponse(d domain.Decision) DecisionResponse {
	if !d.Blocked {
		return DecisionResponse{}
	}
	progress := d.Progress
	resp := DecisionResponse{
		Blocked:  true,
		Mode:     string(d.Mode),
		Status:   d.Status,
		Progress: &progress,
	}
	if d.Rule != nil {
		resp.RuleID = d.Rule.ID
		resp.Rule = d.Rule.Describe()
	}
	return resp
}

// Check decides one navigation.
// POST /v1/check
func (h *CheckHandler) Check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}
	d := h.engine.CheckURL(c.Request.Context(), req.URL)
	c.JSON(http.StatusOK, NewDecisionResponse(d))
}

// CheckMedia decides a media page, letting music through.
// POST /v1/check/media
func (h *CheckHandler) CheckMedia(c *gin.Context) {
	var req MediaCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}
	d := h.engine.CheckURLWithMetadata(c.Request.Context(), domain.PageMetadata{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Channel:     req.Channel,
		Category:    req.Category,
	})
	c.JSON(http.StatusOK, NewDecisionResponse(d))
}

// RecordMention opens a ping window after a personal mention.
// POST /v1/mentions
func (h *CheckHandler) RecordMention(c *gin.Context) {
	var req MentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}
	err := h.engine.RecordPersonalMention(c.Request.Context(), req.Platform, req.Channel)
	if errors.Is(err, usecase.ErrEmptyMention) {
		badRequest(c, "EMPTY_MENTION", err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to record mention",
			zap.String("platform", req.Platform),
			zap.Error(err))
		internalError(c, err, "Failed to record mention")
		return
	}
	c.Status(http.StatusNoContent)
}
