package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// ProgressManager reads and writes today's progress.
type ProgressManager interface {
	Today(ctx context.Context) (domain.Progress, error)
	Set(ctx context.Context, steps, workoutMinutes int) (domain.Progress, error)
	Add(ctx context.Context, steps, workoutMinutes int) (domain.Progress, error)
}

// ProgressHandler handles progress requests
type ProgressHandler struct {
	progress ProgressManager
	logger   *zap.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progress ProgressManager, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		progress: progress,
		logger:   logger.With(zap.String("component", "progress-api")),
	}
}

// ProgressRequest is the body of PUT /v1/progress and POST /v1/progress/add.
type ProgressRequest struct {
	Steps          *int `json:"steps" binding:"required"`
	WorkoutMinutes *int `json:"workout_minutes" binding:"required"`
}

// GetProgress returns today's counters.
// GET /v1/progress
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	p, err := h.progress.Today(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load progress", zap.Error(err))
		internalError(c, err, "Failed to load progress")
		return
	}
	c.JSON(http.StatusOK, p)
}

// SetProgress overwrites today's counters.
// PUT /v1/progress
func (h *ProgressHandler) SetProgress(c *gin.Context) {
	h.update(c, h.progress.Set)
}

// AddProgress adds sensor deltas to today's counters.
// POST /v1/progress/add
func (h *ProgressHandler) AddProgress(c *gin.Context) {
	h.update(c, h.progress.Add)
}

func (h *ProgressHandler) update(c *gin.Context, apply func(context.Context, int, int) (domain.Progress, error)) {
	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}
	p, err := apply(c.Request.Context(), *req.Steps, *req.WorkoutMinutes)
	if errors.Is(err, domain.ErrInvalidProgress) {
		badRequest(c, "INVALID_PROGRESS", err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to save progress", zap.Error(err))
		internalError(c, err, "Failed to save progress")
		return
	}
	c.JSON(http.StatusOK, p)
}
