package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// RuleLister lists rules in evaluation order.
type RuleLister interface {
	List(ctx context.Context) ([]domain.Rule, error)
}

// RulesHandler exposes the rule list read-only; rules are edited via the CLI.
type RulesHandler struct {
	rules  RuleLister
	logger *zap.Logger
}

// NewRulesHandler creates a new rules handler
func NewRulesHandler(rules RuleLister, logger *zap.Logger) *RulesHandler {
	return &RulesHandler{
		rules:  rules,
		logger: logger.With(zap.String("component", "rules-api")),
	}
}

// ListRules returns all rules.
// GET /v1/rules
func (h *RulesHandler) ListRules(c *gin.Context) {
	rules, err := h.rules.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list rules", zap.Error(err))
		internalError(c, err, "Failed to list rules")
		return
	}
	if rules == nil {
		rules = []domain.Rule{}
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}
