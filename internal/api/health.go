package api

import (
	"time"

	"github.com/peterdir/bedrock-usage/internal/config"
	"github.com/peterdir/bedrock-usage/internal/services/insights"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	cfg          *config.Config
	orchestrator *insights.Orchestrator
	startedAt    time.Time
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(cfg *config.Config, orchestrator *insights.Orchestrator) *HealthHandler {
	return &HealthHandler{
		cfg:          cfg,
		orchestrator: orchestrator,
		startedAt:    time.Now(),
	}
}

// HealthCheck returns the health status of the service
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"checks": fiber.Map{
			"log_group":      h.cfg.AWS.LogGroup,
			"cached_queries": h.orchestrator.Cache().Len(),
		},
	})
}
