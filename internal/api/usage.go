package api

import (
	"errors"

	"github.com/peterdir/bedrock-usage/internal/models"
	"github.com/peterdir/bedrock-usage/internal/services/aggregate"
	"github.com/peterdir/bedrock-usage/internal/services/insights"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

const (
	defaultWindowDays = 7
	maxWindowDays     = 365
)

// UsageHandler serves the usage analytics API.
type UsageHandler struct {
	orchestrator *insights.Orchestrator
	engine       *aggregate.Engine
}

// NewUsageHandler creates a new usage API handler.
func NewUsageHandler(orchestrator *insights.Orchestrator, engine *aggregate.Engine) *UsageHandler {
	return &UsageHandler{
		orchestrator: orchestrator,
		engine:       engine,
	}
}

// RegisterRoutes registers the usage API endpoints.
func (h *UsageHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/usage", h.GetUsage)
	app.Get("/api/cost-matrix", h.GetCostMatrix)
}

// GetUsage returns the aggregated usage summary for the requested window.
func (h *UsageHandler) GetUsage(c *fiber.Ctx) error {
	usage, err := h.summaryForWindow(c)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(usage)
}

// GetCostMatrix returns the dense user x model cost matrix for the window.
func (h *UsageHandler) GetCostMatrix(c *fiber.Ctx) error {
	usage, err := h.summaryForWindow(c)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(aggregate.BuildCostMatrix(usage))
}

func (h *UsageHandler) summaryForWindow(c *fiber.Ctx) (*models.AggregatedUsage, error) {
	days := c.QueryInt("days", defaultWindowDays)
	if days < 1 || days > maxWindowDays {
		return nil, models.NewValidationError("days must be between 1 and 365", nil)
	}

	result, err := h.orchestrator.Fetch(c.Context(), days)
	if err != nil {
		return nil, err
	}

	return h.engine.Aggregate(result.Records, result.Window)
}

// renderError writes a structured error payload. The benign empty-result case
// keeps the 200 status so the dashboard can render the message in place.
func renderError(c *fiber.Ctx, err error) error {
	appErr := models.SanitizeError(err)

	var orig *models.AppError
	if !errors.As(err, &orig) || orig.Type == models.ErrorTypeInternal {
		fiberlog.Errorf("usage request failed: %v", err)
	}

	return c.Status(appErr.GetStatusCode()).JSON(fiber.Map{
		"error":     appErr.Message,
		"type":      appErr.Type,
		"retryable": appErr.Retryable,
	})
}
