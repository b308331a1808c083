package api

import (
	"bytes"
	"html/template"
	"sort"

	"github.com/peterdir/bedrock-usage/internal/config"
	"github.com/peterdir/bedrock-usage/internal/services/pricing"
	"github.com/peterdir/bedrock-usage/internal/templates"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// PageHandler serves the server-rendered dashboard pages.
type PageHandler struct {
	cfg     *config.Config
	pricing *pricing.Resolver
}

// NewPageHandler creates a new page handler.
func NewPageHandler(cfg *config.Config, priceResolver *pricing.Resolver) *PageHandler {
	return &PageHandler{
		cfg:     cfg,
		pricing: priceResolver,
	}
}

// RegisterRoutes registers the HTML pages.
func (h *PageHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/", h.Dashboard)
	app.Get("/more-stats", h.MoreStats)
	// Kept for backward compatibility with bookmarked /matrix links.
	app.Get("/matrix", h.MoreStats)
	app.Get("/pricing", h.Pricing)
}

// Dashboard serves the main usage charts page.
func (h *PageHandler) Dashboard(c *fiber.Ctx) error {
	return renderPage(c, templates.Dashboard, nil)
}

// MoreStats serves the detailed cost analysis page.
func (h *PageHandler) MoreStats(c *fiber.Ctx) error {
	return renderPage(c, templates.MoreStats, nil)
}

// priceListing is one row of the pricing page.
type priceListing struct {
	Vendor      string
	ModelID     string
	InputPrice  string
	OutputPrice string
	TotalPrice  string
	rawInput    float64
}

// Pricing serves the static price table, most expensive input price first.
func (h *PageHandler) Pricing(c *fiber.Ctx) error {
	data := fiber.Map{
		"Active": listings(h.pricing.ActiveEntries()),
	}
	if h.cfg.Pricing.ShowInactive {
		data["Inactive"] = listings(h.pricing.InactiveEntries())
	}
	return renderPage(c, templates.Pricing, data)
}

func listings(entries []pricing.TableEntry) []priceListing {
	rows := make([]priceListing, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, priceListing{
			Vendor:      pricing.Vendor(e.ID),
			ModelID:     e.ID,
			InputPrice:  pricing.FormatPrice(e.Entry.Input),
			OutputPrice: pricing.FormatPrice(e.Entry.Output),
			TotalPrice:  pricing.FormatPrice(e.Entry.Input + e.Entry.Output),
			rawInput:    e.Entry.Input,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].rawInput > rows[j].rawInput
	})
	return rows
}

func renderPage(c *fiber.Ctx, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		fiberlog.Errorf("failed to render %s: %v", tmpl.Name(), err)
		return c.Status(fiber.StatusInternalServerError).SendString("template error")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
