// Package dashboard assembles and runs the Bedrock usage dashboard server.
package dashboard

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/peterdir/bedrock-usage/internal/api"
	"github.com/peterdir/bedrock-usage/internal/config"
	"github.com/peterdir/bedrock-usage/internal/services/aggregate"
	"github.com/peterdir/bedrock-usage/internal/services/identity"
	"github.com/peterdir/bedrock-usage/internal/services/insights"
	"github.com/peterdir/bedrock-usage/internal/services/middleware"
	"github.com/peterdir/bedrock-usage/internal/services/pricing"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Dashboard represents a usage dashboard server instance.
type Dashboard struct {
	config *config.Config
	app    *fiber.App

	// client overrides the CloudWatch-backed query client when set before
	// Run, which keeps the full server constructible in tests.
	client insights.LogQueryClient
}

// New creates a new Dashboard instance with the given configuration.
// The cfg parameter is required and must not be nil.
func New(cfg *config.Config) *Dashboard {
	if cfg == nil {
		panic("config cannot be nil - use config.LoadFromFile() or config.Default() to create config")
	}
	return &Dashboard{config: cfg}
}

// WithClient replaces the external log-query client.
func (d *Dashboard) WithClient(client insights.LogQueryClient) *Dashboard {
	d.client = client
	return d
}

// Run starts the dashboard server and blocks until shutdown.
func (d *Dashboard) Run() error {
	if err := d.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogLevel(d.config)

	listenAddr := ":" + d.config.Server.Port

	d.app = createFiberApp()

	// === Services Initialization ===
	client := d.client
	if client == nil {
		cwClient, err := insights.NewCloudWatchClient(context.Background(), d.config.AWS)
		if err != nil {
			return fmt.Errorf("failed to initialize CloudWatch Logs client: %w", err)
		}
		client = cwClient
	}

	queryCache := insights.NewQueryCache(d.config.Query.CacheTTL())
	orchestrator := insights.NewOrchestrator(client, queryCache, d.config.AWS.LogGroup, d.config.Query)
	priceResolver := pricing.NewResolver(d.config.Pricing.Overrides)
	userResolver := identity.NewResolver(d.config.Identity.Aliases)
	engine := aggregate.NewEngine(priceResolver, userResolver)

	// === Middleware Setup ===
	setupMiddleware(d.app, d.config)

	// === Routes Setup ===
	api.NewUsageHandler(orchestrator, engine).RegisterRoutes(d.app)
	api.NewPageHandler(d.config, priceResolver).RegisterRoutes(d.app)
	d.app.Get("/health", api.NewHealthHandler(d.config, orchestrator).HealthCheck)

	fmt.Printf("Starting Bedrock Usage Dashboard on %s\n", listenAddr)
	fmt.Printf("   Environment: %s\n", d.config.Server.Environment)
	fmt.Printf("   Log group:   %s\n", d.config.AWS.LogGroup)
	fmt.Printf("   Go version:  %s\n", runtime.Version())

	// Graceful shutdown handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := d.app.Listen(listenAddr); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		fiberlog.Infof("Received signal: %v. Starting graceful shutdown...", sig)
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	}

	if err := d.app.ShutdownWithTimeout(30 * time.Second); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	fiberlog.Info("Server shutdown completed successfully")

	return nil
}

func createFiberApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:              "Bedrock Usage Dashboard",
		ReadTimeout:          2 * time.Minute,
		WriteTimeout:         2 * time.Minute,
		IdleTimeout:          5 * time.Minute,
		CompressedFileSuffix: ".gz",
		CaseSensitive:        true,
		ServerHeader:         "BedrockUsage",
	})
}

func setupMiddleware(app *fiber.App, cfg *config.Config) {
	isProd := cfg.IsProduction()

	// Recover middleware (must be first)
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !isProd,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:               300,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	if isProd {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency} ${bytesSent}b\n",
			Output: os.Stdout,
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
			Output: os.Stdout,
		}))
	}

	if origins := cfg.Server.AllowedOrigins; origins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: origins,
		}))
	}

	// Subnet allow-listing guards every page and API route.
	app.Use(middleware.NewSubnetGuard(cfg.Access.SubnetsOnly).Handler())
}

func setupLogLevel(cfg *config.Config) {
	switch cfg.GetNormalizedLogLevel() {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "warn":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
	}
}
