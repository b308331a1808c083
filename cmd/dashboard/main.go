package main

import (
	"os"

	"github.com/peterdir/bedrock-usage/internal/config"
	"github.com/peterdir/bedrock-usage/pkg/dashboard"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

func main() {
	// Load environment files explicitly
	envFiles := []string{".env.local", ".env.development", ".env"}
	config.LoadEnvFiles(envFiles)

	cfg, err := loadConfig()
	if err != nil {
		fiberlog.Fatalf("Failed to load config: %v", err)
	}

	if err := dashboard.New(cfg).Run(); err != nil {
		fiberlog.Fatalf("Server failed: %v", err)
	}
}

// loadConfig reads the YAML config when one exists; the dashboard also runs
// on built-in defaults plus environment variables alone.
func loadConfig() (*config.Config, error) {
	path := config.EnvOverride("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
		if _, err := os.Stat(path); err != nil {
			return config.Default(), nil
		}
	}
	return config.LoadFromFile(path)
}
