package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/peterdir/bedrock-usage/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// dashboardName is the suffix used for dashboard-specific environment variable
// overrides: SUBNETS_ONLY_BEDROCK_USAGE is consulted before SUBNETS_ONLY.
const dashboardName = "BEDROCK_USAGE"

const (
	defaultLogGroup            = "/aws/bedrock/modelinvocations"
	defaultCacheTTLSeconds     = 600
	defaultPollIntervalSeconds = 1
	defaultMaxWaitSeconds      = 60
)

// Config represents the complete application configuration
type Config struct {
	Server   models.ServerConfig   `yaml:"server"`
	AWS      models.AWSConfig      `yaml:"aws"`
	Query    models.QueryConfig    `yaml:"query"`
	Pricing  models.PricingConfig  `yaml:"pricing"`
	Identity models.IdentityConfig `yaml:"identity"`
	Access   models.AccessConfig   `yaml:"access"`
}

// Default returns a configuration usable without any config file, matching
// the defaults the dashboard shipped with.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg
}

// LoadFromFile loads configuration from a YAML file with environment variable substitution
func LoadFromFile(configPath string) (*Config, error) {
	// Validate and clean the file path to prevent directory traversal
	cleanPath := filepath.Clean(configPath)

	if strings.Contains(cleanPath, "..") {
		return nil, fmt.Errorf("invalid config path: path traversal not allowed")
	}

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	// Substitute environment variables
	content := substituteEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config.applyDefaults()
	config.applyEnvOverrides()

	return &config, nil
}

// LoadEnvFiles loads environment variables from the given files, earliest file wins
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			// File exists, try to load it
			if err := godotenv.Load(envFile); err == nil {
				fmt.Printf("Loaded environment variables from %s\n", envFile)
			}
		}
	}
}

// New creates a new Config instance by loading from the specified config file path
func New(configPath string) (*Config, error) {
	return LoadFromFile(configPath)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "5000"
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	if c.AWS.LogGroup == "" {
		c.AWS.LogGroup = defaultLogGroup
	}
	if c.Query.CacheTTLSeconds == 0 {
		c.Query.CacheTTLSeconds = defaultCacheTTLSeconds
	}
	if c.Query.PollIntervalSeconds == 0 {
		c.Query.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Query.MaxWaitSeconds == 0 {
		c.Query.MaxWaitSeconds = defaultMaxWaitSeconds
	}
	if c.Identity.Aliases == nil {
		c.Identity.Aliases = DefaultAliases()
	}
}

// applyEnvOverrides maps the legacy flat environment variables onto the
// config, preferring the dashboard-specific form of each one.
func (c *Config) applyEnvOverrides() {
	if v := EnvOverride("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := EnvOverride("AWS_PROFILE"); v != "" {
		c.AWS.Profile = v
	}
	if v := EnvOverride("SUBNETS_ONLY"); v != "" {
		c.Access.SubnetsOnly = v
	}
	if v := EnvOverride("FQDN"); v != "" {
		c.Access.FQDN = v
	}
}

// EnvOverride looks up name with dashboard-specific override support:
// NAME_BEDROCK_USAGE is consulted first, then NAME.
func EnvOverride(name string) string {
	if v, ok := os.LookupEnv(name + "_" + dashboardName); ok {
		return v
	}
	return os.Getenv(name)
}

// DefaultAliases returns the built-in user alias table. All usage from the
// listed aliases is aggregated under the primary username.
func DefaultAliases() map[string][]string {
	return map[string][]string{
		"peterdir": {"aider", "dirkcli"},
	}
}

// substituteEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with environment variables
func substituteEnvVars(content string) string {
	// Pattern matches ${VAR_NAME} or ${VAR_NAME:-default_value}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		submatches := re.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""

		if len(submatches) > 2 && submatches[2] != "" {
			// Remove the leading '-' from default value
			defaultValue = strings.TrimPrefix(submatches[2], "-")
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// GetNormalizedLogLevel returns the log level in lowercase for consistent comparison
func (c *Config) GetNormalizedLogLevel() string {
	return strings.ToLower(c.Server.LogLevel)
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate checks if all required configuration values are set and coherent
func (c *Config) Validate() error {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "server.port")
	}
	if c.AWS.LogGroup == "" {
		missing = append(missing, "aws.log_group")
	}
	if c.Query.PollIntervalSeconds <= 0 {
		missing = append(missing, "query.poll_interval_seconds")
	}
	if c.Query.MaxWaitSeconds < c.Query.PollIntervalSeconds {
		return fmt.Errorf("query.max_wait_seconds (%d) must be at least query.poll_interval_seconds (%d)",
			c.Query.MaxWaitSeconds, c.Query.PollIntervalSeconds)
	}

	if len(missing) > 0 {
		return &ValidationError{MissingFields: missing}
	}

	return nil
}

// ValidationError represents configuration validation errors
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "missing required configuration fields: " + strings.Join(e.MissingFields, ", ")
}
