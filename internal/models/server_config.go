package models

import "time"

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string `json:"port,omitzero" yaml:"port"`
	AllowedOrigins string `json:"allowed_origins,omitzero" yaml:"allowed_origins"`
	Environment    string `json:"environment,omitzero" yaml:"environment"`
	LogLevel       string `json:"log_level,omitzero" yaml:"log_level"`
}

// AWSConfig holds the settings for the CloudWatch Logs collaborator
type AWSConfig struct {
	Profile  string `json:"profile,omitzero" yaml:"profile"`
	Region   string `json:"region,omitzero" yaml:"region"`
	LogGroup string `json:"log_group,omitzero" yaml:"log_group"`
}

// QueryConfig bounds the asynchronous query lifecycle
type QueryConfig struct {
	CacheTTLSeconds     int `json:"cache_ttl_seconds,omitzero" yaml:"cache_ttl_seconds"`
	PollIntervalSeconds int `json:"poll_interval_seconds,omitzero" yaml:"poll_interval_seconds"`
	MaxWaitSeconds      int `json:"max_wait_seconds,omitzero" yaml:"max_wait_seconds"`
	// StartsPerMinute caps billed StartQuery calls. Zero means unlimited.
	StartsPerMinute int `json:"starts_per_minute,omitzero" yaml:"starts_per_minute"`
}

// CacheTTL is how long a cached query handle stays valid.
func (q QueryConfig) CacheTTL() time.Duration {
	return time.Duration(q.CacheTTLSeconds) * time.Second
}

// PollInterval is the delay between query status checks.
func (q QueryConfig) PollInterval() time.Duration {
	return time.Duration(q.PollIntervalSeconds) * time.Second
}

// MaxWait is the total polling budget for one query.
func (q QueryConfig) MaxWait() time.Duration {
	return time.Duration(q.MaxWaitSeconds) * time.Second
}

// PricingConfig overlays the static price table
type PricingConfig struct {
	Overrides    map[string]PricingEntry `json:"overrides,omitzero" yaml:"overrides"`
	ShowInactive bool                    `json:"show_inactive,omitzero" yaml:"show_inactive"`
}

// IdentityConfig maps primary usernames to their aliases
type IdentityConfig struct {
	Aliases map[string][]string `json:"aliases,omitzero" yaml:"aliases"`
}

// AccessConfig restricts dashboard access to known networks
type AccessConfig struct {
	// SubnetsOnly is a comma-separated CIDR allow-list. Empty disables the check.
	SubnetsOnly string `json:"subnets_only,omitzero" yaml:"subnets_only"`
	FQDN        string `json:"fqdn,omitzero" yaml:"fqdn"`
}
