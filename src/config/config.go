package config

import (
	"fmt"
	"os"

	"nepse-gateway/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.McpPort != 0 && (c.McpPort <= 1024 || c.McpPort > 65535) {
		return fmt.Errorf("invalid MCP port number: %d (must be between 1025 and 65535)", c.McpPort)
	}

	// Validate Upstream configuration
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base URL cannot be empty")
	}
	if c.Upstream.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate Cache configuration
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache TTL must be greater than 0")
	}

	// Validate RateLimit configuration
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window must be greater than 0")
	}
	if c.RateLimit.ClientThreshold <= 0 {
		return fmt.Errorf("rate limit client threshold must be greater than 0")
	}
	if c.RateLimit.IdleSweepSeconds <= 0 {
		return fmt.Errorf("rate limit idle sweep interval must be greater than 0")
	}
	for category, limit := range c.RateLimit.Limits {
		if limit <= 0 {
			return fmt.Errorf("rate limit for category '%s' must be greater than 0", category)
		}
	}

	// Validate Snapshot configuration
	if c.Snapshot.Path == "" {
		return fmt.Errorf("stock map snapshot path cannot be empty")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
