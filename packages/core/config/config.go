package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the hitmatch configuration
type Config struct {
	BaseURL         string            `json:"baseUrl,omitempty"`
	EnvFile         string            `json:"envFile,omitempty"`
	Timeout         int               `json:"timeout,omitempty"` // milliseconds
	Rate            float64           `json:"rate,omitempty"`    // requests per second, 0 = unlimited
	FollowRedirects *bool             `json:"followRedirects,omitempty"`
	MaxRedirects    int               `json:"maxRedirects,omitempty"`
	ValidateSSL     *bool             `json:"validateSSL,omitempty"`
	Proxy           string            `json:"proxy,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"` // Default headers for all requests
	Variables       map[string]any    `json:"variables,omitempty"`
	Reporters       []string          `json:"reporters,omitempty"`
	OutputDir       string            `json:"outputDir,omitempty"`
	Bail            *bool             `json:"bail,omitempty"`
	Verbose         *bool             `json:"verbose,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects defaults to false: redirect matchers need to see the 3xx.
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, false)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetBail returns the bail setting, defaulting to false
func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".hitmatch.config.json",
	"hitmatch.config.json",
	".hitmatchrc",
	".hitmatchrc.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return config, nil
}

var knownReporters = map[string]bool{"console": true, "json": true, "junit": true}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %d", c.Timeout)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative, got %g", c.Rate)
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("maxRedirects must not be negative, got %d", c.MaxRedirects)
	}
	for _, r := range c.Reporters {
		if !knownReporters[r] {
			return fmt.Errorf("unknown reporter %q", r)
		}
	}
	return nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.EnvFile != "" {
		result.EnvFile = other.EnvFile
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.Rate > 0 {
		result.Rate = other.Rate
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.OutputDir != "" {
		result.OutputDir = other.OutputDir
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	if len(other.Variables) > 0 {
		vars := make(map[string]any, len(c.Variables)+len(other.Variables))
		for k, v := range c.Variables {
			vars[k] = v
		}
		for k, v := range other.Variables {
			vars[k] = v
		}
		result.Variables = vars
	}

	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
