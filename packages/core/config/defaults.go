package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:         30000, // 30 seconds
		FollowRedirects: BoolPtr(false),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		Reporters:       []string{"console"},
		Bail:            BoolPtr(false),
		Verbose:         BoolPtr(false),
		NoColor:         BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.BaseURL == defaults.BaseURL &&
		c.EnvFile == defaults.EnvFile &&
		c.Timeout == defaults.Timeout &&
		c.Rate == defaults.Rate &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.GetValidateSSL() == defaults.GetValidateSSL() &&
		c.Proxy == defaults.Proxy &&
		len(c.Headers) == 0 &&
		len(c.Variables) == 0 &&
		c.OutputDir == defaults.OutputDir &&
		c.GetBail() == defaults.GetBail() &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor()
}
