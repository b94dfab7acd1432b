package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvUpstreamTimeout = "CONSENSOR_UPSTREAM_TIMEOUT"
	// EnvUpstreamLocalhostRewrite redirects "localhost" in caller-supplied
	// export URLs to an internal address, for containerized deployments
	// where the upstream API and this service do not share a loopback.
	EnvUpstreamLocalhostRewrite = "CONSENSOR_UPSTREAM_LOCALHOST_REWRITE"
)

// UpstreamConfig holds settings for the remote export API client.
type UpstreamConfig struct {
	Timeout          string `toml:"timeout"`
	LocalhostRewrite string `toml:"localhost_rewrite"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *UpstreamConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *UpstreamConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *UpstreamConfig) Merge(overlay *UpstreamConfig) {
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.LocalhostRewrite != "" {
		c.LocalhostRewrite = overlay.LocalhostRewrite
	}
}

func (c *UpstreamConfig) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
}

func (c *UpstreamConfig) loadEnv() {
	if v := os.Getenv(EnvUpstreamTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvUpstreamLocalhostRewrite); v != "" {
		c.LocalhostRewrite = v
	}
}

func (c *UpstreamConfig) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
