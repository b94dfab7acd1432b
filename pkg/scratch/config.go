package scratch

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds scratch directory settings.
type Config struct {
	Dir string `toml:"dir"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Dir string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
}

func (c *Config) loadDefaults() {
	if c.Dir == "" {
		c.Dir = filepath.Join(".", ".tmp")
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Dir != "" {
		if v := os.Getenv(env.Dir); v != "" {
			c.Dir = v
		}
	}
}

func (c *Config) validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir required")
	}
	return nil
}
