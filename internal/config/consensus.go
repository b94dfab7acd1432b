package config

import (
	"fmt"
	"os"
	"slices"
)

const (
	EnvConsensusDefaultModel  = "CONSENSOR_CONSENSUS_DEFAULT_MODEL"
	EnvConsensusDefaultFormat = "CONSENSOR_CONSENSUS_DEFAULT_FORMAT"
	EnvConsensusCSVSeparator  = "CONSENSOR_CONSENSUS_CSV_SEPARATOR"
	EnvConsensusTaskKey       = "CONSENSOR_CONSENSUS_TASK_KEY"
)

// ConsensusConfig holds defaults for consensus computation and export.
type ConsensusConfig struct {
	DefaultModel  string `toml:"default_model"`
	DefaultFormat string `toml:"default_format"`
	CSVSeparator  string `toml:"csv_separator"`
	TaskKey       string `toml:"task_key"`
}

// Separator returns the CSV separator as a rune.
func (c *ConsensusConfig) Separator() rune {
	for _, r := range c.CSVSeparator {
		return r
	}
	return ','
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ConsensusConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ConsensusConfig) Merge(overlay *ConsensusConfig) {
	if overlay.DefaultModel != "" {
		c.DefaultModel = overlay.DefaultModel
	}
	if overlay.DefaultFormat != "" {
		c.DefaultFormat = overlay.DefaultFormat
	}
	if overlay.CSVSeparator != "" {
		c.CSVSeparator = overlay.CSVSeparator
	}
	if overlay.TaskKey != "" {
		c.TaskKey = overlay.TaskKey
	}
}

func (c *ConsensusConfig) loadDefaults() {
	if c.DefaultModel == "" {
		c.DefaultModel = "DawidSkene"
	}
	if c.DefaultFormat == "" {
		c.DefaultFormat = "csv"
	}
	if c.CSVSeparator == "" {
		c.CSVSeparator = ","
	}
	if c.TaskKey == "" {
		c.TaskKey = "id"
	}
}

func (c *ConsensusConfig) loadEnv() {
	if v := os.Getenv(EnvConsensusDefaultModel); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv(EnvConsensusDefaultFormat); v != "" {
		c.DefaultFormat = v
	}
	if v := os.Getenv(EnvConsensusCSVSeparator); v != "" {
		c.CSVSeparator = v
	}
	if v := os.Getenv(EnvConsensusTaskKey); v != "" {
		c.TaskKey = v
	}
}

func (c *ConsensusConfig) validate() error {
	if !slices.Contains([]string{"csv", "json"}, c.DefaultFormat) {
		return fmt.Errorf("invalid default_format: %s", c.DefaultFormat)
	}
	if len([]rune(c.CSVSeparator)) != 1 {
		return fmt.Errorf("csv_separator must be a single character: %q", c.CSVSeparator)
	}
	return nil
}
