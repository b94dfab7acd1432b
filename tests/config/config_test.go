package config_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"consensor/internal/config"
)

func writeConfig(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr())
	}
	if cfg.Server.WriteTimeoutDuration() != 5*time.Minute {
		t.Errorf("WriteTimeout = %v", cfg.Server.WriteTimeoutDuration())
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("BasePath = %q", cfg.API.BasePath)
	}
	if cfg.Upstream.TimeoutDuration() != 2*time.Minute {
		t.Errorf("Upstream.Timeout = %v", cfg.Upstream.TimeoutDuration())
	}
	if cfg.Consensus.DefaultModel != "DawidSkene" {
		t.Errorf("DefaultModel = %q", cfg.Consensus.DefaultModel)
	}
	if cfg.Consensus.DefaultFormat != "csv" {
		t.Errorf("DefaultFormat = %q", cfg.Consensus.DefaultFormat)
	}
	if cfg.Consensus.TaskKey != "id" {
		t.Errorf("TaskKey = %q", cfg.Consensus.TaskKey)
	}
	if cfg.Consensus.Separator() != ',' {
		t.Errorf("Separator = %q", cfg.Consensus.Separator())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeoutDuration())
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Chdir(t.TempDir())
	writeConfig(t, config.BaseConfigFile, `
log_level = "debug"

[server]
port = 20100

[api]
base_path = "/svc"

[consensus]
default_model = "MajorityVoting"
`)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Port != 20100 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.API.BasePath != "/svc" {
		t.Errorf("BasePath = %q", cfg.API.BasePath)
	}
	if cfg.Consensus.DefaultModel != "MajorityVoting" {
		t.Errorf("DefaultModel = %q", cfg.Consensus.DefaultModel)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v", cfg.SlogLevel())
	}
	// Unset fields still default.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q", cfg.Server.Host)
	}
}

func TestLoadOverlay(t *testing.T) {
	t.Chdir(t.TempDir())
	writeConfig(t, config.BaseConfigFile, `
[server]
port = 20100
host = "127.0.0.1"
`)
	writeConfig(t, "config.dev.toml", `
[server]
port = 20200
`)
	t.Setenv(config.EnvConsensorEnv, "dev")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Port != 20200 {
		t.Errorf("Port = %d, overlay not applied", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Host = %q, base value lost in merge", cfg.Server.Host)
	}
	if cfg.Env() != "dev" {
		t.Errorf("Env = %q", cfg.Env())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvConsensorLogLevel, "warn")
	t.Setenv(config.EnvServerPort, "20300")
	t.Setenv(config.EnvUpstreamLocalhostRewrite, "pybossa-api")
	t.Setenv(config.EnvConsensusTaskKey, "task_uid")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.SlogLevel() != slog.LevelWarn {
		t.Errorf("SlogLevel = %v", cfg.SlogLevel())
	}
	if cfg.Server.Port != 20300 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Upstream.LocalhostRewrite != "pybossa-api" {
		t.Errorf("LocalhostRewrite = %q", cfg.Upstream.LocalhostRewrite)
	}
	if cfg.Consensus.TaskKey != "task_uid" {
		t.Errorf("TaskKey = %q", cfg.Consensus.TaskKey)
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"invalid port", "[server]\nport = 99999\n"},
		{"invalid timeout", "[upstream]\ntimeout = \"soon\"\n"},
		{"invalid format", "[consensus]\ndefault_format = \"xml\"\n"},
		{"multi-char separator", "[consensus]\ncsv_separator = \"::\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			writeConfig(t, config.BaseConfigFile, tc.content)
			if _, err := config.Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"ERROR":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for in, want := range cases {
		cfg := &config.Config{LogLevel: in}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
