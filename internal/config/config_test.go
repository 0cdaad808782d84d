package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.WeekStart != "monday" {
		t.Errorf("Server.WeekStart = %q, want monday", cfg.Server.WeekStart)
	}
	if cfg.Warehouse.Driver != "postgres" {
		t.Errorf("Warehouse.Driver = %q, want postgres", cfg.Warehouse.Driver)
	}
	if cfg.Warehouse.QueryTimeoutSeconds != 30 {
		t.Errorf("QueryTimeoutSeconds = %d, want 30", cfg.Warehouse.QueryTimeoutSeconds)
	}
	if cfg.Reco.TargetROAS != 3.0 || cfg.Reco.KillROAS != 0.8 {
		t.Errorf("Reco defaults = %+v", cfg.Reco)
	}
	if cfg.Reco.TargetCPL != 0 {
		t.Errorf("TargetCPL = %v, want 0 (disabled by default)", cfg.Reco.TargetCPL)
	}
	if cfg.Anomaly.BaselineDays != 30 || cfg.Anomaly.SpikeSigma != 2.0 {
		t.Errorf("Anomaly defaults = %+v", cfg.Anomaly)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		t.Error("CORS.AllowedOrigins empty, want localhost defaults")
	}
}

func TestLoadExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8181
  week_start: sunday
warehouse:
  driver: snowflake
  account: acme-eu1
  query_timeout_seconds: 45
reco:
  target_roas: 2.5
  target_cpl: 12
anomaly:
  spike_sigma: 1.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.WeekStart != "sunday" {
		t.Errorf("WeekStart = %q, want sunday", cfg.Server.WeekStart)
	}
	if cfg.Warehouse.Driver != "snowflake" || cfg.Warehouse.Account != "acme-eu1" {
		t.Errorf("Warehouse = %+v", cfg.Warehouse)
	}
	if cfg.Warehouse.QueryTimeoutSeconds != 45 {
		t.Errorf("QueryTimeoutSeconds = %d, want 45", cfg.Warehouse.QueryTimeoutSeconds)
	}
	if cfg.Reco.TargetROAS != 2.5 || cfg.Reco.TargetCPL != 12 {
		t.Errorf("Reco = %+v", cfg.Reco)
	}
	if cfg.Anomaly.SpikeSigma != 1.5 {
		t.Errorf("SpikeSigma = %v, want 1.5", cfg.Anomaly.SpikeSigma)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestWeekStartDay(t *testing.T) {
	if d := (ServerConfig{WeekStart: "sunday"}).WeekStartDay(); d != time.Sunday {
		t.Errorf("sunday maps to %v", d)
	}
	if d := (ServerConfig{WeekStart: "monday"}).WeekStartDay(); d != time.Monday {
		t.Errorf("monday maps to %v", d)
	}
	// Anything unrecognized falls back to ISO weeks.
	if d := (ServerConfig{WeekStart: "friday"}).WeekStartDay(); d != time.Monday {
		t.Errorf("fallback maps to %v, want Monday", d)
	}
}

func TestQueryTimeoutDuration(t *testing.T) {
	c := WarehouseConfig{QueryTimeoutSeconds: 45, ConnMaxLifetimeMinutes: 5}
	if c.QueryTimeout() != 45*time.Second {
		t.Errorf("QueryTimeout = %v", c.QueryTimeout())
	}
	if c.ConnMaxLifetime() != 5*time.Minute {
		t.Errorf("ConnMaxLifetime = %v", c.ConnMaxLifetime())
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	path := writeConfig(t, "warehouse:\n  dsn: postgres://file-dsn\n")

	t.Setenv("WAREHOUSE_DSN", "postgres://env-dsn")
	t.Setenv("WAREHOUSE_DRIVER", "snowflake")
	t.Setenv("WAREHOUSE_QUERY_TIMEOUT_SECONDS", "12")
	t.Setenv("API_STATIC_TOKEN", "sekrit")
	t.Setenv("SERVER_PORT", "8888")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv(path)
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Warehouse.DSN != "postgres://env-dsn" {
		t.Errorf("DSN = %q, env var should win over the file", cfg.Warehouse.DSN)
	}
	if cfg.Warehouse.Driver != "snowflake" {
		t.Errorf("Driver = %q", cfg.Warehouse.Driver)
	}
	if cfg.Warehouse.QueryTimeoutSeconds != 12 {
		t.Errorf("QueryTimeoutSeconds = %d", cfg.Warehouse.QueryTimeoutSeconds)
	}
	if !cfg.Auth.Enabled || cfg.Auth.StaticToken != "sekrit" {
		t.Errorf("Auth = %+v, token via env should enable auth", cfg.Auth)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
}

func TestLoadFromEnvIgnoresBadNumbers(t *testing.T) {
	path := writeConfig(t, "")

	t.Setenv("WAREHOUSE_QUERY_TIMEOUT_SECONDS", "soon")
	t.Setenv("SERVER_PORT", "-1")

	cfg, err := LoadFromEnv(path)
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Warehouse.QueryTimeoutSeconds != 30 {
		t.Errorf("QueryTimeoutSeconds = %d, want default 30", cfg.Warehouse.QueryTimeoutSeconds)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Server.Port)
	}
}
