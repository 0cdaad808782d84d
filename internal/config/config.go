package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	Reco      RecoConfig      `yaml:"reco"`
	Anomaly   AnomalyConfig   `yaml:"anomaly"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
	// WeekStart controls calendar-week boundaries for week-over-week
	// endpoints: "monday" (ISO) or "sunday".
	WeekStart string `yaml:"week_start"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// WeekStartDay maps the configured week start to a time.Weekday.
func (c ServerConfig) WeekStartDay() time.Weekday {
	if c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// WarehouseConfig holds the analytics warehouse connection settings.
// The warehouse is strictly read-only; the adapter enforces that.
type WarehouseConfig struct {
	Driver                 string `yaml:"driver"` // "postgres" or "snowflake"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	QueryTimeoutSeconds    int    `yaml:"query_timeout_seconds"`

	// Snowflake-specific fields, used when Driver is "snowflake" and DSN is
	// empty.
	Account       string `yaml:"account"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Database      string `yaml:"database"`
	Schema        string `yaml:"schema"`
	WarehouseName string `yaml:"warehouse_name"`
}

// QueryTimeout returns the per-request query deadline as a duration
func (c WarehouseConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// ConnMaxLifetime returns the connection recycle interval as a duration
func (c WarehouseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// AuthConfig holds bearer-token authentication settings. Token issuance is
// owned by an external identity service; this service only verifies.
type AuthConfig struct {
	Enabled     bool   `yaml:"enabled"`
	StaticToken string `yaml:"static_token"`
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RecoConfig holds tenant-level default thresholds for budget
// recommendations and top-movers classification. Request parameters
// override these per call.
type RecoConfig struct {
	TargetROAS float64 `yaml:"target_roas"`
	KillROAS   float64 `yaml:"kill_roas"`
	TargetCPL  float64 `yaml:"target_cpl"` // 0 disables the CPL path
	MinLeads   float64 `yaml:"min_leads"`
	MinSpend   float64 `yaml:"min_spend"`
}

// AnomalyConfig holds baseline and threshold settings for the anomaly
// detector.
type AnomalyConfig struct {
	BaselineDays     int     `yaml:"baseline_days"`
	MinBaselineDays  int     `yaml:"min_baseline_days"`
	SpikeSigma       float64 `yaml:"spike_sigma"`
	HighSigma        float64 `yaml:"high_sigma"`
	DropRatio        float64 `yaml:"drop_ratio"`
	HighDropRatio    float64 `yaml:"high_drop_ratio"`
	SpendSurgeFactor float64 `yaml:"spend_surge_factor"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.WeekStart == "" {
		cfg.Server.WeekStart = "monday"
	}
	if cfg.Warehouse.Driver == "" {
		cfg.Warehouse.Driver = "postgres"
	}
	if cfg.Warehouse.MaxOpenConns == 0 {
		cfg.Warehouse.MaxOpenConns = 10
	}
	if cfg.Warehouse.MaxIdleConns == 0 {
		cfg.Warehouse.MaxIdleConns = 3
	}
	if cfg.Warehouse.ConnMaxLifetimeMinutes == 0 {
		cfg.Warehouse.ConnMaxLifetimeMinutes = 5
	}
	if cfg.Warehouse.QueryTimeoutSeconds == 0 {
		cfg.Warehouse.QueryTimeoutSeconds = 30
	}
	if cfg.Reco.TargetROAS == 0 {
		cfg.Reco.TargetROAS = 3.0
	}
	if cfg.Reco.KillROAS == 0 {
		cfg.Reco.KillROAS = 0.8
	}
	if cfg.Reco.MinLeads == 0 {
		cfg.Reco.MinLeads = 5
	}
	if cfg.Reco.MinSpend == 0 {
		cfg.Reco.MinSpend = 100
	}
	if cfg.Anomaly.BaselineDays == 0 {
		cfg.Anomaly.BaselineDays = 30
	}
	if cfg.Anomaly.MinBaselineDays == 0 {
		cfg.Anomaly.MinBaselineDays = 7
	}
	if cfg.Anomaly.SpikeSigma == 0 {
		cfg.Anomaly.SpikeSigma = 2.0
	}
	if cfg.Anomaly.HighSigma == 0 {
		cfg.Anomaly.HighSigma = 3.0
	}
	if cfg.Anomaly.DropRatio == 0 {
		cfg.Anomaly.DropRatio = 0.5
	}
	if cfg.Anomaly.HighDropRatio == 0 {
		cfg.Anomaly.HighDropRatio = 0.3
	}
	if cfg.Anomaly.SpendSurgeFactor == 0 {
		cfg.Anomaly.SpendSurgeFactor = 2.0
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if dsn := os.Getenv("WAREHOUSE_DSN"); dsn != "" {
		cfg.Warehouse.DSN = dsn
	}
	if driver := os.Getenv("WAREHOUSE_DRIVER"); driver != "" {
		cfg.Warehouse.Driver = driver
	}
	if v := os.Getenv("WAREHOUSE_QUERY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Warehouse.QueryTimeoutSeconds = n
		}
	}
	if v := os.Getenv("SNOWFLAKE_PASSWORD"); v != "" {
		cfg.Warehouse.Password = v
	}
	if v := os.Getenv("API_STATIC_TOKEN"); v != "" {
		cfg.Auth.StaticToken = v
		cfg.Auth.Enabled = true
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg, nil
}
