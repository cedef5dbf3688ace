// Package config loads the service configuration from YAML with environment
// variable overrides for deployment-specific settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
	Sales    SalesConfig    `yaml:"sales"`
	Model    ModelConfig    `yaml:"model"`
	Scraper  ScraperConfig  `yaml:"scraper"`
}

type ServerConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	ReadTimeoutSeconds    int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds   int    `yaml:"write_timeout_seconds"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

type CacheConfig struct {
	Redis struct {
		Addr string `yaml:"addr"`
		DB   int    `yaml:"db"`
	} `yaml:"redis"`
	TTLHours int `yaml:"ttl_hours"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

type DatabaseConfig struct {
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
}

func (d DatabaseConfig) Lifetime() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Minute
}

type SalesConfig struct {
	// Backend selects the internal sales store: "csv" or "postgres".
	Backend string `yaml:"backend"`
	CSVPath string `yaml:"csv_path"`
}

type ModelConfig struct {
	ArtifactPath string `yaml:"artifact_path"`
}

type ScraperConfig struct {
	Headless          bool   `yaml:"headless"`
	ExecPath          string `yaml:"exec_path"`
	NavTimeoutSeconds int    `yaml:"nav_timeout_seconds"`
	RatePerMin        int    `yaml:"rate_per_min"`
	MaxListings       int    `yaml:"max_listings"`
}

func (s ScraperConfig) NavTimeout() time.Duration {
	return time.Duration(s.NavTimeoutSeconds) * time.Second
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:                  "0.0.0.0",
			Port:                  8000,
			ReadTimeoutSeconds:    15,
			WriteTimeoutSeconds:   60,
			RequestTimeoutSeconds: 55,
		},
		Cache: CacheConfig{
			TTLHours: 24,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30,
		},
		Sales: SalesConfig{
			Backend: "csv",
			CSVPath: "data/sales_data.csv",
		},
		Model: ModelConfig{
			ArtifactPath: "data/price_model.json",
		},
		Scraper: ScraperConfig{
			Headless:          true,
			NavTimeoutSeconds: 30,
			RatePerMin:        12,
			MaxListings:       30,
		},
	}
	return cfg
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	envString("HOST", &c.Server.Host)
	envInt("PORT", &c.Server.Port)
	envString("REDIS_ADDR", &c.Cache.Redis.Addr)
	envInt("REDIS_DB", &c.Cache.Redis.DB)
	envInt("CACHE_TTL_HOURS", &c.Cache.TTLHours)
	envString("DATABASE_URL", &c.Database.DSN)
	envString("SALES_BACKEND", &c.Sales.Backend)
	envString("SALES_CSV_PATH", &c.Sales.CSVPath)
	envString("MODEL_ARTIFACT_PATH", &c.Model.ArtifactPath)
	envString("CHROME_EXEC_PATH", &c.Scraper.ExecPath)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Sales.Backend {
	case "csv", "postgres":
	default:
		return fmt.Errorf("unknown sales backend %q", c.Sales.Backend)
	}
	if c.Sales.Backend == "postgres" && c.Database.DSN == "" {
		return fmt.Errorf("postgres sales backend requires database dsn")
	}
	return nil
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
