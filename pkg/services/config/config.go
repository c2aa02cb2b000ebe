package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "SALES_ATLAS"

var supportedDrivers = []string{"duckdb", "sqlite", "databricks", "snowflake"}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Export    ExportConfig    `mapstructure:"export"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CorsOrigins     []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver            string `mapstructure:"driver"`
	Path              string `mapstructure:"path"`
	DSN               string `mapstructure:"dsn"`
	DatabricksConfig  string `mapstructure:"databricks_config"`
	DatabricksProfile string `mapstructure:"databricks_profile"`
	HTTPPath          string `mapstructure:"http_path"`
	SnowflakeConfig   string `mapstructure:"snowflake_config"`
	Table             string `mapstructure:"table"`
}

type AnalysisConfig struct {
	ServiceItemKeywords []string `mapstructure:"service_item_keywords"`
	DataSource          string   `mapstructure:"data_source"`
	Version             string   `mapstructure:"version"`
}

type CacheConfig struct {
	AnalysisTTL      time.Duration `mapstructure:"analysis_ttl"`
	FilterOptionsTTL time.Duration `mapstructure:"filter_options_ttl"`
	MaxEntries       int           `mapstructure:"max_entries"`
	SingleFlight     bool          `mapstructure:"single_flight"`
}

type SchedulerConfig struct {
	// FilterOptionsRefresh is a standard five-field cron spec. Empty disables the job.
	FilterOptionsRefresh string  `mapstructure:"filter_options_refresh"`
	Stores               []int64 `mapstructure:"stores"`
}

type ExportConfig struct {
	S3Bucket string `mapstructure:"s3_bucket"`
	S3Prefix string `mapstructure:"s3_prefix"`
	Region   string `mapstructure:"region"`
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.driver", "duckdb")
	v.SetDefault("database.path", "sales-atlas.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.databricks_config", filepath.Join(home, ".databrickscfg"))
	v.SetDefault("database.databricks_profile", "DEFAULT")
	v.SetDefault("database.http_path", "")
	v.SetDefault("database.snowflake_config", "")
	v.SetDefault("database.table", "order_items")

	v.SetDefault("analysis.service_item_keywords", []string{"Shipping", "Freight", "Handling", "Fee", "Surcharge", "Tip"})
	v.SetDefault("analysis.data_source", "order_items")
	v.SetDefault("analysis.version", "v1")

	v.SetDefault("cache.analysis_ttl", 30*time.Minute)
	v.SetDefault("cache.filter_options_ttl", time.Hour)
	v.SetDefault("cache.max_entries", 1024)
	v.SetDefault("cache.single_flight", false)

	v.SetDefault("scheduler.filter_options_refresh", "")
	v.SetDefault("scheduler.stores", []int64{})

	v.SetDefault("export.s3_bucket", "")
	v.SetDefault("export.s3_prefix", "reports/")
	v.SetDefault("export.region", "")
}

// Load reads the config file at path, when given, and applies SALES_ATLAS_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if !slices.Contains(supportedDrivers, c.Database.Driver) {
		return fmt.Errorf("unsupported database driver %q, expected one of %s",
			c.Database.Driver, strings.Join(supportedDrivers, ", "))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Cache.AnalysisTTL <= 0 || c.Cache.FilterOptionsTTL <= 0 {
		return fmt.Errorf("cache ttl values must be positive")
	}
	if c.Database.Table == "" {
		return fmt.Errorf("database table is required")
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
