package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/databricks/databricks-sql-go"
	"github.com/snowflakedb/gosnowflake"
	"github.com/spf13/viper"
)

type DatabricksSettings struct {
	ConfigPath string
	Profile    string
	HTTPPath   string
}

// OpenDatabricks connects to a Databricks SQL warehouse using credentials from a .databrickscfg profile.
func OpenDatabricks(ctx context.Context, settings DatabricksSettings) (*sql.DB, error) {
	registry, err := NewProfileRegistry(settings.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load databricks config: %w", err)
	}

	profile, err := registry.GetProfile(ctx, settings.Profile)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("databricks", DatabricksDSN(*profile, settings.HTTPPath))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Databricks: %w", err)
	}
	return db, nil
}

type SnowflakeSettings struct {
	// DSN takes precedence over ConfigPath.
	DSN        string
	ConfigPath string
}

// LoadSnowflakeConfig reads account credentials from a YAML/TOML/JSON profile file.
func LoadSnowflakeConfig(profilePath string) (*gosnowflake.Config, error) {
	v := viper.New()
	v.SetConfigFile(profilePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config gosnowflake.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse snowflake config: %w", err)
	}
	return &config, nil
}

// SnowflakeDSN resolves the connection string from settings.
func SnowflakeDSN(settings SnowflakeSettings) (string, error) {
	if settings.DSN != "" {
		return settings.DSN, nil
	}
	if settings.ConfigPath == "" {
		return "", fmt.Errorf("snowflake dsn or config file is required")
	}

	cfg, err := LoadSnowflakeConfig(settings.ConfigPath)
	if err != nil {
		return "", err
	}
	dsn, err := gosnowflake.DSN(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to build snowflake dsn: %w", err)
	}
	return dsn, nil
}

// OpenSnowflake connects using a gosnowflake DSN (user:password@account/database/schema?warehouse=wh)
// or a profile file.
func OpenSnowflake(settings SnowflakeSettings) (*sql.DB, error) {
	dsn, err := SnowflakeDSN(settings)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}
	return db, nil
}
