/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Static validation errors.
var (
	ErrMissingDatabaseName = errors.New("database name is required")
	ErrInvalidPort         = errors.New("database port must be between 1 and 65535")
	ErrUnknownDialect      = errors.New("unsupported database dialect")
	ErrUnknownExtractor    = errors.New("unknown table extractor")
	ErrNegativeBudget      = errors.New("match budgets must not be negative")
)

// Config holds all configuration for the application
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Database DatabaseConfig `mapstructure:"database"`
	Match    MatchConfig    `mapstructure:"match"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Dialect                        string `mapstructure:"dialect"`
	Host                           string `mapstructure:"host"`
	Port                           int    `mapstructure:"port"`
	User                           string `mapstructure:"user"`
	Password                       string `mapstructure:"password"`
	DBName                         string `mapstructure:"dbname"`
	SSLMode                        string `mapstructure:"sslmode"`
	CloudSQLInstanceConnectionName string `mapstructure:"cloudsql_instance_connection_name"`
	UsePrivateIP                   bool   `mapstructure:"cloudsql_use_private_ip"`
}

// MatchConfig holds the matching budgets and extractor selection.
type MatchConfig struct {
	MaxWritesPerTable   int    `mapstructure:"max_writes_per_table"`
	MaxMatchesPerSelect int    `mapstructure:"max_matches_per_select"`
	MaxTotalMatches     int    `mapstructure:"max_total_matches"`
	Extractor           string `mapstructure:"extractor"`
}

var globalConfig *Config

// GetConfig returns a default configuration. Values may be overridden by a
// config file, PG* environment variables, and flags, in that order.
func GetConfig() *Config {
	return &Config{
		LogLevel: "info",
		Database: DatabaseConfig{
			Dialect: "postgres",
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Match: MatchConfig{
			MaxWritesPerTable:   2,
			MaxMatchesPerSelect: 5,
			MaxTotalMatches:     100,
			Extractor:           "heuristic",
		},
	}
}

// SetConfig sets the global configuration.
func SetConfig(cfg *Config) {
	globalConfig = cfg
}

// Get returns the global configuration, falling back to defaults when
// nothing has been loaded yet.
func Get() *Config {
	if globalConfig == nil {
		globalConfig = GetConfig()
	}
	return globalConfig
}

// Load builds the configuration from defaults, an optional YAML file, and
// the standard PG* environment variables. Flag overrides are applied later
// by the commands themselves.
func Load(path string) (*Config, error) {
	defaults := GetConfig()
	v := viper.New()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("database.dialect", defaults.Database.Dialect)
	v.SetDefault("database.host", defaults.Database.Host)
	v.SetDefault("database.port", defaults.Database.Port)
	v.SetDefault("database.sslmode", defaults.Database.SSLMode)
	v.SetDefault("match.max_writes_per_table", defaults.Match.MaxWritesPerTable)
	v.SetDefault("match.max_matches_per_select", defaults.Match.MaxMatchesPerSelect)
	v.SetDefault("match.max_total_matches", defaults.Match.MaxTotalMatches)
	v.SetDefault("match.extractor", defaults.Match.Extractor)

	for key, env := range map[string]string{
		"database.host":     "PGHOST",
		"database.port":     "PGPORT",
		"database.dbname":   "PGDATABASE",
		"database.user":     "PGUSER",
		"database.password": "PGPASSWORD",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding environment variable %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the connection parameters. The dialect names must match
// the registered dialect handlers.
func (c *DatabaseConfig) Validate() error {
	switch c.Dialect {
	case "postgres", "mysql", "sqlserver",
		"cloudsqlpostgres", "cloudsqlmysql", "cloudsqlsqlserver":
	default:
		return fmt.Errorf("%w: %s", ErrUnknownDialect, c.Dialect)
	}
	if c.DBName == "" {
		return ErrMissingDatabaseName
	}
	usesCloudSQL := c.CloudSQLInstanceConnectionName != "" || strings.HasPrefix(c.Dialect, "cloudsql")
	if !usesCloudSQL && (c.Port < 1 || c.Port > 65535) {
		return fmt.Errorf("%w, got %d", ErrInvalidPort, c.Port)
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	return nil
}

// Validate checks the matching parameters.
func (m *MatchConfig) Validate() error {
	switch m.Extractor {
	case "heuristic", "parser":
	default:
		return fmt.Errorf("%w: %s", ErrUnknownExtractor, m.Extractor)
	}
	if m.MaxWritesPerTable < 0 || m.MaxMatchesPerSelect < 0 || m.MaxTotalMatches < 0 {
		return ErrNegativeBudget
	}
	return nil
}
