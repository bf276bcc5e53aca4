package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradejournal/discipline"
)

// Config is the complete tradejournal configuration.
type Config struct {
	User       UserConfig        `json:"user" yaml:"user"`
	Database   DatabaseConfig    `json:"database" yaml:"database"`
	Server     ServerConfig      `json:"server" yaml:"server"`
	Log        LogConfig         `json:"log" yaml:"log"`
	Import     ImportConfig      `json:"import" yaml:"import"`
	Analytics  AnalyticsConfig   `json:"analytics" yaml:"analytics"`
	Discipline discipline.Policy `json:"discipline" yaml:"discipline"`
}

// UserConfig names the journal owner. The CLI and the API act as this user.
type UserConfig struct {
	ID string `json:"id" yaml:"id"`
}

// DatabaseConfig selects the store.
type DatabaseConfig struct {
	Driver string `json:"driver" yaml:"driver"` // "sqlite3" or "postgres"
	DSN    string `json:"dsn" yaml:"dsn"`
}

// ServerConfig contains HTTP API parameters
type ServerConfig struct {
	Addr            string   `json:"addr" yaml:"addr"`
	CORSOrigins     []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
	ShutdownTimeout string   `json:"shutdown_timeout" yaml:"shutdown_timeout"` // e.g. "5s"
}

// ParseShutdownTimeout converts the timeout string to time.Duration
func (s ServerConfig) ParseShutdownTimeout() (time.Duration, error) {
	if s.ShutdownTimeout == "" {
		return 5 * time.Second, nil
	}
	return time.ParseDuration(s.ShutdownTimeout)
}

type LogConfig struct {
	Level       string `json:"level" yaml:"level"`       // debug, info, warn, error
	Encoding    string `json:"encoding" yaml:"encoding"` // json or console
	Development bool   `json:"development" yaml:"development"`
}

// ImportConfig contains CSV import defaults and the inbox job.
type ImportConfig struct {
	Timezone                     string  `json:"timezone" yaml:"timezone"`
	DefaultCommissionPerContract float64 `json:"default_commission_per_contract" yaml:"default_commission_per_contract"`
	MaxCommissionPerContract     float64 `json:"max_commission_per_contract" yaml:"max_commission_per_contract"`

	InboxDir      string `json:"inbox_dir,omitempty" yaml:"inbox_dir,omitempty"`
	InboxSchedule string `json:"inbox_schedule,omitempty" yaml:"inbox_schedule,omitempty"` // cron spec
	InboxAccount  string `json:"inbox_account,omitempty" yaml:"inbox_account,omitempty"`
}

type AnalyticsConfig struct {
	StartingBalance float64 `json:"starting_balance" yaml:"starting_balance"`
	Timezone        string  `json:"timezone" yaml:"timezone"`
}

// Location loads a timezone name. Empty means UTC.
func Location(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", name, err)
	}
	return loc, nil
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load reads path when it exists, falling back to defaults, then applies
// .env files and TJ_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := LoadFromFile(path)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadEnv loads the given .env files (".env" when none are named, missing
// files are ignored) and applies TJ_* overrides from the environment.
func (c *Config) LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set("TJ_DB_DRIVER", &c.Database.Driver)
	set("TJ_DB_DSN", &c.Database.DSN)
	set("TJ_HTTP_ADDR", &c.Server.Addr)
	set("TJ_LOG_LEVEL", &c.Log.Level)
	set("TJ_USER_ID", &c.User.ID)
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.User.ID == "" {
		return fmt.Errorf("user.id is required")
	}
	if c.Database.Driver != "sqlite3" && c.Database.Driver != "postgres" {
		return fmt.Errorf("database.driver must be 'sqlite3' or 'postgres'")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if _, err := c.Server.ParseShutdownTimeout(); err != nil {
		return fmt.Errorf("server.shutdown_timeout: %w", err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	if c.Log.Encoding != "" && c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		return fmt.Errorf("log.encoding must be 'json' or 'console'")
	}
	if _, err := Location(c.Import.Timezone); err != nil {
		return fmt.Errorf("import.timezone: %w", err)
	}
	if c.Import.DefaultCommissionPerContract < 0 || c.Import.MaxCommissionPerContract < 0 {
		return fmt.Errorf("import commissions must not be negative")
	}
	if c.Import.InboxSchedule != "" && c.Import.InboxDir == "" {
		return fmt.Errorf("import.inbox_dir is required when inbox_schedule is set")
	}
	if c.Analytics.StartingBalance < 0 {
		return fmt.Errorf("analytics.starting_balance must not be negative")
	}
	if _, err := Location(c.Analytics.Timezone); err != nil {
		return fmt.Errorf("analytics.timezone: %w", err)
	}
	if err := c.Discipline.Validate(); err != nil {
		return fmt.Errorf("discipline: %w", err)
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		User: UserConfig{ID: "local"},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "./tradejournal.db",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: "5s",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Import: ImportConfig{
			Timezone:                     "America/New_York",
			DefaultCommissionPerContract: 0,
			MaxCommissionPerContract:     10,
		},
		Analytics: AnalyticsConfig{
			StartingBalance: 50000,
			Timezone:        "America/New_York",
		},
		Discipline: discipline.Policy{
			MaxTradesPerDay:      5,
			MaxConsecutiveLosses: 3,
		},
	}
}
