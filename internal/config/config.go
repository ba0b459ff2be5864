// Package config loads service settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type Config struct {
	// HTTP Server
	Port             string `yaml:"port"`
	RefreshPerMinute int    `yaml:"refresh_per_minute"`
	PublicBaseURL    string `yaml:"public_base_url"`
	CalendarName     string `yaml:"calendar_name"`

	// Backend selection
	DataBackend  string `yaml:"data_backend"`
	SQLiteDBPath string `yaml:"sqlite_db_path"`
	SeedFile     string `yaml:"seed_file"`

	// AMQP change notifications, disabled when AMQPURL is empty
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`

	// Google Sheets export, disabled when GoogleSpreadsheetID is empty
	GoogleSpreadsheetID   string `yaml:"google_spreadsheet_id"`
	GoogleCredentialsFile string `yaml:"google_credentials_file"`
	GoogleCredentialsJSON string `yaml:"google_credentials_json"`
	GoogleOAuthClientFile string `yaml:"google_oauth_client_file"`
	GoogleOAuthClientJSON string `yaml:"google_oauth_client_json"`
	GoogleOAuthTokenFile  string `yaml:"google_oauth_token_file"`
	GoogleLedgerSheet     string `yaml:"google_ledger_sheet"`
	GoogleSeriesSheet     string `yaml:"google_series_sheet"`

	// Worker
	ExportSchedule string `yaml:"export_schedule"`

	// Aggregation
	SnapshotTTL  time.Duration `yaml:"snapshot_ttl"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	CacheSize    int           `yaml:"cache_size"`

	LogLevel string `yaml:"log_level"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Port:              "8081",
		RefreshPerMinute:  6,
		CalendarName:      "Dernek Takvimi",
		DataBackend:       BackendMemory,
		SQLiteDBPath:      "./data/dernek.db",
		AMQPExchange:      "dernek",
		AMQPQueue:         "dernek_record_changed",
		GoogleLedgerSheet: "Yardım Defteri",
		GoogleSeriesSheet: "Aylık Gelir-Gider",
		ExportSchedule:    "0 6 * * *",
		SnapshotTTL:       5 * time.Minute,
		FetchTimeout:      7 * time.Second,
		CacheSize:         32,
		LogLevel:          "info",
	}
}

// Load applies the YAML file named by DERNEK_CONFIG_FILE, if any, then the
// environment.
func Load() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("DERNEK_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.RefreshPerMinute = getEnvInt("REFRESH_PER_MINUTE", cfg.RefreshPerMinute)
	cfg.PublicBaseURL = getEnv("PUBLIC_BASE_URL", cfg.PublicBaseURL)
	cfg.CalendarName = getEnv("CALENDAR_NAME", cfg.CalendarName)
	cfg.DataBackend = getEnv("DATA_BACKEND", cfg.DataBackend)
	cfg.SQLiteDBPath = getEnv("SQLITE_DB_PATH", cfg.SQLiteDBPath)
	cfg.SeedFile = getEnv("SEED_FILE", cfg.SeedFile)

	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPQueue = getEnv("AMQP_QUEUE", cfg.AMQPQueue)

	cfg.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", cfg.GoogleSpreadsheetID)
	cfg.GoogleCredentialsFile = getEnv("GOOGLE_CREDENTIALS_FILE", cfg.GoogleCredentialsFile)
	cfg.GoogleCredentialsJSON = getEnv("GOOGLE_CREDENTIALS_JSON", cfg.GoogleCredentialsJSON)
	cfg.GoogleOAuthClientFile = getEnv("GOOGLE_OAUTH_CLIENT_FILE", cfg.GoogleOAuthClientFile)
	cfg.GoogleOAuthClientJSON = getEnv("GOOGLE_OAUTH_CLIENT_JSON", cfg.GoogleOAuthClientJSON)
	cfg.GoogleOAuthTokenFile = getEnv("GOOGLE_OAUTH_TOKEN_FILE", cfg.GoogleOAuthTokenFile)
	cfg.GoogleLedgerSheet = getEnv("GOOGLE_LEDGER_SHEET", cfg.GoogleLedgerSheet)
	cfg.GoogleSeriesSheet = getEnv("GOOGLE_SERIES_SHEET", cfg.GoogleSeriesSheet)

	cfg.ExportSchedule = getEnv("EXPORT_SCHEDULE", cfg.ExportSchedule)
	cfg.SnapshotTTL = getEnvDuration("SNAPSHOT_TTL", cfg.SnapshotTTL)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.CacheSize = getEnvInt("CACHE_SIZE", cfg.CacheSize)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	return &cfg, nil
}

// applyFile overlays the non-zero fields of a YAML file onto c.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	// Decoding into c keeps every field the file does not mention.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// AMQPEnabled reports whether change notifications are configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// ExportEnabled reports whether the Google Sheets export is configured.
func (c *Config) ExportEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error listing every problem
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RefreshPerMinute < 1 {
		problems = append(problems, fmt.Sprintf("invalid refresh rate %d: must be at least 1 per minute", c.RefreshPerMinute))
	}
	if c.PublicBaseURL != "" {
		if u, err := url.Parse(c.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid public base URL '%s': must be absolute", c.PublicBaseURL))
		}
	}

	switch c.DataBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendMemory, BackendSQLite))
	}

	if c.SeedFile != "" {
		if _, err := os.Stat(c.SeedFile); errors.Is(err, os.ErrNotExist) {
			problems = append(problems, fmt.Sprintf("seed file does not exist: %s", c.SeedFile))
		}
	}

	if c.AMQPEnabled() {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ExportEnabled() {
		serviceAccount := c.GoogleCredentialsFile != "" || c.GoogleCredentialsJSON != ""
		userOAuth := (c.GoogleOAuthClientFile != "" || c.GoogleOAuthClientJSON != "") && c.GoogleOAuthTokenFile != ""
		if !serviceAccount && !userOAuth {
			problems = append(problems, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON, or an OAuth client with GOOGLE_OAUTH_TOKEN_FILE, must be provided for the sheets export")
		}
		if c.GoogleLedgerSheet == "" || c.GoogleSeriesSheet == "" {
			problems = append(problems, "sheet names cannot be empty when the sheets export is enabled")
		}
		if _, err := cron.ParseStandard(c.ExportSchedule); err != nil {
			problems = append(problems, fmt.Sprintf("invalid export schedule '%s': %v", c.ExportSchedule, err))
		}
	}

	if c.SnapshotTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid snapshot TTL %v: must be positive", c.SnapshotTTL))
	}
	if c.FetchTimeout < time.Second {
		problems = append(problems, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	}
	if c.CacheSize < 1 {
		problems = append(problems, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
