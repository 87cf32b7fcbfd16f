package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"submanager/internal/core"
)

type Config struct {
	// HTTP server
	Port string

	// Persistence
	DataBackend  string // file | sqlite | memory
	DataDir      string
	SQLiteDBPath string

	// Exchange rates
	RatesURL             string
	RatesTimeout         time.Duration
	RatesRefreshInterval time.Duration // 0 disables periodic refresh

	// Default preferences for a fresh store
	BaseCurrency string
	ViewMode     string

	// AMQP event bus (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets changelog (worker)
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "file"),
		DataDir:      getEnv("DATA_DIR", "./data"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/submanager.db"),

		RatesURL:             getEnv("RATES_URL", ""),
		RatesTimeout:         getEnvDuration("RATES_TIMEOUT", 10*time.Second),
		RatesRefreshInterval: getEnvDuration("RATES_REFRESH_INTERVAL", 0),

		BaseCurrency: getEnv("BASE_CURRENCY", "RUB"),
		ViewMode:     getEnv("VIEW_MODE", "monthly"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "submanager"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "subscription_events"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Changelog"),
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "file", "sqlite", "memory":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [file sqlite memory]", c.DataBackend))
	}
	if c.DataBackend == "file" && c.DataDir == "" {
		errs = append(errs, "data directory cannot be empty when using file backend")
	}
	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.RatesURL != "" {
		if u, err := url.Parse(c.RatesURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("invalid rates URL '%s': must be an http(s) URL", c.RatesURL))
		}
	}
	if c.RatesTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid rates timeout %v: must be at least 1 second", c.RatesTimeout))
	}
	if c.RatesRefreshInterval != 0 && c.RatesRefreshInterval < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid rates refresh interval %v: must be 0 or at least 1 minute", c.RatesRefreshInterval))
	}

	if !core.Currency(c.BaseCurrency).Valid() {
		errs = append(errs, fmt.Sprintf("invalid base currency '%s': must be one of [RUB USD EUR]", c.BaseCurrency))
	}
	if !core.ViewMode(c.ViewMode).Valid() {
		errs = append(errs, fmt.Sprintf("invalid view mode '%s': must be monthly or yearly", c.ViewMode))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// DefaultPreferences returns the preferences a fresh store starts with.
func (c *Config) DefaultPreferences() core.Preferences {
	return core.Preferences{
		BaseCurrency: core.Currency(c.BaseCurrency),
		ViewMode:     core.ViewMode(c.ViewMode),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
