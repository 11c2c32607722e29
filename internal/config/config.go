package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Supported backends.
const (
	BackendMemory  = "memory"
	BackendMongoDB = "mongodb"
	BackendRemote  = "remote"
)

// Config represents the full application configuration surface.
type Config struct {
	Server        ServerConfig
	Log           LogConfig
	Store         StoreConfig
	MongoDB       MongoDBConfig
	Settlement    SettlementConfig
	Sheets        SheetsConfig
	Export        ExportConfig
	Notifications NotificationsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string
}

// StoreConfig selects where ownership records live.
type StoreConfig struct {
	Backend string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SettlementConfig selects how sale payments are settled.
type SettlementConfig struct {
	Backend string
	BaseURL string
	APIKey  string
}

// SheetsConfig contains configuration required to export the registry to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the registry export to Google Sheets is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ExportConfig holds scheduler-related settings.
type ExportConfig struct {
	CronSchedule string
	Timezone     string
}

// NotificationsConfig contains credentials for the Meta WhatsApp Cloud API used to
// announce ledger events.
type NotificationsConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	Recipient     string
}

// Enabled reports whether ledger events should be pushed over WhatsApp.
func (c NotificationsConfig) Enabled() bool {
	return c.AccessToken != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getenvWithDefault("STORE_BACKEND", BackendMemory)),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "landregistry"),
		},
		Settlement: SettlementConfig{
			Backend: strings.ToLower(getenvWithDefault("SETTLEMENT_BACKEND", BackendMemory)),
			BaseURL: os.Getenv("SETTLEMENT_BASE_URL"),
			APIKey:  os.Getenv("SETTLEMENT_API_KEY"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Export: ExportConfig{
			CronSchedule: getenvWithDefault("EXPORT_CRON_SCHEDULE", "0 * * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
		},
		Notifications: NotificationsConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			Recipient:     os.Getenv("WHATSAPP_NOTIFY_TO"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided when STORE_BACKEND=mongodb")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("STORE_BACKEND %q is not supported", c.Store.Backend)
	}

	switch c.Settlement.Backend {
	case BackendMemory:
	case BackendRemote:
		if c.Settlement.BaseURL == "" {
			return errors.New("SETTLEMENT_BASE_URL must be provided when SETTLEMENT_BACKEND=remote")
		}
	default:
		return fmt.Errorf("SETTLEMENT_BACKEND %q is not supported", c.Settlement.Backend)
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Export.CronSchedule == "" {
		return errors.New("EXPORT_CRON_SCHEDULE must be provided")
	}

	if c.Export.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Notifications.Enabled() {
		switch {
		case c.Notifications.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.Notifications.Recipient == "":
			return errors.New("WHATSAPP_NOTIFY_TO must be provided")
		case c.Notifications.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.Notifications.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
