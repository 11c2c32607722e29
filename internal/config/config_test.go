package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "STORE_BACKEND", "SETTLEMENT_BACKEND", "WHATSAPP_TOKEN", "GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("store backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Settlement.Backend != BackendMemory {
		t.Errorf("settlement backend = %q, want memory", cfg.Settlement.Backend)
	}
	if cfg.Sheets.Enabled() || cfg.Notifications.Enabled() {
		t.Error("optional integrations should be disabled by default")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:     ServerConfig{Port: "8080"},
			Store:      StoreConfig{Backend: BackendMemory},
			Settlement: SettlementConfig{Backend: BackendMemory},
			Export:     ExportConfig{CronSchedule: "0 * * * *", Timezone: "UTC"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Backend = "redis" }, wantErr: "STORE_BACKEND"},
		{name: "mongo without uri", mutate: func(c *Config) { c.Store.Backend = BackendMongoDB; c.MongoDB.DBName = "db" }, wantErr: "MONGODB_URI"},
		{name: "remote without url", mutate: func(c *Config) { c.Settlement.Backend = BackendRemote }, wantErr: "SETTLEMENT_BASE_URL"},
		{name: "half sheets", mutate: func(c *Config) { c.Sheets.SpreadsheetID = "sheet" }, wantErr: "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{name: "notify without recipient", mutate: func(c *Config) {
			c.Notifications = NotificationsConfig{AccessToken: "t", PhoneNumberID: "p", BaseURL: "u", APIVersion: "v"}
		}, wantErr: "WHATSAPP_NOTIFY_TO"},
		{name: "no port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "APP_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
