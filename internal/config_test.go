package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenMode(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}

	cfg = AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}

	cfg = AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Share.Store != StoreSQLite {
		t.Errorf("store = %q", cfg.Share.Store)
	}
	if cfg.Share.LinkTTL != 90*24*time.Hour {
		t.Errorf("link ttl = %s", cfg.Share.LinkTTL)
	}
	if cfg.Auth.AuthEnabled() {
		t.Error("auth should default to disabled")
	}
	if len(cfg.Share.CORSOrigins) == 0 {
		t.Error("CORS origins should default to the site origin, not every origin")
	}
}

func TestShareConfig_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty hosts", func(c *Config) { c.Share.AllowedHosts = nil }},
		{"bad host", func(c *Config) { c.Share.AllowedHosts = []string{"not a host"} }},
		{"bad base url", func(c *Config) { c.Share.BaseURL = "not a url" }},
		{"unknown store", func(c *Config) { c.Share.Store = "memcached" }},
		{"zero seen ttl", func(c *Config) { c.Share.SeenTTL = 0 }},
		{"redis without addr", func(c *Config) {
			c.Share.Store = StoreRedis
			c.Redis.Addr = ""
		}},
		{"sqlite without path", func(c *Config) { c.SQLite.Path = "" }},
		{"bad cors origin", func(c *Config) { c.Share.CORSOrigins = []string{"not a url"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestShareConfig_EmptyStoreDefaultsSQLite(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Share.Store = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Share.Store != StoreSQLite {
		t.Errorf("store = %q", cfg.Share.Store)
	}
}

func TestSiteConfig_Validation(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Site.Concurrency = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero concurrency means default: %v", err)
	}

	cfg.Site.URL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing site url should fail")
	}
}

func TestApplicationConfig_LogFormat(t *testing.T) {
	cfg := ApplicationConfig{HTTP: HTTPConfig{Port: 8080}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.LogFormat != LogFormatJSON {
		t.Errorf("format = %q", cfg.LogFormat)
	}
	cfg.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown format should fail")
	}
}

func TestNewApplication_RequiresConfig(t *testing.T) {
	if _, err := newApplication(nil); err == nil {
		t.Fatal("expected error without config")
	}
	app, err := newApplication([]Option{WithConfig(NewDefaultConfig()), WithSiteURL("https://x.example")})
	if err != nil {
		t.Fatal(err)
	}
	if app.siteURL != "https://x.example" {
		t.Errorf("siteURL = %q", app.siteURL)
	}
}
