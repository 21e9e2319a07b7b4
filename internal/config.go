package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/pinfall/internal/pipeline"
	"github.com/starford/pinfall/internal/share"
	"github.com/starford/pinfall/internal/share/redisstore"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Share store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Site   SiteConfig        `yaml:"site"`
	Share  ShareConfig       `yaml:"share"`
	Redis  RedisConfig       `yaml:"redis"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Share.Validate(); err != nil {
		return err
	}
	switch c.Share.Store {
	case StoreRedis:
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	case StoreSQLite:
		if err := c.SQLite.Validate(); err != nil {
			return err
		}
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SiteConfig describes where event data lives and where the site is written.
type SiteConfig struct {
	// DataDir holds the {slug}/{year} event directories.
	DataDir string `yaml:"data_dir"`
	// DistDir receives the generated site. It is emptied on every build.
	DistDir string `yaml:"dist_dir"`
	// StaticDir is copied verbatim into DistDir when it exists.
	StaticDir string `yaml:"static_dir"`
	// TemplatesDir overrides the built-in page templates file by file.
	TemplatesDir string `yaml:"templates_dir"`
	// HeadersFile is copied to DistDir/_headers when it exists.
	HeadersFile  string   `yaml:"headers_file"`
	URL          string   `yaml:"url"`
	Concurrency  int      `yaml:"concurrency"`
	NumericHints []string `yaml:"numeric_hints"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.DistDir, validation.Required),
		validation.Field(&c.URL, validation.Required, is.URL),
		validation.Field(&c.Concurrency, validation.Min(1), validation.Max(64)),
	)
}

// ShareConfig configures the share-link service.
type ShareConfig struct {
	// BaseURL is the public origin share URLs are built on.
	BaseURL      string        `yaml:"base_url"`
	AllowedHosts []string      `yaml:"allowed_hosts"`
	LinkTTL      time.Duration `yaml:"link_ttl"`
	SeenTTL      time.Duration `yaml:"seen_ttl"`
	// Store selects the backend: "sqlite" or "redis".
	Store string `yaml:"store"`
	// Dedupe enables unique-click tracking.
	Dedupe      bool     `yaml:"dedupe"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Validate validates the share configuration.
func (c *ShareConfig) Validate() error {
	if c.Store == "" {
		c.Store = StoreSQLite
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.AllowedHosts, validation.Required, validation.Each(validation.Required, is.Host)),
		validation.Field(&c.LinkTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.SeenTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.Store, validation.Required, validation.In(StoreSQLite, StoreRedis)),
		validation.Field(&c.CORSOrigins, validation.Each(validation.Required, is.URL)),
	)
}

// RedisConfig holds the Redis connection used by the "redis" share store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Stream receives click events.
	Stream string `yaml:"stream"`
	// StreamMaxLen caps the stream length; 0 keeps every event.
	StreamMaxLen int64 `yaml:"stream_max_len"`
}

// Validate validates the Redis configuration.
func (c *RedisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DB, validation.Min(0)),
		validation.Field(&c.StreamMaxLen, validation.Min(int64(0))),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig guards link administration (revoke, stats).
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): the admin routes are not served.
//   - "token": admin routes require a Bearer token; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Site: SiteConfig{
			DataDir:      "./events",
			DistDir:      "./dist",
			StaticDir:    "./static",
			TemplatesDir: "./templates",
			HeadersFile:  "./_headers",
			URL:          pipeline.DefaultSiteURL,
			Concurrency:  pipeline.DefaultConcurrency,
		},
		Share: ShareConfig{
			BaseURL:      "https://events.gobwlng.uk",
			AllowedHosts: append([]string(nil), share.DefaultAllowedHosts...),
			LinkTTL:      share.DefaultLinkTTL,
			SeenTTL:      share.DefaultSeenTTL,
			Store:        StoreSQLite,
			Dedupe:       true,
			CORSOrigins:  []string{"https://events.gobwlng.uk"},
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Stream: redisstore.DefaultStream,
		},
		SQLite: SQLiteConfig{
			Path: "./pinfall.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
