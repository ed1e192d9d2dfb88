package internal

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/language"

	"github.com/starford/aquatrack/internal/loader"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Source SourceConfig      `yaml:"source"`
	Cache  CacheConfig       `yaml:"cache"`
	Render RenderConfig      `yaml:"render"`
	Watch  WatchConfig       `yaml:"watch"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Render.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SourceConfig controls where documents are read from.
type SourceConfig struct {
	// Dir is the document directory that relative locators resolve against.
	Dir string `yaml:"dir"`
	// DefaultPath is tried when neither a URL nor a cached document loads.
	DefaultPath string `yaml:"default_path"`
	// HTTPTimeout bounds remote fetches. Zero means no timeout.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.DefaultPath, validation.Required),
		validation.Field(&c.HTTPTimeout, validation.Min(time.Duration(0))),
	)
}

// CacheConfig holds the SQLite cache location.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// RenderConfig controls page formatting.
type RenderConfig struct {
	Locale       string `yaml:"locale"`
	Timezone     string `yaml:"timezone"`
	DateLayout   string `yaml:"date_layout"`
	TimeLayout   string `yaml:"time_layout"`
	LazyImages   bool   `yaml:"lazy_images"`
	PreviewCount int    `yaml:"preview_count"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Locale, validation.Required, validation.By(validLocale)),
		validation.Field(&c.Timezone, validation.By(validTimezone)),
		validation.Field(&c.PreviewCount, validation.Min(0)),
	)
}

// Tag returns the parsed locale.
func (c *RenderConfig) Tag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

// Location returns the configured time zone, or Local when unset.
func (c *RenderConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func validLocale(v any) error {
	s, _ := v.(string)
	if _, err := language.Parse(s); err != nil {
		return fmt.Errorf("unknown locale %q", s)
	}
	return nil
}

func validTimezone(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if _, err := time.LoadLocation(s); err != nil {
		return fmt.Errorf("unknown time zone %q", s)
	}
	return nil
}

// WatchConfig controls live reload.
type WatchConfig struct {
	Enabled        bool          `yaml:"enabled"`
	ReloadThrottle time.Duration `yaml:"reload_throttle"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ReloadThrottle, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): the page and API are open, suitable for local use.
//   - "token": /api requires a Bearer token; Token must be non-empty.
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
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Source: SourceConfig{
			Dir:         ".",
			DefaultPath: loader.DefaultPath,
			HTTPTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Path: "./aquatrack.db",
		},
		Render: RenderConfig{
			Locale:       "en-US",
			LazyImages:   true,
			PreviewCount: 3,
		},
		Watch: WatchConfig{
			Enabled:        true,
			ReloadThrottle: 2 * time.Second,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
