// Package config loads loftloot settings from defaults, an optional YAML
// file, a .env file and LOFTLOOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/loftloot/loftloot/internal/catalog"
	"github.com/loftloot/loftloot/internal/notify"
)

// EnvPrefix prefixes every environment override, e.g. LOFTLOOT_SERVER_PORT.
const EnvPrefix = "LOFTLOOT"

// Config is a nil-safe read view over a viper instance.
type Config struct {
	v *viper.Viper
}

// New wraps v. A nil v yields zero values for every key.
func New(v *viper.Viper) *Config {
	return &Config{v: v}
}

func (c *Config) GetString(key string) string {
	if c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

func (c *Config) GetInt(key string) int {
	if c.v == nil {
		return 0
	}
	return c.v.GetInt(key)
}

func (c *Config) GetBool(key string) bool {
	if c.v == nil {
		return false
	}
	return c.v.GetBool(key)
}

func (c *Config) GetDuration(key string) time.Duration {
	if c.v == nil {
		return 0
	}
	return c.v.GetDuration(key)
}

func (c *Config) GetStringSlice(key string) []string {
	if c.v == nil {
		return nil
	}
	return c.v.GetStringSlice(key)
}

func (c *Config) IsSet(key string) bool {
	if c.v == nil {
		return false
	}
	return c.v.IsSet(key)
}

// Sub returns the subtree at key. A missing subtree yields an empty,
// usable Config rather than nil.
func (c *Config) Sub(key string) *Config {
	if c.v == nil {
		return New(nil)
	}
	return New(c.v.Sub(key))
}

// Unmarshal decodes the whole tree into target using mapstructure tags.
func (c *Config) Unmarshal(target any) error {
	if c.v == nil {
		return nil
	}
	return c.v.Unmarshal(target)
}

// Settings is the typed form of the configuration tree.
type Settings struct {
	Server ServerSettings    `mapstructure:"server"`
	Log    LogSettings       `mapstructure:"log"`
	Feed   FeedSettings      `mapstructure:"feed"`
	Store  StoreSettings     `mapstructure:"store"`
	Engine catalog.Options   `mapstructure:"engine"`
	MQTT   notify.MQTTConfig `mapstructure:"mqtt"`
}

// ServerSettings configures the HTTP listener. AllowedOrigins lists host
// patterns allowed to open live-suggestion sockets from a browser.
// AdminSecret signs admin tokens; when empty, reload is unauthenticated.
type ServerSettings struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RateLimit      RateSettings  `mapstructure:"rate_limit"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace"`
	APIDocs        bool          `mapstructure:"api_docs"`
	AdminSecret    string        `mapstructure:"admin_secret"`
	MaxConnections int           `mapstructure:"max_connections"`
}

// Addr joins host and port.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RateSettings configures per-client request limiting. RPS <= 0 disables it.
type RateSettings struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type LogSettings struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Feed source kinds.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourceSQLite   = "sqlite"
)

type FeedSettings struct {
	Source          string        `mapstructure:"source"`
	Path            string        `mapstructure:"path"`
	URL             string        `mapstructure:"url"`
	Format          string        `mapstructure:"format"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Retries         int           `mapstructure:"retries"`
	Backoff         time.Duration `mapstructure:"backoff"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type StoreSettings struct {
	Path string `mapstructure:"path"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.rate_limit.rps", 20)
	v.SetDefault("server.rate_limit.burst", 40)
	v.SetDefault("server.shutdown_grace", 10*time.Second)
	v.SetDefault("server.api_docs", true)
	v.SetDefault("server.admin_secret", "")
	v.SetDefault("server.max_connections", 512)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("feed.source", SourceEmbedded)
	v.SetDefault("feed.path", "")
	v.SetDefault("feed.url", "")
	v.SetDefault("feed.format", "")
	v.SetDefault("feed.timeout", 15*time.Second)
	v.SetDefault("feed.retries", 3)
	v.SetDefault("feed.backoff", 250*time.Millisecond)
	v.SetDefault("feed.refresh_interval", 0)

	v.SetDefault("store.path", "loftloot.db")

	v.SetDefault("engine.suggest_product_limit", catalog.DefaultSuggestProductLimit)
	v.SetDefault("engine.suggest_filter_limit", catalog.DefaultSuggestFilterLimit)
	v.SetDefault("engine.suggest_cache_size", catalog.DefaultSuggestCacheSize)
	v.SetDefault("engine.related_limit", catalog.DefaultRelatedLimit)

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.topic", "loftloot")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.connect_timeout", 10*time.Second)
}

// Load builds the viper tree: defaults, then the YAML file at path (when
// non-empty), then a .env file in the working directory, then environment
// variables.
func Load(path string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}

// Decode loads the file at path and decodes it into Settings.
func Decode(path string) (*Settings, error) {
	v, err := Load(path)
	if err != nil {
		return nil, err
	}
	var s Settings
	if err := New(v).Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks cross-field constraints.
func (s *Settings) Validate() error {
	switch s.Feed.Source {
	case SourceEmbedded:
	case SourceFile:
		if s.Feed.Path == "" {
			return errors.New("feed.path is required for the file source")
		}
	case SourceHTTP:
		if s.Feed.URL == "" {
			return errors.New("feed.url is required for the http source")
		}
	case SourceSQLite:
		if s.Store.Path == "" {
			return errors.New("store.path is required for the sqlite source")
		}
	default:
		return fmt.Errorf("unknown feed.source %q", s.Feed.Source)
	}
	if s.Server.MaxConnections < 0 {
		return fmt.Errorf("server.max_connections %d must not be negative", s.Server.MaxConnections)
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", s.Server.Port)
	}
	return nil
}
