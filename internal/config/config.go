// Package config layers defaults, an optional geo-web.yaml file, GEO_WEB_*
// environment variables and command-line flags into one Config.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"digitalgeosciences.com/geo-web/internal/join"
)

// EnvPrefix is prepended to every environment variable, e.g. GEO_WEB_SERVER_ADDR.
const EnvPrefix = "GEO_WEB"

// FileName is the config file looked up in the working directory.
const FileName = "geo-web"

type Server struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

type Content struct {
	Dir      string        `mapstructure:"dir"`
	BaseURL  string        `mapstructure:"base_url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type Join struct {
	Mode     string        `mapstructure:"mode"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type Analytics struct {
	GA4MeasurementID string `mapstructure:"ga_measurement_id"`
	GTMContainerID   string `mapstructure:"gtm_container_id"`
	SegmentWriteKey  string `mapstructure:"segment_write_key"`
	Debug            bool   `mapstructure:"debug"`
}

// Config is the resolved runtime configuration.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Templates string    `mapstructure:"templates"`
	Public    string    `mapstructure:"public"`
	Content   Content   `mapstructure:"content"`
	Dev       bool      `mapstructure:"dev"`
	Join      Join      `mapstructure:"join"`
	SiteURL   string    `mapstructure:"site_url"`
	Analytics Analytics `mapstructure:"analytics"`
}

// New returns a viper instance carrying the defaults and env bindings.
// Command-line flags are applied with v.Set before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("server.addr", "")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("templates", "templates")
	v.SetDefault("public", "public")
	v.SetDefault("content.dir", "content")
	v.SetDefault("content.base_url", "")
	v.SetDefault("content.cache_ttl", 5*time.Minute)
	v.SetDefault("dev", false)
	v.SetDefault("join.mode", string(join.ModeDiscussion))
	v.SetDefault("join.endpoint", "")
	v.SetDefault("join.timeout", 8*time.Second)
	v.SetDefault("site_url", "")
	v.SetDefault("analytics.ga_measurement_id", "")
	v.SetDefault("analytics.gtm_container_id", "")
	v.SetDefault("analytics.segment_write_key", "")
	v.SetDefault("analytics.debug", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and decodes v into a Config. An empty
// file means geo-web.yaml in the working directory, which may be absent.
// Cloud Run's PORT is honoured when no address was configured explicitly.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.Server.Addr == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		cfg.Server.Addr = ":" + port
	}
	cfg.Content.BaseURL = strings.TrimSpace(cfg.Content.BaseURL)
	cfg.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	return cfg, nil
}

// ValidationError lists configuration keys with unusable values.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "config: invalid " + strings.Join(parts, "; ")
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	bad := map[string]string{}
	if strings.TrimSpace(c.Server.Addr) == "" {
		bad["server.addr"] = "required"
	}
	for key, d := range map[string]time.Duration{
		"server.read_header_timeout": c.Server.ReadHeaderTimeout,
		"server.read_timeout":        c.Server.ReadTimeout,
		"server.write_timeout":       c.Server.WriteTimeout,
		"server.idle_timeout":        c.Server.IdleTimeout,
		"server.request_timeout":     c.Server.RequestTimeout,
		"join.timeout":               c.Join.Timeout,
	} {
		if d <= 0 {
			bad[key] = "must be positive"
		}
	}
	if c.Content.CacheTTL < 0 {
		bad["content.cache_ttl"] = "must not be negative"
	}
	if c.Content.BaseURL == "" && strings.TrimSpace(c.Content.Dir) == "" {
		bad["content.dir"] = "required when content.base_url is empty"
	}
	if c.Content.BaseURL != "" && !absoluteHTTP(c.Content.BaseURL) {
		bad["content.base_url"] = "must be an absolute http(s) URL"
	}
	if c.SiteURL != "" && !absoluteHTTP(c.SiteURL) {
		bad["site_url"] = "must be an absolute http(s) URL"
	}
	if _, err := join.ParseMode(c.Join.Mode); err != nil {
		bad["join.mode"] = "must be form or discussion"
	}
	if c.Join.Endpoint != "" && !absoluteHTTP(c.Join.Endpoint) {
		bad["join.endpoint"] = "must be an absolute http(s) URL"
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

// JoinMode returns the effective join mode. Form mode without an endpoint
// degrades to discussion; degraded reports that case so it can be logged.
func (c Config) JoinMode() (mode join.Mode, degraded bool) {
	mode, err := join.ParseMode(c.Join.Mode)
	if err != nil {
		return join.ModeDiscussion, false
	}
	if mode == join.ModeForm && strings.TrimSpace(c.Join.Endpoint) == "" {
		return join.ModeDiscussion, true
	}
	return mode, false
}

func absoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
