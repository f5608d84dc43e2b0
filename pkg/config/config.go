// Package config loads the sankey TOML configuration file.
//
// The file has three tables, each optional:
//
//	[layout]
//	width = 960
//	height = 500
//	node_width = 10
//	node_padding = 10
//	iterations = 32
//	curvature = 0.5
//
//	[cache]
//	backend = "file"       # file | redis | none
//	dir = ""               # default: user cache dir
//	redis_url = "redis://localhost:6379/0"
//	ttl = "168h"
//	prefix = ""            # key prefix, e.g. "staging:" on a shared redis
//
//	[server]
//	addr = ":8080"
//	max_body_bytes = 4194304
//
// Keys missing from the file keep their [Default] value. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/sankey/pkg/cache"
	errs "github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/pipeline"
)

// Config is the top-level configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds default layout options.
type LayoutConfig struct {
	Width       float64 `toml:"width"`
	Height      float64 `toml:"height"`
	NodeWidth   float64 `toml:"node_width"`
	NodePadding float64 `toml:"node_padding"`
	Iterations  int     `toml:"iterations"`
	Curvature   float64 `toml:"curvature"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
	Prefix   string   `toml:"prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

const (
	// DefaultAddr is the default listen address of the HTTP API.
	DefaultAddr = ":8080"

	// DefaultMaxBodyBytes caps request bodies of the HTTP API.
	DefaultMaxBodyBytes = 4 << 20

	// DefaultRedisURL is used when the redis backend has no explicit URL.
	DefaultRedisURL = "redis://localhost:6379/0"
)

// Default returns the built-in configuration.
func Default() *Config {
	opts := pipeline.DefaultOptions()
	return &Config{
		Layout: LayoutConfig{
			Width:       opts.Width,
			Height:      opts.Height,
			NodeWidth:   opts.NodeWidth,
			NodePadding: opts.NodePadding,
			Iterations:  opts.Iterations,
			Curvature:   opts.Curvature,
		},
		Cache: CacheConfig{
			Backend:  cache.BackendFile,
			RedisURL: DefaultRedisURL,
			TTL:      Duration{cache.TTLLayout},
		},
		Server: ServerConfig{
			Addr:         DefaultAddr,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
	}
}

// DefaultPath returns the per-user config file location, usually
// ~/.config/sankey/config.toml on Linux. It returns "" when the user config
// directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sankey", "config.toml")
}

// Load reads and validates the file at path on top of [Default].
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it is set. With an empty path it loads
// [DefaultPath] if that file exists and returns [Default] otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	def := DefaultPath()
	if def == "" {
		return Default(), nil
	}
	if _, err := os.Stat(def); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return Load(def)
}

// Parse decodes TOML data on top of [Default] and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and returns a coded error for the first
// problem found.
func (c *Config) Validate() error {
	opts := c.Layout.Options()
	if err := opts.Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendNone, "":
	case cache.BackendRedis:
		if err := errs.ValidateRedisURL(c.Cache.RedisURL); err != nil {
			return err
		}
	default:
		return errs.New(errs.ErrCodeInvalidOption, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidOption, "cache ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Server.Addr == "" {
		return errs.New(errs.ErrCodeInvalidOption, "server addr cannot be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errs.New(errs.ErrCodeInvalidOption, "server max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	return nil
}

// Options returns pipeline options seeded from the layout table.
func (l LayoutConfig) Options() pipeline.Options {
	return pipeline.Options{
		Width:       l.Width,
		Height:      l.Height,
		NodeWidth:   l.NodeWidth,
		NodePadding: l.NodePadding,
		Iterations:  l.Iterations,
		Curvature:   l.Curvature,
	}
}

// CacheOptions converts the cache table for [cache.Open].
func (c CacheConfig) CacheOptions() cache.Options {
	return cache.Options{
		Backend:  c.Backend,
		Dir:      c.Dir,
		RedisURL: c.RedisURL,
	}
}

// Open opens the configured cache backend.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	return cache.Open(ctx, c.CacheOptions())
}

// Keyer returns the layout keyer, scoped to Prefix when one is set.
func (c CacheConfig) Keyer() cache.Keyer {
	if c.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Prefix)
}
