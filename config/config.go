package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const baseCfgPath = "feedsearch/config.toml"

const (
	DefaultPort    = 3000
	DefaultFeedURL = "https://g1.globo.com/rss/g1/"
	DefaultMax     = 100
	DefaultTimeout = 15 * time.Second
)

type Config struct {
	Port           int      `toml:"port"`
	DefaultFeedURL string   `toml:"default_feed_url"`
	MaxItems       int      `toml:"max_items"`
	FetchTimeout   Duration `toml:"fetch_timeout"`
	UserAgent      string   `toml:"user_agent"`
	RateLimit      float64  `toml:"rate_limit"`   // Requests per second per client IP (0 = unlimited)
	MetricsPort    int      `toml:"metrics_port"` // Prometheus listener port (0 = disabled)
	Log            Log      `toml:"log"`
}

type Log struct {
	Level     string `toml:"level"`      // debug, info, warn or error
	Format    string `toml:"format"`     // text, json or auto (text on a terminal)
	AccessLog bool   `toml:"access_log"` // Per-request log lines
}

// Duration lets TOML carry values like "15s"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Read(path string) (Config, error) {
	conf := Default()
	dat, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	_, err = toml.Decode(string(dat), &conf)
	if err != nil {
		return conf, fmt.Errorf("failed to decode config at %s with %w", path, err)
	}
	return conf, nil
}

func Write(cfgPath string, cfg Config) error {
	blob, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config with %w", err)
	}
	basePath := path.Dir(cfgPath)
	err = os.MkdirAll(basePath, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to create base config directory at '%s' with %w", basePath, err)
	}
	err = os.WriteFile(cfgPath, blob, 0644)
	if err != nil {
		return fmt.Errorf("failed to write into config file at '%s' with %w", cfgPath, err)
	}
	slog.Info("config written", "at", cfgPath)
	return nil
}

func Default() Config {
	return Config{
		Port:           DefaultPort,
		DefaultFeedURL: DefaultFeedURL,
		MaxItems:       DefaultMax,
		FetchTimeout:   Duration{DefaultTimeout},
		Log: Log{
			Level:     "info",
			Format:    "auto",
			AccessLog: true,
		},
	}
}

func DefaultPath() string {
	var xdgHome = os.Getenv("XDG_CONFIG_HOME")
	if xdgHome != "" {
		return path.Join(xdgHome, baseCfgPath)
	}

	var home = os.Getenv("HOME")
	if home != "" {
		return path.Join(home, ".config", baseCfgPath)
	}

	return "config.toml"
}

// LoadDotEnv loads a .env file into the process environment if one exists.
// Variables already set take precedence.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load env file '%s' with %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values from the environment
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT '%s' with %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("FEEDSEARCH_FEED_URL"); v != "" {
		c.DefaultFeedURL = v
	}
	if os.Getenv("DEBUG") != "" {
		c.Log.Level = "debug"
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("metrics_port %d out of range", c.MetricsPort))
	}
	if c.MetricsPort != 0 && c.MetricsPort == c.Port {
		errs = append(errs, errors.New("metrics_port must differ from port"))
	}
	if c.MaxItems <= 0 {
		errs = append(errs, fmt.Errorf("max_items must be positive, got %d", c.MaxItems))
	}
	if c.FetchTimeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit must not be negative, got %v", c.RateLimit))
	}
	if c.DefaultFeedURL == "" {
		errs = append(errs, errors.New("default_feed_url is empty"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps the configured level name, defaulting to info
func (l Log) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
