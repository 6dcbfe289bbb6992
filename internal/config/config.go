package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/travel-assistant/concierge/internal/adminapi"
)

// Config holds everything concierge needs to reach the admin API and run the
// console.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	PollInterval      time.Duration
	RequestsPerSecond float64
	Burst             int
	SessionPath       string
	PrefsPath         string
	LogPath           string
	LogLevel          string
	LogFormat         string
	Endpoints         adminapi.Endpoints
}

const (
	appName = "concierge"

	defaultBaseURL      = "http://127.0.0.1:8000"
	defaultTimeout      = 10 * time.Second
	defaultPollInterval = 30 * time.Second
	minPollInterval     = time.Second
	defaultRPS          = 10
	defaultBurst        = 5
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
)

// fileConfig mirrors the TOML layout.
type fileConfig struct {
	BaseURL           string             `toml:"base_url"`
	Timeout           string             `toml:"timeout"`
	PollInterval      string             `toml:"poll_interval"`
	RequestsPerSecond float64            `toml:"requests_per_second"`
	Burst             int                `toml:"burst"`
	SessionPath       string             `toml:"session_path"`
	PrefsPath         string             `toml:"prefs_path"`
	LogPath           string             `toml:"log_path"`
	LogLevel          string             `toml:"log_level"`
	LogFormat         string             `toml:"log_format"`
	Endpoints         adminapi.Endpoints `toml:"endpoints"`
}

// envOverrides are applied on top of the file.
type envOverrides struct {
	BaseURL      string `env:"CONCIERGE_BASE_URL"`
	LogLevel     string `env:"CONCIERGE_LOG_LEVEL"`
	LogFormat    string `env:"CONCIERGE_LOG_FORMAT"`
	PollInterval string `env:"CONCIERGE_POLL"`
}

// DefaultPath returns $XDG_CONFIG_HOME/concierge/config.toml.
func DefaultPath() string {
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

func stateDir() string {
	xdg.Reload()
	return filepath.Join(xdg.StateHome, appName)
}

// Default returns the configuration used when no file exists.
func Default() Config {
	xdg.Reload()
	return Config{
		BaseURL:           defaultBaseURL,
		Timeout:           defaultTimeout,
		PollInterval:      defaultPollInterval,
		RequestsPerSecond: defaultRPS,
		Burst:             defaultBurst,
		SessionPath:       filepath.Join(stateDir(), "session.toml"),
		PrefsPath:         filepath.Join(xdg.ConfigHome, appName, "prefs.toml"),
		LogPath:           filepath.Join(stateDir(), appName+".log"),
		LogLevel:          defaultLogLevel,
		LogFormat:         defaultLogFormat,
		Endpoints:         adminapi.DefaultEndpoints(),
	}
}

// Load parses the config at path (DefaultPath when empty), falling back to
// defaults when the file is missing, then applies CONCIERGE_* environment
// overrides.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	resolved, err := ExpandPath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer func() { _ = file.Close() }()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var raw fileConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if err := cfg.merge(raw); err != nil {
			return Config{}, err
		}
	}

	var env envOverrides
	if err := cleanenv.ReadEnv(&env); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.merge(fileConfig{
		BaseURL:      env.BaseURL,
		LogLevel:     env.LogLevel,
		LogFormat:    env.LogFormat,
		PollInterval: env.PollInterval,
	}); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// merge copies every non-empty value of raw into c.
func (c *Config) merge(raw fileConfig) error {
	setString(&c.BaseURL, raw.BaseURL)
	setString(&c.LogLevel, strings.ToLower(raw.LogLevel))
	setString(&c.LogFormat, strings.ToLower(raw.LogFormat))

	for _, p := range []struct {
		dst *string
		src string
	}{
		{&c.SessionPath, raw.SessionPath},
		{&c.PrefsPath, raw.PrefsPath},
		{&c.LogPath, raw.LogPath},
	} {
		if strings.TrimSpace(p.src) == "" {
			continue
		}
		expanded, err := ExpandPath(p.src)
		if err != nil {
			return err
		}
		*p.dst = expanded
	}

	if err := setDuration(&c.Timeout, raw.Timeout, "timeout"); err != nil {
		return err
	}
	if err := setDuration(&c.PollInterval, raw.PollInterval, "poll_interval"); err != nil {
		return err
	}
	if raw.RequestsPerSecond > 0 {
		c.RequestsPerSecond = raw.RequestsPerSecond
	}
	if raw.Burst > 0 {
		c.Burst = raw.Burst
	}
	c.Endpoints = mergeEndpoints(c.Endpoints, raw.Endpoints)
	return nil
}

func setString(dst *string, src string) {
	if v := strings.TrimSpace(src); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, src, name string) error {
	v := strings.TrimSpace(src)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", name, err)
	}
	*dst = d
	return nil
}

func mergeEndpoints(base, over adminapi.Endpoints) adminapi.Endpoints {
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&base.Login, over.Login},
		{&base.Users, over.Users},
		{&base.UserToggle, over.UserToggle},
		{&base.UserInfo, over.UserInfo},
		{&base.Interests, over.Interests},
		{&base.Events, over.Events},
		{&base.EventSummary, over.EventSummary},
		{&base.Plans, over.Plans},
		{&base.Terms, over.Terms},
		{&base.UserGrowth, over.UserGrowth},
		{&base.Revenue, over.Revenue},
		{&base.Profile, over.Profile},
	} {
		setString(f.dst, f.src)
	}
	return base
}

// Validate rejects settings the console cannot run with.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q: want text or json", c.LogFormat)
	}
	if c.PollInterval < minPollInterval {
		return fmt.Errorf("poll_interval %s: must be at least %s", c.PollInterval, minPollInterval)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout %s: must be positive", c.Timeout)
	}
	return nil
}

// ClientOptions returns the adminapi options described by c.
func (c Config) ClientOptions() adminapi.Options {
	return adminapi.Options{
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		Endpoints:         c.Endpoints,
	}
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
