package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything comanda reads from config.toml.
type Config struct {
	APIBaseURL        string
	RealtimeURL       string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	PageSize          int
	SearchDebounce    time.Duration
	StockDebounce     time.Duration
	StaleTime         time.Duration
	GCTime            time.Duration
	SessionDB         string
	LogFile           string
	LogLevel          string
}

const (
	defaultConfigPath        = "~/.config/comanda/config.toml"
	defaultAPIBaseURL        = "http://127.0.0.1:3000"
	defaultRequestTimeout    = 10 * time.Second
	defaultRequestsPerSecond = 10
	defaultPageSize          = 10
	defaultSearchDebounce    = time.Second
	defaultStockDebounce     = time.Second
	defaultStaleTime         = 30 * time.Second
	defaultGCTime            = 5 * time.Minute
	defaultSessionDB         = "~/.local/share/comanda/session.db"
	defaultLogFile           = "~/.local/share/comanda/comanda.log"
	defaultLogLevel          = "info"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{
		APIBaseURL:        defaultAPIBaseURL,
		RequestTimeout:    defaultRequestTimeout,
		RequestsPerSecond: defaultRequestsPerSecond,
		PageSize:          defaultPageSize,
		SearchDebounce:    defaultSearchDebounce,
		StockDebounce:     defaultStockDebounce,
		StaleTime:         defaultStaleTime,
		GCTime:            defaultGCTime,
		SessionDB:         mustExpand(defaultSessionDB),
		LogFile:           mustExpand(defaultLogFile),
		LogLevel:          defaultLogLevel,
	}
	cfg.RealtimeURL = deriveRealtimeURL(cfg.APIBaseURL)
	return cfg
}

type rawConfig struct {
	APIBaseURL        string  `toml:"api_base_url"`
	RealtimeURL       string  `toml:"realtime_url"`
	RequestTimeout    string  `toml:"request_timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	PageSize          int     `toml:"page_size"`
	SearchDebounce    string  `toml:"search_debounce"`
	StockDebounce     string  `toml:"stock_debounce"`
	StaleTime         string  `toml:"stale_time"`
	GCTime            string  `toml:"gc_time"`
	SessionDB         string  `toml:"session_db"`
	LogFile           string  `toml:"log_file"`
	LogLevel          string  `toml:"log_level"`
}

// Load reads the config at path (or the default location), falling back to
// defaults when the file is missing or a field is empty.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return raw.resolve()
}

func (raw rawConfig) resolve() (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(raw.APIBaseURL); v != "" {
		cfg.APIBaseURL = strings.TrimRight(v, "/")
	}
	cfg.RealtimeURL = strings.TrimSpace(raw.RealtimeURL)
	if cfg.RealtimeURL == "" {
		cfg.RealtimeURL = deriveRealtimeURL(cfg.APIBaseURL)
	}
	if raw.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = raw.RequestsPerSecond
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"request_timeout", raw.RequestTimeout, &cfg.RequestTimeout},
		{"search_debounce", raw.SearchDebounce, &cfg.SearchDebounce},
		{"stock_debounce", raw.StockDebounce, &cfg.StockDebounce},
		{"stale_time", raw.StaleTime, &cfg.StaleTime},
		{"gc_time", raw.GCTime, &cfg.GCTime},
	}
	for _, d := range durations {
		v := strings.TrimSpace(d.raw)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: %s: %w", d.name, err)
		}
		if parsed < 0 {
			return Config{}, fmt.Errorf("parse config: %s must not be negative", d.name)
		}
		*d.dst = parsed
	}

	if v := strings.TrimSpace(raw.SessionDB); v != "" {
		cfg.SessionDB = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	return cfg, nil
}

// deriveRealtimeURL maps http(s)://host/base to ws(s)://host/base/realtime.
func deriveRealtimeURL(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/realtime"
	u.RawQuery = ""
	return u.String()
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
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
