package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("APIBaseURL = %q, want %q", cfg.APIBaseURL, defaultAPIBaseURL)
	}
	if cfg.RealtimeURL != "ws://127.0.0.1:3000/realtime" {
		t.Fatalf("RealtimeURL = %q", cfg.RealtimeURL)
	}
	if cfg.RequestTimeout != defaultRequestTimeout || cfg.StaleTime != defaultStaleTime {
		t.Fatalf("durations = %v/%v, want defaults", cfg.RequestTimeout, cfg.StaleTime)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("PageSize = %d, want 10", cfg.PageSize)
	}

	wantDB, err := expandPath(defaultSessionDB)
	if err != nil {
		t.Fatalf("expandPath(defaultSessionDB) returned error: %v", err)
	}
	if cfg.SessionDB != wantDB {
		t.Fatalf("SessionDB = %q, want %q", cfg.SessionDB, wantDB)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_base_url = "  https://comedor.example.com/api/  "
request_timeout = " 3s "
requests_per_second = 2.5
page_size = 25
search_debounce = "250ms"
stock_debounce = "2s"
stale_time = "1m"
gc_time = "10m"
session_db = "  ~/.comanda/session.db  "
log_level = "DEBUG"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "https://comedor.example.com/api" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.RealtimeURL != "wss://comedor.example.com/api/realtime" {
		t.Fatalf("RealtimeURL = %q", cfg.RealtimeURL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("RequestTimeout = %v, want 3s", cfg.RequestTimeout)
	}
	if cfg.RequestsPerSecond != 2.5 || cfg.PageSize != 25 {
		t.Fatalf("RequestsPerSecond/PageSize = %v/%d", cfg.RequestsPerSecond, cfg.PageSize)
	}
	if cfg.SearchDebounce != 250*time.Millisecond || cfg.StockDebounce != 2*time.Second {
		t.Fatalf("debounces = %v/%v", cfg.SearchDebounce, cfg.StockDebounce)
	}
	if cfg.StaleTime != time.Minute || cfg.GCTime != 10*time.Minute {
		t.Fatalf("cache times = %v/%v", cfg.StaleTime, cfg.GCTime)
	}
	if !strings.HasPrefix(cfg.SessionDB, home) {
		t.Fatalf("SessionDB = %q, want it under HOME %q", cfg.SessionDB, home)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_ExplicitRealtimeURLWins(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_base_url = "http://10.0.0.5:8080"
realtime_url = "ws://10.0.0.5:9090/events"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RealtimeURL != "ws://10.0.0.5:9090/events" {
		t.Fatalf("RealtimeURL = %q", cfg.RealtimeURL)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_base_url = "   "
stale_time = ""
page_size = 0
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("APIBaseURL = %q, want %q", cfg.APIBaseURL, defaultAPIBaseURL)
	}
	if cfg.StaleTime != defaultStaleTime {
		t.Fatalf("StaleTime = %v, want %v", cfg.StaleTime, defaultStaleTime)
	}
	if cfg.PageSize != defaultPageSize {
		t.Fatalf("PageSize = %d, want %d", cfg.PageSize, defaultPageSize)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_base_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_InvalidDurationFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`stock_debounce = "soon"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "stock_debounce") {
		t.Fatalf("Load error = %v, want it to name stock_debounce", err)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestDeriveRealtimeURL(t *testing.T) {
	tests := map[string]string{
		"http://127.0.0.1:3000":        "ws://127.0.0.1:3000/realtime",
		"https://comedor.example/api/": "wss://comedor.example/api/realtime",
		"not a url":                    "",
	}
	for in, want := range tests {
		if got := deriveRealtimeURL(in); got != want {
			t.Fatalf("deriveRealtimeURL(%q) = %q, want %q", in, got, want)
		}
	}
}
