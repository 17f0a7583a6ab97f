// Package config loads comanda's TOML configuration.
//
// Load reads ~/.config/comanda/config.toml unless a path is given. A missing
// file is not an error: every field has a default, and empty values in the
// file fall back to those defaults too.
//
// Example:
//
//	api_base_url = "https://comedor.example.com/api"
//	realtime_url = "wss://comedor.example.com/api/realtime"
//	request_timeout = "10s"
//	requests_per_second = 10
//	page_size = 10
//	search_debounce = "1s"
//	stock_debounce = "1s"
//	stale_time = "30s"
//	gc_time = "5m"
//	session_db = "~/.local/share/comanda/session.db"
//	log_file = "~/.local/share/comanda/comanda.log"
//	log_level = "info"
//
// Durations are Go duration strings. realtime_url defaults to the API base URL
// with a ws/wss scheme and a /realtime suffix. Paths accept a leading ~.
package config
