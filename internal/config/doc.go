// Package config loads presser's TOML configuration.
//
// # Configuration Discovery
//
// Load resolves the file in this order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/presser/config.toml
//  3. If the file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty, use defaults
//
// # TOML Format
//
//	api_base_url = "https://api.presser.example"
//	api_token = "..."
//	log_dir = "~/.local/share/presser/logs"
//	log_level = "debug"
//	poll_seconds = 30
//	protection_window_ms = 2000
//	save_debounce_ms = 300
//
//	[stale_signature]
//	enabled = true
//	total_amount = 280
//	total_items = 4
//
// Every field is optional. Tilde expansion is performed for log_dir.
//
// # Order store settings
//
// protection_window_ms and [stale_signature] feed order.Options through
// Config.OrderOptions. The stale signature guards against a replayed bulk
// save seen in production; it stays on unless explicitly disabled.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and TOML parse errors (prefixed "parse config").
package config
