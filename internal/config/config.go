package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/five82/presser/internal/order"
)

// StaleSignature configures the replayed-echo check on bulk order saves.
type StaleSignature struct {
	Enabled     bool
	TotalAmount decimal.Decimal
	TotalItems  int
}

// Config captures presser's settings.
type Config struct {
	APIBaseURL       string
	APIToken         string
	LogDir           string
	LogLevel         string
	PollInterval     time.Duration
	ProtectionWindow time.Duration
	SaveDebounce     time.Duration
	StaleSignature   StaleSignature
}

const (
	defaultConfigPath       = "~/.config/presser/config.toml"
	defaultLogDir           = "~/.local/share/presser/logs"
	defaultAPIBaseURL       = "http://127.0.0.1:8080"
	defaultLogLevel         = "info"
	defaultPollInterval     = 30 * time.Second
	defaultProtectionWindow = order.DefaultProtectionWindow
	defaultSaveDebounce     = 300 * time.Millisecond
)

// Default returns the configuration used when no file exists.
func Default() Config {
	sig := order.DefaultStaleSignature()
	return Config{
		APIBaseURL:       defaultAPIBaseURL,
		LogDir:           mustExpand(defaultLogDir),
		LogLevel:         defaultLogLevel,
		PollInterval:     defaultPollInterval,
		ProtectionWindow: defaultProtectionWindow,
		SaveDebounce:     defaultSaveDebounce,
		StaleSignature: StaleSignature{
			Enabled:     sig.Enabled,
			TotalAmount: sig.TotalAmount,
			TotalItems:  sig.TotalItems,
		},
	}
}

// Load locates and parses the presser config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBaseURL         string `toml:"api_base_url"`
		APIToken           string `toml:"api_token"`
		LogDir             string `toml:"log_dir"`
		LogLevel           string `toml:"log_level"`
		PollSeconds        int    `toml:"poll_seconds"`
		ProtectionWindowMS int    `toml:"protection_window_ms"`
		SaveDebounceMS     int    `toml:"save_debounce_ms"`
		StaleSignature     *struct {
			Enabled     *bool    `toml:"enabled"`
			TotalAmount *float64 `toml:"total_amount"`
			TotalItems  *int     `toml:"total_items"`
		} `toml:"stale_signature"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	cfg.APIToken = strings.TrimSpace(raw.APIToken)
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if raw.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second
	}
	if raw.ProtectionWindowMS > 0 {
		cfg.ProtectionWindow = time.Duration(raw.ProtectionWindowMS) * time.Millisecond
	}
	if raw.SaveDebounceMS > 0 {
		cfg.SaveDebounce = time.Duration(raw.SaveDebounceMS) * time.Millisecond
	}
	if sig := raw.StaleSignature; sig != nil {
		if sig.Enabled != nil {
			cfg.StaleSignature.Enabled = *sig.Enabled
		}
		if sig.TotalAmount != nil {
			if *sig.TotalAmount < 0 {
				return Config{}, fmt.Errorf("parse config: stale_signature.total_amount must not be negative")
			}
			cfg.StaleSignature.TotalAmount = decimal.NewFromFloat(*sig.TotalAmount)
		}
		if sig.TotalItems != nil {
			cfg.StaleSignature.TotalItems = *sig.TotalItems
		}
	}

	return cfg, nil
}

// LogPath returns the path to the presser log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/presser.log")
	}
	return filepath.Join(c.LogDir, "presser.log")
}

// OrderOptions projects the store settings into order.Options.
func (c Config) OrderOptions() order.Options {
	sig := order.StaleSignature{
		Enabled:     c.StaleSignature.Enabled,
		TotalAmount: c.StaleSignature.TotalAmount,
		TotalItems:  c.StaleSignature.TotalItems,
	}
	return order.Options{
		ProtectionWindow: c.ProtectionWindow,
		StaleSignature:   &sig,
	}
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
