// Package prefs handles presser user preferences persistence.
// Preferences are stored in ~/.config/presser/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/presser/internal/order"
)

// Prefs holds user preferences for presser.
type Prefs struct {
	Theme       string            `toml:"theme"`
	AddressType order.AddressType `toml:"address_type"`
}

const (
	defaultPrefsPath   = "~/.config/presser/prefs.toml"
	defaultTheme       = "Nightfox"
	defaultAddressType = order.AddressHome
)

// Default returns the preferences used when no file exists.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, AddressType: defaultAddressType}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults if missing.
// Unreadable or malformed files degrade to defaults instead of failing startup.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return Default(), nil
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Default(), nil
	}

	var p Prefs
	if err := toml.Unmarshal(bytes, &p); err != nil {
		return Default(), nil
	}
	return normalize(p), nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(normalize(p))
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func normalize(p Prefs) Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.AddressType = order.AddressType(strings.ToLower(strings.TrimSpace(string(p.AddressType))))
	if !p.AddressType.Valid() {
		p.AddressType = defaultAddressType
	}
	return p
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
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
