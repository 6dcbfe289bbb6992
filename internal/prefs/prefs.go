// Package prefs persists console preferences: colour theme, the view shown at
// startup and list page size.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/travel-assistant/concierge/internal/config"
)

// Prefs holds user preferences for the console.
type Prefs struct {
	Theme       string `toml:"theme"`
	DefaultView string `toml:"default_view"`
	PageSize    int    `toml:"page_size"`
}

const (
	defaultTheme    = "Nightfox"
	defaultView     = "dashboard"
	defaultPageSize = 50
	maxPageSize     = 500
)

// Defaults returns the preferences used when no file exists.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, DefaultView: defaultView, PageSize: defaultPageSize}
}

// DefaultPath returns $XDG_CONFIG_HOME/concierge/prefs.toml.
func DefaultPath() string {
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, "concierge", "prefs.toml")
}

// Load reads preferences from the given path, falling back to defaults if
// the file is missing or unreadable.
func Load(path string) (Prefs, error) {
	prefs := Defaults()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Defaults(), nil // Graceful degradation
	}

	return prefs.normalized(), nil
}

func (p Prefs) normalized() Prefs {
	d := Defaults()
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = d.Theme
	}
	p.DefaultView = strings.ToLower(strings.TrimSpace(p.DefaultView))
	if p.DefaultView == "" {
		p.DefaultView = d.DefaultView
	}
	if p.PageSize <= 0 {
		p.PageSize = d.PageSize
	}
	p.PageSize = min(p.PageSize, maxPageSize)
	return p
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p.normalized())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return config.ExpandPath(DefaultPath())
	}
	return config.ExpandPath(path)
}
