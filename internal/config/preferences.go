package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PreferencesFile is the file name of user preferences inside the data directory
const PreferencesFile = "preferences.yaml"

// Theme names
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Preferences holds user choices made in the TUI.
type Preferences struct {
	Theme    string `yaml:"theme,omitempty"`
	PageSize int    `yaml:"page_size,omitempty"`
}

// IsDark reports whether the dark theme is selected. Dark is the default.
func (p *Preferences) IsDark() bool {
	return p.Theme != ThemeLight
}

// LoadPreferences reads preferences from dir. Returns empty preferences if not found.
func LoadPreferences(dir string) (*Preferences, error) {
	data, err := os.ReadFile(filepath.Join(dir, PreferencesFile))
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Preferences{}, nil
		}
		return nil, fmt.Errorf("reading preferences: %w", err)
	}

	var prefs Preferences
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("parsing preferences: %w", err)
	}
	return &prefs, nil
}

// SavePreferences writes preferences to dir.
func SavePreferences(dir string, prefs *Preferences) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}

	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshaling preferences: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, PreferencesFile), data, 0644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}
