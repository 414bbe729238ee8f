package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/dgallion1/docx2dita/internal/styles"
)

// Settings holds conversion defaults loaded from a YAML file. They apply to
// every conversion unless the request overrides them.
type Settings struct {
	// StyleOverrides forces heading levels per style display name.
	StyleOverrides map[string]int `yaml:"style_overrides"`
	// ExcludedStyles lists heading styles hidden from the generated map.
	ExcludedStyles []string `yaml:"excluded_styles"`
	// Colors replaces the built-in run-color to outputclass mapping.
	Colors *styles.ColorRules `yaml:"colors"`

	// Map metadata defaults.
	Metadata SettingsMetadata `yaml:"metadata"`
}

type SettingsMetadata struct {
	Title          string `yaml:"title"`
	Code           string `yaml:"code"`
	Reference      string `yaml:"reference"`
	RevisionDate   string `yaml:"revision_date"`
	RevisionNumber string `yaml:"revision_number"`
}

// LoadSettings reads a YAML settings file. An empty path returns zero-value
// settings rather than an error so the file stays optional.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	for name, level := range s.StyleOverrides {
		if level < 1 || level > styles.MaxDepth {
			return s, fmt.Errorf("settings %s: override for %q must be 1..%d, got %d", path, name, styles.MaxDepth, level)
		}
	}
	return s, nil
}
