package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Settings configures the translate CLI. Values come from the YAML file and
// are overridden by LINGOBRIDGE_* environment variables, then by flags.
type Settings struct {
	// APIURL is the gateway base URL including the /api prefix.
	APIURL     string `yaml:"api_url"     env:"LINGOBRIDGE_API_URL"`
	SourceLang string `yaml:"source_lang" env:"LINGOBRIDGE_SOURCE_LANG"`
	TargetLang string `yaml:"target_lang" env:"LINGOBRIDGE_TARGET_LANG"`
	// HistoryPath stores recent languages between sessions.
	HistoryPath string `yaml:"history_path" env:"LINGOBRIDGE_HISTORY_PATH"`
	// PlayerCommand plays an audio file; the path is appended as the last argument.
	PlayerCommand []string `yaml:"player_command,omitempty"`
	// RecognizerCommand records one utterance and prints its transcript. The
	// locale tag replaces "{locale}" in an argument, or is appended last.
	RecognizerCommand []string `yaml:"recognizer_command,omitempty"`
}

// DefaultSettings returns the built-in CLI settings.
func DefaultSettings() Settings {
	return Settings{
		APIURL:        "http://localhost:5002/api",
		SourceLang:    "en",
		TargetLang:    "hi",
		HistoryPath:   filepath.Join(configDir(), "state.json"),
		PlayerCommand: []string{"mpg123", "-q"},
	}
}

// DefaultSettingsPath is where LoadSettings looks when no path is given.
func DefaultSettingsPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// LoadSettings reads settings from path on top of the defaults. A missing
// file is not an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return s, fmt.Errorf("failed to read settings: %w", err)
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("failed to parse environment: %w", err)
	}
	return s, nil
}

// SaveSettings writes s to path, creating parent directories.
func SaveSettings(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "lingobridge")
}
