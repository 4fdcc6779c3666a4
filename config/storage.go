package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings are the user preferences persisted between sessions.
type Settings struct {
	RiskProfile      string   `json:"risk_profile"`
	InvestmentAmount float64  `json:"investment_amount"`
	Sectors          []string `json:"sectors"`
	MaxAssets        int      `json:"max_assets"`
}

// DefaultSettings mirrors the initial state of the configure view.
func DefaultSettings() Settings {
	return Settings{
		RiskProfile:      "medium",
		InvestmentAmount: 10000,
		Sectors:          []string{"DeFi", "Layer 1"},
		MaxAssets:        10,
	}
}

func settingsFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// SaveSettings persists the settings to the config directory.
func SaveSettings(s Settings) error {
	path, err := settingsFile()
	if err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// LoadSettings reads persisted settings, returning the defaults when no
// settings file exists yet.
func LoadSettings() (Settings, error) {
	path, err := settingsFile()
	if err != nil {
		return DefaultSettings(), err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultSettings(), fmt.Errorf("failed to read settings file: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return s, nil
}

// ClearSettings removes the settings file if present.
func ClearSettings() error {
	path, err := settingsFile()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove settings file: %w", err)
	}
	return nil
}
