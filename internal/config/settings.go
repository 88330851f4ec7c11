package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath    string `json:"downloads_path"`
	MinFreeMegabytes int64  `json:"min_free_megabytes"`

	// Retention settings
	RetentionDays     int      `json:"retention_days"`
	CleanupPatterns   []string `json:"cleanup_patterns"`
	ParallelCleanup   bool     `json:"parallel_cleanup"`
	MaxCleanupWorkers int      `json:"max_cleanup_workers"`
	CleanupDryRun     bool     `json:"cleanup_dry_run"`

	// Daemon settings
	SweepSchedule string `json:"sweep_schedule"`
	MetricsAddr   string `json:"metrics_addr"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		DownloadsPath:    filepath.Join(homeDir, "Downloads", "mediakeep"),
		MinFreeMegabytes: 512,

		RetentionDays:     30,
		CleanupPatterns:   []string{"*.mp3", "*.mp4", "*.m4a"},
		ParallelCleanup:   false,
		MaxCleanupWorkers: 4,
		CleanupDryRun:     false,

		SweepSchedule: "@daily",
		MetricsAddr:   "",
	}
}

// Load reads settings from a JSON file.
//
// A missing file is not an error: defaults are returned so a fresh
// install works without any configuration.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file, creating parent directories as
// needed.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
