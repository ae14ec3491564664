package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Settings holds all configuration options.
type Settings struct {
	// Install location
	MapsFolderPath string `json:"maps_folder_path"`

	// Catalog settings
	CatalogBaseURL           string  `json:"catalog_base_url"`
	RequestTimeoutSeconds    int     `json:"request_timeout_seconds"`
	CatalogRequestsPerSecond float64 `json:"catalog_requests_per_second"`

	// Preview cache
	PreviewCachePath string `json:"preview_cache_path"`

	// Install pipeline
	PayloadPollAttempts int `json:"payload_poll_attempts"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	cacheDir, _ := os.UserCacheDir()

	return &Settings{
		MapsFolderPath: defaultMapsFolder(homeDir),

		CatalogBaseURL:           "https://celab.jetfox.ovh/api/v4",
		RequestTimeoutSeconds:    60,
		CatalogRequestsPerSecond: 4,

		PreviewCachePath: filepath.Join(cacheDir, "rlmaps-downloader", "previews"),

		PayloadPollAttempts: 30,
	}
}

// defaultMapsFolder returns the first known game mods folder that
// exists, falling back to a folder under the user's home directory.
func defaultMapsFolder(homeDir string) string {
	if runtime.GOOS == "windows" {
		candidates := []string{
			`C:\Program Files (x86)\Steam\steamapps\common\rocketleague\TAGame\CookedPCConsole\mods`,
			`C:\Program Files\Epic Games\rocketleague\TAGame\CookedPCConsole\mods`,
		}
		for _, dir := range candidates {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				return dir
			}
		}
	}
	return filepath.Join(homeDir, "rlmaps", "maps")
}

// DefaultPath returns the default config file location under the
// user's config directory, or an empty string when that directory
// cannot be determined.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "rlmaps-downloader", "config.json")
}

// Load reads settings from a JSON file. A missing file yields the
// defaults.
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

// Save writes settings to a JSON file.
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

// RequestTimeout converts the configured timeout to a duration.
func (s *Settings) RequestTimeout() time.Duration {
	if s.RequestTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// PollAttempts returns the payload poll attempt count, falling back
// to the default when the configured value is not positive.
func (s *Settings) PollAttempts() int {
	if s.PayloadPollAttempts <= 0 {
		return 30
	}
	return s.PayloadPollAttempts
}
