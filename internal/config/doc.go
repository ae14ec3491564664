// Package config provides configuration management for rlmaps-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Platform-specific maps folder detection
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Installs maps to the game mods folder when found,
//	// otherwise ~/rlmaps/maps
//	// Catalog at https://celab.jetfox.ovh/api/v4
//	// Previews cached under the user cache directory
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// DefaultPath points into the user config directory
// (rlmaps-downloader/config.json); binaries use it when no explicit
// path is given.
//
// # Saving Settings
//
//	settings.MapsFolderPath = "/custom/maps"
//	err := settings.Save("/path/to/config.json")
//
// # Configuration Options
//
// Settings includes options for:
//   - Maps install folder
//   - Catalog base URL and request pacing
//   - Preview cache location
//   - Request timeout
//   - Payload poll attempts during install
package config
