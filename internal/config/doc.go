// Package config provides configuration management for emoji-kitchen-dl.
//
// Settings are resolved in layers, later ones winning:
//
//  1. DefaultSettings()
//  2. a JSON file (Load)
//  3. EMOJI_KITCHEN_* environment variables (ApplyEnv), optionally read from .env
//  4. command line flags, applied by the entry points
//
// Validate must be called after the last layer is applied.
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//	if err := settings.ApplyEnv(); err != nil {
//	    ...
//	}
//	if err := settings.Validate(); err != nil {
//	    ...
//	}
//
// # Conversion
//
// ToClientConfig and ToDownloadOptions translate the flat settings into the
// structures the fetch client and the orchestrator take.
package config
