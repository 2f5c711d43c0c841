package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/handiism/emoji-kitchen-dl/internal/download"
	fetch "github.com/handiism/emoji-kitchen-dl/internal/http"
	"github.com/handiism/emoji-kitchen-dl/internal/model"
)

var validate = validator.New()

// Settings holds all configuration options.
type Settings struct {
	// Output settings
	OutputDir      string `json:"output_dir" env:"EMOJI_KITCHEN_OUTPUT_DIR" validate:"required"`
	LogDir         string `json:"log_dir" env:"EMOJI_KITCHEN_LOG_DIR" validate:"required"`
	Size           int    `json:"size" env:"EMOJI_KITCHEN_SIZE" validate:"min=1,max=4096"`
	FilenameFormat string `json:"filename_format" env:"EMOJI_KITCHEN_FILENAME_FORMAT" validate:"oneof=emoji codepoint auto"`
	SkipExisting   bool   `json:"skip_existing" env:"EMOJI_KITCHEN_SKIP_EXISTING"`
	Normalize      bool   `json:"normalize" env:"EMOJI_KITCHEN_NORMALIZE"`

	// Fetch settings
	BaseURL        string  `json:"base_url" env:"EMOJI_KITCHEN_BASE_URL" validate:"required,url"`
	UserAgent      string  `json:"user_agent" env:"EMOJI_KITCHEN_USER_AGENT"`
	MaxConcurrent  int     `json:"max_concurrent" env:"EMOJI_KITCHEN_MAX_CONCURRENT" validate:"min=1"`
	DelayMs        int     `json:"delay_ms" env:"EMOJI_KITCHEN_DELAY_MS" validate:"min=0"`
	TimeoutSeconds float64 `json:"timeout_seconds" env:"EMOJI_KITCHEN_TIMEOUT_SECONDS" validate:"gt=0"`
	MaxRetries     int     `json:"max_retries" env:"EMOJI_KITCHEN_MAX_RETRIES" validate:"min=0,max=20"`
	RetryCooldown  float64 `json:"retry_cooldown" env:"EMOJI_KITCHEN_RETRY_COOLDOWN" validate:"min=0"`
	RetryExponent  float64 `json:"retry_exponent" env:"EMOJI_KITCHEN_RETRY_EXPONENT" validate:"min=1"`
	VerifyContent  bool    `json:"verify_content" env:"EMOJI_KITCHEN_VERIFY_CONTENT"`

	// Batch settings
	WindowSize       int     `json:"window_size" env:"EMOJI_KITCHEN_WINDOW_SIZE" validate:"min=1"`
	SuccessThreshold float64 `json:"success_threshold" env:"EMOJI_KITCHEN_SUCCESS_THRESHOLD" validate:"min=0,max=100"`

	// Diagnostics
	LogLevel      string `json:"log_level" env:"EMOJI_KITCHEN_LOG_LEVEL" validate:"oneof=debug info warn error"`
	MaxDebugLogMB int    `json:"max_debug_log_mb" env:"EMOJI_KITCHEN_MAX_DEBUG_LOG_MB" validate:"min=1"`
	MetricsAddr   string `json:"metrics_addr" env:"EMOJI_KITCHEN_METRICS_ADDR" validate:"omitempty,hostname_port"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		OutputDir:      "downloads",
		LogDir:         "logs",
		Size:           512,
		FilenameFormat: string(model.FormatAuto),
		SkipExisting:   true,

		BaseURL:        fetch.DefaultBaseURL,
		UserAgent:      "emoji-kitchen-dl",
		MaxConcurrent:  50,
		DelayMs:        100,
		TimeoutSeconds: 15,
		MaxRetries:     3,
		RetryCooldown:  0.2,
		RetryExponent:  4.0,

		WindowSize:       500,
		SuccessThreshold: 75,

		LogLevel:      "info",
		MaxDebugLogMB: 10,
	}
}

// Load reads settings from a JSON file. A missing file yields the defaults.
// Fields absent from the file keep their default values.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("%w: %v", model.ErrConfig, err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", model.ErrConfig, path, err)
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

// ApplyEnv overrides fields from EMOJI_KITCHEN_* environment variables.
// Unset variables leave the current values alone.
func (s *Settings) ApplyEnv() error {
	if _, err := env.UnmarshalFromEnviron(s); err != nil {
		return fmt.Errorf("%w: environment: %v", model.ErrConfig, err)
	}
	return nil
}

// Validate checks every field against its constraints.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", model.ErrConfig, err)
	}
	return nil
}

// Format returns the configured filename format.
func (s *Settings) Format() model.FilenameFormat {
	return model.ParseFilenameFormat(s.FilenameFormat)
}

// Level returns the configured log level.
func (s *Settings) Level() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ToClientConfig converts settings to the fetch client configuration.
func (s *Settings) ToClientConfig() fetch.Config {
	return fetch.Config{
		BaseURL:       s.BaseURL,
		UserAgent:     s.UserAgent,
		Delay:         time.Duration(s.DelayMs) * time.Millisecond,
		MaxConcurrent: s.MaxConcurrent,
		Timeout:       time.Duration(s.TimeoutSeconds * float64(time.Second)),
		MaxRetries:    s.MaxRetries,
		RetryCooldown: time.Duration(s.RetryCooldown * float64(time.Second)),
		RetryExponent: s.RetryExponent,
		VerifyContent: s.VerifyContent,
	}
}

// ToDownloadOptions converts settings to orchestrator options.
func (s *Settings) ToDownloadOptions() download.Options {
	return download.Options{
		SkipExisting: s.SkipExisting,
		WindowSize:   s.WindowSize,
		Normalize:    s.Normalize,
	}
}
