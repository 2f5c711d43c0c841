package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/handiism/emoji-kitchen-dl/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, model.FormatAuto, s.Format())
	assert.Equal(t, 512, s.Size)
	assert.Equal(t, 75.0, s.SuccessThreshold)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"size": 128, "filename_format": "emoji"}`), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 128, s.Size)
	assert.Equal(t, model.FormatEmoji, s.Format())
	assert.Equal(t, DefaultSettings().MaxConcurrent, s.MaxConcurrent)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"size": `), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	s := DefaultSettings()
	s.OutputDir = "/data/emoji"
	s.MaxRetries = 5

	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("EMOJI_KITCHEN_SIZE", "256")
	t.Setenv("EMOJI_KITCHEN_MAX_CONCURRENT", "7")
	t.Setenv("EMOJI_KITCHEN_RETRY_COOLDOWN", "0.5")
	t.Setenv("EMOJI_KITCHEN_SKIP_EXISTING", "false")
	t.Setenv("EMOJI_KITCHEN_OUTPUT_DIR", "/tmp/out")

	s := DefaultSettings()
	require.NoError(t, s.ApplyEnv())

	assert.Equal(t, 256, s.Size)
	assert.Equal(t, 7, s.MaxConcurrent)
	assert.Equal(t, 0.5, s.RetryCooldown)
	assert.False(t, s.SkipExisting)
	assert.Equal(t, "/tmp/out", s.OutputDir)
	// Untouched fields keep their value
	assert.Equal(t, DefaultSettings().BaseURL, s.BaseURL)
}

func TestApplyEnv_BadValue(t *testing.T) {
	t.Setenv("EMOJI_KITCHEN_SIZE", "large")

	err := DefaultSettings().ApplyEnv()
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero size", func(s *Settings) { s.Size = 0 }},
		{"empty output", func(s *Settings) { s.OutputDir = "" }},
		{"bad format", func(s *Settings) { s.FilenameFormat = "glyph" }},
		{"bad url", func(s *Settings) { s.BaseURL = "not a url" }},
		{"zero concurrency", func(s *Settings) { s.MaxConcurrent = 0 }},
		{"negative delay", func(s *Settings) { s.DelayMs = -1 }},
		{"zero timeout", func(s *Settings) { s.TimeoutSeconds = 0 }},
		{"shrinking backoff", func(s *Settings) { s.RetryExponent = 0.5 }},
		{"zero window", func(s *Settings) { s.WindowSize = 0 }},
		{"threshold above 100", func(s *Settings) { s.SuccessThreshold = 101 }},
		{"bad log level", func(s *Settings) { s.LogLevel = "loud" }},
		{"bad metrics addr", func(s *Settings) { s.MetricsAddr = "nowhere" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			assert.ErrorIs(t, s.Validate(), model.ErrConfig)
		})
	}

	s := DefaultSettings()
	s.MetricsAddr = ":9090"
	assert.NoError(t, s.Validate())
}

func TestToClientConfig(t *testing.T) {
	s := DefaultSettings()
	s.DelayMs = 25
	s.TimeoutSeconds = 1.5
	s.RetryCooldown = 0.2
	s.VerifyContent = true

	cfg := s.ToClientConfig()
	assert.Equal(t, 25*time.Millisecond, cfg.Delay)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 200*time.Millisecond, cfg.RetryCooldown)
	assert.Equal(t, s.MaxConcurrent, cfg.MaxConcurrent)
	assert.Equal(t, s.BaseURL, cfg.BaseURL)
	assert.True(t, cfg.VerifyContent)
}

func TestToDownloadOptions(t *testing.T) {
	s := DefaultSettings()
	s.WindowSize = 42
	s.Normalize = true

	opts := s.ToDownloadOptions()
	assert.Equal(t, 42, opts.WindowSize)
	assert.True(t, opts.SkipExisting)
	assert.True(t, opts.Normalize)
}
