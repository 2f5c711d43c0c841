package resultlog

import (
	"time"

	"github.com/handiism/emoji-kitchen-dl/internal/model"
)

// DownloadResult is the persisted record of one attempt. It is never
// modified after creation.
type DownloadResult struct {
	Emoji1       string          `json:"emoji1"`
	Emoji2       string          `json:"emoji2"`
	Timestamp    string          `json:"timestamp"`
	Success      bool            `json:"success"`
	Skipped      bool            `json:"skipped,omitempty"`
	FilePath     string          `json:"file_path,omitempty"`
	ErrorType    model.ErrorKind `json:"error_type,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	StatusCode   *int            `json:"status_code,omitempty"`
	DurationMs   *float64        `json:"duration_ms,omitempty"`
	URL          string          `json:"url,omitempty"`
}

// Pair returns the emoji pair the record is about.
func (r DownloadResult) Pair() model.Pair {
	return model.Pair{First: r.Emoji1, Second: r.Emoji2}
}

// Recorder receives one call per processed pair.
type Recorder interface {
	RecordSuccess(pair model.Pair, path string, duration time.Duration, url string, status int)
	RecordFailure(pair model.Pair, kind model.ErrorKind, message string, duration time.Duration, url string, status int)
	RecordSkip(pair model.Pair, path string)
}

// Nop is a Recorder that discards everything.
type Nop struct{}

func (Nop) RecordSuccess(model.Pair, string, time.Duration, string, int)                  {}
func (Nop) RecordFailure(model.Pair, model.ErrorKind, string, time.Duration, string, int) {}
func (Nop) RecordSkip(model.Pair, string)                                                 {}

func optionalStatus(status int) *int {
	if status == 0 {
		return nil
	}
	return &status
}

func optionalDuration(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	ms := float64(d) / float64(time.Millisecond)
	return &ms
}
