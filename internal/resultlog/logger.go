package resultlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	ioutils "github.com/handiism/emoji-kitchen-dl/internal/io"
	"github.com/handiism/emoji-kitchen-dl/internal/model"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewSessionID returns a session identifier derived from now, with a random
// suffix so two runs started in the same second still differ.
//
// Example: "20261019_142501_3f2a9c1e"
func NewSessionID(now time.Time) string {
	return now.Format("20060102_150405") + "_" + uuid.NewString()[:8]
}

// Options configures a Logger.
type Options struct {
	// Console, when set, also receives log output as text at ConsoleLevel.
	Console      io.Writer
	ConsoleLevel slog.Level

	// MaxDebugSizeMB is the rotation threshold of the debug log. Default 10.
	MaxDebugSizeMB int

	// Now overrides the clock used for record timestamps.
	Now func() time.Time
}

// Summary describes a session. NotFound results are reported apart from
// Failures and stay out of SuccessRate, which counts skipped pairs as
// successes.
type Summary struct {
	SessionID      string                  `json:"session_id"`
	TotalAttempts  int                     `json:"total_attempts"`
	Successes      int                     `json:"successes"`
	Failures       int                     `json:"failures"`
	NotFound       int                     `json:"not_found"`
	Skipped        int                     `json:"skipped"`
	SuccessRate    float64                 `json:"success_rate"`
	ErrorBreakdown map[model.ErrorKind]int `json:"error_breakdown"`
	SuccessFile    string                  `json:"success_file"`
	FailureFile    string                  `json:"failure_file"`
	DebugFile      string                  `json:"debug_file"`
}

// Logger is the session-scoped result log. It is safe for concurrent use.
type Logger struct {
	dir       string
	sessionID string
	now       func() time.Time
	log       *slog.Logger

	successPath string
	failurePath string
	debugPath   string
	summaryPath string

	mu          sync.Mutex
	successes   []DownloadResult
	failures    []DownloadResult
	skips       []DownloadResult
	successFile *os.File
	failureFile *os.File
	debug       *lumberjack.Logger
	closed      bool
}

// Open creates the session's log files in dir.
//
// Failing to create dir or the result files is returned as an error; after
// Open succeeds no write failure is ever returned to the caller.
func Open(dir, sessionID string, opts Options) (*Logger, error) {
	if sessionID == "" {
		sessionID = NewSessionID(time.Now())
	}
	sessionID = ioutils.SanitizeFileName(sessionID)

	if err := ioutils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("%w: log directory %s: %v", model.ErrConfig, dir, err)
	}

	l := &Logger{
		dir:         dir,
		sessionID:   sessionID,
		now:         opts.Now,
		successPath: filepath.Join(dir, fmt.Sprintf("successes_%s.jsonl", sessionID)),
		failurePath: filepath.Join(dir, fmt.Sprintf("failures_%s.jsonl", sessionID)),
		debugPath:   filepath.Join(dir, fmt.Sprintf("debug_%s.log", sessionID)),
		summaryPath: filepath.Join(dir, fmt.Sprintf("summary_%s.json", sessionID)),
	}
	if l.now == nil {
		l.now = time.Now
	}

	var err error
	if l.successFile, err = openAppend(l.successPath); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConfig, err)
	}
	if l.failureFile, err = openAppend(l.failurePath); err != nil {
		l.successFile.Close()
		return nil, fmt.Errorf("%w: %v", model.ErrConfig, err)
	}

	maxSize := opts.MaxDebugSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	l.debug = &lumberjack.Logger{
		Filename:   l.debugPath,
		MaxSize:    maxSize,
		MaxBackups: 3,
	}

	handlers := fanout{slog.NewJSONHandler(l.debug, &slog.HandlerOptions{Level: slog.LevelDebug})}
	if opts.Console != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Console, &slog.HandlerOptions{Level: opts.ConsoleLevel}))
	}
	l.log = slog.New(handlers).With("session", sessionID)

	l.log.Info("result logger opened",
		"success_log", l.successPath,
		"failure_log", l.failurePath,
		"debug_log", l.debugPath,
	)

	return l, nil
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// SessionID returns the session identifier.
func (l *Logger) SessionID() string { return l.sessionID }

// Log returns the session's structured logger. Other components log their
// diagnostics through it so everything for a run lands in one debug file.
func (l *Logger) Log() *slog.Logger { return l.log }

// RecordSuccess records a saved download.
func (l *Logger) RecordSuccess(pair model.Pair, path string, duration time.Duration, url string, status int) {
	r := DownloadResult{
		Emoji1:     pair.First,
		Emoji2:     pair.Second,
		Timestamp:  l.now().Format(time.RFC3339Nano),
		Success:    true,
		FilePath:   path,
		StatusCode: optionalStatus(status),
		DurationMs: optionalDuration(duration),
		URL:        url,
	}

	l.mu.Lock()
	l.successes = append(l.successes, r)
	l.appendLocked(l.successFile, l.successPath, r)
	l.mu.Unlock()

	l.log.Info("download succeeded", attrs(r)...)
}

// RecordFailure records a failed attempt. duration and status are optional
// and omitted from the record when zero.
func (l *Logger) RecordFailure(pair model.Pair, kind model.ErrorKind, message string, duration time.Duration, url string, status int) {
	r := DownloadResult{
		Emoji1:       pair.First,
		Emoji2:       pair.Second,
		Timestamp:    l.now().Format(time.RFC3339Nano),
		Success:      false,
		ErrorType:    kind,
		ErrorMessage: message,
		StatusCode:   optionalStatus(status),
		DurationMs:   optionalDuration(duration),
		URL:          url,
	}

	l.mu.Lock()
	l.failures = append(l.failures, r)
	l.appendLocked(l.failureFile, l.failurePath, r)
	l.mu.Unlock()

	l.log.Warn("download failed", attrs(r)...)
}

// RecordSkip records a pair that was already on disk.
func (l *Logger) RecordSkip(pair model.Pair, path string) {
	r := DownloadResult{
		Emoji1:    pair.First,
		Emoji2:    pair.Second,
		Timestamp: l.now().Format(time.RFC3339Nano),
		Success:   true,
		Skipped:   true,
		FilePath:  path,
	}

	l.mu.Lock()
	l.skips = append(l.skips, r)
	l.mu.Unlock()

	l.log.Debug("download skipped", attrs(r)...)
}

// appendLocked writes r as one JSON line. Callers hold l.mu.
func (l *Logger) appendLocked(f *os.File, path string, r DownloadResult) {
	if l.closed {
		return
	}
	line, err := json.Marshal(r)
	if err != nil {
		l.log.Error("encode result", "file", path, "error", err)
		return
	}
	line = append(line, '\n')
	if _, err := f.Write(line); err != nil {
		l.log.Error("append result", "file", path, "error", err)
	}
}

func attrs(r DownloadResult) []any {
	out := []any{"pair", r.Pair().String()}
	if r.FilePath != "" {
		out = append(out, "path", r.FilePath)
	}
	if r.ErrorType != "" {
		out = append(out, "kind", string(r.ErrorType), "message", r.ErrorMessage)
	}
	if r.StatusCode != nil {
		out = append(out, "status", *r.StatusCode)
	}
	if r.DurationMs != nil {
		out = append(out, "duration_ms", *r.DurationMs)
	}
	if r.URL != "" {
		out = append(out, "url", r.URL)
	}
	return out
}

// Successes returns a copy of the success records in order.
func (l *Logger) Successes() []DownloadResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]DownloadResult(nil), l.successes...)
}

// Failures returns a copy of the failure records in order.
func (l *Logger) Failures() []DownloadResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]DownloadResult(nil), l.failures...)
}

// Skips returns a copy of the skip records in order.
func (l *Logger) Skips() []DownloadResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]DownloadResult(nil), l.skips...)
}

// Summary derives the session summary from the in-memory records.
func (l *Logger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Summary{
		SessionID:      l.sessionID,
		Successes:      len(l.successes),
		Skipped:        len(l.skips),
		ErrorBreakdown: make(map[model.ErrorKind]int),
		SuccessFile:    l.successPath,
		FailureFile:    l.failurePath,
		DebugFile:      l.debugPath,
	}
	for _, f := range l.failures {
		kind := f.ErrorType
		if kind == "" {
			kind = "Unknown"
		}
		s.ErrorBreakdown[kind]++
		if kind == model.KindNotFound {
			s.NotFound++
		} else {
			s.Failures++
		}
	}
	s.TotalAttempts = s.Successes + s.Failures + s.NotFound
	if eligible := s.Successes + s.Skipped + s.Failures; eligible > 0 {
		s.SuccessRate = float64(s.Successes+s.Skipped) / float64(eligible) * 100
	}
	return s
}

// Kinds returns the error kinds in the breakdown, most frequent first.
func (s Summary) Kinds() []model.ErrorKind {
	kinds := make([]model.ErrorKind, 0, len(s.ErrorBreakdown))
	for k := range s.ErrorBreakdown {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if s.ErrorBreakdown[kinds[i]] != s.ErrorBreakdown[kinds[j]] {
			return s.ErrorBreakdown[kinds[i]] > s.ErrorBreakdown[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})
	return kinds
}

// SummaryPath returns where Close writes the summary.
func (l *Logger) SummaryPath() string { return l.summaryPath }

// Close writes the summary file and closes the session's files. Calling Close
// more than once is a no-op.
func (l *Logger) Close() error {
	summary := l.Summary()

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	var errs []error

	data, err := json.MarshalIndent(summary, "", "  ")
	if err == nil {
		err = os.WriteFile(l.summaryPath, data, 0644)
	}
	if err != nil {
		l.log.Error("write summary", "file", l.summaryPath, "error", err)
		errs = append(errs, err)
	} else {
		l.log.Info("result logger closed",
			"summary", l.summaryPath,
			"successes", summary.Successes,
			"failures", summary.Failures,
			"not_found", summary.NotFound,
			"skipped", summary.Skipped,
		)
	}

	errs = append(errs, l.successFile.Close(), l.failureFile.Close(), l.debug.Close())
	return errors.Join(errs...)
}
