package resultlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/handiism/emoji-kitchen-dl/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []DownloadResult {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []DownloadResult
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r DownloadResult
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		out = append(out, r)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestNewSessionID(t *testing.T) {
	now := time.Date(2026, 10, 19, 14, 25, 1, 0, time.UTC)

	a := NewSessionID(now)
	b := NewSessionID(now)

	assert.Regexp(t, regexp.MustCompile(`^20261019_142501_[0-9a-f]{8}$`), a)
	assert.NotEqual(t, a, b)
}

func TestLogger_RecordsAndPersists(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir, "s1", Options{})
	require.NoError(t, err)

	l.RecordSuccess(model.NewPair("😀", "😎"), "/out/a.png", 120*time.Millisecond, "http://x/a", 200)
	l.RecordFailure(model.NewPair("😀", "🐶"), model.KindNotFound, "combination not found", 0, "http://x/b", 404)
	l.RecordFailure(model.NewPair("😀", "🐱"), model.KindIOError, "disk full", 0, "", 0)
	l.RecordSkip(model.NewPair("😀", "😀"), "/out/c.png")

	successes := readLines(t, filepath.Join(dir, "successes_s1.jsonl"))
	require.Len(t, successes, 1)
	assert.Equal(t, "😀", successes[0].Emoji1)
	assert.Equal(t, "😎", successes[0].Emoji2)
	assert.True(t, successes[0].Success)
	assert.Equal(t, "/out/a.png", successes[0].FilePath)
	require.NotNil(t, successes[0].DurationMs)
	assert.InDelta(t, 120.0, *successes[0].DurationMs, 0.001)
	require.NotNil(t, successes[0].StatusCode)
	assert.Equal(t, 200, *successes[0].StatusCode)

	failures := readLines(t, filepath.Join(dir, "failures_s1.jsonl"))
	require.Len(t, failures, 2)
	assert.Equal(t, model.KindNotFound, failures[0].ErrorType)
	assert.Nil(t, failures[0].DurationMs)
	assert.Equal(t, model.KindIOError, failures[1].ErrorType)
	assert.Nil(t, failures[1].StatusCode)

	assert.Len(t, l.Successes(), 1)
	assert.Len(t, l.Failures(), 2)
	assert.Len(t, l.Skips(), 1)

	require.NoError(t, l.Close())
}

func TestLogger_Summary(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir, "s2", Options{})
	require.NoError(t, err)

	pair := model.NewPair("😀", "😎")
	l.RecordSuccess(pair, "p", 0, "", 200)
	l.RecordSuccess(pair, "p", 0, "", 200)
	l.RecordFailure(pair, model.KindNotFound, "nf", 0, "", 404)
	l.RecordFailure(pair, model.KindServerError, "503", 0, "", 503)
	l.RecordFailure(pair, model.KindServerError, "503", 0, "", 503)
	l.RecordSkip(pair, "p")

	s := l.Summary()
	assert.Equal(t, "s2", s.SessionID)
	assert.Equal(t, 5, s.TotalAttempts)
	assert.Equal(t, 2, s.Successes)
	assert.Equal(t, 2, s.Failures)
	assert.Equal(t, 1, s.NotFound)
	assert.Equal(t, 1, s.Skipped)
	assert.InDelta(t, 60.0, s.SuccessRate, 0.001)
	assert.Equal(t, map[model.ErrorKind]int{model.KindNotFound: 1, model.KindServerError: 2}, s.ErrorBreakdown)
	assert.Equal(t, []model.ErrorKind{model.KindServerError, model.KindNotFound}, s.Kinds())

	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, "summary_s2.json"))
	require.NoError(t, err)
	var onDisk Summary
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, s.Successes, onDisk.Successes)
	assert.Equal(t, s.NotFound, onDisk.NotFound)
	assert.Equal(t, s.ErrorBreakdown, onDisk.ErrorBreakdown)

	// Second close is a no-op
	assert.NoError(t, l.Close())
}

func TestLogger_SummaryExcludesNotFound(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir, "nf", Options{})
	require.NoError(t, err)

	l.RecordSuccess(model.NewPair("😀", "😎"), "p", 0, "", 200)
	l.RecordFailure(model.NewPair("😀", "🐶"), model.KindNotFound, "combination not found", 0, "", 404)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, "summary_nf.json"))
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.EqualValues(t, 2, raw["total_attempts"])
	assert.EqualValues(t, 1, raw["successes"])
	assert.EqualValues(t, 0, raw["failures"])
	assert.EqualValues(t, 1, raw["not_found"])
	assert.InDelta(t, 100.0, raw["success_rate"], 0.001)
	assert.Equal(t, map[string]any{"NotFound": float64(1)}, raw["error_breakdown"])
}

func TestLogger_EmptySummary(t *testing.T) {
	l, err := Open(t.TempDir(), "empty", Options{})
	require.NoError(t, err)
	defer l.Close()

	s := l.Summary()
	assert.Zero(t, s.TotalAttempts)
	assert.Zero(t, s.SuccessRate)
	assert.Empty(t, s.ErrorBreakdown)
}

func TestLogger_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := Open(t.TempDir(), "console", Options{Console: &buf})
	require.NoError(t, err)
	defer l.Close()

	// Zero duration must still produce a log line.
	l.RecordSuccess(model.NewPair("😀", "😎"), "/out/a.png", 0, "", 200)
	l.RecordFailure(model.NewPair("😀", "🐶"), model.KindNotFound, "combination not found", 0, "", 404)

	out := buf.String()
	assert.Contains(t, out, "download succeeded")
	assert.Contains(t, out, "download failed")
	assert.Contains(t, out, "kind=NotFound")
	assert.NotContains(t, out, "duration_ms")
}

func TestLogger_DebugFileWritten(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir, "dbg", Options{})
	require.NoError(t, err)

	l.RecordSkip(model.NewPair("😀", "😎"), "/out/a.png")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, "debug_dbg.log"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "download skipped"))
}

func TestLogger_ConcurrentRecords(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir, "conc", Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				l.RecordSuccess(model.NewPair("😀", "😎"), "p", time.Millisecond, "", 200)
			} else {
				l.RecordFailure(model.NewPair("😀", "😎"), model.KindServerError, "x", 0, "", 500)
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, l.Close())

	assert.Len(t, readLines(t, filepath.Join(dir, "successes_conc.jsonl")), 25)
	assert.Len(t, readLines(t, filepath.Join(dir, "failures_conc.jsonl")), 25)
}

func TestOpen_UnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := Open(filepath.Join(blocker, "logs"), "x", Options{})
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordSuccess(model.NewPair("😀", "😎"), "", 0, "", 0)
	r.RecordFailure(model.NewPair("😀", "😎"), model.KindIOError, "", 0, "", 0)
	r.RecordSkip(model.NewPair("😀", "😎"), "")
}
