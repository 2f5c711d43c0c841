package download

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	ioutils "github.com/handiism/emoji-kitchen-dl/internal/io"
	"github.com/handiism/emoji-kitchen-dl/internal/metrics"
	"github.com/handiism/emoji-kitchen-dl/internal/model"
	"github.com/handiism/emoji-kitchen-dl/internal/resultlog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -destination=../mocks/download.go -package=mocks github.com/handiism/emoji-kitchen-dl/internal/download Fetcher,Store

// Fetcher retrieves combination images. *http.Client implements it.
type Fetcher interface {
	BuildURL(pair model.Pair, size int) string
	Fetch(ctx context.Context, pair model.Pair, size int) model.Outcome
}

// Store persists combination images. *storage.Manager implements it.
type Store interface {
	PathFor(pair model.Pair, size int) (string, error)
	Exists(pair model.Pair, size int) bool
	Save(ctx context.Context, pair model.Pair, size int, data []byte) (string, error)
}

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// PairState is where a pair is in its lifecycle. Pending is the only
// non-terminal state.
type PairState int

const (
	StatePending PairState = iota
	StateSkipped
	StateSucceeded
	StateFailed
)

func (s PairState) String() string {
	switch s {
	case StateSkipped:
		return "skipped"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	Pair    model.Pair
	State   PairState
}

// PairResult is the terminal result of processing one pair.
type PairResult struct {
	Pair     model.Pair
	State    PairState
	Path     string
	Kind     model.ErrorKind
	Message  string
	Status   int
	Attempts int
	Duration time.Duration
}

// Stats aggregates the results of a batch.
//
// Every processed pair increments exactly one of Successes, Failures,
// NotFound or Skipped. NotFound is kept apart from Failures because a missing
// combination is an expected answer from the API.
type Stats struct {
	Total     int           `json:"total"`
	Successes int           `json:"successes"`
	Failures  int           `json:"failures"`
	NotFound  int           `json:"not_found"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
}

// Processed returns how many pairs reached a terminal state.
func (s Stats) Processed() int {
	return s.Successes + s.Failures + s.NotFound + s.Skipped
}

// SuccessRate returns the share of pairs that ended up on disk, in percent.
// Skipped pairs count as present, and pairs the API has no combination for
// are left out of the denominator.
func (s Stats) SuccessRate() float64 {
	denom := s.Processed() - s.NotFound
	if denom <= 0 {
		return 0
	}
	return float64(s.Successes+s.Skipped) / float64(denom) * 100
}

// Options controls batch behavior.
type Options struct {
	// SkipExisting skips pairs whose file is already on disk.
	SkipExisting bool

	// WindowSize is how many pairs are scheduled together. The next window
	// starts only once every pair of the current one is terminal.
	WindowSize int

	// Normalize rescales images whose dimensions differ from the requested size.
	Normalize bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		SkipExisting: true,
		WindowSize:   100,
	}
}

// Orchestrator drives pairs through fetch, save and record.
type Orchestrator struct {
	fetcher      Fetcher
	store        Store
	recorder     resultlog.Recorder
	imageService *ioutils.ImageService
	opts         Options

	stats Stats
	mu    sync.Mutex

	done  int64
	total int64

	onProgress func(ProgressEvent)
}

// New creates an Orchestrator. recorder may be nil to disable result logging.
func New(fetcher Fetcher, store Store, recorder resultlog.Recorder, opts Options, onProgress func(ProgressEvent)) *Orchestrator {
	if recorder == nil {
		recorder = resultlog.Nop{}
	}
	if opts.WindowSize <= 0 {
		opts.WindowSize = DefaultOptions().WindowSize
	}
	return &Orchestrator{
		fetcher:      fetcher,
		store:        store,
		recorder:     recorder,
		imageService: ioutils.NewImageService(),
		opts:         opts,
		onProgress:   onProgress,
	}
}

// DownloadBatch processes pairs window by window and returns the batch stats.
//
// Per-pair failures are recorded and counted, never returned. The only error
// is ctx's, in which case no new window is started, pairs abandoned mid-flight
// are left uncounted, and the stats cover the pairs that finished.
func (o *Orchestrator) DownloadBatch(ctx context.Context, pairs []model.Pair, size int) (Stats, error) {
	start := time.Now()

	o.mu.Lock()
	o.stats = Stats{Total: len(pairs)}
	o.mu.Unlock()
	atomic.StoreInt64(&o.done, 0)
	atomic.StoreInt64(&o.total, int64(len(pairs)))

	windows := lo.Chunk(pairs, o.opts.WindowSize)
	o.progress(ProgressEvent{
		Message: fmt.Sprintf("Downloading %d pairs in %d windows of up to %d", len(pairs), len(windows), o.opts.WindowSize),
		Level:   LevelInfo,
	})

	var err error
	for i, window := range windows {
		if err = ctx.Err(); err != nil {
			break
		}

		o.progress(ProgressEvent{
			Message: fmt.Sprintf("Window %d/%d (%d pairs)", i+1, len(windows), len(window)),
			Level:   LevelVerbose,
		})

		g, gctx := errgroup.WithContext(ctx)
		for _, pair := range window {
			g.Go(func() error {
				o.DownloadPair(gctx, pair, size)
				return nil
			})
		}
		_ = g.Wait()
	}
	if err == nil {
		err = ctx.Err()
	}

	stats := o.Stats()
	stats.Duration = time.Since(start)
	o.mu.Lock()
	o.stats.Duration = stats.Duration
	o.mu.Unlock()

	if err != nil {
		o.progress(ProgressEvent{
			Message: fmt.Sprintf("Cancelled after %d/%d pairs", stats.Processed(), stats.Total),
			Level:   LevelWarning,
		})
		return stats, err
	}

	o.progress(ProgressEvent{
		Message: fmt.Sprintf("Finished %d pairs in %s: %d downloaded, %d skipped, %d not found, %d failed",
			stats.Total, stats.Duration.Round(time.Millisecond), stats.Successes, stats.Skipped, stats.NotFound, stats.Failures),
		Level: LevelSuccess,
	})
	return stats, nil
}

// DownloadSingle processes one pair. It reports true when the image is on
// disk afterwards, whether downloaded now or skipped as existing.
func (o *Orchestrator) DownloadSingle(ctx context.Context, pair model.Pair, size int) (bool, error) {
	atomic.AddInt64(&o.total, 1)
	o.mu.Lock()
	o.stats.Total++
	o.mu.Unlock()

	res := o.DownloadPair(ctx, pair, size)
	if res.State == StatePending {
		return false, ctx.Err()
	}
	return res.State == StateSucceeded || res.State == StateSkipped, nil
}

// DownloadPair takes pair from Pending to a terminal state. It records exactly
// one result and increments exactly one counter. If ctx is cancelled before
// the pair finishes, the result is left Pending and nothing is recorded.
func (o *Orchestrator) DownloadPair(ctx context.Context, pair model.Pair, size int) PairResult {
	start := time.Now()
	res := PairResult{Pair: pair, State: StatePending}

	if err := pair.Validate(); err != nil {
		return o.fail(res, model.KindInvalidInput, err.Error(), "", start)
	}
	if size <= 0 {
		return o.fail(res, model.KindInvalidInput, fmt.Sprintf("invalid size %d", size), "", start)
	}

	if o.opts.SkipExisting && o.store.Exists(pair, size) {
		res.Path, _ = o.store.PathFor(pair, size)
		res.State = StateSkipped
		o.recorder.RecordSkip(pair, res.Path)
		o.finish(res)
		o.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", pair), Level: LevelVerbose, Pair: pair, State: res.State})
		return res
	}

	// A cancelled pair stays Pending: it is neither recorded nor counted.
	if ctx.Err() != nil {
		return res
	}

	url := o.fetcher.BuildURL(pair, size)
	outcome := o.fetcher.Fetch(ctx, pair, size)
	res.Status = outcome.Status
	res.Attempts = outcome.Attempts
	if !outcome.OK() {
		if outcome.Status == 0 && ctx.Err() != nil {
			return res
		}
		return o.fail(res, outcome.Kind, outcome.Message, url, start)
	}

	data := outcome.Data
	if o.opts.Normalize {
		normalized, err := o.imageService.Normalize(ctx, data, size)
		if err != nil {
			o.progress(ProgressEvent{Message: fmt.Sprintf("Keeping original image for %s: %v", pair, err), Level: LevelWarning, Pair: pair})
		} else {
			data = normalized
		}
	}

	path, err := o.store.Save(ctx, pair, size, data)
	if err != nil {
		if ctx.Err() != nil {
			return res
		}
		return o.fail(res, model.KindIOError, err.Error(), url, start)
	}

	res.State = StateSucceeded
	res.Path = path
	res.Duration = time.Since(start)
	o.recorder.RecordSuccess(pair, path, res.Duration, url, res.Status)
	o.finish(res)
	o.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", pair), Level: LevelVerbose, Pair: pair, State: res.State})
	return res
}

func (o *Orchestrator) fail(res PairResult, kind model.ErrorKind, message, url string, start time.Time) PairResult {
	res.State = StateFailed
	res.Kind = kind
	res.Message = message
	res.Duration = time.Since(start)
	o.recorder.RecordFailure(res.Pair, kind, message, res.Duration, url, res.Status)
	o.finish(res)

	level := LevelError
	if kind == model.KindNotFound {
		level = LevelVerbose
	}
	o.progress(ProgressEvent{Message: fmt.Sprintf("Failed %s: %s: %s", res.Pair, kind, message), Level: level, Pair: res.Pair, State: res.State})
	return res
}

// finish updates the counters for a terminal result.
func (o *Orchestrator) finish(res PairResult) {
	label := res.State.String()

	o.mu.Lock()
	switch {
	case res.State == StateSkipped:
		o.stats.Skipped++
	case res.State == StateSucceeded:
		o.stats.Successes++
	case res.Kind == model.KindNotFound:
		o.stats.NotFound++
		label = "not_found"
	default:
		o.stats.Failures++
	}
	o.mu.Unlock()

	atomic.AddInt64(&o.done, 1)
	metrics.PairOutcomes.WithLabelValues(label).Inc()
}

// Stats returns a snapshot of the current counters.
func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}

// Progress returns how many pairs are terminal out of how many were scheduled.
func (o *Orchestrator) Progress() (done, total int64) {
	return atomic.LoadInt64(&o.done), atomic.LoadInt64(&o.total)
}

func (o *Orchestrator) progress(event ProgressEvent) {
	if o.onProgress != nil {
		o.onProgress(event)
	}
}
