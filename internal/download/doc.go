// Package download provides the batch orchestration for fetching emoji
// combinations and caching them on disk.
//
// # Orchestrator
//
// The Orchestrator moves each pair through a small state machine:
//
//	Pending -> Skipped    (file already present and SkipExisting set)
//	Pending -> Succeeded  (fetched and saved)
//	Pending -> Failed     (invalid input, fetch failure, or save error)
//
// Each pair produces exactly one result record and increments exactly one
// counter in Stats.
//
// # Basic Usage
//
//	client := http.NewClient(http.DefaultConfig(), logger)
//	store, _ := storage.New("/downloads", model.FormatAuto, logger)
//
//	orch := download.New(client, store, resultLogger, download.DefaultOptions(),
//	    func(event download.ProgressEvent) {
//	        fmt.Println(event.Message)
//	    })
//
//	stats, err := orch.DownloadBatch(ctx, pairs, 512)
//
// # Concurrency
//
// Pairs are scheduled in windows of Options.WindowSize. Every pair in a window
// runs in its own goroutine and the next window starts once the current one
// is finished. The number of requests actually in flight is bounded
// separately by the fetch client, so the two knobs are independent.
//
// # Progress Tracking
//
// Progress is reported via a callback that receives ProgressEvent, and can
// be polled with Progress() for progress bars.
package download
