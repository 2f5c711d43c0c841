// Package resultlog records the outcome of every download attempt.
//
// A Logger is opened per session (one orchestrator run) and writes:
//
//	successes_<session>.jsonl  one JSON object per successful download
//	failures_<session>.jsonl   one JSON object per failed download
//	summary_<session>.json     counts, rate and error breakdown, written on Close
//	debug_<session>.log        structured slog output, rotated by lumberjack
//
// The result files are diagnostic. A failed write is reported on the debug
// log and otherwise ignored, so logging problems never stop a download run.
//
//	logger, err := resultlog.Open("logs", resultlog.NewSessionID(time.Now()), resultlog.Options{})
//	defer logger.Close()
//
//	logger.RecordSuccess(pair, path, elapsed, url, 200)
package resultlog
