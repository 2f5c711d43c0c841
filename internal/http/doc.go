// Package http provides the fetch client for the Emoji Kitchen rendering API.
//
// The Client in this package handles:
//   - URL construction from emoji codepoints and size
//   - A global ceiling on in-flight requests (semaphore)
//   - Pacing delay before each request
//   - Per-request timeout
//   - Retry with exponential backoff for server and network faults
//   - Outcome classification (success, not found, client/server/network error)
//
// # Basic Usage
//
//	client := http.NewClient(http.DefaultConfig(), logger)
//
//	outcome := client.Fetch(ctx, model.NewPair("😀", "😎"), 512)
//	if outcome.OK() {
//	    // outcome.Data holds the PNG
//	}
//
// # Concurrency
//
// The ceiling is shared by every Fetch call on the same Client, no matter how
// many goroutines call it. A permit is taken for each attempt and always
// released when the attempt ends, including on timeout or cancellation. No
// permit is held while waiting between retries.
//
// # Retry Logic
//
// ServerError and NetworkError outcomes are retried up to Config.MaxRetries
// times, waiting RetryCooldown * RetryExponent^n between attempts. NotFound,
// ClientError and InvalidContent are returned immediately.
package http
