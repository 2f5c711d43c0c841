package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/handiism/emoji-kitchen-dl/internal/metrics"
	"github.com/handiism/emoji-kitchen-dl/internal/model"
	"golang.org/x/sync/semaphore"
)

// DefaultBaseURL is the public Emoji Kitchen rendering endpoint.
const DefaultBaseURL = "https://emojik.vercel.app/s"

// Config holds the fetch client settings.
type Config struct {
	// BaseURL is the endpoint that "<cp1>_<cp2>?size=<px>" is appended to.
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// Delay is slept before each request is dispatched.
	Delay time.Duration

	// MaxConcurrent is the ceiling on in-flight requests across all callers.
	MaxConcurrent int

	// Timeout bounds a single request, including reading the body.
	Timeout time.Duration

	// MaxRetries is how many extra attempts a retryable failure gets.
	MaxRetries int

	// RetryCooldown and RetryExponent define the backoff:
	// RetryCooldown * RetryExponent^n before retry n+1.
	RetryCooldown time.Duration
	RetryExponent float64

	// VerifyContent rejects 200 responses whose body does not sniff as an image.
	VerifyContent bool
}

// DefaultConfig returns the settings used by the interactive tools.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		UserAgent:     "emoji-kitchen-dl",
		Delay:         100 * time.Millisecond,
		MaxConcurrent: 50,
		Timeout:       15 * time.Second,
		MaxRetries:    3,
		RetryCooldown: 200 * time.Millisecond,
		RetryExponent: 4.0,
	}
}

// Client fetches combination images with bounded concurrency and retries.
//
// Example usage:
//
//	cfg := http.DefaultConfig()
//	cfg.MaxConcurrent = 10
//	client := http.NewClient(cfg, slog.Default())
//
//	url := client.BuildURL(pair, 512)
//	outcome := client.Fetch(ctx, pair, 512)
type Client struct {
	httpClient *http.Client
	cfg        Config
	sem        *semaphore.Weighted
	log        *slog.Logger
}

// NewClient creates a Client. Non-positive MaxConcurrent is treated as 1.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if log == nil {
		log = slog.Default()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.MaxConcurrent

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		cfg: cfg,
		sem: semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		log: log,
	}
}

// BuildURL returns the request URL for pair at size.
//
// Example:
//
//	client.BuildURL(model.NewPair("😀", "😎"), 512)
//	// "https://emojik.vercel.app/s/1f600_1f60e?size=512"
func (c *Client) BuildURL(pair model.Pair, size int) string {
	key := pair.Key()
	return fmt.Sprintf("%s/%s_%s?size=%d", strings.TrimRight(c.cfg.BaseURL, "/"), key.First, key.Second, size)
}

// Fetch downloads the image for pair at size.
//
// Fetch never returns an error; every failure is folded into the Outcome.
// An invalid pair fails with KindInvalidInput before any request is made.
// When retries are exhausted the Outcome carries the last observed status
// and message.
func (c *Client) Fetch(ctx context.Context, pair model.Pair, size int) model.Outcome {
	if err := pair.Validate(); err != nil {
		return model.Failure(model.KindInvalidInput, err.Error(), 0)
	}
	if size <= 0 {
		return model.Failure(model.KindInvalidInput, fmt.Sprintf("size must be positive, got %d", size), 0)
	}

	url := c.BuildURL(pair, size)

	var outcome model.Outcome
	for tries := 0; tries <= c.cfg.MaxRetries; tries++ {
		if tries > 0 {
			c.log.Debug("retrying fetch",
				"pair", pair.String(),
				"attempt", tries+1,
				"of", c.cfg.MaxRetries+1,
				"kind", outcome.Kind,
				"status", outcome.Status,
			)
			if err := c.waitForRetry(ctx, tries-1); err != nil {
				outcome.Kind = model.KindNetworkError
				outcome.Message = err.Error()
				return outcome
			}
		}

		outcome = c.attempt(ctx, url)
		outcome.Attempts = tries + 1

		if outcome.OK() || !outcome.Kind.Retryable() || ctx.Err() != nil {
			return outcome
		}
	}

	return outcome
}

// attempt issues a single request while holding a concurrency permit.
func (c *Client) attempt(ctx context.Context, url string) model.Outcome {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return model.Failure(model.KindNetworkError, err.Error(), 0)
	}
	defer c.sem.Release(1)

	metrics.InflightFetches.Inc()
	defer metrics.InflightFetches.Dec()

	if err := sleep(ctx, c.cfg.Delay); err != nil {
		return model.Failure(model.KindNetworkError, err.Error(), 0)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Failure(model.KindInvalidInput, err.Error(), 0)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.FetchLatency.Observe(time.Since(start).Seconds())
		metrics.FetchAttempts.WithLabelValues(string(model.KindNetworkError)).Inc()
		return model.Failure(model.KindNetworkError, err.Error(), 0)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	metrics.FetchLatency.Observe(time.Since(start).Seconds())

	var outcome model.Outcome
	if readErr != nil {
		outcome = model.Failure(model.KindNetworkError, fmt.Sprintf("read body: %v", readErr), resp.StatusCode)
	} else {
		outcome = c.classify(resp.StatusCode, body)
	}

	metrics.FetchAttempts.WithLabelValues(resultLabel(outcome)).Inc()
	return outcome
}

// classify maps a complete response to an Outcome.
func (c *Client) classify(status int, body []byte) model.Outcome {
	switch {
	case status == http.StatusOK && len(body) == 0:
		return model.Failure(model.KindServerError, "empty response body", status)
	case status == http.StatusOK:
		if c.cfg.VerifyContent {
			if mt := mimetype.Detect(body); !strings.HasPrefix(mt.String(), "image/") {
				return model.Failure(model.KindInvalidContent, fmt.Sprintf("unexpected content type %s", mt.String()), status)
			}
		}
		return model.Success(body, status)
	case status == http.StatusNotFound:
		return model.Failure(model.KindNotFound, "combination not found", status)
	case status >= 500:
		return model.Failure(model.KindServerError, fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)), status)
	default:
		return model.Failure(model.KindClientError, fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)), status)
	}
}

func (c *Client) waitForRetry(ctx context.Context, tries int) error {
	cooldown := float64(c.cfg.RetryCooldown) * math.Pow(c.cfg.RetryExponent, float64(tries))
	return sleep(ctx, time.Duration(cooldown))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func resultLabel(o model.Outcome) string {
	if o.OK() {
		return "success"
	}
	return string(o.Kind)
}
