package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/handiism/emoji-kitchen-dl/internal/model"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		UserAgent:     "test",
		MaxConcurrent: 4,
		Timeout:       2 * time.Second,
		MaxRetries:    3,
		RetryCooldown: time.Millisecond,
		RetryExponent: 1,
	}
}

func newTestClient(cfg Config) *Client {
	return NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_BuildURL(t *testing.T) {
	tests := []struct {
		base string
		pair model.Pair
		size int
		want string
	}{
		{DefaultBaseURL, model.NewPair("😀", "😎"), 512, "https://emojik.vercel.app/s/1f600_1f60e?size=512"},
		{"http://local/s/", model.NewPair("❤️", "🔥"), 128, "http://local/s/2764-fe0f_1f525?size=128"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c := newTestClient(testConfig(tt.base))
			if got := c.BuildURL(tt.pair, tt.size); got != tt.want {
				t.Errorf("BuildURL() = %q, want %q", got, tt.want)
			}
			if got := c.BuildURL(tt.pair, tt.size); got != tt.want {
				t.Errorf("BuildURL() not deterministic: %q", got)
			}
		})
	}
}

func TestClient_FetchSuccess(t *testing.T) {
	var gotPath, gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("size")
		gotUA = r.Header.Get("User-Agent")
		w.Write(pngMagic)
	}))
	defer srv.Close()

	c := newTestClient(testConfig(srv.URL + "/s"))
	out := c.Fetch(context.Background(), model.NewPair("😀", "😎"), 256)

	if !out.OK() {
		t.Fatalf("Fetch() failed: %s %s", out.Kind, out.Message)
	}
	if out.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200", out.Status)
	}
	if string(out.Data) != string(pngMagic) {
		t.Errorf("Data = %q, want PNG bytes", out.Data)
	}
	if out.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", out.Attempts)
	}
	if gotPath != "/s/1f600_1f60e" || gotQuery != "256" {
		t.Errorf("request = %s?size=%s, want /s/1f600_1f60e?size=256", gotPath, gotQuery)
	}
	if gotUA != "test" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "test")
	}
}

func TestClient_FetchClassification(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantKind     model.ErrorKind
		wantAttempts int
	}{
		{"not found is not retried", http.StatusNotFound, "", model.KindNotFound, 1},
		{"bad request is not retried", http.StatusBadRequest, "bad", model.KindClientError, 1},
		{"too many requests is a client error", http.StatusTooManyRequests, "", model.KindClientError, 1},
		{"service unavailable is retried", http.StatusServiceUnavailable, "", model.KindServerError, 4},
		{"internal error is retried", http.StatusInternalServerError, "boom", model.KindServerError, 4},
		{"empty ok body is retried", http.StatusOK, "", model.KindServerError, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(testConfig(srv.URL))
			out := c.Fetch(context.Background(), model.NewPair("😀", "😎"), 64)

			if out.OK() {
				t.Fatal("Fetch() succeeded, want failure")
			}
			if out.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", out.Kind, tt.wantKind)
			}
			if out.Status != tt.status {
				t.Errorf("Status = %d, want %d", out.Status, tt.status)
			}
			if int(calls) != tt.wantAttempts || out.Attempts != tt.wantAttempts {
				t.Errorf("calls = %d, Attempts = %d, want %d", calls, out.Attempts, tt.wantAttempts)
			}
		})
	}
}

func TestClient_FetchRecoversAfterRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(pngMagic)
	}))
	defer srv.Close()

	c := newTestClient(testConfig(srv.URL))
	out := c.Fetch(context.Background(), model.NewPair("😀", "😎"), 64)

	if !out.OK() {
		t.Fatalf("Fetch() failed: %s %s", out.Kind, out.Message)
	}
	if out.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", out.Attempts)
	}
}

func TestClient_FetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	cfg := testConfig(url)
	cfg.MaxRetries = 1
	out := newTestClient(cfg).Fetch(context.Background(), model.NewPair("😀", "😎"), 64)

	if out.Kind != model.KindNetworkError {
		t.Errorf("Kind = %s, want NetworkError", out.Kind)
	}
	if out.Status != 0 {
		t.Errorf("Status = %d, want 0", out.Status)
	}
	if out.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", out.Attempts)
	}
}

func TestClient_FetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	cfg.MaxRetries = 0
	out := newTestClient(cfg).Fetch(context.Background(), model.NewPair("😀", "😎"), 64)

	if out.Kind != model.KindNetworkError {
		t.Errorf("Kind = %s, want NetworkError", out.Kind)
	}
}

func TestClient_VerifyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>rate limited</html>")
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.VerifyContent = true
	out := newTestClient(cfg).Fetch(context.Background(), model.NewPair("😀", "😎"), 64)

	if out.Kind != model.KindInvalidContent {
		t.Errorf("Kind = %s, want InvalidContent", out.Kind)
	}
	if out.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", out.Attempts)
	}

	cfg.VerifyContent = false
	if out := newTestClient(cfg).Fetch(context.Background(), model.NewPair("😀", "😎"), 64); !out.OK() {
		t.Errorf("without verification the body should be accepted, got %s", out.Kind)
	}
}

func TestClient_InvalidInput(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := newTestClient(testConfig(srv.URL))
	out := c.Fetch(context.Background(), model.NewPair("", "😎"), 64)

	if out.Kind != model.KindInvalidInput {
		t.Errorf("Kind = %s, want InvalidInput", out.Kind)
	}
	if calls != 0 {
		t.Errorf("server called %d times, want 0", calls)
	}
}

func TestClient_ConcurrencyCeiling(t *testing.T) {
	const ceiling = 3
	var inflight, peak int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inflight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inflight, -1)
		w.Write(pngMagic)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxConcurrent = ceiling
	c := newTestClient(cfg)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if out := c.Fetch(context.Background(), model.NewPair("😀", "😎"), 64); !out.OK() {
				t.Errorf("Fetch() failed: %s", out.Message)
			}
		}()
	}
	wg.Wait()

	if peak > ceiling {
		t.Errorf("peak in-flight = %d, want <= %d", peak, ceiling)
	}
	if peak == 0 {
		t.Error("no requests observed")
	}
}

func TestClient_PermitsReleasedOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxConcurrent = 1
	cfg.MaxRetries = 1
	c := newTestClient(cfg)

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		out := c.Fetch(ctx, model.NewPair("😀", "😎"), 64)
		cancel()
		if out.Kind != model.KindServerError {
			t.Fatalf("iteration %d: Kind = %s, want ServerError (permit leak?)", i, out.Kind)
		}
	}
}

func TestClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngMagic)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := newTestClient(testConfig(srv.URL)).Fetch(ctx, model.NewPair("😀", "😎"), 64)
	if out.Kind != model.KindNetworkError {
		t.Errorf("Kind = %s, want NetworkError", out.Kind)
	}
	if out.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", out.Attempts)
	}
}

// stampServer records the arrival time of every request and answers with
// status, or a PNG body when status is 200.
func stampServer(status int) (*httptest.Server, func() []time.Time) {
	var mu sync.Mutex
	var stamps []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Write(pngMagic)
	}))
	return srv, func() []time.Time {
		mu.Lock()
		defer mu.Unlock()
		return append([]time.Time(nil), stamps...)
	}
}

func TestClient_PacingDelay(t *testing.T) {
	srv, stamps := stampServer(http.StatusOK)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Delay = 30 * time.Millisecond
	cfg.MaxConcurrent = 1
	c := newTestClient(cfg)

	for _, e := range []string{"😎", "🐶", "🐱"} {
		if out := c.Fetch(context.Background(), model.NewPair("😀", e), 64); !out.OK() {
			t.Fatalf("Fetch(%s) = %+v, want success", e, out)
		}
	}

	got := stamps()
	if len(got) != 3 {
		t.Fatalf("server saw %d requests, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if gap := got[i].Sub(got[i-1]); gap < cfg.Delay {
			t.Errorf("gap before request %d = %v, want >= %v", i, gap, cfg.Delay)
		}
	}
}

func TestClient_BackoffGrows(t *testing.T) {
	srv, stamps := stampServer(http.StatusServiceUnavailable)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 3
	cfg.RetryCooldown = 10 * time.Millisecond
	cfg.RetryExponent = 2
	c := newTestClient(cfg)

	out := c.Fetch(context.Background(), model.NewPair("😀", "😎"), 64)
	if out.Kind != model.KindServerError || out.Attempts != 4 {
		t.Fatalf("Fetch() = %+v, want ServerError after 4 attempts", out)
	}

	got := stamps()
	if len(got) != 4 {
		t.Fatalf("server saw %d requests, want 4", len(got))
	}

	// cooldown * exponent^n
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}
	for i, min := range want {
		if gap := got[i+1].Sub(got[i]); gap < min {
			t.Errorf("wait before retry %d = %v, want >= %v", i+1, gap, min)
		}
	}
	if first, last := got[1].Sub(got[0]), got[3].Sub(got[2]); last <= first {
		t.Errorf("last wait %v not longer than first %v", last, first)
	}
}
