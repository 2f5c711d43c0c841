package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)

	before := testutil.ToFloat64(PairOutcomes.WithLabelValues("skipped"))
	PairOutcomes.WithLabelValues("skipped").Add(2)
	if got := testutil.ToFloat64(PairOutcomes.WithLabelValues("skipped")) - before; got != 2 {
		t.Fatalf("skipped delta = %v, want 2", got)
	}

	InflightFetches.Set(3)
	expected := `# HELP emoji_kitchen_inflight_fetches Requests currently holding a concurrency permit.
# TYPE emoji_kitchen_inflight_fetches gauge
emoji_kitchen_inflight_fetches 3
`
	if err := testutil.CollectAndCompare(InflightFetches, strings.NewReader(expected)); err != nil {
		t.Fatalf("unexpected inflight gauge: %v", err)
	}
	InflightFetches.Set(0)
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "router_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	srv := httptest.NewServer(NewRouter(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(body), "router_test_total 1") {
		t.Errorf("metrics body missing counter:\n%s", body)
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", resp.StatusCode)
	}
}
