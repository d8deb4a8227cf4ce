package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/breadthfirst/pkg/observability"
)

func TestCacheLookups(t *testing.T) {
	c := New()
	ctx := context.Background()

	c.OnCacheHit(ctx, "layout")
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 128)

	expected := `
		# HELP breadthfirst_cache_lookups_total Cache lookups by key type and outcome
		# TYPE breadthfirst_cache_lookups_total counter
		breadthfirst_cache_lookups_total{key_type="artifact",outcome="miss"} 1
		breadthfirst_cache_lookups_total{key_type="layout",outcome="hit"} 2
	`
	if err := testutil.CollectAndCompare(c.CacheLookups, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
	if got := testutil.ToFloat64(c.CacheBytes.WithLabelValues("artifact")); got != 128 {
		t.Errorf("cache bytes = %v, want 128", got)
	}
}

func TestPipelineHooks(t *testing.T) {
	c := New()
	ctx := context.Background()

	c.OnLayoutStart(ctx, 10, 12)
	c.OnLayoutComplete(ctx, 4, 3*time.Millisecond, nil)
	c.OnLayoutComplete(ctx, 0, time.Millisecond, errors.New("boom"))
	c.OnCycleDetected(ctx, "cycle")
	c.OnRenderComplete(ctx, []string{"svg", "png"}, time.Second, nil)

	if got := testutil.ToFloat64(c.Cycles); got != 1 {
		t.Errorf("cycles = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.Layouts); got != 2 {
		t.Errorf("layout series = %d, want 2 (ok and error)", got)
	}
	if got := testutil.CollectAndCount(c.Renders, "breadthfirst_render_duration_seconds"); got != 1 {
		t.Errorf("render series = %d, want 1", got)
	}
}

func TestServerHooks(t *testing.T) {
	c := New()
	ctx := context.Background()

	c.OnRequest(ctx, http.MethodGet, "/healthz")
	if got := testutil.ToFloat64(c.InFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	c.OnResponse(ctx, http.MethodGet, "/healthz", http.StatusOK, 5*time.Millisecond)
	if got := testutil.ToFloat64(c.InFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.CollectAndCount(c.Requests); got != 1 {
		t.Errorf("request series = %d, want 1", got)
	}
}

func TestInstall(t *testing.T) {
	defer observability.Reset()
	c := New()
	c.Install()

	observability.Cache().OnCacheMiss(context.Background(), "layout")
	if got := testutil.ToFloat64(c.CacheLookups.WithLabelValues("layout", "miss")); got != 1 {
		t.Errorf("installed hooks not used: misses = %v", got)
	}
}

func TestHandler(t *testing.T) {
	c := New()
	c.OnCycleDetected(context.Background(), "cycle")

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "breadthfirst_maximal_adjustments_abandoned_total 1") {
		t.Errorf("metrics output missing cycle counter:\n%s", body)
	}
}

func TestJoinFormats(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, "none"},
		{[]string{"svg"}, "svg"},
		{[]string{"svg", "png"}, "svg,png"},
	}
	for _, tt := range tests {
		if got := joinFormats(tt.in); got != tt.want {
			t.Errorf("joinFormats(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
