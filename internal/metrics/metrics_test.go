package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-manual/internal/metrics"
	"github.com/goliatone/go-manual/internal/render"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRenderCountsByKind(t *testing.T) {
	m := metrics.New()
	renderer := render.NewRenderer(render.WithObserver(m))

	renderer.Render("<p>x</p>")
	renderer.Render("plain")
	renderer.Render("more plain")

	if got := testutil.ToFloat64(m.RendersTotal.WithLabelValues(string(render.KindBlocks))); got != 2 {
		t.Fatalf("expected 2 block renders, got %v", got)
	}
	if got := testutil.ToFloat64(m.RendersTotal.WithLabelValues(string(render.KindHTML))); got != 1 {
		t.Fatalf("expected 1 markup render, got %v", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := metrics.New()
	m.ObserveRequest("manual.search", http.StatusOK, 5*time.Millisecond)
	m.ObserveUpload(true, 10)
	m.ObserveUpload(false, 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, name := range []string{
		`manual_rpc_requests_total{procedure="manual.search",status="OK"} 1`,
		`manual_files_upload_bytes_total 10`,
		`manual_files_uploads_total{status="failed"} 1`,
	} {
		if !strings.Contains(string(body), name) {
			t.Fatalf("expected %q in metrics output", name)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveRender(render.KindHTML, time.Millisecond)
	m.ObserveRequest("x", http.StatusOK, time.Millisecond)
	m.ObserveUpload(true, 1)
}
