package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Load("url", "ok")
	m.Fetch("https", 0.1)
	m.StorageFailure("get")
	m.Render()
	m.SSEClients(1)
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.Load("bundled", "ok")
	m.Load("bundled", "ok")
	m.StorageFailure("set")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`aquatrack_loads_total{origin="bundled",outcome="ok"} 2`,
		`aquatrack_cache_failures_total{op="set"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
