package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Failed to read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("Failed to read gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/v1/drugs/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := counterValue(t, HTTPRequestTotals.WithLabelValues("GET", "/v1/drugs/{name}", "418"))

	req := httptest.NewRequest(http.MethodGet, "/v1/drugs/aspirin", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	after := counterValue(t, HTTPRequestTotals.WithLabelValues("GET", "/v1/drugs/{name}", "418"))
	if after-before != 1 {
		t.Errorf("Expected counter to increase by 1, got %v", after-before)
	}
	if got := gaugeValue(t, HTTPRequestInFlight); got != 0 {
		t.Errorf("Expected no in-flight requests after completion, got %v", got)
	}
}

func TestMetricsMiddlewareWithoutRouter(t *testing.T) {
	handler := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	before := counterValue(t, HTTPRequestTotals.WithLabelValues("GET", "unmatched", "200"))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/anything", nil))

	after := counterValue(t, HTTPRequestTotals.WithLabelValues("GET", "unmatched", "200"))
	if after-before != 1 {
		t.Errorf("Expected unmatched counter to increase by 1, got %v", after-before)
	}
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	m := &dto.Metric{}
	if err := o.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("Failed to read histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsMiddlewareRecordsResponseSize(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/v1/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"مسکن"}]`))
	})

	before := histogramCount(t, HTTPResponseSize.WithLabelValues("/v1/categories"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/categories", nil))

	after := histogramCount(t, HTTPResponseSize.WithLabelValues("/v1/categories"))
	if after-before != 1 {
		t.Errorf("Expected one size observation, got %d", after-before)
	}
	if before := counterValue(t, HTTPRequestTotals.WithLabelValues("GET", "/v1/categories", "200")); before < 1 {
		t.Errorf("Expected implicit 200 status to be recorded, got %v", before)
	}
}
