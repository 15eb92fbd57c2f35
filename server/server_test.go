package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/drugs-api/config"
)

// recordingHandler implements interfaces.HTTPHandler and writes the name of
// the handler that was hit
type recordingHandler struct{}

func (recordingHandler) write(w http.ResponseWriter, name string) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(name))
}

func (h recordingHandler) LookupDrug(w http.ResponseWriter, r *http.Request) {
	h.write(w, "lookup")
}
func (h recordingHandler) SearchDrugs(w http.ResponseWriter, r *http.Request) {
	h.write(w, "search")
}
func (h recordingHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	h.write(w, "categories")
}
func (h recordingHandler) DrugsByCategory(w http.ResponseWriter, r *http.Request) {
	h.write(w, "by-category")
}
func (h recordingHandler) CommonDrugs(w http.ResponseWriter, r *http.Request) {
	h.write(w, "common")
}
func (h recordingHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.write(w, "health")
}

func testConfig() *config.Config {
	return &config.Config{
		Port:           "8080",
		Address:        "127.0.0.1",
		Env:            config.EnvTest,
		LogLevel:       "info",
		MaxRequestBody: 1048576,
		MaxHeaderSize:  1048576,
		RequestTimeout: 5 * time.Second,
	}
}

func TestNewServer(t *testing.T) {
	s := NewServer(testConfig(), recordingHandler{})

	if s.server.Addr != "127.0.0.1:8080" {
		t.Errorf("Unexpected address %s", s.server.Addr)
	}
	if s.server.WriteTimeout <= 5*time.Second {
		t.Errorf("Write timeout %v must exceed the request timeout", s.server.WriteTimeout)
	}
}

func TestRoutes(t *testing.T) {
	s := NewServer(testConfig(), recordingHandler{})

	tests := []struct {
		path string
		want string
	}{
		{"/v1/drugs?q=aspirin", "search"},
		{"/v1/drugs/aspirin", "lookup"},
		{"/v1/categories", "categories"},
		{"/v1/categories/pain/drugs", "by-category"},
		{"/v1/common-drugs", "common"},
		{"/health", "health"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rr := httptest.NewRecorder()
			s.Router().ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", rr.Code)
			}
			if rr.Body.String() != tt.want {
				t.Errorf("Expected handler %s, got %s", tt.want, rr.Body.String())
			}
			if rr.Header().Get("X-RateLimit-Limit") == "" {
				t.Error("Expected rate limit headers")
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(testConfig(), recordingHandler{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "provider_requests_total") && !strings.Contains(rr.Body.String(), "http_request_in_flight") {
		t.Error("Expected application metrics in the exposition")
	}
}

func TestUnknownRoute(t *testing.T) {
	s := NewServer(testConfig(), recordingHandler{})

	req := httptest.NewRequest(http.MethodGet, "/v1/unknown", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
}

func TestBlockDirectAccessOnlyInProduction(t *testing.T) {
	cfg := testConfig()
	cfg.Env = config.EnvProduction
	s := NewServer(cfg, recordingHandler{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "203.0.113.7:4000"
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 in production, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "203.0.113.7:4000"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	rr = httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected proxied request to pass, got %d", rr.Code)
	}
}

func TestShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.Port = "0"
	s := NewServer(cfg, recordingHandler{})

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start returned %v after shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after shutdown")
	}
}
