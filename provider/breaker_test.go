package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/giygas/drugs-api/apperrors"
)

func newBreakerClient(url string, failures uint32, cooldown time.Duration) *Client {
	cfg := DefaultConfig("sk-test")
	cfg.BaseURL = url
	cfg.Timeout = 5 * time.Second
	cfg.Breaker = BreakerConfig{Failures: failures, Cooldown: cooldown}
	return NewClient(cfg)
}

func TestBreakerDisabledByDefault(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1", "sk-test")
	if got := client.BreakerState(); got != "disabled" {
		t.Errorf("Expected disabled breaker, got %s", got)
	}
}

func TestBreakerOpensAfterConsecutiveServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newBreakerClient(server.URL, 2, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := client.Send(context.Background(), "hello")
		var upstreamErr *apperrors.UpstreamError
		if !errors.As(err, &upstreamErr) {
			t.Fatalf("call %d: expected UpstreamError, got %v", i, err)
		}
	}

	if got := client.BreakerState(); got != "open" {
		t.Fatalf("Expected open breaker, got %s", got)
	}

	_, err := client.Send(context.Background(), "hello")
	var transportErr *apperrors.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError, got %T: %v", err, err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected the open-state cause, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected no request while open, got %d requests", calls.Load())
	}
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer server.Close()

	client := newBreakerClient(server.URL, 2, time.Minute)

	for i := 0; i < 4; i++ {
		_, err := client.Send(context.Background(), "hello")
		var upstreamErr *apperrors.UpstreamError
		if !errors.As(err, &upstreamErr) {
			t.Fatalf("call %d: expected UpstreamError, got %v", i, err)
		}
	}

	if calls.Load() != 4 {
		t.Errorf("Expected every call to reach the provider, got %d", calls.Load())
	}
	if got := client.BreakerState(); got != "closed" {
		t.Errorf("Expected closed breaker, got %s", got)
	}
}

func TestBreakerRecoversAfterCooldown(t *testing.T) {
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client := newBreakerClient(server.URL, 1, 50*time.Millisecond)

	if _, err := client.Send(context.Background(), "hello"); err == nil {
		t.Fatal("Expected the first call to fail")
	}
	if got := client.BreakerState(); got != "open" {
		t.Fatalf("Expected open breaker, got %s", got)
	}

	healthy.Store(true)
	time.Sleep(100 * time.Millisecond)

	reply, err := client.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Expected the trial request to succeed, got %v", err)
	}
	if reply.Content != "ok" {
		t.Errorf("Unexpected content %q", reply.Content)
	}
	if got := client.BreakerState(); got != "closed" {
		t.Errorf("Expected closed breaker, got %s", got)
	}
}

func TestProviderUnavailable(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"transport", &apperrors.TransportError{Cause: errors.New("refused")}, true},
		{"server error", &apperrors.UpstreamError{StatusCode: 503}, true},
		{"client error", &apperrors.UpstreamError{StatusCode: 429}, false},
		{"configuration", &apperrors.ConfigurationError{Reason: "no key"}, false},
		{"protocol", &apperrors.ProtocolError{Raw: "{}"}, false},
		{"nil", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := providerUnavailable(tc.err); got != tc.want {
				t.Errorf("providerUnavailable() = %v, want %v", got, tc.want)
			}
		})
	}
}
