package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/giygas/drugs-api/apperrors"
	"github.com/giygas/drugs-api/entities"
)

func newTestClient(url, key string) *Client {
	cfg := DefaultConfig(key)
	cfg.BaseURL = url
	cfg.Timeout = 5 * time.Second
	return NewClient(cfg)
}

func TestSendSuccess(t *testing.T) {
	var got chatRequest
	var headers http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" || r.Method != http.MethodPost {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-4o-2024","choices":[{"message":{"role":"assistant","content":"{\"name\":\"x\"}"}}],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`))
	}))
	defer server.Close()

	reply, err := newTestClient(server.URL+"/", "sk-test").Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := entities.RawReply{
		Content: `{"name":"x"}`,
		Model:   "gpt-4o-2024",
		Usage:   &entities.Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7},
	}
	if diff := cmp.Diff(want, reply); diff != "" {
		t.Errorf("reply mismatch (-want +got):\n%s", diff)
	}

	wantReq := chatRequest{
		Model:       DefaultModel,
		Messages:    []chatMessage{{Role: "user", Content: "hello"}},
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
	if diff := cmp.Diff(wantReq, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	if headers.Get("Authorization") != "Bearer sk-test" {
		t.Errorf("Unexpected Authorization header %q", headers.Get("Authorization"))
	}
	if headers.Get("X-Request-ID") == "" {
		t.Error("Expected an X-Request-ID header")
	}
}

func TestSendWithoutKeyIssuesNoRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	for _, key := range []string{"", "   "} {
		_, err := newTestClient(server.URL, key).Send(context.Background(), "hello")
		var cfgErr *apperrors.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("Expected ConfigurationError for key %q, got %v", key, err)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("Expected no network calls, got %d", calls.Load())
	}
}

func TestSendUpstreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"provider message", http.StatusUnauthorized, `{"error":{"message":"invalid api key"}}`, "invalid api key"},
		{"fallback to status text", http.StatusTooManyRequests, `rate limited`, "429 Too Many Requests"},
		{"empty message", http.StatusInternalServerError, `{"error":{"message":""}}`, "500 Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, "sk-test").Send(context.Background(), "hello")
			var upErr *apperrors.UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("Expected UpstreamError, got %v", err)
			}
			if upErr.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, upErr.StatusCode)
			}
			if upErr.ProviderMessage != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, upErr.ProviderMessage)
			}
		})
	}
}

func TestSendProtocolErrors(t *testing.T) {
	bodies := map[string]string{
		"not json":        `<html>gateway</html>`,
		"no choices":      `{"choices":[]}`,
		"no message":      `{"choices":[{"index":0}]}`,
		"null content":    `{"choices":[{"message":{"content":null}}]}`,
		"missing content": `{"choices":[{"message":{"role":"assistant"}}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, "sk-test").Send(context.Background(), "hello")
			var protoErr *apperrors.ProtocolError
			if !errors.As(err, &protoErr) {
				t.Fatalf("Expected ProtocolError, got %v", err)
			}
			if protoErr.Raw != body {
				t.Errorf("Expected raw body %q, got %q", body, protoErr.Raw)
			}
		})
	}
}

func TestSendEmptyContentIsNotAProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	}))
	defer server.Close()

	reply, err := newTestClient(server.URL, "sk-test").Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if reply.Content != "" {
		t.Errorf("Expected empty content, got %q", reply.Content)
	}
}

func TestSendTransportErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := newTestClient(url, "sk-test").Send(context.Background(), "hello")
		var trErr *apperrors.TransportError
		if !errors.As(err, &trErr) {
			t.Fatalf("Expected TransportError, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := newTestClient(server.URL, "sk-test").Send(ctx, "hello")
		var trErr *apperrors.TransportError
		if !errors.As(err, &trErr) {
			t.Fatalf("Expected TransportError, got %v", err)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected the cause to unwrap to DeadlineExceeded, got %v", err)
		}
	})
}

func TestProtocolErrorRawIsTruncated(t *testing.T) {
	body := strings.Repeat("x", 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, "sk-test").Send(context.Background(), "hello")
	var protoErr *apperrors.ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("Expected ProtocolError, got %v", err)
	}
	if len(protoErr.Raw) > rawSnippet+len("…") {
		t.Errorf("Expected raw payload to be truncated, got %d bytes", len(protoErr.Raw))
	}
}
