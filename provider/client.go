// Package provider talks to an OpenAI-compatible chat completions endpoint.
// It sends at most one request per call and never retries.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/giygas/drugs-api/apperrors"
	"github.com/giygas/drugs-api/entities"
	"github.com/giygas/drugs-api/interfaces"
	"github.com/giygas/drugs-api/logging"
	"github.com/giygas/drugs-api/metrics"
)

const (
	DefaultBaseURL     = "https://api.gapgpt.app/v1"
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 4000
	DefaultTimeout     = 120 * time.Second

	maxBodySize = 1 << 20 // 1MB
	rawSnippet  = 512
)

var _ interfaces.Transport = (*Client)(nil)

// Config configures a Client. The key is passed in explicitly.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Breaker     BreakerConfig
}

// DefaultConfig returns the stock provider settings for apiKey.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:      apiKey,
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Timeout:     DefaultTimeout,
	}
}

// Client is the transport to the text-generation provider.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker[entities.RawReply]
}

// NewClient creates a client. Zero-valued fields fall back to defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if cfg.Breaker.Failures > 0 {
		c.breaker = newBreaker(cfg.Breaker)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *entities.Usage `json:"usage"`
}

type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Send posts promptText as a single user message and returns the reply text.
func (c *Client) Send(ctx context.Context, promptText string) (entities.RawReply, error) {
	start := time.Now()
	reply, err := c.execute(ctx, promptText)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = apperrors.Classify(err)
	}
	metrics.ProviderRequestTotals.WithLabelValues(outcome).Inc()
	metrics.ProviderRequestDuration.Observe(time.Since(start).Seconds())

	return reply, err
}

func (c *Client) execute(ctx context.Context, promptText string) (entities.RawReply, error) {
	if c.breaker == nil {
		return c.send(ctx, promptText)
	}

	reply, err := c.breaker.Execute(func() (entities.RawReply, error) {
		return c.send(ctx, promptText)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logging.Warn("Provider request rejected by circuit breaker", "error", err)
		return entities.RawReply{}, &apperrors.TransportError{Cause: err}
	}
	return reply, err
}

func (c *Client) send(ctx context.Context, promptText string) (entities.RawReply, error) {
	if c.apiKey == "" {
		return entities.RawReply{}, &apperrors.ConfigurationError{Reason: "API key not configured"}
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: promptText}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return entities.RawReply{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return entities.RawReply{}, &apperrors.ConfigurationError{Reason: fmt.Sprintf("invalid base URL: %v", err)}
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-ID", requestID)

	logging.Debug("Sending provider request", "request_id", requestID, "model", c.model, "prompt_len", len(promptText))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		logging.Warn("Provider request failed", "request_id", requestID, "error", err)
		return entities.RawReply{}, &apperrors.TransportError{Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		logging.Warn("Failed to read provider response", "request_id", requestID, "error", err)
		return entities.RawReply{}, &apperrors.TransportError{Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamErr := &apperrors.UpstreamError{
			StatusCode:      resp.StatusCode,
			ProviderMessage: providerMessage(resp, data),
		}
		logging.Warn("Provider returned an error status", "request_id", requestID, "status", resp.StatusCode, "message", upstreamErr.ProviderMessage)
		return entities.RawReply{}, upstreamErr
	}

	var envelope chatResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return entities.RawReply{}, &apperrors.ProtocolError{Raw: apperrors.Truncate(string(data), rawSnippet)}
	}
	if len(envelope.Choices) == 0 || envelope.Choices[0].Message == nil || envelope.Choices[0].Message.Content == nil {
		return entities.RawReply{}, &apperrors.ProtocolError{Raw: apperrors.Truncate(string(data), rawSnippet)}
	}

	reply := entities.RawReply{
		Content: *envelope.Choices[0].Message.Content,
		Model:   envelope.Model,
		Usage:   envelope.Usage,
	}

	logging.Debug("Provider request completed", "request_id", requestID, "model", reply.Model, "content_len", len(reply.Content))
	return reply, nil
}

// providerMessage prefers the provider's error.message and falls back to
// "<status code> <status text>".
func providerMessage(resp *http.Response, body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		if msg := strings.TrimSpace(env.Error.Message); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
