package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/giygas/drugs-api/apperrors"
	"github.com/giygas/drugs-api/entities"
	"github.com/giygas/drugs-api/logging"
	"github.com/giygas/drugs-api/metrics"
)

// DefaultBreakerCooldown is how long an open breaker waits before a trial request.
const DefaultBreakerCooldown = 30 * time.Second

// BreakerConfig enables the optional circuit breaker. Failures == 0 disables it.
type BreakerConfig struct {
	Failures uint32        // consecutive failures that open the breaker
	Cooldown time.Duration // open period before moving to half-open
}

func newBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker[entities.RawReply] {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultBreakerCooldown
	}

	metrics.ProviderBreakerState.Set(stateValue(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker[entities.RawReply](gobreaker.Settings{
		Name:        "provider",
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		IsSuccessful: func(err error) bool {
			return !providerUnavailable(err)
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("Provider circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.ProviderBreakerState.Set(stateValue(to))
		},
	})
}

// providerUnavailable reports whether err means the provider itself is failing.
// Bad credentials, rejected requests and malformed replies do not count.
func providerUnavailable(err error) bool {
	var transportErr *apperrors.TransportError
	if errors.As(err, &transportErr) {
		return true
	}
	var upstreamErr *apperrors.UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// BreakerState returns the breaker state name, or "disabled".
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}
