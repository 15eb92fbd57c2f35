// Package health reports whether the service can answer drug queries.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/drugs-api/apperrors"
	"github.com/giygas/drugs-api/interfaces"
)

// staleProbes is how many probe intervals may pass without a success
// before the service is reported unhealthy
const staleProbes = 3

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store         interfaces.ProbeStore
	hasCredential bool
	probeInterval time.Duration
	now           func() time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies.
// A zero probeInterval means probing is disabled.
func NewHealthChecker(store interfaces.ProbeStore, hasCredential bool, probeInterval time.Duration) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		store:         store,
		hasCredential: hasCredential,
		probeInterval: probeInterval,
		now:           time.Now,
	}
}

// HealthCheck returns status, details and the HTTP code for /health
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	now := h.now()
	probe, probed := h.store.LastProbe()
	lastSuccess := h.store.LastSuccess()

	data = map[string]any{
		"provider_configured": h.hasCredential,
		"probe_enabled":       h.probeInterval > 0,
		"is_probing":          h.store.IsProbing(),
	}
	if start := h.store.GetServerStartTime(); !start.IsZero() {
		data["uptime_seconds"] = math.Round(now.Sub(start).Seconds())
	}
	if probed {
		data["last_probe"] = probe.At.Format(time.RFC3339)
		data["last_probe_ok"] = probe.Err == ""
		data["last_probe_duration_ms"] = probe.Duration.Milliseconds()
		if probe.Err != "" {
			data["last_probe_error"] = probe.ErrKind
		} else {
			data["categories"] = probe.Categories
		}
	}
	if !lastSuccess.IsZero() {
		data["last_success"] = lastSuccess.Format(time.RFC3339)
	}

	switch {
	case !h.hasCredential:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case !probed || probe.Err == "":
		status = "healthy"
		httpStatus = http.StatusOK

	case probe.ErrKind == apperrors.KindConfiguration:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case !lastSuccess.IsZero() && now.Sub(lastSuccess) <= staleProbes*h.probeInterval:
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	return status, data, httpStatus
}
