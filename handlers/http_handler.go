// Package handlers provides HTTP request handlers for the drug knowledge API.
// Handlers validate user input, bound each query with a timeout and map the
// client error taxonomy to HTTP status codes.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/giygas/drugs-api/apperrors"
	"github.com/giygas/drugs-api/interfaces"
	"github.com/giygas/drugs-api/logging"
)

// Compile-time check
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	service        interfaces.DrugQueryService
	validator      interfaces.InputValidator
	healthChecker  interfaces.HealthChecker
	probeStore     interfaces.ProbeStore
	requestTimeout time.Duration
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(service interfaces.DrugQueryService, validator interfaces.InputValidator,
	healthChecker interfaces.HealthChecker, probeStore interfaces.ProbeStore, requestTimeout time.Duration) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		service:        service,
		validator:      validator,
		healthChecker:  healthChecker,
		probeStore:     probeStore,
		requestTimeout: requestTimeout,
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// respondWithQueryError maps the query error taxonomy to a status code
func (h *HTTPHandlerImpl) respondWithQueryError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		inputErr      *apperrors.InputError
		notFoundErr   *apperrors.NotFoundError
		configErr     *apperrors.ConfigurationError
		transportErr  *apperrors.TransportError
		upstreamErr   *apperrors.UpstreamError
		protocolErr   *apperrors.ProtocolError
		validationErr *apperrors.ValidationError
	)

	requestID := middleware.GetReqID(r.Context())

	switch {
	case errors.As(err, &inputErr):
		h.RespondWithError(w, http.StatusBadRequest, inputErr.Error())

	case errors.As(err, &notFoundErr):
		h.RespondWithError(w, http.StatusNotFound, notFoundErr.Error())

	case errors.As(err, &configErr):
		logging.Error("Provider is not configured", "request_id", requestID, "error", err)
		h.RespondWithError(w, http.StatusServiceUnavailable, "Drug information service is not configured")

	case errors.As(err, &transportErr):
		logging.Warn("Provider unreachable", "request_id", requestID, "error", err)
		h.RespondWithError(w, http.StatusServiceUnavailable, "Drug information service is temporarily unavailable")

	case errors.As(err, &upstreamErr):
		h.RespondWithError(w, http.StatusBadGateway, fmt.Sprintf("Provider error: %s", upstreamErr.ProviderMessage))

	case errors.As(err, &protocolErr):
		logging.Error("Malformed provider envelope", "request_id", requestID, "raw", protocolErr.Raw)
		h.RespondWithError(w, http.StatusBadGateway, "Invalid response from the drug information provider")

	case errors.As(err, &validationErr):
		logging.Warn("Provider payload rejected",
			"request_id", requestID,
			"kind", validationErr.Kind.String(),
			"detail", validationErr.Detail,
			"snippet", validationErr.Snippet,
		)
		h.RespondWithError(w, http.StatusBadGateway, "The provider returned data that could not be understood")

	default:
		logging.Error("Unexpected query error", "request_id", requestID, "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// queryContext bounds a query with the configured request timeout
func (h *HTTPHandlerImpl) queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.requestTimeout)
}

// pathParam returns the decoded URL parameter key
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return strings.TrimSpace(decoded)
	}
	return strings.TrimSpace(raw)
}

// LookupDrug returns the full profile of one drug
func (h *HTTPHandlerImpl) LookupDrug(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if err := h.validator.ValidateInput(name); err != nil {
		logging.Warn("Unusual user input", "name", name)
		h.respondWithQueryError(w, r, err)
		return
	}

	ctx, cancel := h.queryContext(r)
	defer cancel()

	record, err := h.service.LookupDrug(ctx, name)
	if err != nil {
		h.respondWithQueryError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, record)
}

// SearchDrugs searches drugs related to ?q=, at most ?limit= results
func (h *HTTPHandlerImpl) SearchDrugs(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if err := h.validator.ValidateInput(q); err != nil {
		logging.Warn("Unusual user input", "q", q)
		h.respondWithQueryError(w, r, err)
		return
	}

	limit, err := h.validator.ValidateLimit(r.URL.Query().Get("limit"), 0)
	if err != nil {
		h.respondWithQueryError(w, r, err)
		return
	}

	ctx, cancel := h.queryContext(r)
	defer cancel()

	result, err := h.service.SearchDrugs(ctx, q, limit)
	if err != nil {
		h.respondWithQueryError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, result)
}

// ListCategories returns the category catalog
func (h *HTTPHandlerImpl) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.queryContext(r)
	defer cancel()

	catalog, err := h.service.ListCategories(ctx)
	if err != nil {
		h.respondWithQueryError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, catalog)
}

// DrugsByCategory lists the drugs of one category
func (h *HTTPHandlerImpl) DrugsByCategory(w http.ResponseWriter, r *http.Request) {
	category := pathParam(r, "category")
	if err := h.validator.ValidateInput(category); err != nil {
		logging.Warn("Unusual user input", "category", category)
		h.respondWithQueryError(w, r, err)
		return
	}

	limit, err := h.validator.ValidateLimit(r.URL.Query().Get("limit"), 0)
	if err != nil {
		h.respondWithQueryError(w, r, err)
		return
	}

	ctx, cancel := h.queryContext(r)
	defer cancel()

	result, err := h.service.DrugsByCategory(ctx, category, limit)
	if err != nil {
		h.respondWithQueryError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, result)
}

// CommonDrugs lists frequently used drugs
func (h *HTTPHandlerImpl) CommonDrugs(w http.ResponseWriter, r *http.Request) {
	limit, err := h.validator.ValidateLimit(r.URL.Query().Get("limit"), 0)
	if err != nil {
		h.respondWithQueryError(w, r, err)
		return
	}

	ctx, cancel := h.queryContext(r)
	defer cancel()

	result, err := h.service.CommonDrugs(ctx, limit)
	if err != nil {
		h.respondWithQueryError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, result)
}

// HealthCheck returns server and provider health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.healthChecker.HealthCheck()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var uptime time.Duration
	if start := h.probeStore.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	response := HealthResponse{
		Status:        status,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
