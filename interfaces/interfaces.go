// Package interfaces defines core abstractions for the drug knowledge API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/drugs-api/entities"
	"github.com/giygas/drugs-api/prompt"
)

// Transport sends one rendered prompt to the text-generation provider.
// Implementations never retry; retry policy belongs to the caller.
type Transport interface {
	Send(ctx context.Context, promptText string) (entities.RawReply, error)
}

// PayloadValidator turns a JSON candidate into a trusted domain value.
type PayloadValidator interface {
	// Validate dispatches on intent and returns a DrugRecord, Catalog or SearchResultSet
	Validate(candidate string, intent prompt.Intent) (any, error)

	ValidateDrug(candidate string) (entities.DrugRecord, error)
	ValidateCatalog(candidate string) (entities.Catalog, error)
	ValidateSearch(candidate, query string, limit int) (entities.SearchResultSet, error)
}

// InputValidator guards user input before it reaches the query service.
type InputValidator interface {
	ValidateInput(input string) error
	ValidateLimit(raw string, defaultLimit int) (int, error)
}

// DrugQueryService is the only surface consumers call.
// Every method issues exactly one logical upstream request.
type DrugQueryService interface {
	LookupDrug(ctx context.Context, name string) (entities.DrugRecord, error)
	ListCategories(ctx context.Context) (entities.Catalog, error)
	SearchDrugs(ctx context.Context, query string, limit int) (entities.SearchResultSet, error)
	DrugsByCategory(ctx context.Context, category string, limit int) (entities.SearchResultSet, error)
	CommonDrugs(ctx context.Context, limit int) (entities.SearchResultSet, error)
}

// ProbeResult is the outcome of the last provider probe.
type ProbeResult struct {
	At         time.Time
	Duration   time.Duration
	Err        string
	ErrKind    string
	Categories int
}

// ProbeStore keeps the latest provider probe outcome for health reporting.
type ProbeStore interface {
	BeginProbe() bool
	EndProbe()
	IsProbing() bool
	RecordProbe(result ProbeResult)
	LastProbe() (ProbeResult, bool)
	LastSuccess() time.Time
	GetServerStartTime() time.Time
}

// Scheduler defines the contract for periodic jobs.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current status, details and the HTTP status to answer with
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// HTTPHandler defines the contract for the HTTP surface over DrugQueryService.
type HTTPHandler interface {
	LookupDrug(w http.ResponseWriter, r *http.Request)
	SearchDrugs(w http.ResponseWriter, r *http.Request)
	ListCategories(w http.ResponseWriter, r *http.Request)
	DrugsByCategory(w http.ResponseWriter, r *http.Request)
	CommonDrugs(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}
