// Package query is the single entry point consumers use to retrieve drug
// knowledge. Every call is prompt, provider, extraction and validation in
// that order; lower layer errors are returned unchanged.
package query

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/giygas/drugs-api/apperrors"
	"github.com/giygas/drugs-api/entities"
	"github.com/giygas/drugs-api/extraction"
	"github.com/giygas/drugs-api/interfaces"
	"github.com/giygas/drugs-api/logging"
	"github.com/giygas/drugs-api/metrics"
	"github.com/giygas/drugs-api/prompt"
)

const (
	// DefaultCategoryLimit is the page size for DrugsByCategory when limit is 0
	DefaultCategoryLimit = 50
	// DefaultCommonLimit is the page size for CommonDrugs when limit is 0
	DefaultCommonLimit = 100

	categoryQueryPrefix = "داروهای دسته "
	commonDrugsQuery    = "داروهای رایج ایران"
)

var _ interfaces.DrugQueryService = (*Service)(nil)

// Options configures a Service.
type Options struct {
	// Language replies are requested in; empty means prompt.DefaultLanguage
	Language string
	// DedupeInFlight makes concurrent identical calls share one provider request
	DedupeInFlight bool
}

// Service implements interfaces.DrugQueryService.
type Service struct {
	builder   *prompt.Builder
	transport interfaces.Transport
	validator interfaces.PayloadValidator
	dedupe    bool
	group     singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the cancellable context of one shared provider call. It is
// cancelled when its last waiter leaves.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewService wires a facade over transport and validator.
func NewService(transport interfaces.Transport, validator interfaces.PayloadValidator, opts Options) *Service {
	return &Service{
		builder:   prompt.NewBuilder(opts.Language),
		transport: transport,
		validator: validator,
		dedupe:    opts.DedupeInFlight,
		flights:   make(map[string]*flight),
	}
}

// LookupDrug returns the full profile of name. A reply that carries nothing
// but placeholders is reported as a NotFoundError.
func (s *Service) LookupDrug(ctx context.Context, name string) (record entities.DrugRecord, err error) {
	defer func() { observe("lookup", err) }()

	v, err := s.run(ctx, prompt.LookupDrug{Name: name})
	if err != nil {
		return entities.DrugRecord{}, err
	}

	record = v.(entities.DrugRecord).Clone()
	if record.IsPlaceholder() {
		return entities.DrugRecord{}, &apperrors.NotFoundError{Name: strings.TrimSpace(name)}
	}
	return record, nil
}

// ListCategories returns the category catalog.
func (s *Service) ListCategories(ctx context.Context) (catalog entities.Catalog, err error) {
	defer func() { observe("categories", err) }()

	v, err := s.run(ctx, prompt.ListCategories{})
	if err != nil {
		return entities.Catalog{}, err
	}
	return v.(entities.Catalog).Clone(), nil
}

// SearchDrugs returns up to limit drugs related to query. A limit of 0
// means prompt.DefaultSearchLimit.
func (s *Service) SearchDrugs(ctx context.Context, query string, limit int) (result entities.SearchResultSet, err error) {
	defer func() { observe("search", err) }()
	return s.search(ctx, query, limit)
}

// DrugsByCategory lists drugs of one category. The result's Query is the
// category name.
func (s *Service) DrugsByCategory(ctx context.Context, category string, limit int) (result entities.SearchResultSet, err error) {
	defer func() { observe("by_category", err) }()

	category = strings.TrimSpace(category)
	if category == "" {
		return entities.SearchResultSet{}, &apperrors.InputError{Field: "category", Reason: "must not be empty"}
	}
	if limit == 0 {
		limit = DefaultCategoryLimit
	}

	result, err = s.search(ctx, categoryQueryPrefix+category, limit)
	if err != nil {
		return entities.SearchResultSet{}, err
	}
	result.Query = category
	return result, nil
}

// CommonDrugs lists frequently used drugs.
func (s *Service) CommonDrugs(ctx context.Context, limit int) (result entities.SearchResultSet, err error) {
	defer func() { observe("common", err) }()

	if limit == 0 {
		limit = DefaultCommonLimit
	}
	return s.search(ctx, commonDrugsQuery, limit)
}

func (s *Service) search(ctx context.Context, query string, limit int) (entities.SearchResultSet, error) {
	v, err := s.run(ctx, prompt.SearchDrugs{Query: query, Limit: limit})
	if err != nil {
		return entities.SearchResultSet{}, err
	}

	result := v.(entities.SearchResultSet).Clone()
	result.Query = query
	return result, nil
}

// run executes intent, sharing the provider round trip with identical
// concurrent calls when dedup is enabled. The shared value must be cloned
// by the caller before it is handed out.
func (s *Service) run(ctx context.Context, intent prompt.Intent) (any, error) {
	text, err := s.builder.Build(intent)
	if err != nil {
		return nil, err
	}

	if !s.dedupe {
		return s.execute(ctx, intent, text)
	}

	key := intent.Fingerprint()
	f := s.join(ctx, key)
	defer s.leave(key, f)

	// ran is set only for the caller whose function issues the request
	var ran atomic.Bool
	ch := s.group.DoChan(key, func() (any, error) {
		ran.Store(true)
		return s.execute(f.ctx, intent, text)
	})

	select {
	case res := <-ch:
		if res.Shared && !ran.Load() {
			metrics.QueryDeduplicated.Inc()
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, &apperrors.TransportError{Cause: ctx.Err()}
	}
}

// join registers the caller on the flight for key, creating it if needed.
// The flight keeps the first caller's context values but not its
// cancellation.
func (s *Service) join(ctx context.Context, key string) *flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		s.flights[key] = f
	}
	f.waiters++
	return f
}

// leave drops the caller from f. The last one out cancels the provider
// request and forgets the call so later callers start a fresh one.
func (s *Service) leave(key string, f *flight) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if s.flights[key] == f {
		delete(s.flights, key)
		s.group.Forget(key)
	}
}

func (s *Service) execute(ctx context.Context, intent prompt.Intent, text string) (any, error) {
	start := time.Now()

	reply, err := s.transport.Send(ctx, text)
	if err != nil {
		return nil, err
	}

	candidate := extraction.JSONCandidate(reply.Content)
	v, err := s.validator.Validate(candidate, intent)
	if err != nil {
		logging.Warn("Provider reply rejected",
			"intent", intent.Kind().String(),
			"model", reply.Model,
			"error", err,
		)
		return nil, err
	}

	logging.Debug("Query completed",
		"intent", intent.Kind().String(),
		"model", reply.Model,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return v, nil
}

func observe(operation string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = apperrors.Classify(err)
	}
	metrics.QueryTotals.WithLabelValues(operation, outcome).Inc()
}
