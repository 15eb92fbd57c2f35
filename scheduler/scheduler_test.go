package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/giygas/drugs-api/apperrors"
	"github.com/giygas/drugs-api/data"
	"github.com/giygas/drugs-api/entities"
)

// mockQueryService answers ListCategories with catalog or err
type mockQueryService struct {
	catalog entities.Catalog
	err     error
	calls   atomic.Int32
	block   chan struct{}
}

func (m *mockQueryService) LookupDrug(ctx context.Context, name string) (entities.DrugRecord, error) {
	return entities.DrugRecord{}, errors.New("not used")
}

func (m *mockQueryService) ListCategories(ctx context.Context) (entities.Catalog, error) {
	m.calls.Add(1)
	if m.block != nil {
		<-m.block
	}
	return m.catalog, m.err
}

func (m *mockQueryService) SearchDrugs(ctx context.Context, query string, limit int) (entities.SearchResultSet, error) {
	return entities.SearchResultSet{}, errors.New("not used")
}

func (m *mockQueryService) DrugsByCategory(ctx context.Context, category string, limit int) (entities.SearchResultSet, error) {
	return entities.SearchResultSet{}, errors.New("not used")
}

func (m *mockQueryService) CommonDrugs(ctx context.Context, limit int) (entities.SearchResultSet, error) {
	return entities.SearchResultSet{}, errors.New("not used")
}

func TestProbeRecordsSuccess(t *testing.T) {
	store := data.NewProbeContainer()
	svc := &mockQueryService{catalog: entities.Catalog{Categories: []entities.CategorySummary{{ID: 1, Name: "مسکن"}, {ID: 2, Name: "آنتی‌بیوتیک"}}}}

	s := NewScheduler(store, svc, time.Hour, time.Second)
	s.probe()

	result, ok := store.LastProbe()
	if !ok {
		t.Fatal("Expected a recorded probe")
	}
	if result.Err != "" || result.Categories != 2 {
		t.Errorf("Unexpected probe result %+v", result)
	}
	if store.LastSuccess().IsZero() {
		t.Error("Expected last success to be set")
	}
	if store.IsProbing() {
		t.Error("Probe flag should be cleared after the probe")
	}
}

func TestProbeRecordsFailure(t *testing.T) {
	store := data.NewProbeContainer()
	svc := &mockQueryService{err: &apperrors.ConfigurationError{Reason: "API key not configured"}}

	s := NewScheduler(store, svc, time.Hour, time.Second)
	s.probe()

	result, ok := store.LastProbe()
	if !ok {
		t.Fatal("Expected a recorded probe")
	}
	if result.ErrKind != apperrors.KindConfiguration || result.Err == "" {
		t.Errorf("Unexpected probe result %+v", result)
	}
	if !store.LastSuccess().IsZero() {
		t.Error("A failed probe must not set last success")
	}
}

func TestProbeSkipsWhenAlreadyRunning(t *testing.T) {
	store := data.NewProbeContainer()
	svc := &mockQueryService{}

	if !store.BeginProbe() {
		t.Fatal("BeginProbe should succeed")
	}
	s := NewScheduler(store, svc, time.Hour, time.Second)
	s.probe()

	if svc.calls.Load() != 0 {
		t.Errorf("Expected no call while another probe runs, got %d", svc.calls.Load())
	}
	if _, ok := store.LastProbe(); ok {
		t.Error("Skipped probe must not record a result")
	}
}

func TestStartDisabled(t *testing.T) {
	store := data.NewProbeContainer()
	svc := &mockQueryService{}

	s := NewScheduler(store, svc, 0, time.Second)
	if err := s.Start(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	if svc.calls.Load() != 0 {
		t.Errorf("Expected no probe when disabled, got %d calls", svc.calls.Load())
	}
}

func TestStartRunsFirstProbeImmediately(t *testing.T) {
	store := data.NewProbeContainer()
	svc := &mockQueryService{catalog: entities.Catalog{Categories: []entities.CategorySummary{{ID: 1, Name: "مسکن"}}}}

	s := NewScheduler(store, svc, time.Hour, time.Second)
	if err := s.Start(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := store.LastProbe(); ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Expected the first probe to run right after Start")
}

func TestStopIsIdempotent(t *testing.T) {
	s := NewScheduler(data.NewProbeContainer(), &mockQueryService{}, time.Hour, time.Second)
	if err := s.Start(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	s.Stop()
	s.Stop()
}
