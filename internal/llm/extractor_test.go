package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adinote/adinote/internal/cache"
)

// MockProvider implements the Provider interface for tests
type MockProvider struct {
	available    bool
	extractError error
	fields       ExtractedFields
	calls        int
	availChecks  int
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	m.availChecks++
	return m.available
}

func (m *MockProvider) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	m.calls++
	if m.extractError != nil {
		return nil, m.extractError
	}
	return &ExtractResponse{Fields: m.fields, Model: "mock-model"}, nil
}

func newTestExtractor(p Provider, store cache.Cache) *Extractor {
	return &Extractor{
		provider: p,
		config:   Config{Provider: "mock", Model: "mock-model"},
		store:    store,
		cacheTTL: time.Minute,
	}
}

func TestExtractor_DisabledReturnsNil(t *testing.T) {
	e, err := NewExtractor(Config{Provider: ""}, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.IsEnabled() {
		t.Error("expected disabled extractor")
	}

	ex, err := e.ExtractFields(context.Background(), "PA 130/85")
	if ex != nil || err != nil {
		t.Errorf("disabled extractor: got (%v, %v), want (nil, nil)", ex, err)
	}
}

func TestExtractor_ExtractFields(t *testing.T) {
	reason := "controllo pressione"
	mock := &MockProvider{
		available: true,
		fields:    ExtractedFields{Reason: &reason, Interventions: []string{"medicazione"}},
	}
	e := newTestExtractor(mock, nil)

	ex, err := e.ExtractFields(context.Background(), "testo visita")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.Reason == nil || ex.Reason.Value != "controllo pressione" {
		t.Errorf("reason: got %v", ex.Reason)
	}
	if len(ex.Interventions) != 1 {
		t.Errorf("interventions: got %v", ex.Interventions)
	}
	if mock.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", mock.calls)
	}
}

func TestExtractor_UnavailableProviderFails(t *testing.T) {
	mock := &MockProvider{available: false}
	e := newTestExtractor(mock, nil)

	_, err := e.ExtractFields(context.Background(), "testo")
	if err == nil {
		t.Fatal("expected error for unavailable provider")
	}
	if mock.calls != 0 {
		t.Errorf("no extraction call should happen, got %d", mock.calls)
	}
}

func TestExtractor_AvailabilityCheckedOnce(t *testing.T) {
	mock := &MockProvider{available: true}
	e := newTestExtractor(mock, nil)

	for i := 0; i < 3; i++ {
		if _, err := e.ExtractFields(context.Background(), "testo"); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if mock.availChecks != 1 {
		t.Errorf("expected 1 availability check, got %d", mock.availChecks)
	}
	if mock.calls != 3 {
		t.Errorf("expected 3 extraction calls, got %d", mock.calls)
	}
}

func TestExtractor_ProviderErrorPropagates(t *testing.T) {
	mock := &MockProvider{available: true, extractError: errors.New("api down")}
	e := newTestExtractor(mock, nil)

	_, err := e.ExtractFields(context.Background(), "testo")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractor_CachesResponses(t *testing.T) {
	reason := "controllo"
	mock := &MockProvider{available: true, fields: ExtractedFields{Reason: &reason}}
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	e := newTestExtractor(mock, store)

	for i := 0; i < 3; i++ {
		ex, err := e.ExtractFields(context.Background(), "stesso testo")
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if ex.Reason == nil || ex.Reason.Value != "controllo" {
			t.Fatalf("run %d: reason %v", i, ex.Reason)
		}
	}

	// Repeat calls for identical text hit the cache.
	if mock.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", mock.calls)
	}

	if _, err := e.ExtractFields(context.Background(), "testo diverso"); err != nil {
		t.Fatal(err)
	}
	if mock.calls != 2 {
		t.Errorf("different text must miss the cache, got %d calls", mock.calls)
	}
}

func TestExtractor_CorruptCacheEntryIsDropped(t *testing.T) {
	reason := "controllo"
	mock := &MockProvider{available: true, fields: ExtractedFields{Reason: &reason}}
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	e := newTestExtractor(mock, store)

	key := cache.ResponseKey("testo", "mock-model")
	if err := store.Set(key, []byte("not json"), time.Minute); err != nil {
		t.Fatal(err)
	}

	ex, err := e.ExtractFields(context.Background(), "testo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.Reason == nil || ex.Reason.Value != "controllo" {
		t.Errorf("reason: got %v", ex.Reason)
	}
	if mock.calls != 1 {
		t.Errorf("expected a live call after dropping the corrupt entry, got %d", mock.calls)
	}
}
