package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/adinote/adinote/internal/cache"
	"github.com/adinote/adinote/internal/model"
	"golang.org/x/time/rate"
)

// Extractor wraps a Provider with the operational concerns the pipeline
// should not care about: response caching, outbound rate limiting and a
// one-time availability check. A disabled or failing extractor never
// propagates an error into the record; callers receive (nil, err) and fall
// back to rule output.
type Extractor struct {
	provider Provider
	config   Config

	store    cache.Cache // nil when caching is disabled
	cacheTTL time.Duration

	limiter *rate.Limiter

	availOnce sync.Once
	available bool
}

// NewExtractor creates an extractor for the configured provider. store may
// be nil to disable response caching.
func NewExtractor(config Config, store cache.Cache, cacheTTL time.Duration) (*Extractor, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if provider != nil && config.RequestsPerSecond > 0 {
		burst := config.BurstSize
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	return &Extractor{
		provider: provider,
		config:   config,
		store:    store,
		cacheTTL: cacheTTL,
		limiter:  limiter,
	}, nil
}

// IsEnabled reports whether a provider is configured.
func (e *Extractor) IsEnabled() bool {
	return e.provider != nil
}

// ProviderName returns the configured provider name, "" when disabled.
func (e *Extractor) ProviderName() string {
	if e.provider == nil {
		return ""
	}
	return e.provider.Name()
}

// ExtractFields asks the external source for its view of the dictation.
// Returns (nil, nil) when disabled and (nil, err) on any failure; the
// caller treats both as "absent" and the failure becomes a warning on the
// record, never an aborted run.
func (e *Extractor) ExtractFields(ctx context.Context, text string) (*model.Extraction, error) {
	if e.provider == nil {
		return nil, nil
	}

	key := cache.ResponseKey(text, e.config.Model)
	if e.store != nil {
		if data, found := e.store.Get(key); found {
			var fields ExtractedFields
			if err := json.Unmarshal(data, &fields); err == nil {
				resp := &ExtractResponse{Fields: fields, Model: e.config.Model}
				return resp.ToExtraction(e.provider.Name()), nil
			}
			// corrupt entry: drop it and fall through to a live call
			_ = e.store.Delete(key)
		}
	}

	e.availOnce.Do(func() {
		e.available = e.provider.IsAvailable(ctx)
	})
	if !e.available {
		return nil, fmt.Errorf("provider %s unavailable", e.provider.Name())
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	resp, err := e.provider.Extract(ctx, ExtractRequest{Text: text})
	if err != nil {
		return nil, err
	}

	if e.store != nil {
		if data, err := json.Marshal(resp.Fields); err == nil {
			_ = e.store.Set(key, data, e.cacheTTL)
		}
	}

	return resp.ToExtraction(e.provider.Name()), nil
}
