package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/adinote/adinote/internal/cache"
	"github.com/adinote/adinote/internal/extract"
	"github.com/adinote/adinote/internal/llm"
	"github.com/adinote/adinote/internal/merge"
	"github.com/adinote/adinote/internal/model"
	"github.com/adinote/adinote/internal/preprocess"
	"github.com/adinote/adinote/internal/quality"
	"github.com/adinote/adinote/internal/vocab"
)

// Pipeline orchestrates one dictation end to end: preprocess → rule
// extraction → optional hybrid merge → vocabulary normalization → quality
// validation. All tables it holds are read-only after construction, so one
// pipeline is shared across batch workers.
type Pipeline struct {
	ruleExtractor *extract.RuleExtractor
	merger        *merge.Merger
	validator     *quality.Validator
	extractor     *llm.Extractor // external reasoning source (nil-safe)
	renderer      *Renderer
	config        *model.Config
}

// NewPipeline creates a pipeline from the given configuration.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	vocabulary, err := vocab.Load(cfg.Vocab.File)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	var store cache.Cache
	if cfg.Cache.Enabled && cfg.LLM.Provider != "" {
		if cfg.Cache.Dir != "" {
			store = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			store = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL/2)
		}
	}

	extractor, err := llm.NewExtractor(llm.ConfigFromModel(cfg.LLM), store, cfg.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}

	return &Pipeline{
		ruleExtractor: extract.NewRuleExtractor(vocabulary.ProblemSurfaces()),
		merger:        merge.NewMerger(vocabulary),
		validator:     quality.NewValidator(),
		extractor:     extractor,
		renderer:      NewRenderer(cfg.Output.Indent),
		config:        cfg,
	}, nil
}

// Process converts one raw dictation into a structured record. The only
// error it returns is MalformedInputError; every other problem degrades
// into warnings on the record so a batch never loses a record to one
// misbehaving input or collaborator.
func (p *Pipeline) Process(ctx context.Context, visit model.RawVisit, mode model.Mode) (*model.VisitRecord, error) {
	pre, err := preprocess.Preprocess(visit.RecordID, visit.Text)
	if err != nil {
		return nil, err
	}

	rules := p.ruleExtractor.Extract(pre)

	var external *model.Extraction
	hybridFailed := false
	if mode == model.ModeHybrid {
		external, err = p.extractor.ExtractFields(ctx, pre.Text)
		if err != nil || (external == nil && p.extractor.IsEnabled()) {
			// absent, timed out or malformed: fall back to rule output
			if err != nil && p.config.Output.Verbose {
				fmt.Fprintf(os.Stderr, "external source failed for %s: %v\n", visit.RecordID, err)
			}
			external = nil
			hybridFailed = true
		}
		if !p.extractor.IsEnabled() {
			hybridFailed = true
		}
	}

	meta := model.Meta{
		RecordID:     visit.RecordID,
		OperatorRole: visit.OperatorRole,
		Mode:         mode,
	}

	rec := p.merger.Merge(meta, rules, external)
	if hybridFailed {
		rec.AddWarning(model.WarnHybridUnavailable)
	}

	p.validator.Validate(rec)

	return rec, nil
}

// Renderer returns the pipeline's renderer.
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}
