package merge

import (
	"github.com/adinote/adinote/internal/model"
	"github.com/adinote/adinote/internal/vocab"
)

// Merger reconciles the rule-based extraction with the external reasoning
// result into one record. Merge policy per field class:
//
//   - vitals: the rule result always wins; vitals need deterministic,
//     auditable provenance, so rule output is trusted even when the
//     external source disagrees;
//   - reason, follow-up, problems: the external result wins when present
//     and well-formed, otherwise the rule candidate;
//   - interventions: union of both sources, de-duplicated after
//     normalization.
//
// The merger also canonicalizes intervention/problem terms and rewrites
// the follow-up, so its output is the normalized record the validator sees.
type Merger struct {
	normalizer *vocab.Normalizer
}

// NewMerger creates a merger over the given vocabulary.
func NewMerger(v *vocab.Vocabulary) *Merger {
	return &Merger{normalizer: vocab.NewNormalizer(v)}
}

// Merge builds the record from the rule extraction and the optional
// external one. external == nil means rule-only mode or hybrid fallback;
// in the latter case the caller adds the hybrid_source_unavailable warning.
// No candidate is silently lost: overridden rule values and unmapped terms
// each surface as a warning code.
func (m *Merger) Merge(meta model.Meta, rules, external *model.Extraction) *model.VisitRecord {
	rec := &model.VisitRecord{
		Meta:          meta,
		Interventions: []string{},
		Problems:      []string{},
		Warnings:      []model.WarningCode{},
	}
	rec.Meta.VisitDatetime = rules.VisitDatetime

	// Vitals: rule provenance only.
	rec.Vitals = rules.Vitals

	rec.Reason = m.mergeText("reason", rules.Reason, pick(external, func(e *model.Extraction) *model.Candidate { return e.Reason }), rec)

	followUp := m.mergeText("follow_up", rules.FollowUp, pick(external, func(e *model.Extraction) *model.Candidate { return e.FollowUp }), rec)
	if followUp != nil {
		canonical := m.normalizer.FollowUp(*followUp)
		rec.FollowUp = &canonical
	}

	m.mergeInterventions(rules, external, rec)
	m.mergeProblems(rules, external, rec)

	return rec
}

func pick(e *model.Extraction, get func(*model.Extraction) *model.Candidate) *model.Candidate {
	if e == nil {
		return nil
	}
	return get(e)
}

// mergeText resolves a free-text field: external wins when present, and an
// overridden rule candidate leaves a warning instead of vanishing.
func (m *Merger) mergeText(field string, rule, external *model.Candidate, rec *model.VisitRecord) *string {
	if external != nil {
		if rule != nil && rule.Value != external.Value {
			rec.AddWarning(model.WarnOverridden(field))
		}
		v := external.Value
		return &v
	}
	if rule != nil {
		v := rule.Value
		return &v
	}
	return nil
}

// mergeInterventions unions candidates from both sources. The same
// canonical term contributed twice counts once; an unmapped phrase stays
// out of the set and leaves a warning.
func (m *Merger) mergeInterventions(rules, external *model.Extraction, rec *model.VisitRecord) {
	seen := make(map[string]bool)

	addAll := func(candidates []model.Candidate) {
		for _, c := range candidates {
			term, ok := m.normalizer.Intervention(c.Value)
			if !ok {
				rec.AddWarning(model.WarnUnmapped(vocab.Fold(c.Value)))
				continue
			}
			if seen[term] {
				continue
			}
			seen[term] = true
			rec.Interventions = append(rec.Interventions, term)
		}
	}

	addAll(rules.Interventions)
	if external != nil {
		addAll(external.Interventions)
	}
}

// mergeProblems takes the external list when present and well-formed,
// otherwise the rule candidates, then canonicalizes.
func (m *Merger) mergeProblems(rules, external *model.Extraction, rec *model.VisitRecord) {
	candidates := rules.Problems
	externalWon := external != nil && len(external.Problems) > 0
	if externalWon {
		candidates = external.Problems
	}

	seen := make(map[string]bool)
	for _, c := range candidates {
		term, ok := m.normalizer.Problem(c.Value)
		if !ok {
			rec.AddWarning(model.WarnUnmapped(vocab.Fold(c.Value)))
			continue
		}
		if seen[term] {
			continue
		}
		seen[term] = true
		rec.Problems = append(rec.Problems, term)
	}

	// A rule candidate displaced by the external list must not vanish
	// silently.
	if externalWon {
		for _, c := range rules.Problems {
			if term, ok := m.normalizer.Problem(c.Value); ok && !seen[term] {
				rec.AddWarning(model.WarnOverridden("problems"))
				break
			}
		}
	}
}
