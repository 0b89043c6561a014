package merge

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/adinote/adinote/internal/model"
	"github.com/adinote/adinote/internal/vocab"
)

func newTestMerger() *Merger {
	return NewMerger(vocab.Builtin())
}

func intPtr(v int) *int { return &v }

func ruleCandidate(field, value string) *model.Candidate {
	return &model.Candidate{Field: field, Value: value, Source: model.SourceRules}
}

func externalCandidate(field, value string) *model.Candidate {
	return &model.Candidate{Field: field, Value: value, Source: model.SourceExternal}
}

func TestMerge_RuleOnly(t *testing.T) {
	rules := &model.Extraction{
		Source: model.SourceRules,
		Reason: ruleCandidate("reason", "controllo pressione"),
		Vitals: model.Vitals{Systolic: intPtr(130), Diastolic: intPtr(85)},
		Interventions: []model.Candidate{
			*ruleCandidate("interventions", "medicazione"),
		},
	}

	rec := newTestMerger().Merge(model.Meta{RecordID: "ADI-001"}, rules, nil)

	if rec.Reason == nil || *rec.Reason != "controllo pressione" {
		t.Errorf("reason: got %v", rec.Reason)
	}
	if *rec.Vitals.Systolic != 130 || *rec.Vitals.Diastolic != 85 {
		t.Errorf("vitals not carried: %+v", rec.Vitals)
	}
	if len(rec.Interventions) != 1 || rec.Interventions[0] != "medicazione" {
		t.Errorf("interventions: got %v", rec.Interventions)
	}
	if len(rec.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", rec.Warnings)
	}
}

func TestMerge_VitalsAlwaysFromRules(t *testing.T) {
	rules := &model.Extraction{
		Source: model.SourceRules,
		Vitals: model.Vitals{Systolic: intPtr(130), Diastolic: intPtr(85)},
	}
	// External extraction never carries vitals, but even a hostile one
	// must not displace the rule values.
	external := &model.Extraction{
		Source: model.SourceExternal,
		Vitals: model.Vitals{Systolic: intPtr(999), Diastolic: intPtr(1)},
	}

	rec := newTestMerger().Merge(model.Meta{}, rules, external)

	if *rec.Vitals.Systolic != 130 || *rec.Vitals.Diastolic != 85 {
		t.Errorf("expected rule vitals 130/85, got %v/%v", *rec.Vitals.Systolic, *rec.Vitals.Diastolic)
	}
}

func TestMerge_ExternalTextWins(t *testing.T) {
	rules := &model.Extraction{
		Source: model.SourceRules,
		Reason: ruleCandidate("reason", "controllo"),
	}
	external := &model.Extraction{
		Source: model.SourceExternal,
		Reason: externalCandidate("reason", "controllo pressione arteriosa e terapia"),
	}

	rec := newTestMerger().Merge(model.Meta{}, rules, external)

	if rec.Reason == nil || *rec.Reason != "controllo pressione arteriosa e terapia" {
		t.Errorf("reason: got %v", rec.Reason)
	}
	if !rec.HasWarning(model.WarnOverridden("reason")) {
		t.Errorf("expected rule_value_overridden:reason, got %v", rec.Warnings)
	}
}

func TestMerge_NoOverrideWarningWhenEqual(t *testing.T) {
	rules := &model.Extraction{
		Source: model.SourceRules,
		Reason: ruleCandidate("reason", "controllo"),
	}
	external := &model.Extraction{
		Source: model.SourceExternal,
		Reason: externalCandidate("reason", "controllo"),
	}

	rec := newTestMerger().Merge(model.Meta{}, rules, external)

	if rec.HasWarning(model.WarnOverridden("reason")) {
		t.Errorf("unexpected override warning for equal values: %v", rec.Warnings)
	}
}

func TestMerge_FollowUpCanonicalized(t *testing.T) {
	rules := &model.Extraction{
		Source:   model.SourceRules,
		FollowUp: ruleCandidate("follow_up", "controllo tra 3 giorni"),
	}

	rec := newTestMerger().Merge(model.Meta{}, rules, nil)

	if rec.FollowUp == nil || *rec.FollowUp != "programmato controllo tra 3 giorni" {
		t.Errorf("follow-up: got %v", rec.FollowUp)
	}
}

func TestMerge_InterventionsUnion(t *testing.T) {
	rules := &model.Extraction{
		Source: model.SourceRules,
		Interventions: []model.Candidate{
			*ruleCandidate("interventions", "medicazione"),
			*ruleCandidate("interventions", "rilevati parametri vitali"),
		},
	}
	external := &model.Extraction{
		Source: model.SourceExternal,
		Interventions: []model.Candidate{
			*externalCandidate("interventions", "Medicazione"),
			*externalCandidate("interventions", "prelievo ematico"),
		},
	}

	rec := newTestMerger().Merge(model.Meta{}, rules, external)

	want := []string{"medicazione", "controllo_parametri_vitali", "prelievo_ematico"}
	if len(rec.Interventions) != len(want) {
		t.Fatalf("got %v, want %v", rec.Interventions, want)
	}
	for i, term := range want {
		if rec.Interventions[i] != term {
			t.Errorf("interventions[%d]: got %q, want %q", i, rec.Interventions[i], term)
		}
	}
}

func TestMerge_UnmappedInterventionExcluded(t *testing.T) {
	rules := &model.Extraction{
		Source: model.SourceRules,
		Interventions: []model.Candidate{
			*ruleCandidate("interventions", "medicazione"),
			*ruleCandidate("interventions", "ginnastica respiratoria"),
		},
	}

	rec := newTestMerger().Merge(model.Meta{}, rules, nil)

	if len(rec.Interventions) != 1 || rec.Interventions[0] != "medicazione" {
		t.Errorf("interventions: got %v", rec.Interventions)
	}
	if !rec.HasWarning(model.WarnUnmapped("ginnastica respiratoria")) {
		t.Errorf("expected unmapped_term warning, got %v", rec.Warnings)
	}
}

func TestMerge_ProblemsExternalWins(t *testing.T) {
	rules := &model.Extraction{
		Source: model.SourceRules,
		Problems: []model.Candidate{
			*ruleCandidate("problems", "lesione sacrale"),
		},
	}
	external := &model.Extraction{
		Source: model.SourceExternal,
		Problems: []model.Candidate{
			*externalCandidate("problems", "rischio di caduta"),
		},
	}

	rec := newTestMerger().Merge(model.Meta{}, rules, external)

	if len(rec.Problems) != 1 || rec.Problems[0] != "rischio_caduta" {
		t.Errorf("problems: got %v", rec.Problems)
	}
	if !rec.HasWarning(model.WarnOverridden("problems")) {
		t.Errorf("expected rule_value_overridden:problems, got %v", rec.Warnings)
	}
}

func TestMerge_ProblemsNoOverrideWarningWhenCovered(t *testing.T) {
	rules := &model.Extraction{
		Source: model.SourceRules,
		Problems: []model.Candidate{
			*ruleCandidate("problems", "rischio caduta"),
		},
	}
	external := &model.Extraction{
		Source: model.SourceExternal,
		Problems: []model.Candidate{
			*externalCandidate("problems", "rischio di caduta"),
		},
	}

	rec := newTestMerger().Merge(model.Meta{}, rules, external)

	// Both surfaces map to the same canonical term, nothing was lost.
	if rec.HasWarning(model.WarnOverridden("problems")) {
		t.Errorf("unexpected override warning: %v", rec.Warnings)
	}
	if len(rec.Problems) != 1 || rec.Problems[0] != "rischio_caduta" {
		t.Errorf("problems: got %v", rec.Problems)
	}
}

func TestMerge_EmptyExternalFallsBackToRules(t *testing.T) {
	rules := &model.Extraction{
		Source: model.SourceRules,
		Problems: []model.Candidate{
			*ruleCandidate("problems", "lesione sacrale"),
		},
	}
	external := &model.Extraction{Source: model.SourceExternal}

	rec := newTestMerger().Merge(model.Meta{}, rules, external)

	if len(rec.Problems) != 1 || rec.Problems[0] != "lesione_da_pressione" {
		t.Errorf("problems: got %v", rec.Problems)
	}
}

func TestMerge_CleanRecordSerializesEmptyLists(t *testing.T) {
	rules := &model.Extraction{
		Source: model.SourceRules,
		Reason: ruleCandidate("reason", "controllo"),
	}

	rec := newTestMerger().Merge(model.Meta{RecordID: "ADI-001"}, rules, nil)

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}

	// Empty sets render as [] in the fixed schema, never null.
	for _, field := range []string{`"interventions":[]`, `"problems":[]`, `"warnings":[]`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("missing %s in %s", field, data)
		}
	}
}

func TestMerge_VisitDatetimeCarried(t *testing.T) {
	rules := &model.Extraction{
		Source:        model.SourceRules,
		VisitDatetime: "2026-02-24T09:10:00",
	}

	rec := newTestMerger().Merge(model.Meta{RecordID: "ADI-001"}, rules, nil)

	if rec.Meta.VisitDatetime != "2026-02-24T09:10:00" {
		t.Errorf("visit datetime: got %q", rec.Meta.VisitDatetime)
	}
}
