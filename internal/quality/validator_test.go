package quality

import (
	"testing"

	"github.com/adinote/adinote/internal/model"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

func TestValidate_CleanRecordNoWarnings(t *testing.T) {
	rec := &model.VisitRecord{
		Reason:        strPtr("controllo pressione"),
		Interventions: []string{"controllo_parametri_vitali"},
		Vitals: model.Vitals{
			Systolic:  intPtr(130),
			Diastolic: intPtr(85),
			HeartRate: intPtr(72),
			Temp:      floatPtr(36.8),
			SpO2:      intPtr(96),
		},
	}

	NewValidator().Validate(rec)

	if len(rec.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", rec.Warnings)
	}
}

func TestValidate_ImplausibleVitals(t *testing.T) {
	tests := []struct {
		name   string
		vitals model.Vitals
		want   model.WarningCode
	}{
		{"systolic high", model.Vitals{Systolic: intPtr(300), Diastolic: intPtr(85)}, model.WarnImplausible("blood_pressure_systolic")},
		{"diastolic low", model.Vitals{Systolic: intPtr(130), Diastolic: intPtr(20)}, model.WarnImplausible("blood_pressure_diastolic")},
		{"heart rate absurd", model.Vitals{HeartRate: intPtr(500)}, model.WarnImplausible("heart_rate")},
		{"hypothermic temp", model.Vitals{Temp: floatPtr(25.0)}, model.WarnImplausible("temperature")},
		{"spo2 over 100", model.Vitals{SpO2: intPtr(110)}, model.WarnImplausible("spo2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &model.VisitRecord{Reason: strPtr("controllo"), Vitals: tt.vitals}
			NewValidator().Validate(rec)

			if !rec.HasWarning(tt.want) {
				t.Errorf("expected %s, got %v", tt.want, rec.Warnings)
			}
		})
	}
}

func TestValidate_ImplausibleValueIsKept(t *testing.T) {
	rec := &model.VisitRecord{
		Reason: strPtr("controllo"),
		Vitals: model.Vitals{HeartRate: intPtr(500)},
	}

	NewValidator().Validate(rec)

	if rec.Vitals.HeartRate == nil || *rec.Vitals.HeartRate != 500 {
		t.Errorf("value must survive validation, got %v", rec.Vitals.HeartRate)
	}
	if !rec.HasWarning(model.WarnImplausible("heart_rate")) {
		t.Errorf("expected implausible warning, got %v", rec.Warnings)
	}
}

func TestValidate_MissingReason(t *testing.T) {
	rec := &model.VisitRecord{}
	NewValidator().Validate(rec)

	if !rec.HasWarning(model.WarnMissingReason) {
		t.Errorf("expected missing_reason, got %v", rec.Warnings)
	}

	empty := &model.VisitRecord{Reason: strPtr("")}
	NewValidator().Validate(empty)
	if !empty.HasWarning(model.WarnMissingReason) {
		t.Errorf("empty reason should warn, got %v", empty.Warnings)
	}
}

func TestValidate_BPIncomplete(t *testing.T) {
	rec := &model.VisitRecord{
		Reason: strPtr("controllo"),
		Vitals: model.Vitals{Systolic: intPtr(130)},
	}
	NewValidator().Validate(rec)

	if !rec.HasWarning(model.WarnBPIncomplete) {
		t.Errorf("expected bp_incomplete, got %v", rec.Warnings)
	}

	// Both absent is fine, that is just an unmeasured BP.
	none := &model.VisitRecord{Reason: strPtr("controllo")}
	NewValidator().Validate(none)
	if none.HasWarning(model.WarnBPIncomplete) {
		t.Errorf("unexpected bp_incomplete with no BP at all: %v", none.Warnings)
	}
}

func TestValidate_VitalsNotRecorded(t *testing.T) {
	rec := &model.VisitRecord{
		Reason:        strPtr("controllo"),
		Interventions: []string{"controllo_parametri_vitali"},
	}
	NewValidator().Validate(rec)

	if !rec.HasWarning(model.WarnVitalsNotRecorded) {
		t.Errorf("expected vitals_not_recorded, got %v", rec.Warnings)
	}

	// Any single recorded vital clears the check.
	withTemp := &model.VisitRecord{
		Reason:        strPtr("controllo"),
		Interventions: []string{"controllo_parametri_vitali"},
		Vitals:        model.Vitals{Temp: floatPtr(36.5)},
	}
	NewValidator().Validate(withTemp)
	if withTemp.HasWarning(model.WarnVitalsNotRecorded) {
		t.Errorf("unexpected vitals_not_recorded: %v", withTemp.Warnings)
	}
}

func TestValidate_OnlyWarningsTouched(t *testing.T) {
	rec := &model.VisitRecord{
		Reason:        strPtr("controllo"),
		Interventions: []string{"medicazione"},
		Problems:      []string{"ipertensione"},
		Vitals:        model.Vitals{Systolic: intPtr(130), Diastolic: intPtr(85)},
	}

	NewValidator().Validate(rec)

	if *rec.Reason != "controllo" || len(rec.Interventions) != 1 || len(rec.Problems) != 1 {
		t.Error("validation must not rewrite record fields")
	}
}
