package quality

import (
	"github.com/adinote/adinote/internal/model"
)

// Rule is one plausibility/consistency check: a predicate over the record
// plus the warning codes it emits when violated. Rules are independent of
// each other and non-blocking: a failing rule annotates the record, it
// never discards it, because downstream evaluation needs every record
// represented.
type Rule struct {
	Name  string
	Check func(rec *model.VisitRecord) []model.WarningCode
}

// Validator runs an ordered rule set over a normalized record. The rule
// set is built once and shared read-only across workers.
type Validator struct {
	rules []Rule
}

// NewValidator creates a validator with the default rule set.
func NewValidator() *Validator {
	return &Validator{rules: DefaultRules()}
}

// Validate appends one warning per violated rule occurrence. Only the
// warnings field is touched; everything else on the record is read-only
// here. Duplicate codes across rules are kept as-is.
func (v *Validator) Validate(rec *model.VisitRecord) {
	for _, rule := range v.rules {
		for _, code := range rule.Check(rec) {
			rec.AddWarning(code)
		}
	}
}

// DefaultRules returns the standard checks in their fixed order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "vitals_in_range", Check: checkVitalRanges},
		{Name: "reason_present", Check: checkReasonPresent},
		{Name: "bp_complete", Check: checkBPComplete},
		{Name: "vitals_backing_intervention", Check: checkVitalsBackIntervention},
	}
}

// checkVitalRanges flags every populated vital outside its plausible
// range. The value itself stays on the record untouched.
func checkVitalRanges(rec *model.VisitRecord) []model.WarningCode {
	var out []model.WarningCode

	check := func(field string, v float64) {
		if !model.InRange(field, v) {
			out = append(out, model.WarnImplausible(field))
		}
	}

	if rec.Vitals.Systolic != nil {
		check("blood_pressure_systolic", float64(*rec.Vitals.Systolic))
	}
	if rec.Vitals.Diastolic != nil {
		check("blood_pressure_diastolic", float64(*rec.Vitals.Diastolic))
	}
	if rec.Vitals.HeartRate != nil {
		check("heart_rate", float64(*rec.Vitals.HeartRate))
	}
	if rec.Vitals.Temp != nil {
		check("temperature", *rec.Vitals.Temp)
	}
	if rec.Vitals.SpO2 != nil {
		check("spo2", float64(*rec.Vitals.SpO2))
	}

	return out
}

// checkReasonPresent: the visit reason is the one mandatory clinical field.
func checkReasonPresent(rec *model.VisitRecord) []model.WarningCode {
	if rec.Reason == nil || *rec.Reason == "" {
		return []model.WarningCode{model.WarnMissingReason}
	}
	return nil
}

// checkBPComplete: systolic and diastolic come from one measurement, so
// exactly one of the two being present means the match was partial.
func checkBPComplete(rec *model.VisitRecord) []model.WarningCode {
	if (rec.Vitals.Systolic == nil) != (rec.Vitals.Diastolic == nil) {
		return []model.WarningCode{model.WarnBPIncomplete}
	}
	return nil
}

// checkVitalsBackIntervention: a recorded vitals-check intervention with
// every vital null is internally inconsistent.
func checkVitalsBackIntervention(rec *model.VisitRecord) []model.WarningCode {
	hasVitalsCheck := false
	for _, term := range rec.Interventions {
		if term == "controllo_parametri_vitali" {
			hasVitalsCheck = true
			break
		}
	}
	if !hasVitalsCheck {
		return nil
	}

	v := rec.Vitals
	if v.Systolic == nil && v.Diastolic == nil && v.HeartRate == nil && v.Temp == nil && v.SpO2 == nil {
		return []model.WarningCode{model.WarnVitalsNotRecorded}
	}
	return nil
}
