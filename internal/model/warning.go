package model

import "fmt"

// WarningCode is a non-fatal quality annotation attached to a record.
// Warnings describe what happened to the data; they never block a record,
// because downstream evaluation needs every record represented.
type WarningCode string

const (
	// WarnHybridUnavailable means the external reasoning source failed or
	// returned something unusable and the record fell back to rule output.
	WarnHybridUnavailable WarningCode = "hybrid_source_unavailable"

	// WarnMissingReason means no visit reason could be extracted.
	WarnMissingReason WarningCode = "missing_reason"

	// WarnBPIncomplete means exactly one of systolic/diastolic is populated.
	WarnBPIncomplete WarningCode = "bp_incomplete"

	// WarnVitalsNotRecorded means an intervention implies vitals were taken
	// but every vital field is null.
	WarnVitalsNotRecorded WarningCode = "vitals_not_recorded"
)

// WarnImplausible builds the code for a vital that matched outside its
// plausible range. The value is kept on the record, never auto-corrected.
func WarnImplausible(field string) WarningCode {
	return WarningCode("implausible_value:" + field)
}

// WarnUnmapped builds the code for a surface phrase with no vocabulary entry.
func WarnUnmapped(phrase string) WarningCode {
	return WarningCode("unmapped_term:" + phrase)
}

// WarnOverridden builds the code emitted when the external source replaces a
// rule-based candidate, so the discarded value is never silently lost.
func WarnOverridden(field string) WarningCode {
	return WarningCode(fmt.Sprintf("rule_value_overridden:%s", field))
}
