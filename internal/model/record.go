package model

// RawVisit is one dictation as received: the raw text plus visit metadata,
// which the pipeline passes through unchanged.
type RawVisit struct {
	RecordID     string `json:"record_id"`
	Text         string `json:"-"`
	OperatorRole string `json:"operator_role,omitempty"`
}

// PreprocessedText is the cleaned dictation plus its sentence segments.
// It lives only for the duration of one pipeline run.
type PreprocessedText struct {
	Text      string   // cleaned full text
	Lines     []string // non-empty lines, whitespace-collapsed
	Sentences []string // segments split on clinical punctuation
}

// Mode selects the extraction path for a record.
type Mode string

const (
	ModeRuleBased Mode = "rule-based" // deterministic patterns only
	ModeHybrid    Mode = "hybrid"     // patterns + external reasoning source
)

// Vitals holds the measured vital signs. Nil means the value was not found
// in the dictation; an out-of-range value stays populated and is flagged by
// the quality validator instead.
type Vitals struct {
	Systolic  *int     `json:"blood_pressure_systolic"`
	Diastolic *int     `json:"blood_pressure_diastolic"`
	HeartRate *int     `json:"heart_rate"`
	Temp      *float64 `json:"temperature"`
	SpO2      *int     `json:"spo2"`
}

// Meta carries the visit metadata: identifiers given by the caller plus the
// visit datetime recovered from the text itself.
type Meta struct {
	RecordID      string `json:"record_id"`
	VisitDatetime string `json:"visit_datetime"` // ISO 8601 local time, no offset; "" if not found
	OperatorRole  string `json:"operator_role,omitempty"`
	Mode          Mode   `json:"mode"`
}

// VisitRecord is the final structured output for one dictation.
// Interventions and problems contain canonical vocabulary terms only;
// unmapped surface phrases never reach these sets.
type VisitRecord struct {
	Meta          Meta          `json:"meta"`
	Reason        *string       `json:"reason"`
	FollowUp      *string       `json:"follow_up"`
	Interventions []string      `json:"interventions"`
	Problems      []string      `json:"problems"`
	Vitals        Vitals        `json:"vitals"`
	Warnings      []WarningCode `json:"warnings"`
}

// AddWarning appends a warning code. Duplicates are allowed: each violated
// quality rule contributes its own code, none are suppressed.
func (r *VisitRecord) AddWarning(code WarningCode) {
	r.Warnings = append(r.Warnings, code)
}

// HasWarning reports whether the record carries the given code at least once.
func (r *VisitRecord) HasWarning(code WarningCode) bool {
	for _, w := range r.Warnings {
		if w == code {
			return true
		}
	}
	return false
}
