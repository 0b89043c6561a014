package model

// Source identifies which extractor produced a candidate.
type Source string

const (
	SourceRules    Source = "rules"    // deterministic pattern chains
	SourceExternal Source = "external" // free-text reasoning provider
)

// Candidate is a tentative extracted value before merge and validation.
// Pattern names the matcher that fired (e.g. "vital:pa_prefixed") and
// Priority is its position in the chain, 0 being the most specific.
type Candidate struct {
	Field       string `json:"field"`
	Value       string `json:"value"`
	Pattern     string `json:"pattern,omitempty"`
	Priority    int    `json:"priority"`
	Source      Source `json:"source"`
	Implausible bool   `json:"implausible,omitempty"`
}

// Extraction is one extractor's complete view of a dictation: resolved
// vitals plus candidate lists for the free-text fields. Both the rule chain
// and the external provider produce this shape, which is what lets the
// merger treat them symmetrically.
type Extraction struct {
	Source        Source
	Reason        *Candidate
	FollowUp      *Candidate
	Interventions []Candidate
	Problems      []Candidate
	Vitals        Vitals
	// ImplausibleVitals lists vital field names whose matched value fell
	// outside the plausible range. The value is still in Vitals.
	ImplausibleVitals []string
	// VisitDatetime is the local ISO 8601 timestamp found in the text,
	// without a UTC offset, if any.
	VisitDatetime string
}
