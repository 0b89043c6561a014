package extract

import (
	"regexp"
	"strings"

	"github.com/adinote/adinote/internal/model"
)

// RuleExtractor runs the deterministic pattern chains over a preprocessed
// dictation. It is stateless apart from the read-only problem surface list
// it is built with, so one instance is safe to share across workers.
type RuleExtractor struct {
	problemSurfaces []string // known problem phrases, scanned as substrings
}

// NewRuleExtractor creates a rule extractor. problemSurfaces is the list of
// vocabulary surface phrases scanned for problem mentions, usually
// Vocabulary.ProblemSurfaces().
func NewRuleExtractor(problemSurfaces []string) *RuleExtractor {
	return &RuleExtractor{problemSurfaces: problemSurfaces}
}

var reasonChain = []struct {
	name string
	re   *regexp.Regexp
}{
	{"motivo", regexp.MustCompile(`(?i)\bMotivo(?: della visita)?\s*:\s*([^.\n]+)`)},
	{"riferisce", regexp.MustCompile(`(?i)\b(?:Paziente\s+)?Riferisce\s+([^.\n]+)`)},
	{"riferito", regexp.MustCompile(`(?i)\bRiferito\s+([^.\n]+)`)},
}

// Keywords that make a line "reason-like" for the last-resort fallback.
var reasonKeywords = []string{
	"controllo", "monitoraggio", "rivalutazione", "dolore", "caduta",
	"medicazione", "verifica", "stanchezza", "appetito",
}

var followUpChain = []struct {
	name    string
	re      *regexp.Regexp
	capture bool // whether group 1 holds the value; otherwise the whole match
}{
	{"programmato", regexp.MustCompile(`(?i)\bProgrammato\b[^.\n]*`), false},
	{"followup_label", regexp.MustCompile(`(?i)\bFollow[-\s]?up\s*:\s*([^.\n]+)`), true},
	{"controllo_scadenza", regexp.MustCompile(`(?i)\bcontrollo\b[^.\n]*?\b(prossima settimana|tra\s+\d+\s+giorni)\b[^.\n]*`), false},
	{"ricontatto", regexp.MustCompile(`(?i)\bricontatto\b[^.\n]*`), false},
}

var interventionPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"medicazione", regexp.MustCompile(`(?i)\bmedicazione\b`)},
	{"parametri_vitali", regexp.MustCompile(`(?i)\b(?:rilevati|rilevazione|controllo)?\s*parametri(?:\s+vitali)?\b`)},
	{"prelievo", regexp.MustCompile(`(?i)\bprelievo(?:\s+ematico)?\b`)},
	{"somministrazione", regexp.MustCompile(`(?i)\bsomministra(?:ta|zione)\s+terapia\b`)},
	{"igiene", regexp.MustCompile(`(?i)\bigiene\s+(?:personale|del paziente)\b`)},
	{"educazione", regexp.MustCompile(`(?i)\beducazione\s+(?:sanitaria|del caregiver)\b`)},
}

// Any of these cues means a vital sign was dictated, which implies a vitals
// check took place even when no explicit intervention phrase is present.
var vitalsCue = regexp.MustCompile(`(?i)\b(?:PA|pressione|parametri|FC|bpm|temperatura|temp|SpO2|SatO2|saturazione)\b`)

// Extract runs every chain and returns the rule-based view of the
// dictation. Missing fields stay nil; out-of-range vitals stay populated
// with the candidate marked implausible. Given identical input the output
// is always identical.
func (e *RuleExtractor) Extract(pre *model.PreprocessedText) *model.Extraction {
	ex := &model.Extraction{
		Source:        model.SourceRules,
		VisitDatetime: extractDatetime(pre.Text),
	}

	e.extractVitals(pre, ex)
	ex.Reason = e.extractReason(pre)
	ex.FollowUp = e.extractFollowUp(pre)
	ex.Interventions = e.extractInterventions(pre)
	ex.Problems = e.extractProblems(pre)

	return ex
}

func (e *RuleExtractor) extractVitals(pre *model.PreprocessedText, ex *model.Extraction) {
	markIf := func(field string, v float64) {
		if !model.InRange(field, v) {
			ex.ImplausibleVitals = append(ex.ImplausibleVitals, field)
		}
	}

	if sys, dia, _, _ := extractBP(pre.Lines); sys != nil {
		ex.Vitals.Systolic, ex.Vitals.Diastolic = sys, dia
		markIf("blood_pressure_systolic", float64(*sys))
		markIf("blood_pressure_diastolic", float64(*dia))
	}
	if hr, _, _ := extractInt(pre.Text, hrChain); hr != nil {
		ex.Vitals.HeartRate = hr
		markIf("heart_rate", float64(*hr))
	}
	if temp, _, _ := extractTemp(pre.Text); temp != nil {
		ex.Vitals.Temp = temp
		markIf("temperature", *temp)
	}
	if spo2, _, _ := extractInt(pre.Text, spo2Chain); spo2 != nil {
		ex.Vitals.SpO2 = spo2
		markIf("spo2", float64(*spo2))
	}
}

func (e *RuleExtractor) extractReason(pre *model.PreprocessedText) *model.Candidate {
	for i, m := range reasonChain {
		g := m.re.FindStringSubmatch(pre.Text)
		if g == nil {
			continue
		}
		reason := strings.TrimSpace(g[1])
		if reason == "" {
			continue
		}
		return &model.Candidate{
			Field:    "reason",
			Value:    reason,
			Pattern:  "reason:" + m.name,
			Priority: i,
			Source:   model.SourceRules,
		}
	}

	// Last resort: the first reason-like line that is not a header.
	for _, line := range pre.Lines {
		low := strings.ToLower(line)
		if dateLike.MatchString(line) || strings.HasPrefix(low, "visita") {
			continue
		}
		if hasAnyCue(low, reasonKeywords) {
			return &model.Candidate{
				Field:    "reason",
				Value:    strings.TrimRight(line, "."),
				Pattern:  "reason:keyword_line",
				Priority: len(reasonChain),
				Source:   model.SourceRules,
			}
		}
	}
	return nil
}

func (e *RuleExtractor) extractFollowUp(pre *model.PreprocessedText) *model.Candidate {
	for i, m := range followUpChain {
		g := m.re.FindStringSubmatch(pre.Text)
		if g == nil {
			continue
		}
		val := g[0]
		if m.capture {
			val = g[1]
		}
		val = strings.TrimRight(strings.TrimSpace(val), ".")
		if val == "" {
			continue
		}
		return &model.Candidate{
			Field:    "follow_up",
			Value:    val,
			Pattern:  "followup:" + m.name,
			Priority: i,
			Source:   model.SourceRules,
		}
	}
	return nil
}

// extractInterventions collects every matching pattern: interventions
// co-occur, so unlike vitals no pattern excludes another.
func (e *RuleExtractor) extractInterventions(pre *model.PreprocessedText) []model.Candidate {
	var out []model.Candidate
	seen := make(map[string]bool)

	add := func(value, pattern string, prio int) {
		key := strings.ToLower(value)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, model.Candidate{
			Field:    "interventions",
			Value:    value,
			Pattern:  pattern,
			Priority: prio,
			Source:   model.SourceRules,
		})
	}

	for i, p := range interventionPatterns {
		if m := p.re.FindString(pre.Text); m != "" {
			add(strings.TrimSpace(m), "intervention:"+p.name, i)
		}
	}

	if vitalsCue.MatchString(pre.Text) {
		add("parametri vitali", "intervention:vitals_cue", len(interventionPatterns))
	}

	return out
}

// extractProblems scans the folded text for known problem surface phrases.
// The surfaces come from the controlled vocabulary, so every candidate
// produced here is mappable by construction.
func (e *RuleExtractor) extractProblems(pre *model.PreprocessedText) []model.Candidate {
	low := strings.ToLower(pre.Text)

	var out []model.Candidate
	seen := make(map[string]bool)
	for i, phrase := range e.problemSurfaces {
		if !strings.Contains(low, phrase) {
			continue
		}
		if seen[phrase] {
			continue
		}
		seen[phrase] = true
		out = append(out, model.Candidate{
			Field:    "problems",
			Value:    phrase,
			Pattern:  "problem:lexicon",
			Priority: i,
			Source:   model.SourceRules,
		})
	}
	return out
}
