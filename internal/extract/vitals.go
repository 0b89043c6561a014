package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// A vitalMatcher is one step in a per-field chain. Chains are ordered from
// most specific to loosest; the first matcher that fires wins the field and
// the rest are never consulted. Later patterns are intentionally broader and
// less reliable, so this is a priority list, not a best-of.
type vitalMatcher struct {
	name string
	re   *regexp.Regexp
}

var bpChain = []vitalMatcher{
	{"pa_prefixed", regexp.MustCompile(`(?i)\bPA\s*[:=]?\s*(\d{2,3})\s*/\s*(\d{2,3})\b`)},
	{"pressione", regexp.MustCompile(`(?i)\bpressione\s*[:=]?\s*(\d{2,3})\s*[-/]\s*(\d{2,3})\b`)},
	{"bare_mmhg", regexp.MustCompile(`(?i)\b(\d{2,3})\s*/\s*(\d{2,3})\s*(?:mmHg)?\b`)},
	{"bare_dash", regexp.MustCompile(`\b(\d{2,3})\s*-\s*(\d{2,3})\b`)},
}

var hrChain = []vitalMatcher{
	{"fc_prefixed", regexp.MustCompile(`(?i)\bFC\s*[:=]?\s*(\d{2,3})\b`)},
	{"hr_prefixed", regexp.MustCompile(`(?i)\bHR\s*[:=]?\s*(\d{2,3})\b`)},
	{"frequenza", regexp.MustCompile(`(?i)\bfrequenza\s*(?:cardiaca\s*)?[:=]?\s*(\d{2,3})\b`)},
	{"bare_bpm", regexp.MustCompile(`(?i)\b(\d{2,3})\s*bpm\b`)},
}

var tempChain = []vitalMatcher{
	{"temperatura", regexp.MustCompile(`(?i)\btemperatura\s*[:=]?\s*(\d{1,2}[.,]\d)\b`)},
	{"temp_abbrev", regexp.MustCompile(`(?i)\btemp\s*[:=]?\s*(\d{1,2}[.,]\d)\b`)},
	{"t_prefixed", regexp.MustCompile(`\bT\s*[:=]?\s*(\d{1,2}[.,]\d)\b`)},
	{"bare_celsius", regexp.MustCompile(`(?i)\b(\d{1,2}[.,]\d)\s*°C`)},
}

var spo2Chain = []vitalMatcher{
	{"spo2_prefixed", regexp.MustCompile(`(?i)\bSpO2\s*[:=]?\s*(\d{1,3})\s*%?`)},
	{"sato2_prefixed", regexp.MustCompile(`(?i)\bSatO2\s*[:=]?\s*(\d{1,3})\s*%?`)},
	{"saturazione", regexp.MustCompile(`(?i)\bsaturazione\s*[:=]?\s*(\d{1,3})\s*%?`)},
}

// Lines considered for loose blood-pressure matching must carry one of
// these clinical cues; a bare number pair elsewhere is too likely noise.
var bpLineCues = []string{"pa", "pressione", "parametri", "valori", "mmhg", "fc", "bpm", "temp", "spo2", "saturazione"}

var dateLike = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)

// paWord matches an explicit pressure label. "pa" as a bare substring is
// not enough: parametri would match too.
var paWord = regexp.MustCompile(`(?i)\bpa\b|pressione`)

var datetimeRe = regexp.MustCompile(`(?i)\b(\d{1,2}/\d{1,2}/\d{4})\s*(?:ore|alle)?\s*(\d{1,2}:\d{2})\b`)

// extractBP runs the blood-pressure chain line by line. Date tokens like
// 24/02/2026 are the classic false positive here: a line containing one is
// skipped unless it is explicitly PA/pressione-cued.
func extractBP(lines []string) (sys, dia *int, matcher string, priority int) {
	for _, line := range lines {
		low := strings.ToLower(line)
		if !hasAnyCue(low, bpLineCues) {
			continue
		}
		hasDate := dateLike.MatchString(line)
		if hasDate && !paWord.MatchString(line) {
			continue
		}

		for i, m := range bpChain {
			// On a line carrying a date only the labelled matchers are
			// trusted; the loose ones would latch onto 24/02.
			if hasDate && m.name != "pa_prefixed" && m.name != "pressione" {
				continue
			}
			g := m.re.FindStringSubmatch(line)
			if g == nil {
				continue
			}
			s, _ := strconv.Atoi(g[1])
			d, _ := strconv.Atoi(g[2])
			return &s, &d, m.name, i
		}
	}
	return nil, nil, "", 0
}

// extractInt runs an integer chain over the whole text, first match wins.
func extractInt(text string, chain []vitalMatcher) (*int, string, int) {
	for i, m := range chain {
		g := m.re.FindStringSubmatch(text)
		if g == nil {
			continue
		}
		v, err := strconv.Atoi(g[1])
		if err != nil {
			continue
		}
		return &v, m.name, i
	}
	return nil, "", 0
}

// extractTemp runs the temperature chain; Italian dictations use both the
// comma and the dot as the decimal separator.
func extractTemp(text string) (*float64, string, int) {
	for i, m := range tempChain {
		g := m.re.FindStringSubmatch(text)
		if g == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(g[1], ",", "."), 64)
		if err != nil {
			continue
		}
		return &v, m.name, i
	}
	return nil, "", 0
}

// extractDatetime recovers the visit timestamp from patterns like
// "24/02/2026 09:10" or "del 24/02/2026 alle 10:00". Returns "" if absent
// or unparseable.
func extractDatetime(text string) string {
	g := datetimeRe.FindStringSubmatch(text)
	if g == nil {
		return ""
	}
	t, err := time.Parse("2/1/2006 15:04", g[1]+" "+g[2])
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02T15:04:05")
}

func hasAnyCue(low string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(low, cue) {
			return true
		}
	}
	return false
}
