package vocab

import (
	"fmt"
	"regexp"
	"strings"
)

// Normalizer maps surface phrases to canonical controlled-vocabulary terms.
// Lookup never guesses: a phrase matching no entry is reported unmapped so
// the caller can surface a warning instead of silently dropping or
// canonicalizing it.
type Normalizer struct {
	vocab *Vocabulary
}

// NewNormalizer creates a normalizer over the given vocabulary.
func NewNormalizer(v *Vocabulary) *Normalizer {
	return &Normalizer{vocab: v}
}

// Intervention canonicalizes an intervention surface phrase.
// ok is false when the phrase maps to nothing.
func (n *Normalizer) Intervention(phrase string) (term string, ok bool) {
	return lookup(phrase, n.vocab.interventions, n.vocab.interventionSurfaces)
}

// Problem canonicalizes a problem surface phrase.
func (n *Normalizer) Problem(phrase string) (term string, ok bool) {
	return lookup(phrase, n.vocab.problems, n.vocab.problemSurfaces)
}

// lookup tries an exact folded match first, then containment: the longest
// vocabulary surface found inside the phrase wins. Ties on length break by
// earliest position in the phrase, preferring what the author said first;
// surfaces of equal length and position are already in deterministic
// (alphabetical) order.
func lookup(phrase string, entries map[string]string, surfaces []string) (string, bool) {
	folded := Fold(phrase)
	if folded == "" {
		return "", false
	}

	if term, ok := entries[folded]; ok {
		return term, true
	}

	best := -1
	bestPos := 0
	for i, surface := range surfaces {
		pos := strings.Index(folded, surface)
		if pos < 0 {
			continue
		}
		if best < 0 {
			best, bestPos = i, pos
			continue
		}
		// surfaces are sorted longest first, so an equally long later
		// surface only wins by appearing earlier in the phrase
		if len(surface) == len(surfaces[best]) && pos < bestPos {
			best, bestPos = i, pos
		}
		if len(surface) < len(surfaces[best]) {
			break
		}
	}
	if best < 0 {
		return "", false
	}
	return entries[surfaces[best]], true
}

var durationDays = regexp.MustCompile(`(?i)\b(?:tra\s+)?(\d+)\s+giorn[io]\b`)
var nextWeek = regexp.MustCompile(`(?i)\bprossima settimana\b`)

const followUpPrefix = "programmato controllo"

// FollowUp canonicalizes a follow-up phrase. Unlike interventions and
// problems this is template-based, not dictionary-based: a duration like
// "3 giorni" becomes "programmato controllo tra 3 giorni". Phrases already
// in templated form pass through unchanged, and anything else is kept as
// free text; follow-up is a string field, not a canonical set.
func (n *Normalizer) FollowUp(phrase string) string {
	trimmed := strings.Join(strings.Fields(phrase), " ")
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(Fold(trimmed), "programmato") {
		return trimmed
	}

	if g := durationDays.FindStringSubmatch(trimmed); g != nil {
		return fmt.Sprintf("%s tra %s giorni", followUpPrefix, g[1])
	}
	if nextWeek.MatchString(trimmed) {
		return followUpPrefix + " la prossima settimana"
	}

	return trimmed
}
