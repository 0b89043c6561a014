package vocab

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Vocabulary is the controlled-vocabulary table: many surface phrases to
// one canonical term, per field class. It is built once at process start
// and never mutated afterwards, so it is safe to share across workers.
type Vocabulary struct {
	interventions map[string]string // folded surface -> canonical term
	problems      map[string]string

	// surfaces sorted longest first for substring matching
	interventionSurfaces []string
	problemSurfaces      []string
}

// vocabFile is the YAML shape of an external vocabulary file. Entries merge
// over the built-in lexicon.
type vocabFile struct {
	Interventions map[string]string `yaml:"interventions"`
	Problems      map[string]string `yaml:"problems"`
}

var diacriticFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normalizes a surface phrase for lookup: lowercase, diacritics
// stripped, whitespace collapsed. Folding is deterministic, so two phrases
// that differ only in case, accents or spacing hit the same entry.
func Fold(s string) string {
	folded, _, err := transform.String(diacriticFold, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// Builtin returns the built-in lexicon.
func Builtin() *Vocabulary {
	return build(builtinInterventions, builtinProblems)
}

// Load builds the vocabulary from the built-in lexicon plus an optional
// YAML file merged over it. An empty path returns the built-ins.
func Load(path string) (*Vocabulary, error) {
	if path == "" {
		return Builtin(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file: %w", err)
	}

	var file vocabFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse vocabulary file %s: %w", path, err)
	}

	interventions := merge(builtinInterventions, file.Interventions)
	problems := merge(builtinProblems, file.Problems)

	return build(interventions, problems), nil
}

func merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func build(interventions, problems map[string]string) *Vocabulary {
	v := &Vocabulary{
		interventions: foldKeys(interventions),
		problems:      foldKeys(problems),
	}
	v.interventionSurfaces = sortedSurfaces(v.interventions)
	v.problemSurfaces = sortedSurfaces(v.problems)
	return v
}

func foldKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for surface, canonical := range m {
		out[Fold(surface)] = canonical
	}
	return out
}

// sortedSurfaces orders surfaces longest first so that substring matching
// prefers specific entries over generic ones; equal lengths sort
// alphabetically to keep iteration deterministic.
func sortedSurfaces(m map[string]string) []string {
	surfaces := make([]string, 0, len(m))
	for s := range m {
		surfaces = append(surfaces, s)
	}
	sort.Slice(surfaces, func(i, j int) bool {
		if len(surfaces[i]) != len(surfaces[j]) {
			return len(surfaces[i]) > len(surfaces[j])
		}
		return surfaces[i] < surfaces[j]
	})
	return surfaces
}

// ProblemSurfaces returns every folded problem surface phrase, longest
// first. The rule extractor scans dictation text against this list.
func (v *Vocabulary) ProblemSurfaces() []string {
	out := make([]string, len(v.problemSurfaces))
	copy(out, v.problemSurfaces)
	return out
}

// Built-in lexicon. Canonical terms map to themselves so that normalizing
// an already-canonical term is the identity.

var builtinInterventions = map[string]string{
	"medicazione":                "medicazione",
	"rilevati parametri vitali":  "controllo_parametri_vitali",
	"rilevazione parametri":      "controllo_parametri_vitali",
	"controllo parametri vitali": "controllo_parametri_vitali",
	"controllo parametri":        "controllo_parametri_vitali",
	"parametri vitali":           "controllo_parametri_vitali",
	"parametri":                  "controllo_parametri_vitali",
	"prelievo ematico":           "prelievo_ematico",
	"prelievo":                   "prelievo_ematico",
	"somministrazione terapia":   "somministrazione_terapia",
	"somministrata terapia":      "somministrazione_terapia",
	"igiene personale":           "igiene_personale",
	"igiene del paziente":        "igiene_personale",
	"educazione sanitaria":       "educazione_sanitaria",
	"educazione del caregiver":   "educazione_sanitaria",

	"controllo_parametri_vitali": "controllo_parametri_vitali",
	"prelievo_ematico":           "prelievo_ematico",
	"somministrazione_terapia":   "somministrazione_terapia",
	"igiene_personale":           "igiene_personale",
	"educazione_sanitaria":       "educazione_sanitaria",
}

var builtinProblems = map[string]string{
	"ipertensione arteriosa":  "ipertensione",
	"pressione alta":          "ipertensione",
	"diabete tipo 2":          "diabete_tipo_2",
	"diabete mellito tipo 2":  "diabete_tipo_2",
	"lesione da pressione":    "lesione_da_pressione",
	"piaga da decubito":       "lesione_da_pressione",
	"ulcera da pressione":     "lesione_da_pressione",
	"lesione sacrale":         "lesione_da_pressione",
	"bronchite cronica":       "bpco",
	"dolore cronico":          "dolore_cronico",
	"scompenso cardiaco":      "scompenso_cardiaco",
	"rischio caduta":          "rischio_caduta",
	"rischio di caduta":       "rischio_caduta",
	"scarso appetito":         "malnutrizione",
	"inappetenza":             "malnutrizione",
	"ridotto appetito":        "malnutrizione",
	"mangia poco":             "malnutrizione",
	"non mangia":              "malnutrizione",
	"poca idratazione":        "disidratazione",

	"ipertensione":         "ipertensione",
	"diabete_tipo_2":       "diabete_tipo_2",
	"lesione_da_pressione": "lesione_da_pressione",
	"dolore_cronico":       "dolore_cronico",
	"scompenso_cardiaco":   "scompenso_cardiaco",
	"bpco":                 "bpco",
	"caduta":               "caduta",
	"rischio_caduta":       "rischio_caduta",
	"disidratazione":       "disidratazione",
	"malnutrizione":        "malnutrizione",
}
