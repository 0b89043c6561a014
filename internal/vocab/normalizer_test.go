package vocab

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFold(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Ipertensione  Arteriosa", "ipertensione arteriosa"},
		{"PIAGA DA DECUBITO", "piaga da decubito"},
		{"medicazione\tlesione", "medicazione lesione"},
		{"già programmato", "gia programmato"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Fold(tc.in); got != tc.want {
			t.Errorf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizer_InterventionExact(t *testing.T) {
	n := NewNormalizer(Builtin())

	term, ok := n.Intervention("rilevati parametri vitali")
	if !ok {
		t.Fatal("expected mapping for 'rilevati parametri vitali'")
	}
	if term != "controllo_parametri_vitali" {
		t.Errorf("got %q, want controllo_parametri_vitali", term)
	}

	// Bare "parametri" is a common shorthand and maps to the same term.
	term, ok = n.Intervention("parametri")
	if !ok || term != "controllo_parametri_vitali" {
		t.Errorf("Intervention(parametri) = (%q, %v), want controllo_parametri_vitali", term, ok)
	}
}

func TestNormalizer_InterventionContains(t *testing.T) {
	n := NewNormalizer(Builtin())

	// No exact entry for the full phrase; the contained surface wins.
	term, ok := n.Intervention("eseguita medicazione al tallone sinistro")
	if !ok {
		t.Fatal("expected containment mapping")
	}
	if term != "medicazione" {
		t.Errorf("got %q, want medicazione", term)
	}
}

func TestNormalizer_LongestEntryWins(t *testing.T) {
	n := NewNormalizer(Builtin())

	// Both "parametri vitali" and "rilevati parametri vitali" are contained;
	// the longer, more specific entry must win even though both map to the
	// same term here, the chosen surface is observable via problems below.
	term, ok := n.Problem("anamnesi: rischio caduta riferito dal caregiver")
	if !ok {
		t.Fatal("expected mapping")
	}
	// "rischio caduta" (longer) must beat "caduta".
	if term != "rischio_caduta" {
		t.Errorf("got %q, want rischio_caduta", term)
	}
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := NewNormalizer(Builtin())

	canonical := []string{
		"controllo_parametri_vitali", "medicazione", "prelievo_ematico",
	}
	for _, term := range canonical {
		got, ok := n.Intervention(term)
		if !ok || got != term {
			t.Errorf("Intervention(%q) = (%q, %v), want identity", term, got, ok)
		}
	}

	for _, term := range []string{"ipertensione", "bpco", "rischio_caduta"} {
		got, ok := n.Problem(term)
		if !ok || got != term {
			t.Errorf("Problem(%q) = (%q, %v), want identity", term, got, ok)
		}
	}
}

func TestNormalizer_Unmapped(t *testing.T) {
	n := NewNormalizer(Builtin())

	if _, ok := n.Intervention("colloquio con i familiari"); ok {
		t.Error("expected unmapped intervention")
	}
	if _, ok := n.Problem("cefalea ricorrente"); ok {
		t.Error("expected unmapped problem")
	}
	if _, ok := n.Intervention(""); ok {
		t.Error("expected empty phrase unmapped")
	}
}

func TestNormalizer_ProblemSynonyms(t *testing.T) {
	n := NewNormalizer(Builtin())

	cases := []struct {
		phrase string
		want   string
	}{
		{"ipertensione arteriosa", "ipertensione"},
		{"pressione alta", "ipertensione"},
		{"piaga da decubito", "lesione_da_pressione"},
		{"bronchite cronica", "bpco"},
		{"scarso appetito", "malnutrizione"},
		{"poca idratazione", "disidratazione"},
	}
	for _, tc := range cases {
		got, ok := n.Problem(tc.phrase)
		if !ok {
			t.Errorf("Problem(%q) unmapped", tc.phrase)
			continue
		}
		if got != tc.want {
			t.Errorf("Problem(%q) = %q, want %q", tc.phrase, got, tc.want)
		}
	}
}

func TestNormalizer_FollowUpTemplate(t *testing.T) {
	n := NewNormalizer(Builtin())

	cases := []struct {
		in   string
		want string
	}{
		{"3 giorni", "programmato controllo tra 3 giorni"},
		{"controllo tra 7 giorni", "programmato controllo tra 7 giorni"},
		{"controllo la prossima settimana", "programmato controllo la prossima settimana"},
		{"Programmato controllo tra 3 giorni", "Programmato controllo tra 3 giorni"}, // already templated
		{"ricontatto telefonico domani", "ricontatto telefonico domani"},             // free text passes through
	}
	for _, tc := range cases {
		if got := n.FollowUp(tc.in); got != tc.want {
			t.Errorf("FollowUp(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoad_MergesFileOverBuiltins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	data := `
interventions:
  "colloquio con i familiari": colloquio_caregiver
problems:
  "cefalea": cefalea
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := NewNormalizer(v)

	term, ok := n.Intervention("colloquio con i familiari")
	if !ok || term != "colloquio_caregiver" {
		t.Errorf("file entry not merged: (%q, %v)", term, ok)
	}

	// Built-ins survive the merge.
	if term, ok := n.Intervention("medicazione"); !ok || term != "medicazione" {
		t.Errorf("builtin lost after merge: (%q, %v)", term, ok)
	}
}

func TestLoad_EmptyPathReturnsBuiltins(t *testing.T) {
	v, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.ProblemSurfaces()) == 0 {
		t.Error("expected builtin problem surfaces")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/vocab.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
