package llm

import (
	"strings"
	"testing"
)

func TestParseFields(t *testing.T) {
	raw := `{"reason": "controllo pressione", "follow_up": null, "interventions": ["medicazione"], "problems": []}`

	fields, err := ParseFields(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fields.Reason == nil || *fields.Reason != "controllo pressione" {
		t.Errorf("reason: got %v", fields.Reason)
	}
	if fields.FollowUp != nil {
		t.Errorf("follow_up: expected nil, got %q", *fields.FollowUp)
	}
	if len(fields.Interventions) != 1 || fields.Interventions[0] != "medicazione" {
		t.Errorf("interventions: got %v", fields.Interventions)
	}
	if len(fields.Problems) != 0 {
		t.Errorf("problems: got %v", fields.Problems)
	}
}

func TestParseFields_WrappedInProse(t *testing.T) {
	raw := "Here is the extraction:\n```json\n{\"reason\": \"medicazione\", \"follow_up\": null, \"interventions\": [], \"problems\": []}\n```\nLet me know."

	fields, err := ParseFields(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.Reason == nil || *fields.Reason != "medicazione" {
		t.Errorf("reason: got %v", fields.Reason)
	}
}

func TestParseFields_InvalidJSON(t *testing.T) {
	cases := []string{
		"not json at all",
		`{"reason": `,
		"",
	}
	for _, raw := range cases {
		if _, err := ParseFields(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestParseFields_Sanitize(t *testing.T) {
	raw := `{"reason": "   ", "follow_up": " tra 3 giorni ", "interventions": ["", "  ", "medicazione "], "problems": null}`

	fields, err := ParseFields(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Blank strings become absent, not empty values.
	if fields.Reason != nil {
		t.Errorf("blank reason should be nil, got %q", *fields.Reason)
	}
	if fields.FollowUp == nil || *fields.FollowUp != "tra 3 giorni" {
		t.Errorf("follow_up: got %v", fields.FollowUp)
	}
	if len(fields.Interventions) != 1 || fields.Interventions[0] != "medicazione" {
		t.Errorf("interventions: got %v", fields.Interventions)
	}
	if len(fields.Problems) != 0 {
		t.Errorf("problems: got %v", fields.Problems)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("PA 130/85")
	if !strings.Contains(prompt, "PA 130/85") {
		t.Errorf("prompt missing dictation text: %q", prompt)
	}
	if !strings.Contains(prompt, "JSON") {
		t.Errorf("prompt missing output instruction: %q", prompt)
	}
}

func TestExtractResponse_ToExtraction(t *testing.T) {
	reason := "controllo"
	resp := &ExtractResponse{
		Fields: ExtractedFields{
			Reason:        &reason,
			Interventions: []string{"medicazione", "prelievo"},
			Problems:      []string{"ipertensione"},
		},
	}

	ex := resp.ToExtraction("openai")

	if ex.Reason == nil || ex.Reason.Value != "controllo" {
		t.Fatalf("reason candidate: got %v", ex.Reason)
	}
	if ex.Reason.Pattern != "llm:openai" {
		t.Errorf("pattern: got %q", ex.Reason.Pattern)
	}
	if len(ex.Interventions) != 2 || len(ex.Problems) != 1 {
		t.Errorf("candidates: got %d interventions, %d problems", len(ex.Interventions), len(ex.Problems))
	}

	// Vitals are never sourced externally.
	if ex.Vitals.Systolic != nil || ex.Vitals.HeartRate != nil {
		t.Error("external extraction must not carry vitals")
	}
}

func TestNewProvider(t *testing.T) {
	cases := []struct {
		provider string
		wantNil  bool
		wantErr  bool
	}{
		{"", true, false},
		{"openai", false, false},
		{"anthropic", false, false},
		{"claude", false, false},
		{"ollama", false, false},
		{"unknown", true, true},
	}

	for _, tc := range cases {
		p, err := NewProvider(Config{Provider: tc.provider, APIKey: "test"})
		if tc.wantErr != (err != nil) {
			t.Errorf("NewProvider(%q): err = %v", tc.provider, err)
		}
		if tc.wantNil != (p == nil) {
			t.Errorf("NewProvider(%q): provider nil = %v", tc.provider, p == nil)
		}
	}
}
