package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adinote/adinote/internal/model"
)

// Provider is the external free-text reasoning source. It gives a
// best-effort structured guess for the free-text fields of a dictation.
// Providers are a capability boundary: they return a result or an error
// within a bounded wait, and the pipeline treats any failure as absence.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Extract asks the model for a structured guess over the dictation
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest contains the input for one extraction call.
type ExtractRequest struct {
	// Text is the preprocessed dictation
	Text string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExtractResponse contains the provider's structured guess.
type ExtractResponse struct {
	Fields     ExtractedFields
	Model      string
	TokensUsed int
}

// ExtractedFields is the strict JSON shape the model must return.
type ExtractedFields struct {
	Reason        *string  `json:"reason"`
	FollowUp      *string  `json:"follow_up"`
	Interventions []string `json:"interventions"`
	Problems      []string `json:"problems"`
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// RequestsPerSecond / BurstSize bound the outbound call rate
	RequestsPerSecond float64
	BurstSize         int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:          "", // Disabled by default
		Timeout:           60,
		MaxTokens:         500,
		RequestsPerSecond: 2,
		BurstSize:         2,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(c model.LLMConfig) Config {
	cfg := DefaultConfig()
	cfg.Provider = c.Provider
	cfg.Model = c.Model
	cfg.APIKey = c.APIKey
	cfg.BaseURL = c.BaseURL
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	if c.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = c.RequestsPerSecond
	}
	if c.BurstSize > 0 {
		cfg.BurstSize = c.BurstSize
	}
	return cfg
}

// systemPrompt instructs the model to emit strict JSON only. The shape
// mirrors ExtractedFields; anything else fails the shape check and the
// record falls back to rule output.
const systemPrompt = `You extract structured clinical data from Italian ADI home-visit notes.
Return ONLY valid JSON with this structure:
{ "reason": null|string, "follow_up": null|string, "interventions": [], "problems": [] }
Rules:
- Do NOT invent data.
- Use null for missing fields and [] for empty lists.
- "problems" and "interventions" are short Italian phrases taken from the note.
- Output must be strict JSON (no commentary, no markdown).`

// BuildPrompt constructs the user prompt for one dictation.
func BuildPrompt(text string) string {
	return fmt.Sprintf("TEXT:\n%s\n\nJSON ONLY:", text)
}

// ParseFields parses the model output into ExtractedFields. Models
// sometimes wrap the JSON in prose, so the first balanced-looking object
// is sliced out before unmarshaling.
func ParseFields(raw string) (*ExtractedFields, error) {
	out := strings.TrimSpace(raw)
	if start, end := strings.Index(out, "{"), strings.LastIndex(out, "}"); start >= 0 && end > start {
		out = out[start : end+1]
	}

	var fields ExtractedFields
	if err := json.Unmarshal([]byte(out), &fields); err != nil {
		snippet := out
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		return nil, fmt.Errorf("model returned invalid JSON: %w (output: %q)", err, snippet)
	}

	sanitize(&fields)
	return &fields, nil
}

// sanitize applies the minimal per-field shape check: strings must be
// non-empty once trimmed, list entries likewise. Failing values become
// absent so the merger falls back to the rule candidate for that field.
func sanitize(f *ExtractedFields) {
	f.Reason = cleanString(f.Reason)
	f.FollowUp = cleanString(f.FollowUp)
	f.Interventions = cleanList(f.Interventions)
	f.Problems = cleanList(f.Problems)
}

func cleanString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func cleanList(list []string) []string {
	var out []string
	for _, s := range list {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ToExtraction converts a provider response into the candidate shape the
// merger consumes. Vitals stay zero: the external source is never trusted
// for vitals, so providers are not even asked for them.
func (r *ExtractResponse) ToExtraction(providerName string) *model.Extraction {
	pattern := "llm:" + providerName
	ex := &model.Extraction{Source: model.SourceExternal}

	if r.Fields.Reason != nil {
		ex.Reason = &model.Candidate{
			Field: "reason", Value: *r.Fields.Reason, Pattern: pattern, Source: model.SourceExternal,
		}
	}
	if r.Fields.FollowUp != nil {
		ex.FollowUp = &model.Candidate{
			Field: "follow_up", Value: *r.Fields.FollowUp, Pattern: pattern, Source: model.SourceExternal,
		}
	}
	for _, phrase := range r.Fields.Interventions {
		ex.Interventions = append(ex.Interventions, model.Candidate{
			Field: "interventions", Value: phrase, Pattern: pattern, Source: model.SourceExternal,
		})
	}
	for _, phrase := range r.Fields.Problems {
		ex.Problems = append(ex.Problems, model.Candidate{
			Field: "problems", Value: phrase, Pattern: pattern, Source: model.SourceExternal,
		})
	}
	return ex
}
