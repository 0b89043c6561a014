package model

import (
	"runtime"
	"time"
)

// Config is the full process configuration. It is constructed once at
// startup (defaults, then config file, then flags) and passed into each
// component; nothing mutates it after that.
type Config struct {
	Mode        Mode              `yaml:"mode"`
	Vocab       VocabConfig       `yaml:"vocab"`
	LLM         LLMConfig         `yaml:"llm"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// VocabConfig points at the controlled-vocabulary source.
type VocabConfig struct {
	// File is an optional YAML vocabulary merged over the built-in lexicon.
	File string `yaml:"file"`
}

// LLMConfig configures the external free-text reasoning provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai", "anthropic", "ollama", "" = disabled
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-"` // from environment only, never the config file
	BaseURL  string `yaml:"base_url"`
	Timeout  int    `yaml:"timeout_seconds"`
	// RequestsPerSecond bounds outbound calls; BurstSize is the limiter burst.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// CacheConfig configures caching of external provider responses.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"`
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig configures batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig configures rendering.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
	Indent  bool `yaml:"indent"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode: ModeRuleBased,
		LLM: LLMConfig{
			Provider:          "", // hybrid mode disabled by default
			Timeout:           60,
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Output: OutputConfig{
			Indent: true,
		},
	}
}
