package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adinote/adinote/internal/model"
	"github.com/adinote/adinote/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	modeFlag     string
	vocabFile    string
	outputPath   string
	recordID     string
	operatorRole string
	noCache      bool
	timeout      time.Duration

	llmProvider string
	llmModel    string
	llmBaseURL  string
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse one dictation file into a structured visit record",
	Long: `Parse a single dictation text file and emit the structured record as JSON.

The record id defaults to the file name without extension. In hybrid mode
an external model contributes to the free-text fields; when it is
unreachable the record silently falls back to rule-based output with a
hybrid_source_unavailable warning.

Example:
  adinote parse visita.txt
  adinote parse visita.txt --output record.json
  adinote parse visita.txt --mode hybrid --llm-provider ollama --llm-model llama3.1:8b
  adinote parse visita.txt --vocab ./vocab.yaml --operator-role infermiere`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&modeFlag, "mode", string(model.ModeRuleBased), "extraction mode (rule-based, hybrid)")
	parseCmd.Flags().StringVar(&vocabFile, "vocab", "", "YAML vocabulary file merged over the built-in lexicon")
	parseCmd.Flags().StringVarP(&outputPath, "output", "o", "-", "output file (- for stdout)")
	parseCmd.Flags().StringVar(&recordID, "record-id", "", "record id (default: file name without extension)")
	parseCmd.Flags().StringVar(&operatorRole, "operator-role", "", "dictating operator role (e.g. infermiere, fisioterapista)")
	parseCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the external response cache")
	parseCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "processing timeout")

	parseCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "external provider for hybrid mode (openai, anthropic, ollama)")
	parseCmd.Flags().StringVar(&llmModel, "llm-model", "", "external model name")
	parseCmd.Flags().StringVar(&llmBaseURL, "llm-base-url", "", "custom provider endpoint (e.g. ollama)")
}

func runParse(cmd *cobra.Command, args []string) error {
	file := args[0]

	mode, err := parseMode(modeFlag)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(mode)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read dictation file: %w", err)
	}

	id := recordID
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rec, err := p.Process(ctx, model.RawVisit{
		RecordID:     id,
		Text:         string(data),
		OperatorRole: operatorRole,
	}, mode)
	if err != nil {
		return fmt.Errorf("process %s: %w", id, err)
	}

	if verbose {
		p.Renderer().RenderSummary(os.Stderr, rec)
	}

	return p.Renderer().RenderJSON(rec, outputPath)
}

// parseMode validates the --mode flag.
func parseMode(s string) (model.Mode, error) {
	switch model.Mode(s) {
	case model.ModeRuleBased:
		return model.ModeRuleBased, nil
	case model.ModeHybrid:
		return model.ModeHybrid, nil
	default:
		return "", fmt.Errorf("unknown mode %q (supported: %s, %s)", s, model.ModeRuleBased, model.ModeHybrid)
	}
}

// buildConfig assembles the process configuration from defaults, the viper
// layer and the command flags. API keys come from the environment only.
func buildConfig(mode model.Mode) (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Mode = mode
	cfg.Vocab.File = vocabFile
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose

	if mode != model.ModeHybrid {
		return cfg, nil
	}

	if llmProvider == "" {
		return nil, fmt.Errorf("hybrid mode requires --llm-provider (openai, anthropic, ollama)")
	}
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	cfg.LLM.BaseURL = llmBaseURL

	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}

	return cfg, nil
}
