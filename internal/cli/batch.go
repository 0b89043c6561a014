package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/adinote/adinote/internal/model"
	"github.com/adinote/adinote/internal/pipeline"
	"github.com/adinote/adinote/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Process a directory of dictation files in parallel",
	Long: `Batch processes every .txt dictation file in a directory:
- File name without extension becomes the record id
- Records are processed in parallel with a configurable worker count
- One JSON record is written per dictation
- A failing record is reported and skipped, the batch continues

Example:
  adinote batch ./dettature
  adinote batch ./dettature --concurrency 8 --output-dir ./records
  adinote batch ./dettature --mode hybrid --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./adinote-records", "output directory for JSON records")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Shared with the parse command
	batchCmd.Flags().StringVar(&modeFlag, "mode", string(model.ModeRuleBased), "extraction mode (rule-based, hybrid)")
	batchCmd.Flags().StringVar(&vocabFile, "vocab", "", "YAML vocabulary file merged over the built-in lexicon")
	batchCmd.Flags().StringVar(&operatorRole, "operator-role", "", "dictating operator role applied to every record")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the external response cache")

	// LLM flags
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "external provider for hybrid mode (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "external model name")
	batchCmd.Flags().StringVar(&llmBaseURL, "llm-base-url", "", "custom provider endpoint (e.g. ollama)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	mode, err := parseMode(modeFlag)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(mode)
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = concurrency

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Adinote Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input dir:    %s\n", dir)
	fmt.Fprintf(os.Stderr, "  Mode:         %s\n", mode)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if mode == model.ModeHybrid {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", llmProvider, llmModel)
	}
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, mode, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Processing dictations with %d workers...\n", concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	results, err := processor.ProcessDir(ctx, dir, operatorRole)
	if err != nil {
		return fmt.Errorf("process directory: %w", err)
	}

	successCount := 0
	failureCount := 0
	warningCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.RecordID, result.Error)
			continue
		}

		successCount++
		warningCount += len(result.Record.Warnings)

		jsonPath := filepath.Join(outputDir, result.RecordID+".json")
		if err := p.Renderer().RenderJSON(result.Record, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.RecordID, err)
			continue
		}

		if verbose {
			p.Renderer().RenderSummary(os.Stderr, result.Record)
		} else {
			fmt.Fprintf(os.Stderr, "✓ %s (%d warnings)\n", result.RecordID, len(result.Record.Warnings))
		}
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d dictations\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Warnings:  %d\n", warningCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
