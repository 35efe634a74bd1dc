package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/framescope/framescope/internal/llm"
	"github.com/framescope/framescope/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var labelTimeout time.Duration

// labelCmd represents the label command
var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Label pending snippets with an LLM in resumable batches",
	Long: `Label classifies every snippet that still lacks a usable automated frame
label, in checkpointed batches:
- Pending episodes are loaded from the dataset
- Each batch is classified concurrently, rate-limited per provider
- The batch is persisted before the next one starts

An interrupted run loses at most one batch of API calls; re-running
processes only episodes that are still unlabeled. API failures are
recorded as missing labels and retried on the next run, never aborting
the batch.

Example:
  framescope label --provider openai --model gpt-4o-mini
  framescope label --provider ollama --model llama3
  framescope label --batch-size 50 --min-delay 500 --workers 4`,
	Args: cobra.NoArgs,
	RunE: runLabel,
}

func init() {
	rootCmd.AddCommand(labelCmd)

	labelCmd.Flags().String("provider", "", "LLM provider (openai, anthropic, ollama)")
	labelCmd.Flags().String("model", "", "LLM model name")
	labelCmd.Flags().Int("batch-size", 20, "episodes per checkpointed batch")
	labelCmd.Flags().Int("min-delay", 1100, "minimum milliseconds between API calls")
	labelCmd.Flags().Int("retries", 3, "attempts per episode before recording a failure")
	labelCmd.Flags().Int("workers", 2, "concurrent label calls")
	labelCmd.Flags().DurationVar(&labelTimeout, "timeout", 0, "total run timeout (0 = no limit)")

	_ = viper.BindPFlag("llm.provider", labelCmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("llm.model", labelCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("batch.size", labelCmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("batch.min_delay_ms", labelCmd.Flags().Lookup("min-delay"))
	_ = viper.BindPFlag("batch.retries", labelCmd.Flags().Lookup("retries"))
	_ = viper.BindPFlag("batch.workers", labelCmd.Flags().Lookup("workers"))
}

func runLabel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.LLM.Provider == "" {
		return fmt.Errorf("no LLM provider configured (set llm.provider or pass --provider)")
	}

	// Resolve API credentials from the conventional environment variables
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	if labelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, labelTimeout)
		defer cancel()
	}

	minDelay := time.Duration(cfg.Batch.MinDelayMS) * time.Millisecond
	labeler := llm.NewLabeler(provider)
	batch := worker.NewBatchLabeler(labeler, st, worker.BatchOptions{
		Service:   labeler.Service(),
		BatchSize: cfg.Batch.Size,
		Workers:   cfg.Batch.Workers,
		MinDelay:  minDelay,
		Retries:   cfg.Batch.Retries,
		Verbose:   verbose,
	})

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Framescope Batch Labeling\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Provider:    %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "  Batch size:  %d\n", cfg.Batch.Size)
	fmt.Fprintf(os.Stderr, "  Workers:     %d\n", cfg.Batch.Workers)
	fmt.Fprintf(os.Stderr, "  Min delay:   %v\n", minDelay)
	fmt.Fprintf(os.Stderr, "  Retries:     %d\n", cfg.Batch.Retries)
	fmt.Fprintf(os.Stderr, "\n")

	summary, err := batch.Run(ctx)
	if summary != nil {
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
		fmt.Fprintf(os.Stderr, "  Labeling Complete\n")
		fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "  Pending:   %d\n", summary.Pending)
		fmt.Fprintf(os.Stderr, "  Labeled:   %d\n", summary.Labeled)
		fmt.Fprintf(os.Stderr, "  Failed:    %d\n", summary.Failed)
		fmt.Fprintf(os.Stderr, "  Batches:   %d\n", summary.Batches)
		fmt.Fprintf(os.Stderr, "\n")

		if summary.Pending == 0 {
			fmt.Fprintf(os.Stderr, "✓ Nothing to label\n")
		} else if summary.Failed > 0 {
			fmt.Fprintf(os.Stderr, "⚠ %d episodes still lack a label; re-run to retry them\n", summary.Failed)
		}
	}
	if err != nil {
		return fmt.Errorf("batch labeling: %w", err)
	}

	return nil
}
