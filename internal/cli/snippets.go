package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/framescope/framescope/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var snippetsNoCache bool

// snippetsCmd represents the snippets command
var snippetsCmd = &cobra.Command{
	Use:   "snippets",
	Short: "Filter episodes for relevance and extract keyword snippets",
	Long: `Snippets runs the relevance filter and the snippet extractor over every
ingested episode.

An episode is relevant when any keyword stem matches its text. For each
relevant episode one context window around the keyword hits is selected,
scored for sentiment and stored. Window selection is seeded per episode,
so re-runs reproduce the same snippet.

Example:
  framescope snippets
  framescope snippets --radius 25 --seed 7
  framescope snippets --no-cache`,
	Args: cobra.NoArgs,
	RunE: runSnippets,
}

func init() {
	rootCmd.AddCommand(snippetsCmd)

	snippetsCmd.Flags().Int("radius", 50, "context words on each side of a keyword hit")
	snippetsCmd.Flags().Int64("seed", 42, "base seed for window selection")
	snippetsCmd.Flags().BoolVar(&snippetsNoCache, "no-cache", false, "disable the snippet cache")

	_ = viper.BindPFlag("snippet.window_radius", snippetsCmd.Flags().Lookup("radius"))
	_ = viper.BindPFlag("snippet.seed", snippetsCmd.Flags().Lookup("seed"))
}

func runSnippets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if snippetsNoCache {
		cfg.Cache.Enabled = false
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	docs, err := st.Episodes(ctx)
	if err != nil {
		return fmt.Errorf("load episodes: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no episodes ingested yet; run 'framescope ingest' first")
	}

	p, err := pipeline.NewSnippetPipeline(cfg, st, buildCache(cfg), verbose)
	if err != nil {
		return err
	}

	summary, err := p.Run(ctx, docs)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Relevant: %d/%d episodes\n", summary.Relevant, summary.Documents)
	fmt.Fprintf(os.Stderr, "✓ Snippets: %d extracted (%d cache hits)\n", summary.Snippets, summary.CacheHits)
	for _, w := range summary.Warnings {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", w)
	}

	return nil
}
