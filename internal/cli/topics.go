package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/framescope/framescope/internal/topics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var topicsRelevantOnly bool

// topicsCmd represents the topics command
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Fit an LDA topic model over the episode corpus",
	Long: `Topics fits latent Dirichlet allocation over the ingested episodes and
prints the top terms, corpus share and dominant-document count of each
topic.

Episode text is normalized the same way classifier features are:
lowercased, tokenized, stopwords removed and stemmed. LDA starts from a
random state, so term order within a topic can vary between runs.

Example:
  framescope topics
  framescope topics --k 12 --iterations 200
  framescope topics --relevant-only`,
	Args: cobra.NoArgs,
	RunE: runTopics,
}

func init() {
	rootCmd.AddCommand(topicsCmd)

	topicsCmd.Flags().Int("k", 8, "number of topics")
	topicsCmd.Flags().Int("iterations", 120, "LDA iterations")
	topicsCmd.Flags().Int("top-terms", 10, "terms shown per topic")
	topicsCmd.Flags().Int("workers", 4, "parallel LDA processes")
	topicsCmd.Flags().BoolVar(&topicsRelevantOnly, "relevant-only", false, "model only episodes the relevance filter matched")

	_ = viper.BindPFlag("topics.k", topicsCmd.Flags().Lookup("k"))
	_ = viper.BindPFlag("topics.iterations", topicsCmd.Flags().Lookup("iterations"))
	_ = viper.BindPFlag("topics.top_terms", topicsCmd.Flags().Lookup("top-terms"))
	_ = viper.BindPFlag("topics.workers", topicsCmd.Flags().Lookup("workers"))
}

func runTopics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	docs, err := st.Episodes(context.Background())
	if err != nil {
		return fmt.Errorf("load episodes: %w", err)
	}
	if topicsRelevantOnly {
		kept := docs[:0]
		for _, doc := range docs {
			if doc.Relevant {
				kept = append(kept, doc)
			}
		}
		docs = kept
	}

	result, err := topics.Model(docs, cfg.Topics)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Modeled %d documents into %d topics\n", len(result.Docs), result.K)

	fmt.Printf("Topics: %d over %d documents\n\n", result.K, len(result.Docs))
	for _, topic := range result.Topics {
		fmt.Printf("Topic %d  (share %.3f, %d docs)\n", topic.ID, topic.Share, topic.DocCount)
		fmt.Printf("  %s\n", strings.Join(termNames(topic.Terms), ", "))
	}

	return nil
}

func termNames(terms []topics.Term) []string {
	names := make([]string, len(terms))
	for i, t := range terms {
		names[i] = t.Term
	}
	return names
}
