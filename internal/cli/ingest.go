package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/framescope/framescope/internal/corpus"
	"github.com/spf13/cobra"
)

var (
	utterancesPath string
	metaPath       string
	hostsPath      string
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load transcript CSV exports into the dataset",
	Long: `Ingest reads the utterance, episode metadata and host CSV exports,
collapses each episode's guest turns into one analyzable document and
stores the result.

Host turns are dropped: the interviewer's questions are not the content
under study. Residual transcript markup is stripped. A missing or
malformed input file aborts the run.

Example:
  framescope ingest
  framescope ingest --utterances data/utterances.csv --meta data/episodes.csv --hosts data/hosts.csv`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&utterancesPath, "utterances", "utterances.csv", "utterance-level transcript CSV")
	ingestCmd.Flags().StringVar(&metaPath, "meta", "episodes.csv", "episode metadata CSV")
	ingestCmd.Flags().StringVar(&hostsPath, "hosts", "hosts.csv", "episode-to-host CSV")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	docs, summary, err := corpus.Load(utterancesPath, metaPath, hostsPath)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.SaveEpisodes(context.Background(), docs); err != nil {
		return fmt.Errorf("save episodes: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Ingested %d episodes from %d utterances (%d guest turns)\n",
		summary.Episodes, summary.Utterances, summary.GuestUtterances)
	if summary.WithoutMeta > 0 {
		fmt.Fprintf(os.Stderr, "⚠ %d episodes have no metadata row\n", summary.WithoutMeta)
	}
	if summary.WithoutHost > 0 {
		fmt.Fprintf(os.Stderr, "⚠ %d episodes have no host mapping\n", summary.WithoutHost)
	}
	fmt.Fprintf(os.Stderr, "✓ Dataset: %s\n", cfg.Store.Path)

	return nil
}
