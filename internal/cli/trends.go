package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/framescope/framescope/internal/trends"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// trendsCmd represents the trends command
var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Aggregate frame shares over broadcast periods",
	Long: `Trends buckets labeled episodes by broadcast period and reports how the
share of each frame moved over time.

The frame of an episode is the coder majority when one exists, the
automated label otherwise. Episodes without an air date or a usable
frame are skipped and counted. Each bucket reports episode count, the
share of every frame and mean snippet sentiment; each frame also gets a
summary series with mean, range and the slope of a least-squares fit
over its bucket shares.

Example:
  framescope trends
  framescope trends --period month`,
	Args: cobra.NoArgs,
	RunE: runTrends,
}

func init() {
	rootCmd.AddCommand(trendsCmd)

	trendsCmd.Flags().String("period", "quarter", "bucket granularity: month, quarter or year")

	_ = viper.BindPFlag("trends.period", trendsCmd.Flags().Lookup("period"))
}

func runTrends(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	rows, err := st.Dataset(context.Background())
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	report, err := trends.Aggregate(rows, cfg.Trends.Period)
	if err != nil {
		return err
	}
	if len(report.Buckets) == 0 {
		return fmt.Errorf("no labeled episodes with air dates; run 'framescope reconcile' or 'framescope label' first")
	}

	if report.SkippedUndated > 0 {
		fmt.Fprintf(os.Stderr, "⚠ %d episodes skipped without an air date\n", report.SkippedUndated)
	}
	if report.SkippedUnlabeled > 0 {
		fmt.Fprintf(os.Stderr, "⚠ %d episodes skipped without a usable frame\n", report.SkippedUnlabeled)
	}

	fmt.Printf("%-10s %8s", "period", "episodes")
	for _, s := range report.Series {
		fmt.Printf(" %12s", s.Frame)
	}
	fmt.Printf(" %12s\n", "sentiment")

	for _, b := range report.Buckets {
		fmt.Printf("%-10s %8d", b.Period, b.Episodes)
		for _, s := range report.Series {
			fmt.Printf(" %12.3f", b.Shares[s.Frame])
		}
		fmt.Printf(" %12.3f\n", b.MeanSentiment)
	}
	fmt.Printf("\n")

	fmt.Printf("%-13s %8s %8s %8s %8s\n", "frame", "mean", "min", "max", "slope")
	for _, s := range report.Series {
		fmt.Printf("%-13s %8.3f %8.3f %8.3f %+8.3f\n", s.Frame, s.Mean, s.Min, s.Max, s.Slope)
	}

	return nil
}
