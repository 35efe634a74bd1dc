package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/framescope/framescope/internal/model"
	"github.com/framescope/framescope/internal/quality"
	"github.com/spf13/cobra"
)

// qualityCmd represents the quality command
var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Run dataset health checks",
	Long: `Quality inspects the dataset before expensive labeling or evaluation
runs: snippet coverage, automated-label coverage, ambiguous coder
annotations, short documents and class balance.

Coverage checks always report, so a healthy dataset is visible as such.
The command exits non-zero when any signal is critical.

Example:
  framescope quality`,
	Args: cobra.NoArgs,
	RunE: runQuality,
}

func init() {
	rootCmd.AddCommand(qualityCmd)
}

func runQuality(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	in := quality.Input{MinWords: cfg.Snippet.MinWords}

	if in.Episodes, err = st.Episodes(ctx); err != nil {
		return fmt.Errorf("load episodes: %w", err)
	}
	if in.Snippets, err = st.Snippets(ctx); err != nil {
		return fmt.Errorf("load snippets: %w", err)
	}
	if in.CoderLabels, err = st.CoderLabels(ctx); err != nil {
		return fmt.Errorf("load coder labels: %w", err)
	}
	if in.AutoLabels, err = st.AutoLabels(ctx); err != nil {
		return fmt.Errorf("load auto labels: %w", err)
	}

	report := quality.NewChecker().Check(in)

	fmt.Printf("Episodes: %d   Relevant: %d   Snippets: %d\n\n", report.Episodes, report.Relevant, report.Snippets)
	for _, s := range report.Signals {
		fmt.Printf("%s %s\n", severityGlyph(s.Severity), s.Description)
	}

	if report.Worst() == model.SeverityCritical {
		fmt.Fprintf(os.Stderr, "\n✗ Dataset has critical problems\n")
		return fmt.Errorf("quality check failed")
	}
	return nil
}

func severityGlyph(s model.SignalSeverity) string {
	switch s {
	case model.SeverityCritical:
		return "✗"
	case model.SeverityWarning:
		return "⚠"
	default:
		return "✓"
	}
}
