package cli

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/framescope/framescope/internal/corpus"
	"github.com/framescope/framescope/internal/labels"
	"github.com/framescope/framescope/internal/model"
	"github.com/spf13/cobra"
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile <labels.csv>",
	Short: "Reconcile one-hot coder annotations into frame labels",
	Long: `Reconcile converts each coder's one-hot frame indicators into a single
category label and stores the result.

Rows with zero or multiple indicators set cannot be resolved; they are
stored as unknown and counted, never dropped, so ambiguous units stay
visible for re-coding. Inter-coder agreement is reported as
Krippendorff's alpha over episodes rated by at least two coders.

Example:
  framescope reconcile coder_labels.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rows, err := corpus.LoadCoderRows(args[0])
	if err != nil {
		return err
	}

	coderLabels, summary := labels.ReconcileAll(rows)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.SaveCoderLabels(context.Background(), coderLabels); err != nil {
		return fmt.Errorf("save coder labels: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Reconciled %d annotations\n", summary.Total)
	for _, f := range model.Frames() {
		if n := summary.ByFrame[f]; n > 0 {
			fmt.Fprintf(os.Stderr, "  %-13s %d\n", f, n)
		}
	}
	if summary.Ambiguous > 0 {
		fmt.Fprintf(os.Stderr, "⚠ %d ambiguous annotations stored as unknown\n", summary.Ambiguous)
	}

	units := make(map[string][]model.Frame)
	for _, cl := range coderLabels {
		units[cl.EpisodeID] = append(units[cl.EpisodeID], cl.Frame)
	}
	grouped := make([][]model.Frame, 0, len(units))
	for _, frames := range units {
		grouped = append(grouped, frames)
	}

	if alpha := labels.Alpha(grouped); math.IsNaN(alpha) {
		fmt.Fprintf(os.Stderr, "⚠ Krippendorff's alpha: undefined (no episode has two usable ratings)\n")
	} else {
		fmt.Fprintf(os.Stderr, "✓ Krippendorff's alpha: %.3f\n", alpha)
	}

	return nil
}
