package cli

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/framescope/framescope/internal/classify"
	"github.com/framescope/framescope/internal/eval"
	"github.com/framescope/framescope/internal/labels"
	"github.com/framescope/framescope/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var evalHoldOutRatio float64

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Cross-validate a classifier against the human frame labels",
	Long: `Evaluate runs a supervised classifier over the labeled snippets using
leave-one-out, k-fold or holdout cross-validation.

The ground truth is the coder majority per episode; episodes whose
coders tied or disagreed into unknown are skipped. Each fold fits the
vectorizer and the model on its training partition only, then predicts
the held-out snippets restricted to the training vocabulary. Accuracy
is the mean per-item correctness across every held-out prediction;
per-class precision and recall average over the folds where they were
defined.

Example:
  framescope evaluate
  framescope evaluate --classifier svm --folds kfold --k 5
  framescope evaluate --classifier forest --rebalance upsample --tfidf`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().String("classifier", "bayes", "backend: bayes, logistic, lasso, svm or forest")
	evaluateCmd.Flags().String("folds", "loo", "fold strategy: loo, kfold or holdout")
	evaluateCmd.Flags().Int("k", 10, "fold count for kfold")
	evaluateCmd.Flags().Int64("seed", 42, "shuffle seed for fold assignment")
	evaluateCmd.Flags().Int("workers", 4, "parallel folds")
	evaluateCmd.Flags().String("rebalance", "none", "training-class rebalancing: none, weight or upsample")
	evaluateCmd.Flags().Bool("tfidf", false, "weight term counts by tf-idf")
	evaluateCmd.Flags().Float64Var(&evalHoldOutRatio, "holdout-ratio", 0.2, "held-out share for the holdout strategy")

	_ = viper.BindPFlag("evaluation.classifier", evaluateCmd.Flags().Lookup("classifier"))
	_ = viper.BindPFlag("evaluation.folds", evaluateCmd.Flags().Lookup("folds"))
	_ = viper.BindPFlag("evaluation.k", evaluateCmd.Flags().Lookup("k"))
	_ = viper.BindPFlag("evaluation.seed", evaluateCmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("evaluation.workers", evaluateCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("evaluation.rebalance", evaluateCmd.Flags().Lookup("rebalance"))
	_ = viper.BindPFlag("evaluation.tfidf", evaluateCmd.Flags().Lookup("tfidf"))
}

func runEvaluate(cmd *cobra.Command, args []string) error {
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
	examples, skipped, err := loadExamples(ctx, st)
	if err != nil {
		return err
	}
	if len(examples) == 0 {
		return fmt.Errorf("no labeled snippets to evaluate; run 'framescope snippets' and 'framescope reconcile' first")
	}

	fmt.Fprintf(os.Stderr, "✓ Loaded %d labeled snippets", len(examples))
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, " (%d skipped without a usable coder majority)", skipped)
	}
	fmt.Fprintf(os.Stderr, "\n")

	name := cfg.Eval.Classifier
	factory := func() (classify.Classifier, error) { return classify.New(name) }
	harness := eval.New(factory, eval.Options{
		Strategy:     cfg.Eval.Folds,
		K:            cfg.Eval.K,
		HoldOutRatio: evalHoldOutRatio,
		Seed:         cfg.Eval.Seed,
		Workers:      cfg.Eval.Workers,
		Rebalance:    cfg.Eval.Rebalance,
		TFIDF:        cfg.Eval.TFIDF,
	})

	result, err := harness.Run(ctx, examples)
	if err != nil {
		return err
	}

	fmt.Printf("Backend:   %s\n", result.Backend)
	fmt.Printf("Strategy:  %s\n", cfg.Eval.Folds)
	fmt.Printf("Folds:     %d\n", result.Folds)
	fmt.Printf("Examples:  %d\n", result.Examples)
	fmt.Printf("Accuracy:  %.3f\n", result.Accuracy)
	fmt.Printf("\n")

	fmt.Printf("%-13s %9s %9s\n", "class", "precision", "recall")
	for _, f := range model.Frames() {
		m := result.PerClass[f]
		fmt.Printf("%-13s %9s %9s\n", f, formatMetric(m.Precision), formatMetric(m.Recall))
	}
	fmt.Printf("\n")

	printConfusion(result.Pooled)
	return nil
}

// loadExamples joins snippets with the coder majority per episode. Episodes
// without a usable majority are counted, not errors.
func loadExamples(ctx context.Context, st storeReader) ([]eval.Example, int, error) {
	snips, err := st.Snippets(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load snippets: %w", err)
	}
	coderLabels, err := st.CoderLabels(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load coder labels: %w", err)
	}

	byEpisode := make(map[string][]model.Frame)
	for _, cl := range coderLabels {
		byEpisode[cl.EpisodeID] = append(byEpisode[cl.EpisodeID], cl.Frame)
	}

	examples := make([]eval.Example, 0, len(snips))
	skipped := 0
	for _, sn := range snips {
		majority := labels.Majority(byEpisode[sn.EpisodeID])
		if majority == model.FrameUnknown {
			skipped++
			continue
		}
		examples = append(examples, eval.Example{ID: sn.EpisodeID, Text: sn.Text, Frame: majority})
	}
	return examples, skipped, nil
}

// storeReader is the slice of the store the evaluate command reads.
type storeReader interface {
	Snippets(ctx context.Context) ([]model.Snippet, error)
	CoderLabels(ctx context.Context) ([]model.CoderLabel, error)
}

// formatMetric renders a NaN-able metric; NaN means the value was undefined
// in every fold.
func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

// printConfusion renders the pooled confusion matrix, actual classes as rows
// and predicted classes as columns.
func printConfusion(c *eval.Confusion) {
	if c == nil {
		return
	}

	fmt.Printf("Pooled confusion (rows actual, columns predicted):\n")
	fmt.Printf("%-13s", "")
	for _, f := range c.Classes {
		fmt.Printf(" %12s", f)
	}
	fmt.Printf("\n")

	for i, actual := range c.Classes {
		fmt.Printf("%-13s", actual)
		for j := range c.Classes {
			fmt.Printf(" %12d", c.Counts[i][j])
		}
		fmt.Printf("\n")
	}
}
