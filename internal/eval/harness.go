package eval

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/framescope/framescope/internal/classify"
	"github.com/framescope/framescope/internal/features"
	"github.com/framescope/framescope/internal/model"
	"github.com/framescope/framescope/internal/worker"
)

// Example is one labeled document, with Text already normalized into the
// space-joined stem form the vectorizer consumes.
type Example struct {
	ID    string
	Text  string
	Frame model.Frame
}

// Factory builds a fresh backend per fold, so folds never share mutable
// model state.
type Factory func() (classify.Classifier, error)

// Options configure an evaluation run.
type Options struct {
	Strategy     string  // "loo", "kfold" or "holdout"
	K            int     // fold count for kfold
	HoldOutRatio float64 // held-out share for holdout
	Seed         int64
	Workers      int
	Rebalance    string // "none", "weight" or "upsample"
	TFIDF        bool
}

// Harness runs cross-validation: folds execute in parallel over the shared
// read-only example slice, each with its own vectorizer and model, and
// metrics are aggregated once all folds return.
//
// Within a fold the vectorizer is fitted on the training partition only;
// held-out documents are then restricted to that vocabulary. Training never
// sees a held-out document, including during rebalancing.
type Harness struct {
	factory Factory
	opts    Options
}

// New builds a Harness.
func New(factory Factory, opts Options) *Harness {
	return &Harness{factory: factory, opts: opts}
}

// Run evaluates the backend over examples. Examples must carry frames from
// the closed set; reconciliation sentinels are the caller's to filter.
func (h *Harness) Run(ctx context.Context, examples []Example) (*Result, error) {
	for i, ex := range examples {
		if model.FrameIndex(ex.Frame) < 0 {
			return nil, fmt.Errorf("evaluation: example %d (%s) has frame %q outside the closed label set", i, ex.ID, ex.Frame)
		}
	}
	n := len(examples)
	if n < 2 {
		return nil, &InsufficientDataError{Fold: -1, Have: n, Need: 2}
	}

	probe, err := h.factory()
	if err != nil {
		return nil, fmt.Errorf("evaluation: backend factory: %w", err)
	}

	folds, err := h.folds(n)
	if err != nil {
		return nil, err
	}

	pool := worker.NewPool(ctx, h.opts.Workers)
	pool.Start()
	go func() {
		for i := range folds {
			pool.Submit(&foldJob{
				index:    i,
				fold:     folds[i],
				examples: examples,
				factory:  h.factory,
				opts:     h.opts,
			})
		}
		pool.Close()
	}()
	results := pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(results) != len(folds) {
		return nil, fmt.Errorf("evaluation: %d of %d folds completed", len(results), len(folds))
	}

	outcomes := make([]*foldOutcome, len(folds))
	for _, r := range results {
		o := r.(*foldOutcome)
		if o.err != nil {
			return nil, o.err
		}
		outcomes[o.fold] = o
	}

	return aggregate(probe.Name(), n, outcomes), nil
}

func (h *Harness) folds(n int) ([]Fold, error) {
	switch strings.ToLower(h.opts.Strategy) {
	case "", "loo", "leave-one-out":
		return LeaveOneOut(n), nil
	case "kfold", "k-fold":
		return KFold(n, h.opts.K, h.opts.Seed)
	case "holdout", "split":
		return HoldOut(n, h.opts.HoldOutRatio, h.opts.Seed)
	default:
		return nil, fmt.Errorf("evaluation: unknown fold strategy %q (supported: loo, kfold, holdout)", h.opts.Strategy)
	}
}

// aggregate folds per-fold outcomes into a Result. Accuracy is the mean of
// per-item correctness indicators; per-class precision and recall are
// NaN-aware means across folds, so classes a fold never saw do not drag its
// average to zero.
func aggregate(backend string, examples int, outcomes []*foldOutcome) *Result {
	res := &Result{
		Backend:  backend,
		Folds:    len(outcomes),
		Examples: examples,
		PerClass: make(map[model.Frame]ClassMetrics),
		Pooled:   NewConfusion(),
	}

	precisions := make(map[model.Frame][]float64)
	recalls := make(map[model.Frame][]float64)
	correct, total := 0, 0

	for _, o := range outcomes {
		res.Pooled.Merge(o.confusion)
		for _, hit := range o.correct {
			total++
			if hit {
				correct++
			}
		}
		for _, f := range model.Frames() {
			precisions[f] = append(precisions[f], o.confusion.Precision(f))
			recalls[f] = append(recalls[f], o.confusion.Recall(f))
		}
	}

	if total > 0 {
		res.Accuracy = float64(correct) / float64(total)
	}
	for _, f := range model.Frames() {
		res.PerClass[f] = ClassMetrics{
			Precision:      nanMean(precisions[f]),
			Recall:         nanMean(recalls[f]),
			PrecisionFolds: countDefined(precisions[f]),
			RecallFolds:    countDefined(recalls[f]),
		}
	}
	return res
}

func countDefined(xs []float64) int {
	n := 0
	for _, x := range xs {
		if x == x { // not NaN
			n++
		}
	}
	return n
}

// foldJob trains and scores one fold.
type foldJob struct {
	index    int
	fold     Fold
	examples []Example
	factory  Factory
	opts     Options
}

// foldOutcome carries one fold's confusion matrix and per-item correctness.
type foldOutcome struct {
	fold      int
	confusion *Confusion
	correct   []bool
	err       error
}

// GetError implements worker.Result.
func (o *foldOutcome) GetError() error { return o.err }

// Execute implements worker.Job.
func (j *foldJob) Execute(ctx context.Context) worker.Result {
	out := &foldOutcome{fold: j.index}
	if err := ctx.Err(); err != nil {
		out.err = err
		return out
	}

	clf, err := j.factory()
	if err != nil {
		out.err = fmt.Errorf("fold %d: backend factory: %w", j.index, err)
		return out
	}

	classes := model.Frames()
	train := j.fold.Train

	if have := distinctClasses(j.examples, train); have < clf.MinTrainingClasses() {
		out.err = &InsufficientDataError{Fold: j.index, Have: have, Need: clf.MinTrainingClasses()}
		return out
	}

	foldSeed := j.opts.Seed + int64(j.index)
	var weights []float64
	switch strings.ToLower(j.opts.Rebalance) {
	case "", "none":
	case "upsample":
		rng := rand.New(rand.NewSource(foldSeed))
		train = upsample(j.examples, train, rng)
	case "weight":
		weights = inverseFrequency(j.examples, train)
	default:
		out.err = fmt.Errorf("fold %d: unknown rebalance mode %q (supported: none, weight, upsample)", j.index, j.opts.Rebalance)
		return out
	}

	texts := make([]string, len(train))
	y := make([]int, len(train))
	for i, idx := range train {
		texts[i] = j.examples[idx].Text
		y[i] = model.FrameIndex(j.examples[idx].Frame)
	}

	vec := features.NewVectorizer(j.opts.TFIDF)
	X, err := vec.FitTransform(texts)
	if err != nil {
		out.err = fmt.Errorf("fold %d: vectorize: %w", j.index, err)
		return out
	}

	err = clf.Fit(X, y, classify.FitOptions{
		Classes: len(classes),
		Weights: weights,
		Seed:    foldSeed,
	})
	if err != nil {
		out.err = fmt.Errorf("fold %d: fit: %w", j.index, err)
		return out
	}

	out.confusion = NewConfusion()
	for _, idx := range j.fold.Test {
		m, err := vec.Transform([]string{j.examples[idx].Text})
		if err != nil {
			out.err = fmt.Errorf("fold %d: transform held-out example %s: %w", j.index, j.examples[idx].ID, err)
			return out
		}
		xt := features.Column(m, 0)
		if xt.Len() != vec.NumTerms() {
			out.err = &FeatureMismatchError{Got: xt.Len(), Want: vec.NumTerms()}
			return out
		}

		predIdx, err := clf.Predict(xt)
		if err != nil {
			out.err = fmt.Errorf("fold %d: predict example %s: %w", j.index, j.examples[idx].ID, err)
			return out
		}

		actual := j.examples[idx].Frame
		predicted := classes[predIdx]
		out.confusion.Add(actual, predicted)
		out.correct = append(out.correct, predicted == actual)
	}
	return out
}

func distinctClasses(examples []Example, idx []int) int {
	seen := make(map[model.Frame]bool)
	for _, i := range idx {
		seen[examples[i].Frame] = true
	}
	return len(seen)
}

// upsample duplicates training indices of minority classes until every
// present class reaches the majority count. Only the training partition is
// touched; held-out items are never replicated.
func upsample(examples []Example, train []int, rng *rand.Rand) []int {
	byClass := make(map[model.Frame][]int)
	for _, idx := range train {
		f := examples[idx].Frame
		byClass[f] = append(byClass[f], idx)
	}

	max := 0
	for _, members := range byClass {
		if len(members) > max {
			max = len(members)
		}
	}

	out := append([]int(nil), train...)
	for _, f := range model.Frames() {
		members := byClass[f]
		if len(members) == 0 {
			continue
		}
		for n := len(members); n < max; n++ {
			out = append(out, members[rng.Intn(len(members))])
		}
	}
	return out
}

// inverseFrequency weights each training example by total/(k*count) where k
// is the number of classes present, so every present class carries equal
// total mass.
func inverseFrequency(examples []Example, train []int) []float64 {
	counts := make(map[model.Frame]int)
	for _, idx := range train {
		counts[examples[idx].Frame]++
	}

	k := float64(len(counts))
	total := float64(len(train))
	weights := make([]float64, len(train))
	for i, idx := range train {
		weights[i] = total / (k * float64(counts[examples[idx].Frame]))
	}
	return weights
}
