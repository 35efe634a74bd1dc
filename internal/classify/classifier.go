// Package classify implements the supervised backends evaluated by the
// cross-validation harness.
package classify

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// FitOptions carries fit-time settings shared by every backend.
type FitOptions struct {
	Classes int       // size of the closed label set; ids run 0..Classes-1. 0 derives it from y.
	Weights []float64 // optional per-example weights, nil for uniform
	Seed    int64     // rng seed for stochastic backends
}

// Classifier is a pluggable supervised backend over term-count features.
// X is terms x documents (documents are columns); y[j] labels column j.
// Backends tolerate classes absent from the training data: an unseen class
// is simply never predicted by the fitted model.
type Classifier interface {
	Name() string

	// MinTrainingClasses reports how many distinct classes the backend
	// needs in its training data before fitting is meaningful.
	MinTrainingClasses() int

	Fit(X mat.Matrix, y []int, opts FitOptions) error
	Predict(x mat.Vector) (int, error)
}

// New builds a backend by name.
func New(name string) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bayes", "nb":
		return NewNaiveBayes(1.0), nil
	case "logistic":
		return NewLogistic(0), nil
	case "lasso":
		return NewLogistic(defaultL1), nil
	case "svm":
		return NewSVM(defaultLambda), nil
	case "forest", "rf":
		return NewForest(defaultTrees), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend: %s (supported: bayes, logistic, lasso, svm, forest)", name)
	}
}

// checkFit validates the shared Fit contract and resolves the class count.
func checkFit(X mat.Matrix, y []int, opts *FitOptions) (terms, docs int, err error) {
	if X == nil {
		return 0, 0, fmt.Errorf("fit: nil feature matrix")
	}
	terms, docs = X.Dims()
	if docs == 0 {
		return 0, 0, fmt.Errorf("fit: no training documents")
	}
	if docs != len(y) {
		return 0, 0, fmt.Errorf("fit: %d documents but %d labels", docs, len(y))
	}
	if opts.Classes <= 0 {
		for _, c := range y {
			if c+1 > opts.Classes {
				opts.Classes = c + 1
			}
		}
	}
	for j, c := range y {
		if c < 0 || c >= opts.Classes {
			return 0, 0, fmt.Errorf("fit: label %d at document %d outside 0..%d", c, j, opts.Classes-1)
		}
	}
	if opts.Weights != nil {
		if len(opts.Weights) != docs {
			return 0, 0, fmt.Errorf("fit: %d weights for %d documents", len(opts.Weights), docs)
		}
		for j, w := range opts.Weights {
			if w < 0 {
				return 0, 0, fmt.Errorf("fit: negative weight %v at document %d", w, j)
			}
		}
	}
	return terms, docs, nil
}

// weightAt returns the weight of document j, defaulting to 1.
func weightAt(opts FitOptions, j int) float64 {
	if opts.Weights == nil {
		return 1
	}
	return opts.Weights[j]
}

// nonZeroDoer is implemented by the sparse matrices the vectorizer emits.
type nonZeroDoer interface {
	DoNonZero(fn func(i, j int, v float64))
}

// eachNonZero visits every nonzero entry of m, using the sparse fast path
// when available.
func eachNonZero(m mat.Matrix, fn func(i, j int, v float64)) {
	if nz, ok := m.(nonZeroDoer); ok {
		nz.DoNonZero(fn)
		return
	}
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := m.At(i, j); v != 0 {
				fn(i, j, v)
			}
		}
	}
}

// documentRows converts X (terms x docs) into one dense feature slice per
// document for backends that need random access.
func documentRows(X mat.Matrix) [][]float64 {
	terms, docs := X.Dims()
	rows := make([][]float64, docs)
	for j := range rows {
		rows[j] = make([]float64, terms)
	}
	eachNonZero(X, func(i, j int, v float64) {
		rows[j][i] = v
	})
	return rows
}

// checkPredict validates a feature vector against the fitted width.
func checkPredict(x mat.Vector, terms int, fitted bool) error {
	if !fitted {
		return fmt.Errorf("predict: model not fitted")
	}
	if x == nil {
		return fmt.Errorf("predict: nil feature vector")
	}
	if x.Len() != terms {
		return fmt.Errorf("predict: feature vector has %d terms, model expects %d", x.Len(), terms)
	}
	return nil
}

// argmax returns the index of the largest score, lowest index on ties.
func argmax(scores []float64) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}
