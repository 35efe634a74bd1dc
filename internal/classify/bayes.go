package classify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// NaiveBayes is a multinomial naive Bayes classifier over term counts with
// additive (Laplace) smoothing, trained and scored in log space.
type NaiveBayes struct {
	alpha float64

	terms    int
	classes  int
	logPrior []float64   // -Inf for classes absent from training
	logLik   [][]float64 // [class][term]
	fitted   bool
}

// NewNaiveBayes returns a backend with the given smoothing constant.
// Non-positive alpha falls back to add-one smoothing.
func NewNaiveBayes(alpha float64) *NaiveBayes {
	if alpha <= 0 {
		alpha = 1
	}
	return &NaiveBayes{alpha: alpha}
}

// Name implements Classifier.
func (nb *NaiveBayes) Name() string { return "bayes" }

// MinTrainingClasses implements Classifier. A single observed class fits a
// degenerate but valid model.
func (nb *NaiveBayes) MinTrainingClasses() int { return 1 }

// Fit implements Classifier.
func (nb *NaiveBayes) Fit(X mat.Matrix, y []int, opts FitOptions) error {
	terms, docs, err := checkFit(X, y, &opts)
	if err != nil {
		return fmt.Errorf("bayes: %w", err)
	}

	termCounts := make([][]float64, opts.Classes)
	for c := range termCounts {
		termCounts[c] = make([]float64, terms)
	}
	classTotals := make([]float64, opts.Classes) // total term mass per class
	classDocs := make([]float64, opts.Classes)   // weighted document count per class

	for j := 0; j < docs; j++ {
		classDocs[y[j]] += weightAt(opts, j)
	}
	eachNonZero(X, func(i, j int, v float64) {
		w := v * weightAt(opts, j)
		termCounts[y[j]][i] += w
		classTotals[y[j]] += w
	})

	var totalDocs float64
	for _, d := range classDocs {
		totalDocs += d
	}
	if totalDocs == 0 {
		return fmt.Errorf("bayes: all training weights are zero")
	}

	nb.logPrior = make([]float64, opts.Classes)
	nb.logLik = make([][]float64, opts.Classes)
	for c := 0; c < opts.Classes; c++ {
		if classDocs[c] == 0 {
			nb.logPrior[c] = math.Inf(-1)
			nb.logLik[c] = nil
			continue
		}
		nb.logPrior[c] = math.Log(classDocs[c] / totalDocs)
		lik := make([]float64, terms)
		denom := classTotals[c] + nb.alpha*float64(terms)
		for i := 0; i < terms; i++ {
			lik[i] = math.Log((termCounts[c][i] + nb.alpha) / denom)
		}
		nb.logLik[c] = lik
	}

	nb.terms = terms
	nb.classes = opts.Classes
	nb.fitted = true
	return nil
}

// Predict implements Classifier.
func (nb *NaiveBayes) Predict(x mat.Vector) (int, error) {
	if err := checkPredict(x, nb.terms, nb.fitted); err != nil {
		return 0, fmt.Errorf("bayes: %w", err)
	}

	best, bestScore := -1, math.Inf(-1)
	for c := 0; c < nb.classes; c++ {
		if math.IsInf(nb.logPrior[c], -1) {
			continue
		}
		score := nb.logPrior[c]
		for i := 0; i < nb.terms; i++ {
			if v := x.AtVec(i); v != 0 {
				score += v * nb.logLik[c][i]
			}
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("bayes: no trained classes to predict from")
	}
	return best, nil
}
