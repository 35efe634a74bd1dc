package classify

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// defaultLambda is the SVM regularization strength.
const defaultLambda = 0.01

// SVM is a one-vs-rest linear support vector machine trained with the
// Pegasos stochastic subgradient method. Weight vectors are kept as a
// scaled pair (s, v) so the per-step shrink is O(1) instead of touching
// every coefficient.
type SVM struct {
	Lambda float64
	Epochs int

	terms   int
	classes int
	w       [][]float64 // [class][term], bias at index terms
	fitted  bool
}

// NewSVM returns a backend with the given regularization strength.
func NewSVM(lambda float64) *SVM {
	if lambda <= 0 {
		lambda = defaultLambda
	}
	return &SVM{Lambda: lambda, Epochs: 10}
}

// Name implements Classifier.
func (s *SVM) Name() string { return "svm" }

// MinTrainingClasses implements Classifier. A margin needs two sides.
func (s *SVM) MinTrainingClasses() int { return 2 }

// Fit implements Classifier.
func (s *SVM) Fit(X mat.Matrix, y []int, opts FitOptions) error {
	terms, docs, err := checkFit(X, y, &opts)
	if err != nil {
		return fmt.Errorf("svm: %w", err)
	}

	rows := documentRows(X)
	rng := rand.New(rand.NewSource(opts.Seed))

	order := make([]int, docs)
	for i := range order {
		order[i] = i
	}

	s.w = make([][]float64, opts.Classes)
	for c := 0; c < opts.Classes; c++ {
		s.w[c] = s.fitBinary(rows, y, c, order, rng, opts)
	}

	s.terms = terms
	s.classes = opts.Classes
	s.fitted = true
	return nil
}

// fitBinary trains the one-vs-rest separator for class c and returns the
// materialized weights with the bias appended.
func (s *SVM) fitBinary(rows [][]float64, y []int, c int, order []int, rng *rand.Rand, opts FitOptions) []float64 {
	terms := 0
	if len(rows) > 0 {
		terms = len(rows[0])
	}
	v := make([]float64, terms)
	scale := 1.0
	bias := 0.0

	// t starts at 2: the first Pegasos step at t=1 would zero the scale.
	t := 1
	for epoch := 0; epoch < s.Epochs; epoch++ {
		rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
		for _, j := range order {
			t++
			eta := 1 / (s.Lambda * float64(t))
			scale *= 1 - eta*s.Lambda

			label := -1.0
			if y[j] == c {
				label = 1
			}

			x := rows[j]
			dot := 0.0
			for i, xv := range x {
				if xv != 0 {
					dot += v[i] * xv
				}
			}
			margin := label * (scale*dot + bias)
			if margin < 1 {
				step := eta * label * weightAt(opts, j)
				for i, xv := range x {
					if xv != 0 {
						v[i] += step * xv / scale
					}
				}
				bias += step
			}

			if scale < 1e-9 {
				for i := range v {
					v[i] *= scale
				}
				scale = 1
			}
		}
	}

	out := make([]float64, terms+1)
	for i := range v {
		out[i] = v[i] * scale
	}
	out[terms] = bias
	return out
}

// Predict implements Classifier.
func (s *SVM) Predict(x mat.Vector) (int, error) {
	if err := checkPredict(x, s.terms, s.fitted); err != nil {
		return 0, fmt.Errorf("svm: %w", err)
	}
	scores := make([]float64, s.classes)
	for c, wc := range s.w {
		score := wc[s.terms]
		for i := 0; i < s.terms; i++ {
			if v := x.AtVec(i); v != 0 {
				score += wc[i] * v
			}
		}
		scores[c] = score
	}
	return argmax(scores), nil
}
