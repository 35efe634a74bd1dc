package classify

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// defaultL1 is the lasso penalty used when the backend is selected as
// "lasso". Strong enough to zero noise terms on corpus-sized vocabularies
// without starving the informative ones.
const defaultL1 = 0.001

// Logistic is a multinomial logistic (softmax) classifier trained with
// stochastic gradient descent. With L1 > 0 a proximal soft-threshold step
// after each epoch gives lasso-style sparse coefficients.
type Logistic struct {
	L1           float64
	L2           float64
	Epochs       int
	LearningRate float64

	terms   int
	classes int
	w       [][]float64 // [class][term], bias at index terms
	fitted  bool
}

// NewLogistic returns a backend with the given lasso penalty (0 disables).
func NewLogistic(l1 float64) *Logistic {
	return &Logistic{
		L1:           l1,
		L2:           1e-4,
		Epochs:       60,
		LearningRate: 0.1,
	}
}

// Name implements Classifier.
func (lr *Logistic) Name() string {
	if lr.L1 > 0 {
		return "lasso"
	}
	return "logistic"
}

// MinTrainingClasses implements Classifier. Softmax gradients need a
// contrast between at least two observed classes.
func (lr *Logistic) MinTrainingClasses() int { return 2 }

// Fit implements Classifier.
func (lr *Logistic) Fit(X mat.Matrix, y []int, opts FitOptions) error {
	terms, docs, err := checkFit(X, y, &opts)
	if err != nil {
		return fmt.Errorf("logistic: %w", err)
	}

	rows := documentRows(X)
	rng := rand.New(rand.NewSource(opts.Seed))

	lr.w = make([][]float64, opts.Classes)
	for c := range lr.w {
		lr.w[c] = make([]float64, terms+1)
	}

	order := make([]int, docs)
	for i := range order {
		order[i] = i
	}

	scores := make([]float64, opts.Classes)
	for epoch := 0; epoch < lr.Epochs; epoch++ {
		rng.Shuffle(docs, func(a, b int) { order[a], order[b] = order[b], order[a] })

		for _, j := range order {
			x := rows[j]
			lr.scoresFor(x, scores)
			softmaxInPlace(scores)

			wj := weightAt(opts, j)
			if wj == 0 {
				continue
			}
			for c := 0; c < opts.Classes; c++ {
				g := scores[c]
				if c == y[j] {
					g -= 1
				}
				g *= wj * lr.LearningRate
				if g == 0 {
					continue
				}
				wc := lr.w[c]
				for i, v := range x {
					if v != 0 {
						wc[i] -= g * v
					}
				}
				wc[terms] -= g // bias input is 1
			}
		}

		if lr.L1 > 0 || lr.L2 > 0 {
			lr.shrink(terms)
		}
	}

	lr.terms = terms
	lr.classes = opts.Classes
	lr.fitted = true
	return nil
}

// shrink applies the per-epoch penalty step to all coefficients except the
// biases.
func (lr *Logistic) shrink(terms int) {
	l1 := lr.LearningRate * lr.L1
	l2 := 1 - lr.LearningRate*lr.L2
	for _, wc := range lr.w {
		for i := 0; i < terms; i++ {
			v := wc[i]
			if lr.L2 > 0 {
				v *= l2
			}
			if lr.L1 > 0 {
				switch {
				case v > l1:
					v -= l1
				case v < -l1:
					v += l1
				default:
					v = 0
				}
			}
			wc[i] = v
		}
	}
}

func (lr *Logistic) scoresFor(x []float64, scores []float64) {
	terms := len(x)
	for c, wc := range lr.w {
		s := wc[terms]
		for i, v := range x {
			if v != 0 {
				s += wc[i] * v
			}
		}
		scores[c] = s
	}
}

// Predict implements Classifier.
func (lr *Logistic) Predict(x mat.Vector) (int, error) {
	if err := checkPredict(x, lr.terms, lr.fitted); err != nil {
		return 0, fmt.Errorf("logistic: %w", err)
	}
	scores := make([]float64, lr.classes)
	for c, wc := range lr.w {
		s := wc[lr.terms]
		for i := 0; i < lr.terms; i++ {
			if v := x.AtVec(i); v != 0 {
				s += wc[i] * v
			}
		}
		scores[c] = s
	}
	return argmax(scores), nil
}

// softmaxInPlace converts scores to probabilities, shifted by the max for
// numerical stability.
func softmaxInPlace(scores []float64) {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	var sum float64
	for i, s := range scores {
		e := math.Exp(s - max)
		scores[i] = e
		sum += e
	}
	for i := range scores {
		scores[i] /= sum
	}
}
