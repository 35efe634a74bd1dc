package eval

import (
	"math"

	"github.com/framescope/framescope/internal/model"
)

// Confusion is an actual x predicted count matrix over the full closed
// frame set, regardless of which frames a sample happens to contain.
type Confusion struct {
	Classes []model.Frame
	Counts  [][]int // [actual][predicted]
}

// NewConfusion returns an empty matrix over model.Frames().
func NewConfusion() *Confusion {
	classes := model.Frames()
	counts := make([][]int, len(classes))
	for i := range counts {
		counts[i] = make([]int, len(classes))
	}
	return &Confusion{Classes: classes, Counts: counts}
}

// Add records one prediction. Values outside the closed set are ignored.
func (c *Confusion) Add(actual, predicted model.Frame) {
	a, p := model.FrameIndex(actual), model.FrameIndex(predicted)
	if a < 0 || p < 0 {
		return
	}
	c.Counts[a][p]++
}

// Merge accumulates another matrix into this one.
func (c *Confusion) Merge(other *Confusion) {
	for a := range other.Counts {
		for p, n := range other.Counts[a] {
			c.Counts[a][p] += n
		}
	}
}

// Total returns the number of recorded predictions.
func (c *Confusion) Total() int {
	sum := 0
	for _, row := range c.Counts {
		for _, n := range row {
			sum += n
		}
	}
	return sum
}

// Correct returns the diagonal sum.
func (c *Confusion) Correct() int {
	sum := 0
	for i := range c.Counts {
		sum += c.Counts[i][i]
	}
	return sum
}

// Precision returns correct/predicted for the frame, NaN when the frame was
// never predicted.
func (c *Confusion) Precision(f model.Frame) float64 {
	i := model.FrameIndex(f)
	if i < 0 {
		return math.NaN()
	}
	predicted := 0
	for a := range c.Counts {
		predicted += c.Counts[a][i]
	}
	if predicted == 0 {
		return math.NaN()
	}
	return float64(c.Counts[i][i]) / float64(predicted)
}

// Recall returns correct/actual for the frame, NaN when the frame never
// occurred.
func (c *Confusion) Recall(f model.Frame) float64 {
	i := model.FrameIndex(f)
	if i < 0 {
		return math.NaN()
	}
	actual := 0
	for p := range c.Counts[i] {
		actual += c.Counts[i][p]
	}
	if actual == 0 {
		return math.NaN()
	}
	return float64(c.Counts[i][i]) / float64(actual)
}

// nanMean averages the defined values, NaN when none are.
func nanMean(xs []float64) float64 {
	var sum float64
	n := 0
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		sum += x
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// ClassMetrics is the NaN-aware cross-fold average for one frame.
type ClassMetrics struct {
	Precision      float64 // NaN if undefined in every fold
	Recall         float64
	PrecisionFolds int // folds where precision was defined
	RecallFolds    int
}

// Result is the aggregated outcome of an evaluation run.
type Result struct {
	Backend  string
	Folds    int
	Examples int

	// Accuracy is the mean of per-item correctness indicators across all
	// folds' test predictions.
	Accuracy float64

	PerClass map[model.Frame]ClassMetrics

	// Pooled sums the per-fold confusion matrices.
	Pooled *Confusion
}
