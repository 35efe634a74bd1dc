package classify

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// defaultTrees is the forest size used by the factory.
const defaultTrees = 50

// Forest is a random forest of Gini-split CART trees over term counts.
// Each tree trains on a bootstrap resample (weighted when example weights
// are supplied) with sqrt(terms) features sampled per node, and prediction
// is a majority vote.
type Forest struct {
	Trees    int
	MaxDepth int
	MinLeaf  int

	terms   int
	classes int
	trees   []*treeNode
	fitted  bool
}

// treeNode is either a split (left/right set) or a leaf (class set).
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	class     int
}

func (n *treeNode) leaf() bool { return n.left == nil }

// NewForest returns a backend with the given tree count.
func NewForest(trees int) *Forest {
	if trees <= 0 {
		trees = defaultTrees
	}
	return &Forest{Trees: trees, MaxDepth: 12, MinLeaf: 1}
}

// Name implements Classifier.
func (f *Forest) Name() string { return "forest" }

// MinTrainingClasses implements Classifier. A single class fits a forest of
// one-leaf trees.
func (f *Forest) MinTrainingClasses() int { return 1 }

// Fit implements Classifier.
func (f *Forest) Fit(X mat.Matrix, y []int, opts FitOptions) error {
	terms, docs, err := checkFit(X, y, &opts)
	if err != nil {
		return fmt.Errorf("forest: %w", err)
	}

	rows := documentRows(X)
	rng := rand.New(rand.NewSource(opts.Seed))
	sampler := newBootstrap(opts.Weights, docs)

	perNode := int(math.Ceil(math.Sqrt(float64(terms))))
	b := &treeBuilder{
		rows:     rows,
		y:        y,
		classes:  opts.Classes,
		terms:    terms,
		perNode:  perNode,
		maxDepth: f.MaxDepth,
		minLeaf:  f.MinLeaf,
		rng:      rng,
	}

	f.trees = make([]*treeNode, f.Trees)
	for t := 0; t < f.Trees; t++ {
		sample := make([]int, docs)
		for i := range sample {
			sample[i] = sampler.draw(rng)
		}
		f.trees[t] = b.build(sample, 0)
	}

	f.terms = terms
	f.classes = opts.Classes
	f.fitted = true
	return nil
}

// Predict implements Classifier.
func (f *Forest) Predict(x mat.Vector) (int, error) {
	if err := checkPredict(x, f.terms, f.fitted); err != nil {
		return 0, fmt.Errorf("forest: %w", err)
	}
	votes := make([]float64, f.classes)
	for _, root := range f.trees {
		n := root
		for !n.leaf() {
			if x.AtVec(n.feature) <= n.threshold {
				n = n.left
			} else {
				n = n.right
			}
		}
		votes[n.class]++
	}
	return argmax(votes), nil
}

// bootstrap draws document indices, proportionally to weights when given.
type bootstrap struct {
	cdf   []float64
	total float64
	n     int
}

func newBootstrap(weights []float64, n int) *bootstrap {
	b := &bootstrap{n: n}
	if weights == nil {
		return b
	}
	b.cdf = make([]float64, n)
	sum := 0.0
	for i, w := range weights {
		sum += w
		b.cdf[i] = sum
	}
	if sum == 0 {
		b.cdf = nil
	}
	b.total = sum
	return b
}

func (b *bootstrap) draw(rng *rand.Rand) int {
	if b.cdf == nil {
		return rng.Intn(b.n)
	}
	r := rng.Float64() * b.total
	return sort.SearchFloat64s(b.cdf, r)
}

type treeBuilder struct {
	rows     [][]float64
	y        []int
	classes  int
	terms    int
	perNode  int
	maxDepth int
	minLeaf  int
	rng      *rand.Rand
}

func (b *treeBuilder) build(docs []int, depth int) *treeNode {
	counts := make([]int, b.classes)
	for _, j := range docs {
		counts[b.y[j]]++
	}
	majority := argmaxInt(counts)

	if depth >= b.maxDepth || len(docs) < 2*b.minLeaf || pure(counts) {
		return &treeNode{class: majority}
	}

	feature, threshold, ok := b.bestSplit(docs, counts)
	if !ok {
		return &treeNode{class: majority}
	}

	var left, right []int
	for _, j := range docs {
		if b.rows[j][feature] <= threshold {
			left = append(left, j)
		} else {
			right = append(right, j)
		}
	}
	if len(left) < b.minLeaf || len(right) < b.minLeaf {
		return &treeNode{class: majority}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      b.build(left, depth+1),
		right:     b.build(right, depth+1),
	}
}

// bestSplit searches a random feature subset for the threshold with the
// lowest weighted Gini impurity.
func (b *treeBuilder) bestSplit(docs []int, counts []int) (int, float64, bool) {
	parent := gini(counts, len(docs))
	bestGain := 0.0
	bestFeature, bestThreshold := -1, 0.0

	leftCounts := make([]int, b.classes)
	rightCounts := make([]int, b.classes)

	for _, feature := range b.sampleFeatures() {
		values := make([]float64, 0, len(docs))
		for _, j := range docs {
			values = append(values, b.rows[j][feature])
		}
		sort.Float64s(values)

		for k := 1; k < len(values); k++ {
			if values[k] == values[k-1] {
				continue
			}
			threshold := (values[k] + values[k-1]) / 2

			for c := range leftCounts {
				leftCounts[c], rightCounts[c] = 0, 0
			}
			nLeft := 0
			for _, j := range docs {
				if b.rows[j][feature] <= threshold {
					leftCounts[b.y[j]]++
					nLeft++
				} else {
					rightCounts[b.y[j]]++
				}
			}
			nRight := len(docs) - nLeft
			if nLeft == 0 || nRight == 0 {
				continue
			}

			w := float64(nLeft) / float64(len(docs))
			impurity := w*gini(leftCounts, nLeft) + (1-w)*gini(rightCounts, nRight)
			if gain := parent - impurity; gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// sampleFeatures picks perNode distinct feature indices.
func (b *treeBuilder) sampleFeatures() []int {
	if b.perNode >= b.terms {
		all := make([]int, b.terms)
		for i := range all {
			all[i] = i
		}
		return all
	}
	picked := make(map[int]bool, b.perNode)
	out := make([]int, 0, b.perNode)
	for len(out) < b.perNode {
		i := b.rng.Intn(b.terms)
		if !picked[i] {
			picked[i] = true
			out = append(out, i)
		}
	}
	return out
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum -= p * p
	}
	return sum
}

func pure(counts []int) bool {
	nonzero := 0
	for _, c := range counts {
		if c > 0 {
			nonzero++
		}
	}
	return nonzero <= 1
}

func argmaxInt(counts []int) int {
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return best
}
