package eval

import (
	"fmt"
	"math"
	"math/rand"
)

// Fold is one train/test split over example indices. Test and train are
// always disjoint.
type Fold struct {
	Train []int
	Test  []int
}

// LeaveOneOut returns n folds, each holding out exactly one example.
func LeaveOneOut(n int) []Fold {
	folds := make([]Fold, n)
	for i := 0; i < n; i++ {
		train := make([]int, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				train = append(train, j)
			}
		}
		folds[i] = Fold{Train: train, Test: []int{i}}
	}
	return folds
}

// KFold shuffles indices with the given seed and deals them round-robin
// into k test partitions.
func KFold(n, k int, seed int64) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("kfold: k must be at least 2, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("kfold: k=%d exceeds %d examples", k, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	tests := make([][]int, k)
	for i, idx := range perm {
		f := i % k
		tests[f] = append(tests[f], idx)
	}

	folds := make([]Fold, k)
	for f := 0; f < k; f++ {
		inTest := make(map[int]bool, len(tests[f]))
		for _, idx := range tests[f] {
			inTest[idx] = true
		}
		train := make([]int, 0, n-len(tests[f]))
		for j := 0; j < n; j++ {
			if !inTest[j] {
				train = append(train, j)
			}
		}
		folds[f] = Fold{Train: train, Test: tests[f]}
	}
	return folds, nil
}

// HoldOut returns a single fold with round(n*ratio) shuffled examples held
// out, at least one on each side.
func HoldOut(n int, ratio float64, seed int64) ([]Fold, error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, fmt.Errorf("holdout: ratio must be inside (0,1), got %v", ratio)
	}
	if n < 2 {
		return nil, fmt.Errorf("holdout: need at least 2 examples, got %d", n)
	}

	size := int(math.Round(float64(n) * ratio))
	if size < 1 {
		size = 1
	}
	if size > n-1 {
		size = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test := append([]int(nil), perm[:size]...)
	train := append([]int(nil), perm[size:]...)
	return []Fold{{Train: train, Test: test}}, nil
}
