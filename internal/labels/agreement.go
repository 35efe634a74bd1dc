package labels

import (
	"math"

	"github.com/framescope/framescope/internal/model"
)

// Alpha computes Krippendorff's alpha for nominal data. Each unit holds the
// frame values assigned by the coders who rated it. FrameUnknown values are
// treated as missing; units left with fewer than two values are skipped.
//
// Returns NaN when no pairable values remain, and 1 when every pairable
// value falls in a single category (no expected disagreement).
func Alpha(units [][]model.Frame) float64 {
	coincidence := make(map[model.Frame]map[model.Frame]float64)
	add := func(a, b model.Frame, v float64) {
		if coincidence[a] == nil {
			coincidence[a] = make(map[model.Frame]float64)
		}
		coincidence[a][b] += v
	}

	for _, unit := range units {
		var values []model.Frame
		for _, v := range unit {
			if v == model.FrameUnknown || v == "" {
				continue
			}
			values = append(values, v)
		}
		m := len(values)
		if m < 2 {
			continue
		}
		w := 1.0 / float64(m-1)
		for i, a := range values {
			for j, b := range values {
				if i == j {
					continue
				}
				add(a, b, w)
			}
		}
	}

	var n, agree float64
	marginals := make(map[model.Frame]float64)
	for a, row := range coincidence {
		for b, v := range row {
			n += v
			marginals[a] += v
			if a == b {
				agree += v
			}
		}
	}
	if n == 0 {
		return math.NaN()
	}

	var sumSq float64
	for _, m := range marginals {
		sumSq += m * m
	}

	observed := n - agree
	expected := (n*n - sumSq) / (n - 1)
	if expected == 0 {
		return 1
	}
	return 1 - observed/expected
}
