// Package trends buckets labeled episodes into time periods and computes
// per-period frame shares and sentiment, plus per-frame share series
// summaries for reporting.
package trends

import (
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/framescope/framescope/internal/labels"
	"github.com/framescope/framescope/internal/model"
)

// Bucket aggregates one time period.
type Bucket struct {
	Period        string                  `json:"period"`
	Episodes      int                     `json:"episodes"`
	Frames        map[model.Frame]int     `json:"frames"`
	Shares        map[model.Frame]float64 `json:"shares"`
	MeanSentiment float64                 `json:"mean_sentiment"`
}

// Series summarizes one frame's share across all periods in order.
type Series struct {
	Frame  model.Frame `json:"frame"`
	Points []float64   `json:"points"` // Share per period, period order
	Mean   float64     `json:"mean"`
	Min    float64     `json:"min"`
	Max    float64     `json:"max"`
	Slope  float64     `json:"slope"` // Linear-regression slope per period step
}

// Report is the full trend aggregation.
type Report struct {
	Granularity      string   `json:"granularity"`
	Buckets          []Bucket `json:"buckets"` // Sorted by period
	Series           []Series `json:"series"`  // One per frame in the closed set
	SkippedUndated   int      `json:"skipped_undated"`
	SkippedUnlabeled int      `json:"skipped_unlabeled"`
}

// PeriodOf formats t into a sortable period key for the given granularity:
// "2019-03" for month, "2019-Q1" for quarter, "2019" for year.
func PeriodOf(t time.Time, granularity string) (string, error) {
	switch granularity {
	case "month":
		return t.Format("2006-01"), nil
	case "quarter":
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1), nil
	case "year":
		return fmt.Sprintf("%d", t.Year()), nil
	default:
		return "", fmt.Errorf("unknown period granularity: %s (supported: month, quarter, year)", granularity)
	}
}

// EffectiveFrame picks the frame a dataset row counts as: the coders'
// majority when one exists, otherwise the automated label. Unknown when
// neither resolves.
func EffectiveFrame(row model.DatasetRow) model.Frame {
	if f := labels.Majority(row.CoderFrames); f != model.FrameUnknown {
		return f
	}
	if row.AutoFrame != "" && row.AutoFrame != model.FrameUnknown {
		return row.AutoFrame
	}
	return model.FrameUnknown
}

// Aggregate buckets the rows by period and builds per-frame share series.
// Rows without an air date or a usable frame are counted as skipped rather
// than aggregated.
func Aggregate(rows []model.DatasetRow, granularity string) (*Report, error) {
	report := &Report{Granularity: granularity}

	type accumulator struct {
		frames     map[model.Frame]int
		sentiments []float64
	}
	periods := make(map[string]*accumulator)

	for _, row := range rows {
		if row.AirDate.IsZero() {
			report.SkippedUndated++
			continue
		}
		frame := EffectiveFrame(row)
		if frame == model.FrameUnknown {
			report.SkippedUnlabeled++
			continue
		}

		period, err := PeriodOf(row.AirDate, granularity)
		if err != nil {
			return nil, err
		}
		acc := periods[period]
		if acc == nil {
			acc = &accumulator{frames: make(map[model.Frame]int)}
			periods[period] = acc
		}
		acc.frames[frame]++
		acc.sentiments = append(acc.sentiments, row.Sentiment)
	}

	keys := make([]string, 0, len(periods))
	for k := range periods {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		acc := periods[key]
		bucket := Bucket{
			Period: key,
			Frames: acc.frames,
			Shares: make(map[model.Frame]float64),
		}
		for _, n := range acc.frames {
			bucket.Episodes += n
		}
		for frame, n := range acc.frames {
			bucket.Shares[frame] = float64(n) / float64(bucket.Episodes)
		}
		if mean, err := stats.Mean(acc.sentiments); err == nil {
			bucket.MeanSentiment = mean
		}
		report.Buckets = append(report.Buckets, bucket)
	}

	report.Series = buildSeries(report.Buckets)
	return report, nil
}

// buildSeries turns the period buckets into one share series per frame with
// summary statistics.
func buildSeries(buckets []Bucket) []Series {
	if len(buckets) == 0 {
		return nil
	}

	series := make([]Series, 0, len(model.Frames()))
	for _, frame := range model.Frames() {
		s := Series{Frame: frame, Points: make([]float64, len(buckets))}
		for i, bucket := range buckets {
			s.Points[i] = bucket.Shares[frame]
		}
		if mean, err := stats.Mean(s.Points); err == nil {
			s.Mean = mean
		}
		if min, err := stats.Min(s.Points); err == nil {
			s.Min = min
		}
		if max, err := stats.Max(s.Points); err == nil {
			s.Max = max
		}
		s.Slope = slope(s.Points)
		series = append(series, s)
	}
	return series
}

// slope fits a least-squares line over (index, share) pairs and returns its
// per-period slope, 0 when fewer than two points exist.
func slope(points []float64) float64 {
	if len(points) < 2 {
		return 0
	}
	coords := make(stats.Series, len(points))
	for i, p := range points {
		coords[i] = stats.Coordinate{X: float64(i), Y: p}
	}
	fitted, err := stats.LinearRegression(coords)
	if err != nil || len(fitted) < 2 {
		return 0
	}
	first, last := fitted[0], fitted[len(fitted)-1]
	if last.X == first.X {
		return 0
	}
	return (last.Y - first.Y) / (last.X - first.X)
}
