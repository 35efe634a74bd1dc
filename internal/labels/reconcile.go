// Package labels turns coder annotation rows into frame labels and measures
// inter-coder agreement.
package labels

import (
	"fmt"

	"github.com/framescope/framescope/internal/model"
)

// AmbiguousLabelError reports a one-hot row that did not resolve to exactly
// one category. The row is still usable: callers receive FrameUnknown and
// count the ambiguity instead of aborting.
type AmbiguousLabelError struct {
	Set int // indicators set in the row
}

func (e *AmbiguousLabelError) Error() string {
	if e.Set == 0 {
		return "ambiguous label row: no category set"
	}
	return fmt.Sprintf("ambiguous label row: %d categories set", e.Set)
}

// Reconcile resolves a one-hot indicator row to a single frame. indicators
// must align with categories; any nonzero value counts as set. Rows with
// zero or more than one set category yield FrameUnknown and an
// *AmbiguousLabelError.
func Reconcile(indicators []int, categories []model.Frame) (model.Frame, error) {
	if len(indicators) != len(categories) {
		return model.FrameUnknown, fmt.Errorf("reconcile: %d indicators for %d categories", len(indicators), len(categories))
	}

	set := 0
	var frame model.Frame
	for i, v := range indicators {
		if v != 0 {
			set++
			frame = categories[i]
		}
	}
	if set != 1 {
		return model.FrameUnknown, &AmbiguousLabelError{Set: set}
	}
	return frame, nil
}

// Row is one coder's one-hot annotation of one episode, indicators aligned
// with model.Frames().
type Row struct {
	EpisodeID  string
	Coder      string
	Indicators []int
}

// Summary reports reconciliation outcomes for data-quality review.
type Summary struct {
	Total     int
	Ambiguous int
	ByFrame   map[model.Frame]int
}

// ReconcileAll reconciles every row against the closed frame set. Ambiguous
// rows become FrameUnknown labels and are counted, never dropped, so the
// caller can see exactly which units need re-coding.
func ReconcileAll(rows []Row) ([]model.CoderLabel, Summary) {
	categories := model.Frames()
	summary := Summary{ByFrame: make(map[model.Frame]int)}

	out := make([]model.CoderLabel, 0, len(rows))
	for _, r := range rows {
		frame, err := Reconcile(r.Indicators, categories)
		summary.Total++
		if err != nil {
			summary.Ambiguous++
		}
		summary.ByFrame[frame]++
		out = append(out, model.CoderLabel{
			EpisodeID: r.EpisodeID,
			Coder:     r.Coder,
			Frame:     frame,
		})
	}
	return out, summary
}

// Majority returns the frame most coders agreed on, skipping unknown votes.
// Ties and empty inputs yield FrameUnknown; a strict majority is not
// required, plurality wins as long as it is unique.
func Majority(frames []model.Frame) model.Frame {
	counts := make(map[model.Frame]int)
	for _, f := range frames {
		if f == "" || f == model.FrameUnknown {
			continue
		}
		counts[f]++
	}

	best := model.FrameUnknown
	bestCount, tied := 0, false
	for _, f := range model.Frames() {
		switch c := counts[f]; {
		case c > bestCount:
			best, bestCount, tied = f, c, false
		case c == bestCount && c > 0:
			tied = true
		}
	}
	if tied || bestCount == 0 {
		return model.FrameUnknown
	}
	return best
}
