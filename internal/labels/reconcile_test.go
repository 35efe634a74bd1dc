package labels

import (
	"errors"
	"math"
	"testing"

	"github.com/framescope/framescope/internal/model"
)

func TestReconcile(t *testing.T) {
	categories := model.Frames()

	tests := []struct {
		name       string
		indicators []int
		want       model.Frame
		wantSet    int
		wantErr    bool
	}{
		{
			name:       "single category set",
			indicators: []int{0, 1, 0, 0},
			want:       model.FrameEconomic,
		},
		{
			name:       "no category set",
			indicators: []int{0, 0, 0, 0},
			want:       model.FrameUnknown,
			wantSet:    0,
			wantErr:    true,
		},
		{
			name:       "two categories set",
			indicators: []int{1, 0, 1, 0},
			want:       model.FrameUnknown,
			wantSet:    2,
			wantErr:    true,
		},
		{
			name:       "nonzero counts as set",
			indicators: []int{0, 0, 0, 2},
			want:       model.FrameOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconcile(tt.indicators, categories)
			if got != tt.want {
				t.Errorf("frame = %v, want %v", got, tt.want)
			}
			if !tt.wantErr {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var ambiguous *AmbiguousLabelError
			if !errors.As(err, &ambiguous) {
				t.Fatalf("error = %v, want *AmbiguousLabelError", err)
			}
			if ambiguous.Set != tt.wantSet {
				t.Errorf("Set = %d, want %d", ambiguous.Set, tt.wantSet)
			}
		})
	}
}

func TestReconcileLengthMismatch(t *testing.T) {
	_, err := Reconcile([]int{1, 0}, model.Frames())
	if err == nil {
		t.Fatal("expected error for mismatched indicator length")
	}
	var ambiguous *AmbiguousLabelError
	if errors.As(err, &ambiguous) {
		t.Error("length mismatch should not be reported as ambiguity")
	}
}

func TestReconcileAll(t *testing.T) {
	rows := []Row{
		{EpisodeID: "e1", Coder: "c1", Indicators: []int{1, 0, 0, 0}},
		{EpisodeID: "e1", Coder: "c2", Indicators: []int{1, 0, 0, 0}},
		{EpisodeID: "e2", Coder: "c1", Indicators: []int{0, 0, 0, 0}},
		{EpisodeID: "e2", Coder: "c2", Indicators: []int{0, 1, 1, 0}},
	}

	got, summary := ReconcileAll(rows)
	if len(got) != 4 {
		t.Fatalf("labels = %d, want 4 (ambiguous rows are kept)", len(got))
	}
	if summary.Total != 4 {
		t.Errorf("Total = %d, want 4", summary.Total)
	}
	if summary.Ambiguous != 2 {
		t.Errorf("Ambiguous = %d, want 2", summary.Ambiguous)
	}
	if summary.ByFrame[model.FrameSecurity] != 2 {
		t.Errorf("security count = %d, want 2", summary.ByFrame[model.FrameSecurity])
	}
	if summary.ByFrame[model.FrameUnknown] != 2 {
		t.Errorf("unknown count = %d, want 2", summary.ByFrame[model.FrameUnknown])
	}
	if got[2].Frame != model.FrameUnknown || got[3].Frame != model.FrameUnknown {
		t.Error("ambiguous rows must resolve to the unknown sentinel")
	}
}

func TestMajority(t *testing.T) {
	tests := []struct {
		name   string
		frames []model.Frame
		want   model.Frame
	}{
		{
			name:   "unanimous",
			frames: []model.Frame{model.FrameSecurity, model.FrameSecurity},
			want:   model.FrameSecurity,
		},
		{
			name:   "plurality wins",
			frames: []model.Frame{model.FrameEconomic, model.FrameEconomic, model.FrameOther},
			want:   model.FrameEconomic,
		},
		{
			name:   "tie is unknown",
			frames: []model.Frame{model.FrameSecurity, model.FrameEconomic},
			want:   model.FrameUnknown,
		},
		{
			name:   "unknown votes do not count",
			frames: []model.Frame{model.FrameUnknown, model.FrameUnknown, model.FrameHumanitarian},
			want:   model.FrameHumanitarian,
		},
		{
			name:   "empty input",
			frames: nil,
			want:   model.FrameUnknown,
		},
		{
			name:   "all unknown",
			frames: []model.Frame{model.FrameUnknown, ""},
			want:   model.FrameUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Majority(tt.frames); got != tt.want {
				t.Errorf("Majority(%v) = %v, want %v", tt.frames, got, tt.want)
			}
		})
	}
}

func TestAlphaPerfectAgreement(t *testing.T) {
	units := [][]model.Frame{
		{model.FrameSecurity, model.FrameSecurity},
		{model.FrameEconomic, model.FrameEconomic},
		{model.FrameOther, model.FrameOther},
	}
	if got := Alpha(units); got != 1 {
		t.Errorf("alpha = %v, want 1", got)
	}
}

func TestAlphaKnownValue(t *testing.T) {
	// Two coders, four units, one disagreement. By hand: coincidence
	// diagonal 6 of n=8, D_o = 2, D_e = (64-34)/7, alpha = 1 - 14/30.
	units := [][]model.Frame{
		{model.FrameSecurity, model.FrameSecurity},
		{model.FrameSecurity, model.FrameSecurity},
		{model.FrameEconomic, model.FrameEconomic},
		{model.FrameSecurity, model.FrameEconomic},
	}
	got := Alpha(units)
	want := 1 - 14.0/30.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("alpha = %v, want %v", got, want)
	}
}

func TestAlphaNoData(t *testing.T) {
	if got := Alpha(nil); !math.IsNaN(got) {
		t.Errorf("alpha = %v, want NaN", got)
	}
	// Units with only one usable value cannot be paired.
	units := [][]model.Frame{
		{model.FrameSecurity, model.FrameUnknown},
		{model.FrameEconomic},
	}
	if got := Alpha(units); !math.IsNaN(got) {
		t.Errorf("alpha = %v, want NaN", got)
	}
}

func TestAlphaSingleCategory(t *testing.T) {
	units := [][]model.Frame{
		{model.FrameOther, model.FrameOther},
		{model.FrameOther, model.FrameOther},
	}
	if got := Alpha(units); got != 1 {
		t.Errorf("alpha = %v, want 1", got)
	}
}

func TestAlphaIgnoresUnknown(t *testing.T) {
	// The unknown sentinel is missing data, not a category: a unit pairing
	// a real label with unknown contributes nothing.
	withUnknown := [][]model.Frame{
		{model.FrameSecurity, model.FrameSecurity},
		{model.FrameEconomic, model.FrameUnknown},
	}
	clean := [][]model.Frame{
		{model.FrameSecurity, model.FrameSecurity},
	}
	if got, want := Alpha(withUnknown), Alpha(clean); got != want {
		t.Errorf("alpha = %v, want %v (unknown rows must not contribute)", got, want)
	}
}
