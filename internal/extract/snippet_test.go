package extract

import (
	"reflect"
	"strings"
	"testing"

	"github.com/framescope/framescope/internal/match"
	"github.com/framescope/framescope/internal/model"
)

func mustPatterns(t *testing.T, stems ...string) *match.PatternSet {
	t.Helper()
	p, err := match.New(stems)
	if err != nil {
		t.Fatalf("match.New: %v", err)
	}
	return p
}

func TestExtractMergesOverlappingWindows(t *testing.T) {
	// Two hits three words apart with radius 3 overlap, so a single merged
	// window must cover both.
	e, err := NewExtractor(mustPatterns(t, "migrant", "asylum"), 3)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	doc := "border patrol detained several migrants near the asylum office"
	for _, seed := range []int64{1, 42, 999} {
		snip, ok := e.Extract(doc, seed)
		if !ok {
			t.Fatalf("seed %d: expected a snippet", seed)
		}
		want := "patrol detained several migrants near the asylum office"
		if snip.Text != want {
			t.Errorf("seed %d: snippet = %q, want %q", seed, snip.Text, want)
		}
		if snip.Window != (model.Window{Start: 1, End: 8}) {
			t.Errorf("seed %d: window = %+v, want {1 8}", seed, snip.Window)
		}
		if snip.MatchCount != 2 {
			t.Errorf("seed %d: match count = %d, want 2", seed, snip.MatchCount)
		}
	}
}

func TestExtractNoMatch(t *testing.T) {
	e, err := NewExtractor(mustPatterns(t, "immigr"), 5)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	if _, ok := e.Extract("the economy grew in the third quarter", 7); ok {
		t.Error("expected no snippet for a document without keyword hits")
	}
	if _, ok := e.Extract("", 7); ok {
		t.Error("expected no snippet for an empty document")
	}
	if _, ok := e.Extract("... --- !!!", 7); ok {
		t.Error("expected no snippet for a punctuation-only document")
	}
}

func TestExtractSameSeedSameSnippet(t *testing.T) {
	e, err := NewExtractor(mustPatterns(t, "border"), 2)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	words := make([]string, 60)
	for i := range words {
		words[i] = "filler"
	}
	words[5] = "border"
	words[30] = "border"
	words[55] = "border"
	doc := strings.Join(words, " ")

	first, ok := e.Extract(doc, 1234)
	if !ok {
		t.Fatal("expected a snippet")
	}
	for i := 0; i < 5; i++ {
		again, ok := e.Extract(doc, 1234)
		if !ok {
			t.Fatal("expected a snippet on repeat")
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: snippet changed under the same seed: %+v vs %+v", i, first, again)
		}
	}
}

func TestExtractSelectedWindowContainsHit(t *testing.T) {
	e, err := NewExtractor(mustPatterns(t, "border"), 2)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	words := make([]string, 40)
	for i := range words {
		words[i] = "filler"
	}
	hitAt := []int{0, 17, 39}
	for _, i := range hitAt {
		words[i] = "border"
	}
	doc := strings.Join(words, " ")

	for seed := int64(0); seed < 20; seed++ {
		snip, ok := e.Extract(doc, seed)
		if !ok {
			t.Fatalf("seed %d: expected a snippet", seed)
		}
		if snip.Window.Start < 0 || snip.Window.End > len(words)-1 || snip.Window.Start > snip.Window.End {
			t.Fatalf("seed %d: window out of bounds: %+v", seed, snip.Window)
		}
		contained := false
		for _, i := range hitAt {
			if snip.Window.Contains(i) {
				contained = true
			}
		}
		if !contained {
			t.Errorf("seed %d: selected window %+v contains no hit", seed, snip.Window)
		}
		if got := len(strings.Fields(snip.Text)); got != snip.Window.Len() {
			t.Errorf("seed %d: snippet has %d words, window spans %d", seed, got, snip.Window.Len())
		}
	}
}

func TestExtractRadiusClampsToDocument(t *testing.T) {
	e, err := NewExtractor(mustPatterns(t, "asylum"), 100)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	doc := "they applied for asylum last year"
	snip, ok := e.Extract(doc, 3)
	if !ok {
		t.Fatal("expected a snippet")
	}
	if snip.Window != (model.Window{Start: 0, End: 5}) {
		t.Errorf("window = %+v, want the whole document {0 5}", snip.Window)
	}
	if snip.Text != "they applied for asylum last year" {
		t.Errorf("snippet = %q", snip.Text)
	}
}

func TestMergeWindows(t *testing.T) {
	tests := []struct {
		name  string
		input []model.Window
		want  []model.Window
	}{
		{
			name:  "empty",
			input: nil,
			want:  nil,
		},
		{
			name:  "disjoint stay separate",
			input: []model.Window{{Start: 0, End: 2}, {Start: 4, End: 6}},
			want:  []model.Window{{Start: 0, End: 2}, {Start: 4, End: 6}},
		},
		{
			name:  "touching at end merges",
			input: []model.Window{{Start: 0, End: 4}, {Start: 4, End: 8}},
			want:  []model.Window{{Start: 0, End: 8}},
		},
		{
			name:  "adjacent but not touching stays separate",
			input: []model.Window{{Start: 0, End: 3}, {Start: 4, End: 8}},
			want:  []model.Window{{Start: 0, End: 3}, {Start: 4, End: 8}},
		},
		{
			name:  "unsorted chain collapses",
			input: []model.Window{{Start: 6, End: 9}, {Start: 0, End: 4}, {Start: 3, End: 7}},
			want:  []model.Window{{Start: 0, End: 9}},
		},
		{
			name:  "contained window absorbed",
			input: []model.Window{{Start: 0, End: 10}, {Start: 2, End: 5}},
			want:  []model.Window{{Start: 0, End: 10}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeWindows(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeWindows = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeWindowsFewerThanHitsWhenClose(t *testing.T) {
	// Hits closer together than the window width must collapse.
	windows := []model.Window{{Start: 0, End: 4}, {Start: 2, End: 6}, {Start: 5, End: 9}}
	merged := MergeWindows(windows)
	if len(merged) >= len(windows) {
		t.Errorf("expected fewer merged windows, got %d from %d", len(merged), len(windows))
	}
}

func TestDocumentSeedStable(t *testing.T) {
	a := DocumentSeed(42, "ep-001")
	b := DocumentSeed(42, "ep-001")
	c := DocumentSeed(42, "ep-002")
	if a != b {
		t.Errorf("same inputs produced different seeds: %d vs %d", a, b)
	}
	if a == c {
		t.Errorf("different episodes produced the same seed: %d", a)
	}
}
