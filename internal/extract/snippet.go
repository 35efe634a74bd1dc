// Package extract selects one representative keyword-context snippet per
// episode document.
package extract

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"

	"github.com/framescope/framescope/internal/match"
	"github.com/framescope/framescope/internal/model"
	"github.com/framescope/framescope/internal/text"
)

// DefaultRadius is the context window half-width in words.
const DefaultRadius = 50

// Extractor extracts snippets around keyword hits. Extraction is a pure
// function of (text, pattern set, radius, seed): the same inputs always
// produce the same snippet.
type Extractor struct {
	patterns *match.PatternSet
	radius   int
}

// NewExtractor builds an Extractor. A radius below 1 is rejected; callers
// wanting the default pass DefaultRadius.
func NewExtractor(patterns *match.PatternSet, radius int) (*Extractor, error) {
	if patterns == nil {
		return nil, fmt.Errorf("extractor: nil pattern set")
	}
	if radius < 1 {
		return nil, fmt.Errorf("extractor: window radius must be >= 1, got %d", radius)
	}
	return &Extractor{patterns: patterns, radius: radius}, nil
}

// Radius returns the configured window half-width.
func (e *Extractor) Radius() int { return e.radius }

// Extract tokenizes the document, finds keyword hits, builds one context
// window per hit, merges overlapping windows with an interval sweep, and
// selects one merged window uniformly at random from a stream seeded with
// seed. The random draw is performed even when a single candidate remains,
// so the consumed stream position does not depend on the merge outcome.
//
// The boolean is false when the document has no tokens or no keyword hits;
// the relevance filter uses the same matcher, so a relevant document can
// only come back snippet-less if its text is empty.
func (e *Extractor) Extract(fullText string, seed int64) (model.Snippet, bool) {
	words := text.Words(fullText)
	if len(words) == 0 {
		return model.Snippet{}, false
	}

	hits := e.patterns.MatchIndices(words)
	if len(hits) == 0 {
		return model.Snippet{}, false
	}

	windows := make([]model.Window, 0, len(hits))
	for _, i := range hits {
		start := i - e.radius
		if start < 0 {
			start = 0
		}
		end := i + e.radius
		if end > len(words)-1 {
			end = len(words) - 1
		}
		windows = append(windows, model.Window{Start: start, End: end})
	}

	merged := MergeWindows(windows)

	rng := rand.New(rand.NewSource(seed))
	selected := merged[rng.Intn(len(merged))]

	return model.Snippet{
		Text:       strings.Join(words[selected.Start:selected.End+1], " "),
		Window:     selected,
		MatchCount: len(hits),
	}, true
}

// MergeWindows merges overlapping windows with a sort-and-sweep pass: sort
// by start, then extend the current interval while the next one starts at
// or before its end. Input is not modified.
func MergeWindows(windows []model.Window) []model.Window {
	if len(windows) == 0 {
		return nil
	}

	sorted := make([]model.Window, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := []model.Window{sorted[0]}
	for _, w := range sorted[1:] {
		cur := &merged[len(merged)-1]
		if w.Start <= cur.End {
			if w.End > cur.End {
				cur.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// DocumentSeed derives a per-document selection seed from the run seed and
// the episode id, so a run is reproducible regardless of processing order.
func DocumentSeed(base int64, episodeID string) int64 {
	h := fnv.New32a()
	h.Write([]byte(episodeID))
	return base ^ int64(h.Sum32())
}
