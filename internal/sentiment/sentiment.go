// Package sentiment scores snippet text with an embedded valence lexicon.
package sentiment

import (
	"github.com/framescope/framescope/internal/text"
)

// Scorer assigns a signed valence score to text using a fixed word lexicon
// in the AFINN style (integer weights from -5 to +5).
type Scorer struct {
	valence map[string]float64
}

// NewScorer returns a Scorer backed by the embedded lexicon.
func NewScorer() *Scorer {
	return &Scorer{valence: lexicon}
}

// Score tokenizes s and returns the mean valence of lexicon words found in
// it. Text with no lexicon matches scores 0.
func (s *Scorer) Score(str string) float64 {
	return s.ScoreTokens(text.Words(str))
}

// ScoreTokens is Score over an already tokenized stream.
func (s *Scorer) ScoreTokens(ts text.Tokens) float64 {
	var sum float64
	matched := 0
	for _, tok := range ts {
		if v, ok := s.valence[tok]; ok {
			sum += v
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	return sum / float64(matched)
}

// Matches returns how many tokens of s carry a lexicon valence. Used by the
// quality report to flag snippets the scorer is blind to.
func (s *Scorer) Matches(str string) int {
	n := 0
	for _, tok := range text.Words(str) {
		if _, ok := s.valence[tok]; ok {
			n++
		}
	}
	return n
}
