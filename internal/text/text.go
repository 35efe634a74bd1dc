// Package text normalizes transcript text into token streams for keyword
// matching and document-feature matrices.
package text

import (
	"strings"
	"unicode"

	porterstemmer "github.com/reiver/go-porterstemmer"
)

// Tokens is a slice of word tokens.
type Tokens []string

// TokenFunc transforms a token stream into another token stream.
type TokenFunc func(Tokens) Tokens

// Processor applies an ordered list of token filters.
type Processor struct {
	filters []TokenFunc
}

// MatrixProcessor prepares tokens for the document-feature matrix: stop
// words removed, remaining tokens stemmed.
var MatrixProcessor = NewProcessor(RemoveStopWords, Stem)

// NewProcessor builds a Processor from the given filters.
func NewProcessor(funcs ...TokenFunc) *Processor {
	p := &Processor{}
	p.filters = append(p.filters, funcs...)
	return p
}

// Apply runs each filter over the token stream in order.
func (p *Processor) Apply(ts Tokens) Tokens {
	for _, fn := range p.filters {
		ts = fn(ts)
	}
	return ts
}

// Words splits s into lowercase word tokens. Tokens are whitespace-separated
// runs with non-letter, non-digit runes trimmed from both ends; tokens that
// trim to nothing are dropped. This is the single tokenization used by the
// relevance filter, the snippet extractor and the normalizer, so a word
// index is comparable across all three.
func Words(s string) Tokens {
	fields := strings.Fields(s)
	tokens := make(Tokens, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w == "" {
			continue
		}
		tokens = append(tokens, strings.ToLower(w))
	}
	return tokens
}

// RemoveStopWords drops common English function words.
func RemoveStopWords(ts Tokens) Tokens {
	var kept Tokens
	for _, t := range ts {
		if !stopWords[t] {
			kept = append(kept, t)
		}
	}
	return kept
}

// Stem replaces each token with its Porter stem.
func Stem(ts Tokens) Tokens {
	for i, t := range ts {
		ts[i] = porterstemmer.StemString(t)
	}
	return ts
}

// Uniquify returns the unique tokens in first-seen order.
func Uniquify(ts Tokens) Tokens {
	seen := make(map[string]bool)
	var unique Tokens
	for _, t := range ts {
		if !seen[t] {
			unique = append(unique, t)
			seen[t] = true
		}
	}
	return unique
}

// NormalizeForMatrix converts raw text into the space-joined stem string
// consumed by the vectorizer.
func NormalizeForMatrix(s string) string {
	return strings.Join(MatrixProcessor.Apply(Words(s)), " ")
}
