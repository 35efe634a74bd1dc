// Package match holds the keyword-stem matcher shared by the relevance
// filter and the snippet extractor, so both agree on what counts as an
// immigration mention.
package match

import (
	"fmt"
	"strings"

	"github.com/framescope/framescope/internal/text"
)

// PatternSet matches word tokens against a list of lowercase keyword stems.
// A token matches when it contains any stem as a substring, so the stem
// "immigr" covers "immigrant", "immigration" and "anti-immigrant".
type PatternSet struct {
	stems []string
}

// New builds a PatternSet from keyword stems. Stems are lowercased and
// deduplicated; an empty set is rejected because it would classify every
// document as irrelevant.
func New(stems []string) (*PatternSet, error) {
	seen := make(map[string]bool)
	var cleaned []string
	for _, s := range stems {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		cleaned = append(cleaned, s)
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("pattern set: no usable keyword stems")
	}
	return &PatternSet{stems: cleaned}, nil
}

// Stems returns the cleaned stem list.
func (p *PatternSet) Stems() []string {
	out := make([]string, len(p.stems))
	copy(out, p.stems)
	return out
}

// MatchToken reports whether a single lowercase token matches any stem.
func (p *PatternSet) MatchToken(tok string) bool {
	for _, s := range p.stems {
		if strings.Contains(tok, s) {
			return true
		}
	}
	return false
}

// MatchIndices returns the indices of all matching tokens, in order.
func (p *PatternSet) MatchIndices(tokens text.Tokens) []int {
	var hits []int
	for i, tok := range tokens {
		if p.MatchToken(tok) {
			hits = append(hits, i)
		}
	}
	return hits
}

// Relevant reports whether the token stream contains at least one match.
// This is the relevance filter: a document enters the analysis set iff its
// tokens produce at least one hit, which is exactly the condition under
// which the snippet extractor can produce a snippet.
func (p *PatternSet) Relevant(tokens text.Tokens) bool {
	for _, tok := range tokens {
		if p.MatchToken(tok) {
			return true
		}
	}
	return false
}
