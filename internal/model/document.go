package model

import (
	"strings"
	"time"
)

// Utterance is a single speaker turn from a transcript, as ingested.
type Utterance struct {
	EpisodeID string `json:"episode_id"` // Episode the turn belongs to
	Sequence  int    `json:"sequence"`   // Turn order within the episode (0-based)
	Speaker   string `json:"speaker"`    // Speaker name as transcribed
	IsHost    bool   `json:"is_host"`    // True when the speaker is the program host
	Text      string `json:"text"`       // Raw turn text (may contain residual markup)
}

// Document is one analyzable unit: all guest speech of an episode collapsed
// into a single text, joined with its metadata.
type Document struct {
	EpisodeID string    `json:"episode_id"`
	Program   string    `json:"program"`        // Program/show name
	Host      string    `json:"host,omitempty"` // Host name resolved from the host map
	Title     string    `json:"title,omitempty"`
	AirDate   time.Time `json:"air_date"`   // Broadcast date
	Text      string    `json:"text"`       // Collapsed guest speech, markup stripped
	WordCount int       `json:"word_count"` // Whitespace token count of Text
	Relevant  bool      `json:"relevant"`   // Set by the keyword relevance filter
}

// Window is an inclusive interval of word indices inside a tokenized
// document. Invariant: 0 <= Start <= End < number of words.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of words the window spans.
func (w Window) Len() int { return w.End - w.Start + 1 }

// Contains reports whether the word index i falls inside the window.
func (w Window) Contains(i int) bool { return i >= w.Start && i <= w.End }

// Snippet is the representative keyword-context excerpt extracted from one
// episode document.
type Snippet struct {
	EpisodeID  string  `json:"episode_id"`
	Text       string  `json:"text"`        // Space-joined words of the selected window
	Window     Window  `json:"window"`      // Selected merged window (word indices)
	MatchCount int     `json:"match_count"` // Keyword hits in the whole document
	Sentiment  float64 `json:"sentiment"`   // Lexicon valence score of Text
}

// WordCount counts whitespace-separated tokens. Used for document length
// checks and quality reporting.
func WordCount(s string) int { return len(strings.Fields(s)) }
