package model

import (
	"strings"
	"time"
)

// Frame is one category of the closed immigration-framing scheme. Every
// confusion matrix and metric report is defined over the full set returned
// by Frames, independent of which categories a given sample happens to
// contain.
type Frame string

const (
	FrameSecurity     Frame = "security"     // Security/threat framing (crime, border control, terrorism)
	FrameEconomic     Frame = "economic"     // Economic framing (jobs, wages, fiscal cost/benefit)
	FrameHumanitarian Frame = "humanitarian" // Humanitarian/moral framing (refuge, family, rights)
	FrameOther        Frame = "other"        // Immigration talk outside the three substantive frames

	// FrameUnknown is the sentinel for rows that could not be resolved to a
	// single category. It is never part of the closed set used for training
	// or evaluation.
	FrameUnknown Frame = "unknown"
)

// Frames returns the closed category set, in canonical order.
func Frames() []Frame {
	return []Frame{FrameSecurity, FrameEconomic, FrameHumanitarian, FrameOther}
}

// FrameIndex returns the position of f in the canonical order, or -1 for
// FrameUnknown and anything else outside the closed set.
func FrameIndex(f Frame) int {
	for i, c := range Frames() {
		if c == f {
			return i
		}
	}
	return -1
}

// ParseFrame maps free-form text to a Frame. Unrecognized input yields
// FrameUnknown rather than an error so callers can count it.
func ParseFrame(s string) Frame {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "security", "threat", "security/threat":
		return FrameSecurity
	case "economic", "economy":
		return FrameEconomic
	case "humanitarian", "moral", "humanitarian/moral":
		return FrameHumanitarian
	case "other":
		return FrameOther
	default:
		return FrameUnknown
	}
}

// CoderLabel is one human coder's reconciled judgment for one episode.
type CoderLabel struct {
	EpisodeID string `json:"episode_id"`
	Coder     string `json:"coder"` // Coder identifier from the labels file
	Frame     Frame  `json:"frame"` // FrameUnknown when the row was ambiguous
}

// AutoLabel is the result of one automated labeling call for one episode.
// An empty Frame marks the episode as unlabeled so resumed runs pick it up.
type AutoLabel struct {
	EpisodeID string    `json:"episode_id"`
	Frame     Frame     `json:"frame,omitempty"` // "" while missing or failed
	Provider  string    `json:"provider"`        // e.g. "openai", "ollama"
	Model     string    `json:"model"`           // Provider model identifier
	LabeledAt time.Time `json:"labeled_at"`
	Err       string    `json:"error,omitempty"` // Last failure message, if any
}

// Labeled reports whether the automated label resolved to a category inside
// the closed set.
func (a AutoLabel) Labeled() bool {
	return a.Frame != "" && a.Frame != FrameUnknown
}
