// Package quality runs dataset health checks and reports diagnostic signals
// before expensive labeling or evaluation runs.
package quality

import (
	"fmt"

	"github.com/framescope/framescope/internal/labels"
	"github.com/framescope/framescope/internal/model"
)

// Input is the store state the checker inspects.
type Input struct {
	Episodes    []model.Document
	Snippets    []model.Snippet
	CoderLabels []model.CoderLabel
	AutoLabels  []model.AutoLabel
	MinWords    int // Word floor for the short-document check
}

// Checker runs the health checks.
type Checker struct{}

// NewChecker creates a new checker.
func NewChecker() *Checker {
	return &Checker{}
}

// Check inspects the dataset and produces a report. The coverage checks
// always emit a signal so healthy runs are visible; the label checks emit
// only when something needs attention.
func (c *Checker) Check(in Input) model.QualityReport {
	report := model.QualityReport{
		Episodes: len(in.Episodes),
		Snippets: len(in.Snippets),
	}
	for _, doc := range in.Episodes {
		if doc.Relevant {
			report.Relevant++
		}
	}

	report.Signals = append(report.Signals, c.checkMissingSnippets(in, report.Relevant))
	report.Signals = append(report.Signals, c.checkMissingAutoLabels(in))
	report.Signals = append(report.Signals, c.checkClassImbalance(in))

	if s := c.checkAmbiguousLabels(in); s.Type != "" {
		report.Signals = append(report.Signals, s)
	}
	if s := c.checkShortDocuments(in); s.Type != "" {
		report.Signals = append(report.Signals, s)
	}

	return report
}

// checkMissingSnippets flags relevant episodes that produced no snippet.
// With matching unified between the filter and the extractor this only
// happens for degenerate text, so any occurrence deserves a look.
func (c *Checker) checkMissingSnippets(in Input, relevant int) model.Signal {
	snippeted := make(map[string]bool, len(in.Snippets))
	for _, snip := range in.Snippets {
		snippeted[snip.EpisodeID] = true
	}

	missing := 0
	for _, doc := range in.Episodes {
		if doc.Relevant && !snippeted[doc.EpisodeID] {
			missing++
		}
	}

	severity := model.SeverityInfo
	if missing > 0 {
		severity = model.SeverityWarning
	}
	if relevant > 0 && float64(missing)/float64(relevant) > 0.25 {
		severity = model.SeverityCritical
	}

	return model.Signal{
		Type:        model.SignalMissingSnippets,
		Severity:    severity,
		Description: fmt.Sprintf("Relevant episodes without a snippet: %d of %d", missing, relevant),
		Data: map[string]interface{}{
			"missing":  missing,
			"relevant": relevant,
		},
	}
}

// checkMissingAutoLabels flags snippets whose episodes lack a usable
// automated label, the same population a resumed labeling run would process.
func (c *Checker) checkMissingAutoLabels(in Input) model.Signal {
	labeled := make(map[string]bool, len(in.AutoLabels))
	for _, label := range in.AutoLabels {
		if label.Labeled() {
			labeled[label.EpisodeID] = true
		}
	}

	missing := 0
	for _, snip := range in.Snippets {
		if !labeled[snip.EpisodeID] {
			missing++
		}
	}

	severity := model.SeverityInfo
	if missing > 0 {
		severity = model.SeverityWarning
	}
	if len(in.Snippets) > 0 && float64(missing)/float64(len(in.Snippets)) > 0.5 {
		severity = model.SeverityCritical
	}

	return model.Signal{
		Type:        model.SignalMissingAutoLabels,
		Severity:    severity,
		Description: fmt.Sprintf("Snippets without an automated label: %d of %d", missing, len(in.Snippets)),
		Data: map[string]interface{}{
			"missing":  missing,
			"snippets": len(in.Snippets),
		},
	}
}

// checkClassImbalance measures the spread of per-episode frames, using the
// coders' majority and falling back to the automated label. A skewed
// distribution undermines classifier training.
func (c *Checker) checkClassImbalance(in Input) model.Signal {
	byEpisode := make(map[string][]model.Frame)
	for _, label := range in.CoderLabels {
		byEpisode[label.EpisodeID] = append(byEpisode[label.EpisodeID], label.Frame)
	}
	auto := make(map[string]model.Frame, len(in.AutoLabels))
	for _, label := range in.AutoLabels {
		if label.Labeled() {
			auto[label.EpisodeID] = label.Frame
		}
	}

	counts := make(map[model.Frame]int)
	seen := make(map[string]bool)
	record := func(id string, frame model.Frame) {
		if frame != model.FrameUnknown && !seen[id] {
			counts[frame]++
			seen[id] = true
		}
	}
	for id, frames := range byEpisode {
		record(id, labels.Majority(frames))
	}
	for id, frame := range auto {
		record(id, frame)
	}

	total := 0
	classes := 0
	min, max := 0, 0
	for _, n := range counts {
		total += n
		classes++
		if min == 0 || n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}

	data := map[string]interface{}{
		"labeled": total,
		"classes": classes,
	}
	for frame, n := range counts {
		data[string(frame)] = n
	}

	switch {
	case total == 0:
		return model.Signal{
			Type:        model.SignalClassImbalance,
			Severity:    model.SeverityInfo,
			Description: "No labeled episodes yet",
			Data:        data,
		}
	case classes < 2:
		return model.Signal{
			Type:        model.SignalClassImbalance,
			Severity:    model.SeverityCritical,
			Description: "All labeled episodes share one frame; classifiers cannot train",
			Data:        data,
		}
	}

	ratio := float64(max) / float64(min)
	data["ratio"] = ratio

	severity := model.SeverityInfo
	if ratio >= 10 {
		severity = model.SeverityCritical
	} else if ratio >= 5 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalClassImbalance,
		Severity:    severity,
		Description: fmt.Sprintf("Majority-to-minority class ratio: %.1f across %d classes", ratio, classes),
		Data:        data,
	}
}

// checkAmbiguousLabels reports coder rows that reconciled to the unknown
// sentinel. Empty when there are none.
func (c *Checker) checkAmbiguousLabels(in Input) model.Signal {
	ambiguous := 0
	for _, label := range in.CoderLabels {
		if label.Frame == model.FrameUnknown {
			ambiguous++
		}
	}
	if ambiguous == 0 {
		return model.Signal{}
	}

	return model.Signal{
		Type:        model.SignalAmbiguousLabels,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("Ambiguous coder rows kept as unknown: %d of %d", ambiguous, len(in.CoderLabels)),
		Data: map[string]interface{}{
			"ambiguous": ambiguous,
			"total":     len(in.CoderLabels),
		},
	}
}

// checkShortDocuments reports relevant episodes under the word floor, where
// snippet windows degenerate to the whole text. Empty when there are none.
func (c *Checker) checkShortDocuments(in Input) model.Signal {
	floor := in.MinWords
	if floor <= 0 {
		floor = 25
	}

	short := 0
	for _, doc := range in.Episodes {
		if !doc.Relevant {
			continue
		}
		wc := doc.WordCount
		if wc == 0 {
			wc = model.WordCount(doc.Text)
		}
		if wc < floor {
			short++
		}
	}
	if short == 0 {
		return model.Signal{}
	}

	return model.Signal{
		Type:        model.SignalShortDocuments,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("Relevant episodes under %d words: %d", floor, short),
		Data: map[string]interface{}{
			"short": short,
			"floor": floor,
		},
	}
}
