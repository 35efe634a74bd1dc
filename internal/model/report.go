package model

// QualityReport summarizes dataset health checks run over the store.
type QualityReport struct {
	Episodes int      `json:"episodes"` // Total episodes in the store
	Relevant int      `json:"relevant"` // Episodes passing the relevance filter
	Snippets int      `json:"snippets"` // Extracted snippets
	Signals  []Signal `json:"signals"`  // Diagnostic findings
}

// Worst returns the most severe signal level present, SeverityInfo when the
// report is clean.
func (r QualityReport) Worst() SignalSeverity {
	worst := SeverityInfo
	for _, s := range r.Signals {
		switch s.Severity {
		case SeverityCritical:
			return SeverityCritical
		case SeverityWarning:
			worst = SeverityWarning
		}
	}
	return worst
}

// Signal is one diagnostic finding with the numbers behind it, so a report
// reader can verify the assessment.
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies a diagnostic signal.
type SignalType string

const (
	SignalMissingSnippets   SignalType = "missing_snippets"    // Relevant episodes with no extracted snippet
	SignalAmbiguousLabels   SignalType = "ambiguous_labels"    // Coder rows that resolved to unknown
	SignalMissingAutoLabels SignalType = "missing_auto_labels" // Snippets without a usable automated label
	SignalShortDocuments    SignalType = "short_documents"     // Episodes below the word floor
	SignalClassImbalance    SignalType = "class_imbalance"     // Skewed frame distribution
)

// SignalSeverity indicates how much a signal should worry the reader.
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
