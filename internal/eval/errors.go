// Package eval cross-validates classifier backends over labeled snippets.
package eval

import "fmt"

// InsufficientDataError means a fold's training partition cannot satisfy
// the backend's class-representation requirement, so the evaluation run as
// a whole is not meaningful.
type InsufficientDataError struct {
	Fold int // fold index, -1 when the whole sample is too small
	Have int // distinct classes present (or examples, when Fold is -1)
	Need int
}

func (e *InsufficientDataError) Error() string {
	if e.Fold < 0 {
		return fmt.Sprintf("insufficient data: %d examples, need at least %d", e.Have, e.Need)
	}
	return fmt.Sprintf("insufficient data in fold %d: training partition has %d distinct classes, backend needs %d", e.Fold, e.Have, e.Need)
}

// FeatureMismatchError means a held-out feature vector could not be aligned
// to the training vocabulary.
type FeatureMismatchError struct {
	Got  int
	Want int
}

func (e *FeatureMismatchError) Error() string {
	return fmt.Sprintf("feature mismatch: held-out vector has %d terms, training vocabulary has %d", e.Got, e.Want)
}
