// Package features builds document-feature matrices from normalized text.
package features

import (
	"fmt"

	"github.com/james-bowman/nlp"
	"gonum.org/v1/gonum/mat"
)

// Vectorizer turns normalized documents into a term-frequency (optionally
// tf-idf weighted) matrix with terms as rows and documents as columns.
//
// Transform on a fitted Vectorizer restricts input to the fitted
// vocabulary: unseen terms are dropped and absent terms stay zero, which is
// how held-out documents are aligned to a training vocabulary during
// evaluation. A held-out document with no in-vocabulary terms becomes a
// zero column, not an error.
type Vectorizer struct {
	vect   *nlp.CountVectoriser
	tfidf  *nlp.TfidfTransformer
	fitted bool
}

// NewVectorizer returns an unfitted Vectorizer. Stop word removal and
// stemming happen upstream in the text package, so the vectoriser itself
// filters nothing.
func NewVectorizer(tfidf bool) *Vectorizer {
	v := &Vectorizer{vect: nlp.NewCountVectoriser()}
	if tfidf {
		v.tfidf = nlp.NewTfidfTransformer()
	}
	return v
}

// Fit learns the vocabulary of docs.
func (v *Vectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return fmt.Errorf("vectorizer: fit on empty document set")
	}
	v.vect.Fit(docs...)
	if v.tfidf != nil {
		counts, err := v.vect.Transform(docs...)
		if err != nil {
			return fmt.Errorf("vectorizer: count transform: %w", err)
		}
		v.tfidf.Fit(counts)
	}
	v.fitted = true
	return nil
}

// Transform maps docs onto the fitted vocabulary.
func (v *Vectorizer) Transform(docs []string) (mat.Matrix, error) {
	if !v.fitted {
		return nil, fmt.Errorf("vectorizer: transform before fit")
	}
	m, err := v.vect.Transform(docs...)
	if err != nil {
		return nil, fmt.Errorf("vectorizer: transform: %w", err)
	}
	if v.tfidf != nil {
		if m, err = v.tfidf.Transform(m); err != nil {
			return nil, fmt.Errorf("vectorizer: tfidf transform: %w", err)
		}
	}
	return m, nil
}

// FitTransform fits on docs and returns their matrix.
func (v *Vectorizer) FitTransform(docs []string) (mat.Matrix, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs)
}

// NumTerms returns the fitted vocabulary size.
func (v *Vectorizer) NumTerms() int {
	return len(v.vect.Vocabulary)
}

// Vocabulary exposes the fitted term-to-row map. Callers must not modify it.
func (v *Vectorizer) Vocabulary() map[string]int {
	return v.vect.Vocabulary
}

// Terms returns the vocabulary inverted into row order, so Terms()[i] names
// row i of a transformed matrix.
func (v *Vectorizer) Terms() []string {
	terms := make([]string, len(v.vect.Vocabulary))
	for term, i := range v.vect.Vocabulary {
		terms[i] = term
	}
	return terms
}

// Column extracts column j of m as a dense vector. Works for any matrix
// implementation, sparse included.
func Column(m mat.Matrix, j int) *mat.VecDense {
	r, _ := m.Dims()
	data := mat.Col(nil, j, m)
	return mat.NewVecDense(r, data)
}
