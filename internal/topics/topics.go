// Package topics fits a Latent Dirichlet Allocation model over normalized
// episode text and summarizes it: top terms per topic, each document's
// dominant topic and each topic's share of the corpus.
package topics

import (
	"fmt"
	"sort"

	"github.com/james-bowman/nlp"
	"gonum.org/v1/gonum/mat"

	"github.com/framescope/framescope/internal/model"
	"github.com/framescope/framescope/internal/text"
)

// Term is one vocabulary entry with its weight within a topic.
type Term struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// Topic summarizes one fitted topic.
type Topic struct {
	ID       int     `json:"id"`
	Terms    []Term  `json:"terms"`     // Top terms, heaviest first
	Share    float64 `json:"share"`     // Fraction of total topic weight
	DocCount int     `json:"doc_count"` // Documents with this dominant topic
}

// DocTopic records a document's dominant topic assignment.
type DocTopic struct {
	EpisodeID string  `json:"episode_id"`
	Topic     int     `json:"topic"`
	Weight    float64 `json:"weight"`
}

// Result is a fitted topic model summary.
type Result struct {
	K      int        `json:"k"`
	Topics []Topic    `json:"topics"`
	Docs   []DocTopic `json:"docs"`
}

// Model fits LDA over the documents' normalized text. Documents that
// normalize to nothing are skipped. Returns an error when no usable text
// remains.
func Model(docs []model.Document, cfg model.TopicsConfig) (*Result, error) {
	if cfg.K <= 0 {
		cfg.K = 8
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 120
	}
	if cfg.TopTerms <= 0 {
		cfg.TopTerms = 10
	}

	var corpus []string
	var ids []string
	for _, doc := range docs {
		normalized := text.NormalizeForMatrix(doc.Text)
		if normalized == "" {
			continue
		}
		corpus = append(corpus, normalized)
		ids = append(ids, doc.EpisodeID)
	}
	if len(corpus) == 0 {
		return nil, fmt.Errorf("topic model: no documents with usable text")
	}

	// Stop words are already removed during normalization, so the
	// vectoriser gets the full remaining vocabulary.
	vectoriser := nlp.NewCountVectoriser()

	lda := nlp.NewLatentDirichletAllocation(cfg.K)
	lda.Iterations = cfg.Iterations
	passes := cfg.Iterations / 2
	if passes < 1 {
		passes = 1
	}
	lda.TransformationPasses = passes
	if cfg.Workers > 0 {
		lda.Processes = cfg.Workers
	}

	pipeline := nlp.NewPipeline(vectoriser, lda)
	docsOverTopics, err := pipeline.FitTransform(corpus...)
	if err != nil {
		return nil, fmt.Errorf("fit topic model: %w", err)
	}
	topicsOverWords := lda.Components()

	result := &Result{
		K:      cfg.K,
		Topics: topTopics(topicsOverWords, vectoriser.Vocabulary, cfg.TopTerms),
		Docs:   dominantTopics(ids, docsOverTopics),
	}

	accumulateShares(result, docsOverTopics)
	return result, nil
}

// topTopics extracts the heaviest terms of each topic from the
// topics-over-words component matrix and the vectoriser vocabulary.
func topTopics(topicsOverWords mat.Matrix, vocabulary map[string]int, topN int) []Topic {
	// Vocabulary maps term to column; invert it for display.
	vocab := make([]string, len(vocabulary))
	for term, col := range vocabulary {
		vocab[col] = term
	}

	rows, cols := topicsOverWords.Dims()
	topics := make([]Topic, rows)
	for topic := 0; topic < rows; topic++ {
		terms := make([]Term, cols)
		for word := 0; word < cols; word++ {
			terms[word] = Term{Term: vocab[word], Weight: topicsOverWords.At(topic, word)}
		}
		sort.Slice(terms, func(i, j int) bool { return terms[i].Weight > terms[j].Weight })

		n := topN
		if n > len(terms) {
			n = len(terms)
		}
		topics[topic] = Topic{ID: topic, Terms: terms[:n]}
	}
	return topics
}

// dominantTopics assigns each document the topic with the highest weight in
// its column of the docs-over-topics matrix.
func dominantTopics(ids []string, docsOverTopics mat.Matrix) []DocTopic {
	rows, cols := docsOverTopics.Dims()
	docs := make([]DocTopic, cols)
	for doc := 0; doc < cols; doc++ {
		winner, best := 0, 0.0
		for topic := 0; topic < rows; topic++ {
			if w := docsOverTopics.At(topic, doc); w > best {
				winner, best = topic, w
			}
		}
		docs[doc] = DocTopic{EpisodeID: ids[doc], Topic: winner, Weight: best}
	}
	return docs
}

// accumulateShares fills in each topic's fraction of the total accumulated
// weight and its dominant-document count.
func accumulateShares(result *Result, docsOverTopics mat.Matrix) {
	rows, cols := docsOverTopics.Dims()
	weights := make([]float64, rows)
	total := 0.0
	for doc := 0; doc < cols; doc++ {
		for topic := 0; topic < rows; topic++ {
			w := docsOverTopics.At(topic, doc)
			weights[topic] += w
			total += w
		}
	}
	for i := range result.Topics {
		if total > 0 {
			result.Topics[i].Share = weights[i] / total
		}
	}
	for _, doc := range result.Docs {
		result.Topics[doc.Topic].DocCount++
	}
}
