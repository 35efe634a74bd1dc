// Package pipeline orchestrates the snippet stage: relevance filtering,
// window extraction, sentiment scoring and store writes.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/framescope/framescope/internal/cache"
	"github.com/framescope/framescope/internal/extract"
	"github.com/framescope/framescope/internal/match"
	"github.com/framescope/framescope/internal/model"
	"github.com/framescope/framescope/internal/sentiment"
	"github.com/framescope/framescope/internal/store"
	"github.com/framescope/framescope/internal/text"
)

// SnippetPipeline runs documents through the relevance filter and snippet
// extractor and persists the results.
type SnippetPipeline struct {
	patterns  *match.PatternSet
	extractor *extract.Extractor
	scorer    *sentiment.Scorer
	cache     cache.Cache // nil disables caching
	store     *store.Store
	seed      int64
	ttl       time.Duration
	verbose   bool
}

// NewSnippetPipeline builds the pipeline from configuration. The store is
// required; the cache may be nil.
func NewSnippetPipeline(cfg *model.Config, st *store.Store, c cache.Cache, verbose bool) (*SnippetPipeline, error) {
	patterns, err := match.New(cfg.Keywords.Stems)
	if err != nil {
		return nil, fmt.Errorf("build keyword patterns: %w", err)
	}
	extractor, err := extract.NewExtractor(patterns, cfg.Snippet.WindowRadius)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	return &SnippetPipeline{
		patterns:  patterns,
		extractor: extractor,
		scorer:    sentiment.NewScorer(),
		cache:     c,
		store:     st,
		seed:      cfg.Snippet.Seed,
		ttl:       time.Duration(cfg.Cache.TTLHours) * time.Hour,
		verbose:   verbose,
	}, nil
}

// RunSummary reports what a pipeline run did.
type RunSummary struct {
	Documents int
	Relevant  int
	Snippets  int
	CacheHits int
	Warnings  []string // Per-episode anomalies, non-fatal
}

// Run filters and extracts the documents, then persists episodes and
// snippets. Extraction anomalies become warnings; store failures are fatal.
func (p *SnippetPipeline) Run(ctx context.Context, docs []model.Document) (*RunSummary, error) {
	summary := &RunSummary{Documents: len(docs)}
	var snippets []model.Snippet

	for i := range docs {
		doc := &docs[i]
		doc.Relevant = p.patterns.Relevant(text.Words(doc.Text))
		if !doc.Relevant {
			continue
		}
		summary.Relevant++

		snip, ok := p.extractSnippet(doc, summary)
		if !ok {
			// Unified matching makes this possible only for degenerate
			// text; surface it instead of silently dropping the episode.
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("episode %s: relevant but produced no snippet", doc.EpisodeID))
			continue
		}
		snippets = append(snippets, snip)
	}
	summary.Snippets = len(snippets)

	if err := p.store.SaveEpisodes(ctx, docs); err != nil {
		return summary, fmt.Errorf("save episodes: %w", err)
	}
	if err := p.store.SaveSnippets(ctx, snippets); err != nil {
		return summary, fmt.Errorf("save snippets: %w", err)
	}

	return summary, nil
}

// extractSnippet pulls one snippet for the document, consulting the cache
// first. The per-document seed keeps runs reproducible regardless of
// document order.
func (p *SnippetPipeline) extractSnippet(doc *model.Document, summary *RunSummary) (model.Snippet, bool) {
	seed := extract.DocumentSeed(p.seed, doc.EpisodeID)

	var key string
	if p.cache != nil {
		key = cache.SnippetKey(doc.EpisodeID, doc.Text, p.patterns.Stems(), p.extractor.Radius(), seed)
		if snip, ok := cache.GetSnippet(p.cache, key); ok {
			summary.CacheHits++
			return *snip, true
		}
	}

	snip, ok := p.extractor.Extract(doc.Text, seed)
	if !ok {
		return model.Snippet{}, false
	}
	snip.EpisodeID = doc.EpisodeID
	snip.Sentiment = p.scorer.Score(snip.Text)

	if p.cache != nil {
		if err := cache.SetSnippet(p.cache, key, &snip, p.ttl); err != nil && p.verbose {
			fmt.Fprintf(os.Stderr, "  ⚠ cache write for %s: %v\n", doc.EpisodeID, err)
		}
	}
	return snip, true
}
