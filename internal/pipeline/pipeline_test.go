package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/framescope/framescope/internal/cache"
	"github.com/framescope/framescope/internal/model"
	"github.com/framescope/framescope/internal/store"
)

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Keywords.Stems = []string{"migrant", "asylum"}
	cfg.Snippet.WindowRadius = 3
	cfg.Snippet.Seed = 42
	return cfg
}

func openPipelineStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "dataset.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSnippetPipelineRun(t *testing.T) {
	st := openPipelineStore(t)
	p, err := NewSnippetPipeline(testConfig(), st, nil, false)
	if err != nil {
		t.Fatalf("NewSnippetPipeline failed: %v", err)
	}

	docs := []model.Document{
		{
			EpisodeID: "ep-001",
			Text:      "border patrol detained several migrants near the asylum office",
		},
		{
			EpisodeID: "ep-002",
			Text:      "the weather stayed dry across the region all week",
		},
	}

	summary, err := p.Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Documents != 2 || summary.Relevant != 1 || summary.Snippets != 1 {
		t.Errorf("summary = %+v, want 2 documents, 1 relevant, 1 snippet", summary)
	}
	if len(summary.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", summary.Warnings)
	}

	ctx := context.Background()
	episodes, err := st.Episodes(ctx)
	if err != nil {
		t.Fatalf("Episodes failed: %v", err)
	}
	if len(episodes) != 2 {
		t.Fatalf("expected 2 stored episodes, got %d", len(episodes))
	}
	if !episodes[0].Relevant || episodes[1].Relevant {
		t.Errorf("relevance flags not persisted: %+v", episodes)
	}

	snips, err := st.Snippets(ctx)
	if err != nil {
		t.Fatalf("Snippets failed: %v", err)
	}
	if len(snips) != 1 {
		t.Fatalf("expected 1 stored snippet, got %d", len(snips))
	}
	snip := snips[0]
	if snip.EpisodeID != "ep-001" {
		t.Errorf("snippet episode = %s", snip.EpisodeID)
	}
	// Both hits sit within one merged radius-3 window.
	if snip.MatchCount != 2 {
		t.Errorf("match count = %d, want 2", snip.MatchCount)
	}
	if snip.Text == "" {
		t.Error("snippet text empty")
	}
}

func TestSnippetPipelineDeterministic(t *testing.T) {
	// Hits land at word positions 2, 12 and 22, far enough apart that the
	// radius-3 windows never merge and the seeded draw has real choices.
	docs := []model.Document{
		{EpisodeID: "ep-001", Text: "talk about migrants then a long stretch of filler words here before asylum seekers come up and then more filler words before migrants again at the end"},
	}

	run := func() model.Snippet {
		st := openPipelineStore(t)
		p, err := NewSnippetPipeline(testConfig(), st, nil, false)
		if err != nil {
			t.Fatalf("NewSnippetPipeline failed: %v", err)
		}
		if _, err := p.Run(context.Background(), append([]model.Document{}, docs...)); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		snips, err := st.Snippets(context.Background())
		if err != nil || len(snips) != 1 {
			t.Fatalf("expected 1 snippet, got %d (err %v)", len(snips), err)
		}
		return snips[0]
	}

	first := run()
	second := run()
	if first.Text != second.Text || first.Window != second.Window {
		t.Errorf("same seed produced different snippets:\n%+v\n%+v", first, second)
	}
}

func TestSnippetPipelineCache(t *testing.T) {
	st := openPipelineStore(t)
	mem := cache.NewMemoryCache(time.Hour, time.Hour)
	p, err := NewSnippetPipeline(testConfig(), st, mem, false)
	if err != nil {
		t.Fatalf("NewSnippetPipeline failed: %v", err)
	}

	docs := []model.Document{
		{EpisodeID: "ep-001", Text: "border patrol detained several migrants near the asylum office"},
	}

	summary, err := p.Run(context.Background(), append([]model.Document{}, docs...))
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if summary.CacheHits != 0 {
		t.Errorf("first run should miss the cache, got %d hits", summary.CacheHits)
	}

	summary, err = p.Run(context.Background(), append([]model.Document{}, docs...))
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if summary.CacheHits != 1 {
		t.Errorf("second run should hit the cache, got %d hits", summary.CacheHits)
	}
	if summary.Snippets != 1 {
		t.Errorf("cached run still extracts %d snippets, want 1", summary.Snippets)
	}
}

func TestSnippetPipelineEmptyInput(t *testing.T) {
	st := openPipelineStore(t)
	p, err := NewSnippetPipeline(testConfig(), st, nil, false)
	if err != nil {
		t.Fatalf("NewSnippetPipeline failed: %v", err)
	}

	summary, err := p.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed on empty input: %v", err)
	}
	if summary.Documents != 0 || summary.Snippets != 0 {
		t.Errorf("empty input summary = %+v", summary)
	}
}

func TestSnippetPipelineBadConfig(t *testing.T) {
	st := openPipelineStore(t)

	cfg := testConfig()
	cfg.Keywords.Stems = nil
	if _, err := NewSnippetPipeline(cfg, st, nil, false); err == nil {
		t.Error("expected error for empty keyword stems")
	}

	cfg = testConfig()
	cfg.Snippet.WindowRadius = 0
	if _, err := NewSnippetPipeline(cfg, st, nil, false); err == nil {
		t.Error("expected error for zero window radius")
	}
}
