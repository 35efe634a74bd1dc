package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/framescope/framescope/internal/model"
)

// mockLabeler implements Labeler with per-episode scripted failures
type mockLabeler struct {
	mu       sync.Mutex
	failures map[string]int // remaining failures per episode
	failAll  bool
	calls    map[string]int
}

func newMockLabeler() *mockLabeler {
	return &mockLabeler{
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
}

func (m *mockLabeler) LabelSnippet(ctx context.Context, snip model.Snippet) (model.AutoLabel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[snip.EpisodeID]++

	if m.failAll || m.failures[snip.EpisodeID] > 0 {
		m.failures[snip.EpisodeID]--
		return model.AutoLabel{
			EpisodeID: snip.EpisodeID,
			Err:       "API unavailable",
		}, errors.New("API unavailable")
	}

	return model.AutoLabel{
		EpisodeID: snip.EpisodeID,
		Frame:     model.FrameSecurity,
		Provider:  "mock",
		LabeledAt: time.Now(),
	}, nil
}

func (m *mockLabeler) callCount(episodeID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[episodeID]
}

// memLabelStore implements LabelStore in memory
type memLabelStore struct {
	mu       sync.Mutex
	pending  []model.Snippet
	saves    [][]model.AutoLabel
	failSave bool
}

func (s *memLabelStore) PendingSnippets(ctx context.Context) ([]model.Snippet, error) {
	return s.pending, nil
}

func (s *memLabelStore) SaveAutoLabels(ctx context.Context, labels []model.AutoLabel) error {
	if s.failSave {
		return errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := make([]model.AutoLabel, len(labels))
	copy(saved, labels)
	s.saves = append(s.saves, saved)
	return nil
}

func (s *memLabelStore) savedLabels() []model.AutoLabel {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.AutoLabel
	for _, batch := range s.saves {
		all = append(all, batch...)
	}
	return all
}

func pendingSnippets(n int) []model.Snippet {
	snips := make([]model.Snippet, n)
	for i := range snips {
		snips[i] = model.Snippet{
			EpisodeID: string(rune('a' + i)),
			Text:      "migrants near the border",
		}
	}
	return snips
}

func TestBatchLabeler_Run_LabelsAllPending(t *testing.T) {
	store := &memLabelStore{pending: pendingSnippets(5)}
	labeler := newMockLabeler()

	bl := NewBatchLabeler(labeler, store, BatchOptions{BatchSize: 2, Workers: 2})

	summary, err := bl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Pending != 5 {
		t.Errorf("expected 5 pending, got %d", summary.Pending)
	}
	if summary.Labeled != 5 {
		t.Errorf("expected 5 labeled, got %d", summary.Labeled)
	}
	if summary.Failed != 0 {
		t.Errorf("expected 0 failed, got %d", summary.Failed)
	}
	if summary.Batches != 3 {
		t.Errorf("expected 3 checkpointed batches, got %d", summary.Batches)
	}

	if got := len(store.savedLabels()); got != 5 {
		t.Errorf("expected 5 persisted labels, got %d", got)
	}
	// Each checkpoint write happens before the next batch starts
	if len(store.saves) != 3 {
		t.Errorf("expected 3 store writes, got %d", len(store.saves))
	}
}

func TestBatchLabeler_Run_FailuresRecordedNotFatal(t *testing.T) {
	store := &memLabelStore{pending: pendingSnippets(3)}
	labeler := newMockLabeler()
	labeler.failures["a"] = 100 // episode "a" always fails

	bl := NewBatchLabeler(labeler, store, BatchOptions{BatchSize: 10, Workers: 1, Retries: 1})

	summary, err := bl.Run(context.Background())
	if err != nil {
		t.Fatalf("API failures must not abort the run: %v", err)
	}

	if summary.Labeled != 2 {
		t.Errorf("expected 2 labeled, got %d", summary.Labeled)
	}
	if summary.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", summary.Failed)
	}

	// The failed episode is persisted with an empty frame so a resumed run
	// sees it as pending again.
	var failedLabel *model.AutoLabel
	for _, label := range store.savedLabels() {
		if label.EpisodeID == "a" {
			l := label
			failedLabel = &l
		}
	}
	if failedLabel == nil {
		t.Fatal("expected the failed episode to be persisted")
	}
	if failedLabel.Frame != "" {
		t.Errorf("expected empty frame for failed episode, got %s", failedLabel.Frame)
	}
	if failedLabel.Err == "" {
		t.Error("expected failure message on the persisted label")
	}
}

func TestBatchLabeler_Run_RetriesTransientFailures(t *testing.T) {
	oldBase := retryBaseDelay
	retryBaseDelay = 0
	defer func() { retryBaseDelay = oldBase }()

	store := &memLabelStore{pending: pendingSnippets(1)}
	labeler := newMockLabeler()
	labeler.failures["a"] = 2 // fails twice, succeeds on the third attempt

	bl := NewBatchLabeler(labeler, store, BatchOptions{BatchSize: 10, Workers: 1, Retries: 3})

	summary, err := bl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Labeled != 1 {
		t.Errorf("expected 1 labeled after retries, got %d", summary.Labeled)
	}
	if calls := labeler.callCount("a"); calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestBatchLabeler_Run_CheckpointWriteFatal(t *testing.T) {
	store := &memLabelStore{pending: pendingSnippets(2), failSave: true}
	labeler := newMockLabeler()

	bl := NewBatchLabeler(labeler, store, BatchOptions{BatchSize: 10, Workers: 1})

	_, err := bl.Run(context.Background())
	if err == nil {
		t.Fatal("expected error when checkpoint write fails")
	}
}

func TestBatchLabeler_Run_NothingPending(t *testing.T) {
	store := &memLabelStore{}
	labeler := newMockLabeler()

	bl := NewBatchLabeler(labeler, store, BatchOptions{})

	summary, err := bl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Pending != 0 || summary.Batches != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
	if len(store.saves) != 0 {
		t.Errorf("expected no store writes, got %d", len(store.saves))
	}
}

func TestLabelJob_Execute_ExhaustedRetries(t *testing.T) {
	oldBase := retryBaseDelay
	retryBaseDelay = 0
	defer func() { retryBaseDelay = oldBase }()

	labeler := newMockLabeler()
	labeler.failAll = true

	job := &LabelJob{
		Snippet: model.Snippet{EpisodeID: "a", Text: "text"},
		Labeler: labeler,
		Limiter: NewLimiter(0),
		Service: "mock",
		Retries: 2,
	}

	result := job.Execute(context.Background())
	if result.GetError() == nil {
		t.Fatal("expected error after exhausted retries")
	}

	outcome := result.(*LabelOutcome)
	if outcome.Label.EpisodeID != "a" {
		t.Errorf("expected label for episode a, got %q", outcome.Label.EpisodeID)
	}
	if outcome.Label.Err == "" {
		t.Error("expected failure recorded on the label")
	}
	if calls := labeler.callCount("a"); calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestRetryBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // capped
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := retryBackoff(tt.attempt); got != tt.want {
			t.Errorf("retryBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
