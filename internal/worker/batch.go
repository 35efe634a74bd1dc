package worker

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/framescope/framescope/internal/model"
)

// Labeler produces one automated label for a snippet.
type Labeler interface {
	LabelSnippet(ctx context.Context, snip model.Snippet) (model.AutoLabel, error)
}

// LabelStore is the persistence surface the batch labeler checkpoints
// through. PendingSnippets returns snippets whose episodes still lack a
// usable automated label, which is what makes interrupted runs resumable.
type LabelStore interface {
	PendingSnippets(ctx context.Context) ([]model.Snippet, error)
	SaveAutoLabels(ctx context.Context, labels []model.AutoLabel) error
}

// Backoff schedule for retried API calls. Package vars so tests can shrink
// them.
var (
	retryBaseDelay = 2 * time.Second
	retryMaxDelay  = 30 * time.Second
)

// retryBackoff returns the extra delay before the given attempt. The first
// attempt pays only the rate-limit delay.
func retryBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	d := retryBaseDelay << (attempt - 1)
	if d > retryMaxDelay {
		d = retryMaxDelay
	}
	return d
}

// LabelJob classifies one snippet, retrying transient API failures.
type LabelJob struct {
	Snippet model.Snippet
	Labeler Labeler
	Limiter *Limiter
	Service string
	Retries int
}

// Execute runs the job. The returned outcome always carries a label: after
// exhausted retries it records the last failure with an empty frame, so the
// episode stays pending for the next run.
func (j *LabelJob) Execute(ctx context.Context) Result {
	attempts := j.Retries
	if attempts < 1 {
		attempts = 1
	}

	var label model.AutoLabel
	var err error

	for attempt := 0; attempt < attempts; attempt++ {
		if waitErr := j.Limiter.WaitWithDelay(ctx, j.Service, retryBackoff(attempt)); waitErr != nil {
			label.EpisodeID = j.Snippet.EpisodeID
			label.Err = waitErr.Error()
			return &LabelOutcome{Label: label, Error: waitErr}
		}

		label, err = j.Labeler.LabelSnippet(ctx, j.Snippet)
		if err == nil {
			return &LabelOutcome{Label: label}
		}
	}

	return &LabelOutcome{Label: label, Error: err}
}

// LabelOutcome is the result of one label job
type LabelOutcome struct {
	Label model.AutoLabel
	Error error
}

// GetError returns the error from the label outcome
func (r *LabelOutcome) GetError() error {
	return r.Error
}

// BatchOptions configures a labeling run.
type BatchOptions struct {
	Service   string        // Rate-limit key, defaults to the provider name
	BatchSize int           // Episodes per checkpoint
	Workers   int           // Concurrent label calls
	MinDelay  time.Duration // Minimum spacing between API calls
	Retries   int           // Attempts per episode
	Verbose   bool          // Per-batch progress on stderr
}

// BatchLabeler labels pending snippets in checkpointed batches. Each batch
// is persisted before the next one starts, so an interrupted run loses at
// most one batch of API calls and a resumed run reprocesses only episodes
// that still lack a label.
type BatchLabeler struct {
	labeler Labeler
	store   LabelStore
	limiter *Limiter
	opts    BatchOptions
}

// NewBatchLabeler creates a batch labeler with normalized options.
func NewBatchLabeler(labeler Labeler, store LabelStore, opts BatchOptions) *BatchLabeler {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	if opts.Service == "" {
		opts.Service = "llm"
	}

	return &BatchLabeler{
		labeler: labeler,
		store:   store,
		limiter: NewLimiter(opts.MinDelay),
		opts:    opts,
	}
}

// BatchSummary reports what a labeling run did.
type BatchSummary struct {
	Pending int // Episodes that needed a label at the start
	Batches int // Batches persisted
	Labeled int // Episodes that received a closed-set frame
	Failed  int // Episodes recorded without a usable label
}

// Run labels every pending snippet. API failures never abort the run; they
// are persisted as missing labels. A store write failure does abort, since
// continuing would burn API calls that could not be checkpointed.
func (b *BatchLabeler) Run(ctx context.Context) (*BatchSummary, error) {
	pending, err := b.store.PendingSnippets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending snippets: %w", err)
	}

	summary := &BatchSummary{Pending: len(pending)}
	if len(pending) == 0 {
		return summary, nil
	}

	total := (len(pending) + b.opts.BatchSize - 1) / b.opts.BatchSize
	for start := 0; start < len(pending); start += b.opts.BatchSize {
		end := start + b.opts.BatchSize
		if end > len(pending) {
			end = len(pending)
		}

		labels, labeled, failed := b.runBatch(ctx, pending[start:end])
		summary.Labeled += labeled
		summary.Failed += failed

		if len(labels) > 0 {
			if err := b.store.SaveAutoLabels(ctx, labels); err != nil {
				return summary, fmt.Errorf("checkpoint batch %d: %w", summary.Batches+1, err)
			}
			summary.Batches++
		}

		if b.opts.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Batch %d/%d: %d labeled, %d failed\n", summary.Batches, total, labeled, failed)
		}

		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
	}

	return summary, nil
}

// runBatch labels one batch on the worker pool.
func (b *BatchLabeler) runBatch(ctx context.Context, batch []model.Snippet) ([]model.AutoLabel, int, int) {
	pool := NewPool(ctx, b.opts.Workers)
	pool.Start()

	go func() {
		for _, snip := range batch {
			pool.Submit(&LabelJob{
				Snippet: snip,
				Labeler: b.labeler,
				Limiter: b.limiter,
				Service: b.opts.Service,
				Retries: b.opts.Retries,
			})
		}
		pool.Close()
	}()

	results := pool.Wait()

	labels := make([]model.AutoLabel, 0, len(results))
	labeled, failed := 0, 0
	for _, result := range results {
		outcome := result.(*LabelOutcome)
		labels = append(labels, outcome.Label)
		if outcome.Label.Labeled() {
			labeled++
		} else {
			failed++
		}
	}
	return labels, labeled, failed
}
