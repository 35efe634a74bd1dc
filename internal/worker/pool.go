package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed on the pool.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one job.
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed set of worker goroutines. Producers may keep
// submitting while a consumer collects: Close ends intake, Wait drains.
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeIn    sync.Once
	closeOut   sync.Once
}

// NewPool creates a pool of the given size, canceled together with parent.
func NewPool(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(parent)
	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2),
		results:    make(chan Result, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It blocks while the queue is full and becomes a
// no-op once the pool is canceled. Typically called from its own goroutine
// with Close at the end:
//
//	go func() {
//		for _, j := range jobs {
//			pool.Submit(j)
//		}
//		pool.Close()
//	}()
//	results := pool.Wait()
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobQueue <- job:
	}
}

// Close signals that no further jobs will be submitted.
func (p *Pool) Close() {
	p.closeIn.Do(func() {
		close(p.jobQueue)
	})
}

// Wait collects results until all submitted jobs are done. Close must be
// called (by the submitter) for Wait to return.
func (p *Pool) Wait() []Result {
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var results []Result
	for result := range p.results {
		results = append(results, result)
	}
	return results
}

// Shutdown cancels outstanding work and releases the workers.
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOut.Do(func() {
		close(p.results)
	})
}
