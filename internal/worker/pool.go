package worker

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool closed")

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context) Result

// Execute calls f.
func (f JobFunc) Execute(ctx context.Context) Result {
	return f(ctx)
}

// Pool runs jobs on a fixed number of long-lived workers. Every result is
// passed to the handler given at construction, from the worker goroutine.
type Pool struct {
	workers    int
	jobQueue   chan Job
	handler    func(Result)
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc

	mu      sync.RWMutex
	closed  bool
	started bool
}

// NewPool creates a pool with the given worker count and queue depth. A nil
// handler discards results.
func NewPool(workers, queueSize int, handler func(Result)) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers * 2
	}
	if handler == nil {
		handler = func(Result) {}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, queueSize),
		handler:    handler,
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers. Calling it twice has no effect.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
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
			p.handler(job.Execute(p.ctx))
		}
	}
}

// Submit queues a job, blocking while the queue is full. It returns
// ErrPoolClosed after Close or Shutdown and ctx.Err() if ctx ends first.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	case p.jobQueue <- job:
		return nil
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (p *Pool) Close() {
	if !p.markClosed() {
		return
	}
	close(p.jobQueue)
	p.wg.Wait()
	p.cancelFunc()
}

// Shutdown stops the pool immediately. Running jobs see a cancelled context
// and queued jobs are dropped.
func (p *Pool) Shutdown() {
	p.cancelFunc()
	if p.markClosed() {
		close(p.jobQueue)
	}
	p.wg.Wait()
}

func (p *Pool) markClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.closed = true
	return true
}
