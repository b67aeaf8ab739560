// Package pool implements a fixed-size worker pool fed by one shared FIFO
// queue. Workers live until Shutdown; each submitted job runs exactly once on
// exactly one worker.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"dqx0.com/go/web/internal/obs"
)

var (
	ErrInvalidSize = errors.New("pool: worker count must be positive")
	ErrClosed      = errors.New("pool: not accepting jobs")
	ErrQueueFull   = errors.New("pool: queue full")
	ErrNilJob      = errors.New("pool: nil job")
)

// Job is a unit of deferred work.
type Job func()

// Pool is a fixed set of workers consuming Jobs from a shared FIFO queue.
// Execute only appends under a mutex, so a submitter never waits for a job
// to finish.
type Pool struct {
	logger *slog.Logger
	size   int
	limit  int

	mu     sync.Mutex
	ready  *sync.Cond
	queue  []Job
	closed bool

	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Int64
	panics   atomic.Int64
}

// Option configures a Pool.
type Option func(*options)

type options struct {
	queueSize int
	logger    *slog.Logger
}

// WithQueueSize caps the number of queued jobs; Execute then fails with
// ErrQueueFull instead of waiting. Non-positive values leave the queue
// unbounded.
func WithQueueSize(n int) Option {
	return func(o *options) { o.queueSize = n }
}

// WithLogger sets the logger used for worker lifecycle and recovered panics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New starts workers goroutines and returns the pool.
func New(workers int, opts ...Option) (*Pool, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, workers)
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pool{
		logger: obs.OrDiscard(o.logger),
		size:   workers,
		limit:  max(o.queueSize, 0),
	}
	p.ready = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Debug("worker pool started", "workers", workers, "queue_limit", p.limit)
	return p, nil
}

// Execute hands job to the pool and returns immediately. It fails with
// ErrClosed once Shutdown has started and with ErrQueueFull when a queue
// limit is set and reached.
func (p *Pool) Execute(job Job) error {
	if job == nil {
		return ErrNilJob
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.limit > 0 && len(p.queue) >= p.limit {
		return ErrQueueFull
	}
	p.queue = append(p.queue, job)
	p.ready.Signal()
	return nil
}

// Shutdown stops accepting jobs, lets the workers finish everything already
// queued and waits for them to exit. If ctx ends first its error is returned
// and the workers keep draining in the background. Safe to call repeatedly.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		pending := len(p.queue)
		p.ready.Broadcast()
		p.mu.Unlock()
		p.logger.Debug("worker pool shutting down", "pending", pending, "running", p.Running())
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timed out", "pending", p.Pending(), "running", p.Running())
		return ctx.Err()
	}
}

// Size is the fixed number of workers.
func (p *Pool) Size() int { return p.size }

// Pending is the number of queued jobs not yet picked up by a worker.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Running is the number of jobs currently executing.
func (p *Pool) Running() int { return int(p.running.Load()) }

// Panics is the number of jobs that panicked since the pool started.
func (p *Pool) Panics() int64 { return p.panics.Load() }

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		job, ok := p.next()
		if !ok {
			p.logger.Debug("worker stopped", "worker", id)
			return
		}
		p.run(id, job)
	}
}

// next blocks until a job is queued, or reports false once the pool is
// closed and the queue is empty.
func (p *Pool) next() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closed {
		p.ready.Wait()
	}
	if len(p.queue) == 0 {
		return nil, false
	}
	job := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return job, true
}

// run executes one job; a panic is logged and swallowed so the worker survives.
func (p *Pool) run(id int, job Job) {
	p.running.Add(1)
	defer func() {
		p.running.Add(-1)
		if r := recover(); r != nil {
			p.panics.Add(1)
			p.logger.Error("job panicked", "worker", id, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()
	job()
}
