/*
Package worker runs batches of tasks on a fixed number of goroutines with
optional rate limiting, reporting each finished task through a completion
hook. termbar uses it to drive one progress bar from many concurrent jobs.

Basic usage:

	pool, err := worker.NewPool(worker.Config{
		Workers:   4,
		RateLimit: 10, // 10 task starts/sec
		OnDone: func(r worker.Result) {
			bar.Increment()
		},
	})

	ctx := context.Background()
	pool.Start(ctx)

	pool.Submit(worker.Task{
		ID: 1,
		Execute: func(ctx context.Context) (worker.Result, error) {
			return worker.Result{ID: 1, Data: "processed"}, nil
		},
	})

	results, err := pool.Wait()

OnDone is never called concurrently with itself, so it may touch state that
is not safe for concurrent use.
*/
package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ErrPoolNotStarted is returned when tasks are submitted or awaited on a
// pool that was never started.
var ErrPoolNotStarted = errors.New("pool not started")

// Task represents a unit of work to be processed by the worker pool
type Task struct {
	// ID identifies the task in results and errors
	ID int

	// Execute performs the work. It receives the pool context for cancellation.
	Execute func(context.Context) (Result, error)
}

// Result represents the output of a processed task
type Result struct {
	// ID matches the task ID that produced this result
	ID int

	// Data holds the task's output
	Data interface{}

	// Err is the error returned by the task, if any
	Err error

	// Duration is the wall time spent in Execute
	Duration time.Duration

	// order is used internally to maintain submission order
	order int
}

// Config holds the configuration for the worker pool
type Config struct {
	// Workers is the number of concurrent workers
	Workers int

	// RateLimit is the maximum number of task starts per second (0 for unlimited)
	RateLimit int

	// OnDone is called once per finished task, failed or not
	OnDone func(Result)
}

// Pool defines the interface for a worker pool
type Pool interface {
	// Start initializes and starts the worker pool
	Start(context.Context) error

	// Submit adds a task to the pool for processing
	Submit(Task) error

	// Wait blocks until all submitted tasks are processed and returns every
	// result in submission order. The error joins all task failures.
	Wait() ([]Result, error)

	// GetStats returns current statistics about the pool
	GetStats() Stats

	// Status returns the current status of the pool
	Status() Status

	// Stop cancels outstanding work and shuts the pool down
	Stop() error
}

// pool implements the Pool interface
type pool struct {
	config  Config
	tasks   chan taskWithOrder
	limiter *rate.Limiter
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.RWMutex
	started bool
	closed  bool
	stopped bool

	resultsMu sync.Mutex
	results   []Result
	completed int
	failed    int

	doneMu sync.Mutex

	startTime     time.Time
	activeWorkers atomic.Int32
	taskOrder     atomic.Int64
}

type taskWithOrder struct {
	Task
	order int
}

// NewPool creates a new worker pool with the given configuration
func NewPool(config Config) (Pool, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return &pool{
		config:  config,
		tasks:   make(chan taskWithOrder, config.Workers*2),
		limiter: limiter,
	}, nil
}

// validateConfig checks if the pool configuration is valid
func validateConfig(config Config) error {
	if config.Workers <= 0 {
		return fmt.Errorf("number of workers must be positive")
	}
	if config.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}
	return nil
}

// Start initializes and starts the worker pool
func (p *pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("pool already started")
	}
	if p.stopped {
		return fmt.Errorf("pool already stopped")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started = true
	p.startTime = time.Now()

	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return nil
}

// Submit adds a task to the pool for processing
func (p *pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if p.closed {
		return fmt.Errorf("pool is no longer accepting tasks")
	}

	order := int(p.taskOrder.Add(1) - 1)

	select {
	case <-p.ctx.Done():
		return fmt.Errorf("pool is shutting down: %w", p.ctx.Err())
	case p.tasks <- taskWithOrder{task, order}:
		return nil
	}
}

// Wait blocks until all submitted tasks are processed
func (p *pool) Wait() ([]Result, error) {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil, ErrPoolNotStarted
	}
	p.closeTasks()
	p.mu.Unlock()

	p.wg.Wait()

	p.resultsMu.Lock()
	results := make([]Result, len(p.results))
	copy(results, p.results)
	p.resultsMu.Unlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].order < results[j].order
	})

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("task %d failed: %w", r.ID, r.Err))
		}
	}

	return results, errors.Join(errs...)
}

// Stop cancels the pool context and waits briefly for workers to exit
func (p *pool) Stop() error {
	// Cancel first so a Submit blocked on a full queue releases its read lock.
	p.mu.RLock()
	cancel := p.cancel
	p.mu.RUnlock()
	if cancel != nil {
		cancel()
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.cancel()
	p.closeTasks()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(500 * time.Millisecond):
		return fmt.Errorf("shutdown timed out")
	}
}

// closeTasks must be called with p.mu held.
func (p *pool) closeTasks() {
	if !p.closed {
		close(p.tasks)
		p.closed = true
	}
}

func (p *pool) GetStats() Stats {
	p.resultsMu.Lock()
	completed, failed := p.completed, p.failed
	p.resultsMu.Unlock()

	var uptime time.Duration
	if !p.startTime.IsZero() {
		uptime = time.Since(p.startTime)
	}

	return Stats{
		ActiveWorkers:  int(p.activeWorkers.Load()),
		QueuedTasks:    len(p.tasks),
		CompletedTasks: completed,
		FailedTasks:    failed,
		Status:         p.Status(),
		Uptime:         uptime,
	}
}

func (p *pool) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started || p.stopped {
		return StatusStopped
	}
	if p.activeWorkers.Load() > 0 || len(p.tasks) > 0 {
		return StatusProcessing
	}
	return StatusIdle
}

// worker processes tasks until the queue is closed. Tasks still queued after
// cancellation are recorded as failed with the context error.
func (p *pool) worker() {
	defer p.wg.Done()

	for t := range p.tasks {
		p.activeWorkers.Add(1)
		p.record(p.run(t))
		p.activeWorkers.Add(-1)
	}
}

func (p *pool) run(t taskWithOrder) Result {
	if p.limiter != nil {
		if err := p.limiter.Wait(p.ctx); err != nil {
			return Result{ID: t.ID, Err: fmt.Errorf("rate limiter: %w", err), order: t.order}
		}
	}
	if err := p.ctx.Err(); err != nil {
		return Result{ID: t.ID, Err: err, order: t.order}
	}

	start := time.Now()
	result, err := t.Execute(p.ctx)
	result.ID = t.ID
	result.Duration = time.Since(start)
	result.order = t.order
	if err != nil {
		result.Err = err
	}
	return result
}

func (p *pool) record(r Result) {
	p.resultsMu.Lock()
	p.results = append(p.results, r)
	if r.Err != nil {
		p.failed++
	} else {
		p.completed++
	}
	p.resultsMu.Unlock()

	if p.config.OnDone != nil {
		p.doneMu.Lock()
		p.config.OnDone(r)
		p.doneMu.Unlock()
	}
}
