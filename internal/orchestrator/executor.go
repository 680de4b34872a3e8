package orchestrator

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrQueueFull is returned when the executor's backlog is at capacity.
var ErrQueueFull = errors.New("executor queue is full")

// ErrShuttingDown is returned for submissions after Shutdown has begun.
var ErrShuttingDown = errors.New("executor is shutting down")

// Task is one unit of background work. The context it receives is the
// executor's own, not a request context; a task runs to completion once
// started.
type Task func(ctx context.Context)

// Executor runs submitted tasks on a fixed worker pool. Submission either
// enqueues the task (it will be started at least once) or fails outright;
// there is no silent drop path.
type Executor interface {
	Submit(task Task) error
	Shutdown()
}

type executor struct {
	tasks  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewExecutor starts workers goroutines draining a queue of queueDepth.
func NewExecutor(workers, queueDepth int) Executor {
	if workers <= 0 {
		workers = 1
	}
	if queueDepth <= 0 {
		queueDepth = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &executor{
		tasks:  make(chan Task, queueDepth),
		ctx:    ctx,
		cancel: cancel,
	}

	e.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go e.worker(i)
	}

	log.Info().Int("workers", workers).Int("queueDepth", queueDepth).Msg("Task executor started")
	return e
}

func (e *executor) worker(id int) {
	defer e.wg.Done()

	for task := range e.tasks {
		e.runTask(id, task)
	}
}

func (e *executor) runTask(worker int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int("worker", worker).Interface("panic", r).Msg("Task panicked")
		}
	}()

	task(e.ctx)
}

// Submit implements Executor
func (e *executor) Submit(task Task) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrShuttingDown
	}

	select {
	case e.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting work and waits for queued tasks to drain.
func (e *executor) Shutdown() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.tasks)
	e.mu.Unlock()

	e.wg.Wait()
	e.cancel()
	log.Info().Msg("Task executor stopped")
}
