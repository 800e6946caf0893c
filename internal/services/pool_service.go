package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrAlreadyQueued = errors.New("task is already queued for dispatch")
	ErrQueueFull     = errors.New("dispatch queue is full")
	ErrPoolClosed    = errors.New("dispatch pool is shut down")
)

const defaultJobTimeout = 30 * time.Second

// Dispatcher delivers the reminder of one task.
type Dispatcher interface {
	Dispatch(ctx context.Context, taskID string) DispatchOutcome
}

// PoolService runs dispatch jobs on a fixed set of workers. A task id is held
// in the pool at most once from enqueue until its job finishes.
type PoolService struct {
	queue      chan string
	wg         sync.WaitGroup
	enqueued   sync.Map
	dispatcher Dispatcher
	logger     *zap.Logger
	jobTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

type PoolOption func(*PoolService)

// WithJobTimeout bounds the time a single dispatch job may take.
func WithJobTimeout(timeout time.Duration) PoolOption {
	return func(p *PoolService) {
		if timeout > 0 {
			p.jobTimeout = timeout
		}
	}
}

func NewPoolService(dispatcher Dispatcher, workers int, queueSize int, logger *zap.Logger, opts ...PoolOption) *PoolService {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &PoolService{
		queue:      make(chan string, queueSize),
		dispatcher: dispatcher,
		logger:     logger,
		jobTimeout: defaultJobTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := 1; i <= workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

// Enqueue schedules a dispatch job for taskID without blocking.
func (p *PoolService) Enqueue(taskID string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	return p.enqueueIfNotPresent(taskID)
}

func (p *PoolService) worker(workerID int) {
	defer p.wg.Done()

	p.logger.Debug("dispatch worker started", zap.Int("worker", workerID))

	for taskID := range p.queue {
		p.handleTask(workerID, taskID)
	}

	p.logger.Debug("dispatch worker stopped", zap.Int("worker", workerID))
}

func (p *PoolService) handleTask(workerID int, taskID string) {
	defer p.untrackEnqueued(taskID)

	ctx, cancel := context.WithTimeout(context.Background(), p.jobTimeout)
	defer cancel()

	outcome := p.dispatcher.Dispatch(ctx, taskID)

	p.logger.Info("task dispatched",
		zap.Int("worker", workerID),
		zap.String("task_id", taskID),
		zap.Stringer("outcome", outcome),
	)
}

func (p *PoolService) enqueueIfNotPresent(taskID string) error {
	if !p.trackEnqueued(taskID) {
		return ErrAlreadyQueued
	}

	select {
	case p.queue <- taskID:
		return nil
	default:
		p.untrackEnqueued(taskID)
		return ErrQueueFull
	}
}

func (p *PoolService) trackEnqueued(taskID string) bool {
	_, loaded := p.enqueued.LoadOrStore(taskID, struct{}{})
	return !loaded
}

func (p *PoolService) untrackEnqueued(taskID string) {
	p.enqueued.Delete(taskID)
}

// Shutdown stops accepting jobs and waits for queued and running jobs to
// finish or for ctx to end, whichever comes first.
func (p *PoolService) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("dispatch pool shut down cleanly")
	case <-ctx.Done():
		p.logger.Warn("dispatch pool shutdown timed out")
	}
}
