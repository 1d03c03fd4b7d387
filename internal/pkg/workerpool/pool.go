package workerpool

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Job func(ctx context.Context)

type WorkerPool struct {
	queue  chan Job
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	logger *zap.Logger
}

// NewWorkerPool starts workerCount workers that stop when ctx is done or
// the pool is shut down.
func NewWorkerPool(ctx context.Context, workerCount int, queueSize int, logger *zap.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	pool := &WorkerPool{
		queue:  make(chan Job, queueSize),
		logger: logger,
	}

	pool.wg.Add(workerCount)
	for range workerCount {
		go pool.worker(ctx)
	}

	return pool
}

func (p *WorkerPool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Worker received shutdown signal")
			return
		case job, ok := <-p.queue:
			if !ok {
				// queue closed
				return
			}
			job(ctx)
		}
	}
}

// Submit enqueues job without blocking. It reports false when the queue is
// full or the pool is shut down.
func (p *WorkerPool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Warn("Worker pool is shut down, job dropped")
		return false
	}

	select {
	case p.queue <- job:
		return true
	default:
		p.logger.Warn("Worker pool queue full, job dropped")
		return false
	}
}

// Shutdown stops accepting jobs and waits for the queued ones until ctx
// expires.
func (p *WorkerPool) Shutdown(ctx context.Context) {
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
	case <-ctx.Done():
		p.logger.Warn("Worker pool shutdown timed out")
	case <-done:
		p.logger.Info("Worker pool shutdown complete")
	}
}

// WithRetry runs job up to retries times, sleeping delay between failed
// attempts.
func WithRetry(logger *zap.Logger, name string, retries int, delay time.Duration, job func(ctx context.Context) error) Job {
	return func(ctx context.Context) {
		for i := range retries {
			if ctx.Err() != nil {
				logger.Warn("Job canceled before execution", zap.String("job", name))
				return
			}

			err := job(ctx)

			if err == nil {
				return // success
			}
			logger.Warn("Job failed",
				zap.String("job", name),
				zap.Int("attempt", i+1),
				zap.Int("retries", retries),
				zap.Error(err))

			if i == retries-1 {
				break
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
		logger.Error("Job failed after max retries", zap.String("job", name))
	}
}
