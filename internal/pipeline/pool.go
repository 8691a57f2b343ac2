package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"autosub/internal/jobs"
	"autosub/internal/logging"
	"autosub/internal/services"
)

// queued pairs a persisted job with its validated request.
type queued struct {
	job *jobs.Job
	req Request
}

// Pool runs jobs through an orchestrator on a fixed number of workers.
// Submission is non-blocking: a full queue rejects the job rather than
// stalling the caller.
type Pool struct {
	orchestrator *Orchestrator
	queue        chan queued
	workers      int
	logger       *slog.Logger

	startOnce sync.Once
	wg        sync.WaitGroup
}

// NewPool sizes a pool. workers and queueSize below 1 are clamped to 1.
func NewPool(orchestrator *Orchestrator, workers, queueSize int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		orchestrator: orchestrator,
		queue:        make(chan queued, queueSize),
		workers:      workers,
		logger:       logging.NewComponentLogger(logger, "pool"),
	}
}

// Start launches the workers. It is safe to call once; Submit before Start
// only queues.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.worker(ctx)
		}
	})
}

// Submit queues a job for execution.
func (p *Pool) Submit(job *jobs.Job, req Request) error {
	select {
	case p.queue <- queued{job: job, req: req}:
		return nil
	default:
		return services.Wrap(services.ErrValidation, "pipeline", "submit", "job queue is full", nil)
	}
}

// Wait blocks until the workers have drained and exited. Close the pool's
// context first.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-p.queue:
			if err := p.orchestrator.Run(ctx, item.job, item.req); err != nil && p.logger != nil {
				p.logger.Error("job run failed",
					logging.String(logging.FieldJobID, item.job.ID),
					logging.Error(err),
				)
			}
		}
	}
}
