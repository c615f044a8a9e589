// Package worker runs fire-and-forget background jobs on an in-process
// queue. Jobs execute under the pool's own context, so work enqueued by a
// request keeps running after that request's context is cancelled. Failures
// and panics are isolated per job.
package worker

import (
	"context"
	"fmt"
	"sync"

	"bookwish/internal/logger"
)

type Pool struct {
	dispatcher *Dispatcher
	logger     *logger.Logger
	jobs       chan Job
	wg         sync.WaitGroup
	workers    int
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewPool(d *Dispatcher, log *logger.Logger, workers, queueSize int) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		dispatcher: d,
		logger:     log.WithComponent("worker"),
		jobs:       make(chan Job, queueSize),
		workers:    workers,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

// Stop drains jobs already accepted, then returns.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	p.cancel()
}

// Enqueue hands a job to the pool without blocking the caller. The returned
// error only signals a full queue; it never reflects the job's outcome.
func (p *Pool) Enqueue(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		p.logger.Error("Job queue full, dropping job", "job_id", job.ID, "job_type", string(job.Type))
		return fmt.Errorf("job queue full")
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.execute(job)
	}
}

func (p *Pool) execute(job Job) {
	log := p.logger.WithJob(job.ID, string(job.Type))
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
		}
	}()

	if err := p.dispatcher.Dispatch(p.ctx, job, log.Logger); err != nil {
		log.Error("Job failed", "error", err)
		return
	}
	log.Debug("Job completed")
}
