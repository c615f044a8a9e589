package worker

import (
	"context"
	"errors"
	"log/slog"

	"bookwish/internal/domain"
)

var ErrUnknownJobType = errors.New("unknown job type")

// Job is a queued unit of background work. Payload must be a detached value;
// by the time a worker picks the job up, the request that enqueued it is
// usually gone.
type Job struct {
	ID      string
	Type    domain.JobType
	Payload interface{}
}

type JobHandler interface {
	Handle(ctx context.Context, job Job, logger *slog.Logger) error
}

// JobHandlerFunc adapts a function to the JobHandler interface.
type JobHandlerFunc func(ctx context.Context, job Job, logger *slog.Logger) error

func (f JobHandlerFunc) Handle(ctx context.Context, job Job, logger *slog.Logger) error {
	return f(ctx, job, logger)
}

type Dispatcher struct {
	handlers map[domain.JobType]JobHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[domain.JobType]JobHandler),
	}
}

func (d *Dispatcher) Register(jobType domain.JobType, handler JobHandler) {
	d.handlers[jobType] = handler
}

func (d *Dispatcher) Dispatch(ctx context.Context, job Job, logger *slog.Logger) error {
	handler, ok := d.handlers[job.Type]
	if !ok {
		return ErrUnknownJobType
	}
	return handler.Handle(ctx, job, logger)
}
