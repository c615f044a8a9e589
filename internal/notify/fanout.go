package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"bookwish/internal/domain"
	"bookwish/internal/logger"
	"bookwish/internal/store"
	"bookwish/internal/worker"
)

// Delivery is the payload a notify job carries: one subscriber, one
// snapshot. Both are plain copies with no store handle attached.
type Delivery struct {
	Notification domain.Notification
	Snapshot     domain.RequestSnapshot
}

// Deliverer sends a single notification. Satisfied by *Sender.
type Deliverer interface {
	Send(ctx context.Context, n *domain.Notification, snap domain.RequestSnapshot) error
}

// Fanout loads the subscribers for an event and schedules one independent
// background job per subscriber.
type Fanout struct {
	db     *store.DB
	pool   *worker.Pool
	logger *logger.Logger
}

func NewFanout(db *store.DB, pool *worker.Pool, log *logger.Logger) *Fanout {
	return &Fanout{db: db, pool: pool, logger: log.WithComponent("notify")}
}

// Dispatch enqueues one delivery job per subscriber registered for the
// event. A full queue for one subscriber does not stop the rest.
func (f *Fanout) Dispatch(ctx context.Context, db *store.DB, event domain.EventKind, snap domain.RequestSnapshot) error {
	subscribers, err := db.ListNotificationsByEvent(ctx, event)
	if err != nil {
		return err
	}

	for _, sub := range subscribers {
		job := worker.Job{
			ID:   uuid.New().String(),
			Type: domain.JobTypeNotify,
			Payload: Delivery{
				Notification: *sub,
				Snapshot:     snap,
			},
		}
		if err := f.pool.Enqueue(job); err != nil {
			f.logger.Error("Failed to enqueue notification", "notification", sub.Name, "error", err)
		}
	}
	return nil
}

// NewJobHandler returns the worker handler that performs one delivery.
func NewJobHandler(deliverer Deliverer) worker.JobHandlerFunc {
	return func(ctx context.Context, job worker.Job, log *slog.Logger) error {
		delivery, ok := job.Payload.(Delivery)
		if !ok {
			return worker.ErrUnknownJobType
		}
		log.Info("Delivering notification",
			"notification", delivery.Notification.Name,
			"event", string(delivery.Snapshot.Event),
			"requester", delivery.Snapshot.Requester)
		return deliverer.Send(ctx, &delivery.Notification, delivery.Snapshot)
	}
}
