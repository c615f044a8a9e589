package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bookwish/internal/domain"
	"bookwish/internal/store"
	"bookwish/internal/worker"
)

// DownloadOrder is the payload of an acquisition job. StartImmediately is
// decided at submit time from the requester's trust level; untrusted users
// get their downloads queued for review instead of started.
type DownloadOrder struct {
	ASIN             string
	Title            string
	StartImmediately bool
}

// NewDownloadHandler returns the worker handler that records an acquisition
// job. The acquisition pipeline itself is an external collaborator; this
// handler's contract ends at recording the order and its start mode.
func NewDownloadHandler(db *store.DB) worker.JobHandlerFunc {
	return func(ctx context.Context, job worker.Job, log *slog.Logger) error {
		order, ok := job.Payload.(DownloadOrder)
		if !ok {
			return worker.ErrUnknownJobType
		}

		status := domain.JobStatusQueued
		if order.StartImmediately {
			status = domain.JobStatusRunning
		}

		now := time.Now()
		record := &domain.Job{
			ID:        uuid.New().String(),
			Type:      domain.JobTypeDownload,
			Status:    status,
			SourceID:  order.ASIN,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := db.CreateJob(ctx, record); err != nil {
			return err
		}

		log.Info("Acquisition scheduled",
			"asin", order.ASIN,
			"title", order.Title,
			"start_immediately", order.StartImmediately)
		return nil
	}
}
