package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/logger"
)

// Deleter removes stored attachments. attachments.Manager satisfies it.
type Deleter interface {
	Delete(ctx context.Context, name string) bool
}

// DeleteAttachmentHandler returns a JobHandler that deletes the job's file.
// A failed delete is returned as an error so the queue retries it.
func DeleteAttachmentHandler(d Deleter) JobHandler {
	return func(ctx context.Context, job *DeleteAttachmentJob) error {
		log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
			"job_id":      job.JobID,
			"payment_id":  job.PaymentID,
			"stored_name": job.StoredName,
			"attempt":     job.RetryCount + 1,
		})
		if !d.Delete(ctx, job.StoredName) {
			log.Debug().Msg("attachment delete failed")
			return fmt.Errorf("delete attachment %q failed", job.StoredName)
		}
		log.Debug().Msg("attachment deleted")
		return nil
	}
}

// QueueCleaner hands attachment deletions to a queue instead of running them
// inline with the request.
type QueueCleaner struct {
	publisher  Publisher
	maxRetries int
	log        zerolog.Logger
}

// NewQueueCleaner creates a QueueCleaner publishing to p.
func NewQueueCleaner(p Publisher, maxRetries int, log zerolog.Logger) *QueueCleaner {
	return &QueueCleaner{publisher: p, maxRetries: maxRetries, log: log}
}

// Cleanup enqueues the deletion. Publish failures are logged and dropped:
// an orphaned file is an accepted outcome.
func (c *QueueCleaner) Cleanup(ctx context.Context, paymentID int64, slot domain.Slot, name string) {
	job := &DeleteAttachmentJob{
		Type:       JobTypeDeleteAttachment,
		PaymentID:  paymentID,
		Slot:       string(slot),
		StoredName: name,
		MaxRetries: c.maxRetries,
	}
	if err := c.publisher.PublishDeleteAttachment(ctx, job); err != nil {
		c.log.Warn().Err(err).
			Int64("payment_id", paymentID).
			Str("stored_name", name).
			Msg("failed to enqueue attachment cleanup")
	}
}
