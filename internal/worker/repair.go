package worker

import (
	"context"
	"time"

	"eventgate/internal/config"
	"eventgate/internal/logger"
	"eventgate/internal/models"
	"eventgate/internal/service"
)

// MissingInvoiceFinder is the repository slice the repair job needs.
type MissingInvoiceFinder interface {
	FindMissingInvoices(ctx context.Context, olderThan time.Time) ([]models.Registration, error)
}

// RepairJob periodically re-enqueues confirmed registrations that still have
// no invoice artifacts. It is the operator backstop for messages lost before
// they reached the queue; the pipeline's idempotence makes double enqueues
// harmless.
type RepairJob struct {
	regs     MissingInvoiceFinder
	queue    service.Publisher
	interval time.Duration
	after    time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewRepairJob(regs MissingInvoiceFinder, queue service.Publisher, cfg config.InvoiceConfig) *RepairJob {
	return &RepairJob{
		regs:     regs,
		queue:    queue,
		interval: cfg.RepairInterval,
		after:    cfg.RepairAfter,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *RepairJob) Start() {
	go j.run()
	logger.Get().Info("Invoice repair job started",
		"interval", j.interval,
		"after", j.after)
}

func (j *RepairJob) Stop() {
	close(j.stop)
	<-j.done
}

func (j *RepairJob) run() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.runOnce(context.Background())
		case <-j.stop:
			return
		}
	}
}

func (j *RepairJob) runOnce(ctx context.Context) {
	// Only registrations old enough that the original message clearly went
	// missing; fresh ones may simply still be in flight.
	cutoff := time.Now().Add(-j.after)

	regs, err := j.regs.FindMissingInvoices(ctx, cutoff)
	if err != nil {
		logger.Get().Error("Invoice repair scan failed", "error", err)
		return
	}
	if len(regs) == 0 {
		return
	}

	logger.Get().Warn("Re-enqueueing registrations with missing invoices", "count", len(regs))

	for _, reg := range regs {
		err := j.queue.Publish(models.SubjectRegistrationConfirmed, models.RegistrationConfirmedEvent{
			RegistrationID: reg.ID,
			Reference:      reg.Reference,
			Timestamp:      time.Now(),
		})
		if err != nil {
			logger.Get().Error("Failed to re-enqueue registration",
				"registration_id", reg.ID,
				"error", err)
		}
	}
}
