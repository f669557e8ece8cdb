package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"eventgate/internal/config"
	"eventgate/internal/models"
)

type finderStub struct {
	regs   []models.Registration
	err    error
	cutoff time.Time
}

func (f *finderStub) FindMissingInvoices(_ context.Context, olderThan time.Time) ([]models.Registration, error) {
	f.cutoff = olderThan
	return f.regs, f.err
}

type publisherStub struct {
	published []models.RegistrationConfirmedEvent
	err       error
}

func (p *publisherStub) Publish(subject string, data interface{}) error {
	if p.err != nil {
		return p.err
	}
	if subject != models.SubjectRegistrationConfirmed {
		return errors.New("unexpected subject " + subject)
	}
	p.published = append(p.published, data.(models.RegistrationConfirmedEvent))
	return nil
}

func newRepairJob(finder *finderStub, queue *publisherStub) *RepairJob {
	return NewRepairJob(finder, queue, config.InvoiceConfig{
		RepairInterval: time.Minute,
		RepairAfter:    5 * time.Minute,
	})
}

func TestRepairReenqueuesMissingInvoices(t *testing.T) {
	finder := &finderStub{regs: []models.Registration{
		{ID: 1, Reference: "AB12CD34EF"},
		{ID: 2, Reference: "CD34EF56GH"},
	}}
	queue := &publisherStub{}

	newRepairJob(finder, queue).runOnce(context.Background())

	assert.Len(t, queue.published, 2)
	assert.Equal(t, int64(1), queue.published[0].RegistrationID)
	assert.Equal(t, "AB12CD34EF", queue.published[0].Reference)

	// Only registrations older than the grace period are considered.
	assert.WithinDuration(t, time.Now().Add(-5*time.Minute), finder.cutoff, time.Second)
}

func TestRepairNothingToDo(t *testing.T) {
	queue := &publisherStub{}
	newRepairJob(&finderStub{}, queue).runOnce(context.Background())
	assert.Empty(t, queue.published)
}

func TestRepairScanFailure(t *testing.T) {
	queue := &publisherStub{}
	finder := &finderStub{err: errors.New("db down")}
	newRepairJob(finder, queue).runOnce(context.Background())
	assert.Empty(t, queue.published)
}

func TestRepairStartStop(t *testing.T) {
	job := newRepairJob(&finderStub{}, &publisherStub{})
	job.Start()
	job.Stop()
}
