package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/stan.go"

	"eventgate/internal/invoice"
	"eventgate/internal/logger"
	"eventgate/internal/models"
	"eventgate/internal/monitoring"
)

// pipelineTimeout bounds one pipeline run, SMTP included. A hung run must
// not block the subscription past the redelivery window.
const pipelineTimeout = 2 * time.Minute

type Handlers struct {
	pipeline *invoice.Pipeline
}

func NewHandlers(pipeline *invoice.Pipeline) *Handlers {
	return &Handlers{pipeline: pipeline}
}

// HandleRegistrationConfirmed runs the invoice pipeline. The message is acked
// only after the whole pipeline succeeds; on failure it stays unacked and the
// queue redelivers, restarting the run from the top.
func (h *Handlers) HandleRegistrationConfirmed(m *stan.Msg) {
	var event models.RegistrationConfirmedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		logger.Get().Error("Failed to unmarshal registration confirmed event", "error", err)
		m.Ack()
		return
	}

	log := logger.Get().With(
		"registration_id", event.RegistrationID,
		"reference", event.Reference,
	)
	log.Info("Processing registration confirmed event")

	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	if err := h.pipeline.Run(ctx, event.RegistrationID); err != nil {
		monitoring.PipelineRun("failed")
		log.Error("Invoice pipeline failed, leaving message for redelivery", "error", err)
		return
	}

	monitoring.PipelineRun("completed")
	m.Ack()
}

// HandleRegistrationDeleted records the deletion. Seat reconciliation already
// happened in the API transaction; this consumer exists for observability.
func (h *Handlers) HandleRegistrationDeleted(m *stan.Msg) {
	var event models.RegistrationDeletedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		logger.Get().Error("Failed to unmarshal registration deleted event", "error", err)
		m.Ack()
		return
	}

	logger.Get().Info("Registration deleted",
		"registration_id", event.RegistrationID,
		"event_id", event.EventID,
		"ticket_id", event.TicketID,
		"was_confirmed", event.WasConfirmed)

	m.Ack()
}
