// Package invoice implements the asynchronous post-registration pipeline:
// QR artifact, PDF invoice, artifact path update, notification email.
//
// The pipeline is at-least-once and idempotent: artifact paths are derived
// from the registration reference, so a retried run overwrites the previous
// artifacts instead of producing divergent files. The registration itself was
// committed before the task was enqueued and is never rolled back from here.
package invoice

import (
	"context"
	"fmt"
	"time"

	"eventgate/internal/apperrors"
	"eventgate/internal/logger"
	"eventgate/internal/mail"
	"eventgate/internal/models"
	"eventgate/internal/monitoring"
	"eventgate/internal/storage"
)

const qrPixelSize = 300

// RegistrationSource is the slice of the registrations repository the
// pipeline needs.
type RegistrationSource interface {
	GetDetails(ctx context.Context, id int64) (*models.RegistrationDetails, error)
	SetArtifactPaths(ctx context.Context, id int64, qrPath, invoicePath string) error
}

type Pipeline struct {
	regs   RegistrationSource
	store  storage.Store
	mailer mail.Mailer
}

func NewPipeline(regs RegistrationSource, store storage.Store, mailer mail.Mailer) *Pipeline {
	return &Pipeline{
		regs:   regs,
		store:  store,
		mailer: mailer,
	}
}

// Run executes the whole pipeline for one registration. Any returned error is
// a PipelineStepError; the caller leaves the message unacked so the queue
// redelivers and the run restarts from the top.
func (p *Pipeline) Run(ctx context.Context, registrationID int64) error {
	var details *models.RegistrationDetails

	err := p.timed("load", func() error {
		var err error
		details, err = p.regs.GetDetails(ctx, registrationID)
		return err
	})
	if err != nil {
		return err
	}
	if details == nil {
		// Registration was deleted between enqueue and processing. Nothing
		// left to do; acking avoids a poison message.
		logger.WithContext(ctx).Warn("Registration gone before invoice generation",
			"registration_id", registrationID)
		return nil
	}

	reg := details.Registration

	payload := Payload{
		Reference: reg.Reference,
		EventID:   reg.EventID,
		TicketID:  reg.TicketID,
		Email:     reg.Email,
	}

	var qrPNG []byte
	qrPath := fmt.Sprintf("qrcodes/%s.png", reg.Reference)
	err = p.timed("qr", func() error {
		var err error
		qrPNG, err = payload.QRCode(qrPixelSize)
		if err != nil {
			return err
		}
		return p.store.Put(ctx, qrPath, qrPNG)
	})
	if err != nil {
		return err
	}

	var pdfBytes []byte
	invoicePath := fmt.Sprintf("invoices/%s.pdf", reg.Reference)
	err = p.timed("invoice", func() error {
		var err error
		pdfBytes, err = renderPDF(details, qrPNG)
		if err != nil {
			return err
		}
		return p.store.Put(ctx, invoicePath, pdfBytes)
	})
	if err != nil {
		return err
	}

	err = p.timed("update", func() error {
		return p.regs.SetArtifactPaths(ctx, reg.ID, qrPath, invoicePath)
	})
	if err != nil {
		return err
	}

	err = p.timed("email", func() error {
		return p.mailer.Send(ctx, p.buildEmail(details, invoicePath, pdfBytes))
	})
	if err != nil {
		return err
	}

	logger.WithContext(ctx).Info("Invoice pipeline completed",
		"registration_id", reg.ID,
		"reference", reg.Reference,
		"qr_code_path", qrPath,
		"invoice_path", invoicePath)

	return nil
}

func (p *Pipeline) buildEmail(d *models.RegistrationDetails, invoicePath string, pdfBytes []byte) *mail.Message {
	reg := d.Registration

	when := d.Event.StartsAt.Format("Mon, 02 Jan 2006 15:04")
	if d.Event.EndsAt != nil {
		when += " - " + d.Event.EndsAt.Format("Mon, 02 Jan 2006 15:04")
	}

	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Your registration for <strong>%s</strong> is confirmed.</p>
<p>Reference: <strong>%s</strong><br>When: %s</p>
<p>Your invoice is attached; you can also download it <a href="%s">here</a>. Present the QR code inside at the entrance.</p>`,
		reg.FirstName,
		d.Event.Title,
		reg.Reference,
		when,
		p.store.URL(invoicePath),
	)

	return &mail.Message{
		To:       reg.Email,
		Subject:  fmt.Sprintf("Your ticket for %s", d.Event.Title),
		HTMLBody: body,
		Attachments: []mail.Attachment{
			{
				Filename: fmt.Sprintf("invoice-%s.pdf", reg.Reference),
				MIMEType: "application/pdf",
				Content:  pdfBytes,
			},
		},
	}
}

func (p *Pipeline) timed(step string, fn func() error) error {
	start := time.Now()
	err := fn()
	monitoring.ObservePipelineStep(step, time.Since(start))
	return apperrors.Step(step, err)
}
