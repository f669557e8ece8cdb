package invoice

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventgate/internal/apperrors"
	"eventgate/internal/mail"
	"eventgate/internal/models"
)

type fakeRegs struct {
	details  *models.RegistrationDetails
	qrPath   string
	invPath  string
	setCalls int
	setErr   error
}

func (f *fakeRegs) GetDetails(_ context.Context, id int64) (*models.RegistrationDetails, error) {
	if f.details == nil || f.details.Registration.ID != id {
		return nil, nil
	}
	return f.details, nil
}

func (f *fakeRegs) SetArtifactPaths(_ context.Context, _ int64, qrPath, invoicePath string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setCalls++
	f.qrPath = qrPath
	f.invPath = invoicePath
	return nil
}

type fakeStore struct {
	files   map[string][]byte
	puts    int
	failOn  string
	baseURL string
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte), baseURL: "http://files.local"}
}

func (f *fakeStore) Put(_ context.Context, path string, data []byte) error {
	if f.failOn != "" && path == f.failOn {
		return errors.New("storage unavailable")
	}
	f.puts++
	f.files[path] = data
	return nil
}

func (f *fakeStore) URL(path string) string {
	return f.baseURL + "/" + path
}

type fakeMailer struct {
	sent []*mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg *mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func testDetails() *models.RegistrationDetails {
	venue := "Main Hall"
	ends := time.Date(2026, 10, 2, 18, 0, 0, 0, time.UTC)
	return &models.RegistrationDetails{
		Registration: models.Registration{
			ID:        42,
			EventID:   7,
			TicketID:  3,
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Status:    models.StatusConfirmed,
			Reference: "AB12CD34EF",
		},
		Event: models.Event{
			ID:       7,
			Title:    "GopherCon",
			Slug:     "gophercon",
			Venue:    &venue,
			StartsAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
			EndsAt:   &ends,
		},
		Ticket: models.Ticket{
			ID:       3,
			EventID:  7,
			Type:     "Early Bird",
			Price:    decimal.NewFromFloat(149.50),
			Quantity: 100,
			Sold:     1,
			IsActive: true,
		},
	}
}

func TestPipelineRun(t *testing.T) {
	regs := &fakeRegs{details: testDetails()}
	store := newFakeStore()
	mailer := &fakeMailer{}
	p := NewPipeline(regs, store, mailer)

	err := p.Run(context.Background(), 42)
	require.NoError(t, err)

	// Artifacts live under reference-derived paths.
	assert.Contains(t, store.files, "qrcodes/AB12CD34EF.png")
	assert.Contains(t, store.files, "invoices/AB12CD34EF.pdf")
	assert.Equal(t, "qrcodes/AB12CD34EF.png", regs.qrPath)
	assert.Equal(t, "invoices/AB12CD34EF.pdf", regs.invPath)

	// PNG and PDF magic bytes.
	assert.Equal(t, byte(0x89), store.files["qrcodes/AB12CD34EF.png"][0])
	assert.Equal(t, "%PDF", string(store.files["invoices/AB12CD34EF.pdf"][:4]))

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Your ticket for GopherCon", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "AB12CD34EF")
	assert.Contains(t, msg.HTMLBody, "http://files.local/invoices/AB12CD34EF.pdf")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "invoice-AB12CD34EF.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", msg.Attachments[0].MIMEType)
	assert.Equal(t, store.files["invoices/AB12CD34EF.pdf"], msg.Attachments[0].Content)
}

func TestPipelineRetryIsIdempotent(t *testing.T) {
	regs := &fakeRegs{details: testDetails()}
	store := newFakeStore()
	mailer := &fakeMailer{}
	p := NewPipeline(regs, store, mailer)

	require.NoError(t, p.Run(context.Background(), 42))
	firstQR, firstInv := regs.qrPath, regs.invPath

	// Simulated redelivery: the run starts again from the top.
	require.NoError(t, p.Run(context.Background(), 42))

	// Same final paths, no divergent files.
	assert.Equal(t, firstQR, regs.qrPath)
	assert.Equal(t, firstInv, regs.invPath)
	assert.Len(t, store.files, 2)
}

func TestPipelineRegistrationGone(t *testing.T) {
	regs := &fakeRegs{}
	store := newFakeStore()
	mailer := &fakeMailer{}
	p := NewPipeline(regs, store, mailer)

	// A deleted registration is not an error; retrying forever would be.
	err := p.Run(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, store.files)
	assert.Empty(t, mailer.sent)
}

func TestPipelineMailFailure(t *testing.T) {
	regs := &fakeRegs{details: testDetails()}
	store := newFakeStore()
	mailer := &fakeMailer{err: errors.New("smtp: connection refused")}
	p := NewPipeline(regs, store, mailer)

	err := p.Run(context.Background(), 42)
	require.Error(t, err)

	var stepErr *apperrors.PipelineStepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "email", stepErr.Step)

	// Earlier steps already persisted their artifacts; the retry overwrites.
	assert.Len(t, store.files, 2)
	assert.Equal(t, 1, regs.setCalls)
}

func TestPipelineStorageFailure(t *testing.T) {
	regs := &fakeRegs{details: testDetails()}
	store := newFakeStore()
	store.failOn = "qrcodes/AB12CD34EF.png"
	p := NewPipeline(regs, store, &fakeMailer{})

	err := p.Run(context.Background(), 42)
	require.Error(t, err)

	var stepErr *apperrors.PipelineStepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "qr", stepErr.Step)
	assert.Equal(t, 0, regs.setCalls)
}

func TestPayloadRoundTrip(t *testing.T) {
	original := Payload{
		Reference: "AB12CD34EF",
		EventID:   7,
		TicketID:  3,
		Email:     "ada@example.com",
	}

	encoded, err := original.Encode()
	require.NoError(t, err)

	decoded, err := DecodePayload(encoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	// The decoded reference is what check-in uses to find the registration.
	assert.Equal(t, original.Reference, decoded.Reference)
}

func TestPayloadQRCode(t *testing.T) {
	png, err := Payload{Reference: "AB12CD34EF", EventID: 1, TicketID: 1, Email: "a@x.com"}.QRCode(300)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%x", png[:4]), "89504e47")
}
