package mail

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"eventgate/internal/config"
)

func TestBuildMessageWithAttachment(t *testing.T) {
	mailer := NewSMTPMailer(config.SMTPConfig{
		From:     "tickets@eventgate.local",
		FromName: "EventGate",
	})

	pdf := []byte("%PDF-1.4 fake invoice body")
	raw := mailer.buildMessage(&Message{
		To:       "attendee@example.com",
		Subject:  "Your ticket for GopherCon",
		HTMLBody: "<p>Reference: AB12CD34EF</p>",
		Attachments: []Attachment{
			{Filename: "invoice-AB12CD34EF.pdf", MIMEType: "application/pdf", Content: pdf},
		},
	})

	assert.Contains(t, raw, "From: EventGate <tickets@eventgate.local>\r\n")
	assert.Contains(t, raw, "To: attendee@example.com\r\n")
	assert.Contains(t, raw, "Subject: Your ticket for GopherCon\r\n")
	assert.Contains(t, raw, "Content-Type: multipart/mixed;")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, raw, "<p>Reference: AB12CD34EF</p>")
	assert.Contains(t, raw, `Content-Disposition: attachment; filename="invoice-AB12CD34EF.pdf"`)
	assert.Contains(t, raw, base64.StdEncoding.EncodeToString(pdf))

	// The closing boundary must terminate the message.
	assert.True(t, strings.HasSuffix(raw, "--\r\n"))
}

func TestWrapBase64(t *testing.T) {
	encoded := strings.Repeat("A", 200)
	wrapped := wrapBase64(encoded)

	for _, line := range strings.Split(wrapped, "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
	assert.Equal(t, encoded, strings.ReplaceAll(wrapped, "\r\n", ""))
}
