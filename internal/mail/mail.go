// Package mail delivers notification emails. The Mailer interface is what the
// invoice pipeline depends on; SMTPMailer is the production implementation.
package mail

import "context"

// Attachment is a binary file attached to a message.
type Attachment struct {
	Filename string
	MIMEType string
	Content  []byte
}

// Message is a fully rendered outbound email.
type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// Mailer sends a message. A returned error means delivery failed and the
// caller may retry.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}
