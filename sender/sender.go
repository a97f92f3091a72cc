package sender

import (
	"context"
	"time"
)

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Attachment is an in-memory file attached to an outgoing message.
type Attachment struct {
	Filename string
	Data     []byte
}

// EmailSender delivers one message to a recipient with both a plain-text and
// an HTML body.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, textBody, htmlBody string, attachments []Attachment) (SendResult, error)
}
