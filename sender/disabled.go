package sender

import (
	"context"
	"fmt"
)

// DisabledSender stands in when the SMTP relay is not configured. Every
// send fails, which surfaces as a notification-dispatch error instead of a
// startup crash.
type DisabledSender struct{}

func (DisabledSender) SendEmail(_ context.Context, _, _, _, _ string, _ []Attachment) (SendResult, error) {
	return SendResult{}, fmt.Errorf("SMTP no configurado")
}
