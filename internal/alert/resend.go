package alert

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendNotifier emails alerts to the operator through Resend.
type ResendNotifier struct {
	client *resend.Client
	from   string
	to     string
}

func NewResendNotifier(apiKey, from, to string) *ResendNotifier {
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

func (n *ResendNotifier) Publish(_ context.Context, subject, message string) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: fmt.Sprintf("[qanda] %s", subject),
		Text:    message,
	}
	_, err := n.client.Emails.Send(params)
	return err
}
