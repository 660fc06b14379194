package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridMailer delivers messages through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridMailer creates a new SendGridMailer sending as fromName <fromAddress>.
func NewSendGridMailer(apiKey, fromAddress, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
	}
}

// Send delivers msg and treats any non-2xx response as a failure.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	resp, err := m.client.SendWithContext(ctx, buildMail(m.from, msg))
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func buildMail(from *mail.Email, msg Message) *mail.SGMailV3 {
	return mail.NewSingleEmail(from, msg.Subject, mail.NewEmail(msg.Name, msg.To), msg.Text, "")
}

// LogMailer writes messages to the log instead of sending them. It is used
// when no SendGrid key is configured.
type LogMailer struct{}

// Send logs the recipient and subject of msg.
func (LogMailer) Send(_ context.Context, msg Message) error {
	slog.Info("email not sent, no provider configured", "to", msg.To, "subject", msg.Subject)
	return nil
}
