package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var ErrDeliveryFailed = errors.New("email delivery failed")

// sender is the part of the SendGrid client the mailer uses.
type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer sends emails through the SendGrid v3 API.
type SendGridMailer struct {
	client sender
	from   *mail.Email
}

// NewSendGridMailer creates a SendGridMailer authenticated with apiKey that
// sends from the given address.
func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Task Manager", from),
	}
}

func (m *SendGridMailer) SendWelcome(ctx context.Context, email, name string) error {
	return m.send(ctx, email, name, welcomeMessage(name))
}

func (m *SendGridMailer) SendCancellation(ctx context.Context, email, name string) error {
	return m.send(ctx, email, name, cancellationMessage(name))
}

func (m *SendGridMailer) send(ctx context.Context, email, name string, msg message) error {
	to := mail.NewEmail(name, email)
	sg := mail.NewSingleEmail(m.from, msg.subject, to, msg.text, "")

	resp, err := m.client.SendWithContext(ctx, sg)
	if err != nil {
		return fmt.Errorf("sending %q: %w", msg.subject, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrDeliveryFailed, resp.StatusCode, resp.Body)
	}
	return nil
}
