// Package mailer sends account lifecycle emails.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
)

// Mailer delivers the emails sent when an account is created or cancelled.
type Mailer interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendCancellation(ctx context.Context, email, name string) error
}

type message struct {
	subject string
	text    string
}

func welcomeMessage(name string) message {
	return message{
		subject: "Thanks for joining in!",
		text:    fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", name),
	}
}

func cancellationMessage(name string) message {
	return message{
		subject: "Sorry to see you go!",
		text:    fmt.Sprintf("Goodbye, %s. I hope to see you back sometime soon.", name),
	}
}

// LogMailer writes emails to the logger instead of sending them.
// It is used when no SendGrid API key is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer writing to logger.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendWelcome(ctx context.Context, email, name string) error {
	m.log(ctx, email, welcomeMessage(name))
	return nil
}

func (m *LogMailer) SendCancellation(ctx context.Context, email, name string) error {
	m.log(ctx, email, cancellationMessage(name))
	return nil
}

func (m *LogMailer) log(ctx context.Context, to string, msg message) {
	m.logger.InfoContext(ctx, "email not sent, no provider configured",
		"to", to,
		"subject", msg.subject,
	)
}
