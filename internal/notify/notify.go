// Package notify delivers account notifications (reset links, password
// change confirmations) over a pluggable transport.
package notify

import (
	"context"
	"fmt"
	"time"

	"job-board-api/internal/mailer"

	"github.com/rs/zerolog/log"
)

type Kind string

const (
	KindResetRequested  Kind = "password_reset_requested"
	KindPasswordChanged Kind = "password_changed"
)

// Message is a rendered notification. It is also the queue wire format.
type Message struct {
	Kind    Kind   `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier delivers a message or reports why it could not.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

func ResetRequested(to, link string) Message {
	return Message{
		Kind:    KindResetRequested,
		To:      to,
		Subject: "Reset your password on Job Board",
		Body: "You are receiving this email because you (or someone else) have requested the reset of the password for your account.\n\n" +
			"Please click on the following link, or paste this into your browser to complete the process:\n\n" +
			link + "\n\n" +
			"If you did not request this, please ignore this email and your password will remain unchanged.\n",
	}
}

func PasswordChanged(to string) Message {
	return Message{
		Kind:    KindPasswordChanged,
		To:      to,
		Subject: "Your Job Board password has been changed",
		Body:    fmt.Sprintf("Hello,\n\nThis is a confirmation that the password for your account %s has just been changed.\n", to),
	}
}

// Sender is the part of *mailer.Mailer the mail notifier needs.
type Sender interface {
	Send(email mailer.Email) error
}

// MailNotifier sends notifications directly over SMTP.
type MailNotifier struct {
	sender Sender
}

func NewMailNotifier(sender Sender) *MailNotifier {
	return &MailNotifier{sender: sender}
}

// Notify gives up waiting when ctx ends; the SMTP exchange itself cannot
// be interrupted and finishes in the background.
func (n *MailNotifier) Notify(ctx context.Context, msg Message) error {
	done := make(chan error, 1)
	go func() {
		done <- n.sender.Send(mailer.Email{To: []string{msg.To}, Subject: msg.Subject, Body: msg.Body})
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send %s mail: %w", msg.Kind, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send %s mail: %w", msg.Kind, ctx.Err())
	}
}

// LogNotifier only logs, for development setups without a mail server.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, msg Message) error {
	log.Info().Str("kind", string(msg.Kind)).Str("to", msg.To).Str("subject", msg.Subject).Msg("Notification (log transport)")
	return nil
}

// WithTimeout bounds every delivery of next.
func WithTimeout(next Notifier, timeout time.Duration) Notifier {
	if timeout <= 0 {
		return next
	}
	return timeoutNotifier{next: next, timeout: timeout}
}

type timeoutNotifier struct {
	next    Notifier
	timeout time.Duration
}

func (t timeoutNotifier) Notify(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Notify(ctx, msg)
}
