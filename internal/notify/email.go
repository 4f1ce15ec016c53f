// Package notify delivers one-time passcodes to users.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/jordan-wright/email"

	"tally/internal/config"
)

// ErrDelivery wraps every notifier failure so callers can branch on the
// delivery-failed condition without knowing the transport.
var ErrDelivery = errors.New("failed to deliver OTP email")

// Notifier dispatches a passcode to a recipient address.
type Notifier interface {
	Send(ctx context.Context, recipient, code string) error
}

// SMTPSender sends passcode emails over SMTP.
type SMTPSender struct {
	cfg *config.Config
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers the passcode email. The SMTP call blocks, so it is bounded
// by the configured timeout in addition to any caller deadline.
func (s *SMTPSender) Send(ctx context.Context, recipient, code string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{recipient}
	e.Subject = "Expense Tracker Login OTP"
	e.Text = []byte(fmt.Sprintf(
		"Your OTP for Expense Tracker login is: %s\nThis OTP will expire in %d minutes.",
		code, int(s.cfg.OTPTTL.Minutes()),
	))

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SMTPTimeout)
	defer cancel()

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)

	done := make(chan error, 1)
	go func() { done <- e.Send(addr, auth) }()

	select {
	case err := <-done:
		if err != nil {
			slog.ErrorContext(ctx, "Failed to send OTP email", "recipient", recipient, "error", err)
			return fmt.Errorf("%w: %v", ErrDelivery, err)
		}
	case <-ctx.Done():
		slog.ErrorContext(ctx, "OTP email send timed out", "recipient", recipient)
		return fmt.Errorf("%w: %v", ErrDelivery, ctx.Err())
	}

	slog.InfoContext(ctx, "OTP email sent", "recipient", recipient)
	return nil
}
