// Package email delivers the daily digest over SMTP.
package email

import (
	"context"
	"fmt"
	"log/slog"

	gomail "gopkg.in/gomail.v2"

	"NewsDigest/internal/config"
	"NewsDigest/internal/ports"
)

// Sender sends HTML digests through an SMTP relay. Under dry-run it logs
// what it would send and reports success.
type Sender struct {
	cfg    config.EmailConfig
	logger *slog.Logger
}

var _ ports.DigestSender = (*Sender)(nil)

// NewSender wires SMTP settings.
func NewSender(cfg config.EmailConfig, logger *slog.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger}
}

// Send delivers one HTML email to all recipients.
func (s *Sender) Send(ctx context.Context, subject, htmlBody string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	if s.cfg.DryRun {
		if s.logger != nil {
			s.logger.Info("dry run: email not sent",
				"subject", subject,
				"recipients", len(recipients),
				"body_bytes", len(htmlBody))
		}
		return nil
	}

	if s.cfg.Host == "" || s.cfg.Username == "" || s.cfg.Password == "" || s.cfg.Sender == "" {
		return fmt.Errorf("smtp configuration incomplete")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.Sender)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send digest email: %w", err)
	}
	return nil
}
