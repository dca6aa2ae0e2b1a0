package mail

import (
	"context"

	gomail "github.com/wneessen/go-mail"

	"github.com/spec-kit/ticket-tracker/internal/config"
)

// SMTPMailer sends messages through a configured SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer constructs the mailer from SMTP settings.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers one HTML message. A fresh connection per message keeps the
// mailer stateless; notification volume here does not warrant pooling.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}
