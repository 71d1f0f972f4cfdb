// Package mail delivers password reset links.
package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends a password reset link to a user.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// SMTPConfig configures SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// New returns an SMTPMailer, or a LogMailer when no SMTP host is configured.
func New(cfg SMTPConfig) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, to, link string) error {
	msg := resetMessage(m.from, to, link)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send reset mail to %s: %w", to, err)
	}
	return nil
}

func resetMessage(from, to, link string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Redefinição de senha")
	msg.SetBody("text/plain", "Recebemos um pedido para redefinir sua senha.\n\nAcesse: "+link+"\n\nSe não foi você, ignore este email.")
	msg.AddAlternative("text/html", `<p>Recebemos um pedido para redefinir sua senha.</p><p><a href="`+link+`">Redefinir senha</a></p><p>Se não foi você, ignore este email.</p>`)
	return msg
}

// LogMailer writes the link to the log instead of sending it. Used in
// development.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(_ context.Context, to, link string) error {
	zap.L().Info("password reset link (SMTP not configured)", zap.String("to", to), zap.String("link", link))
	return nil
}
