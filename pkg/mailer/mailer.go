package mailer

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail/v2"

	"github.com/noah-isme/registrar-api/pkg/config"
)

// Message is a single outgoing e-mail.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers messages through some transport.
type Sender interface {
	Send(msg Message) error
}

// SMTPMailer sends mail through an SMTP relay using STARTTLS.
type SMTPMailer struct {
	from   string
	dialer *mail.Dialer
}

// NewSMTPMailer validates the configuration and prepares a dialer.
func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	d := mail.NewDialer(cfg.Host, port, cfg.User, cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify, //nolint:gosec // opt-in for local relays
	}
	return &SMTPMailer{from: cfg.From, dialer: d}, nil
}

// Build assembles the MIME message without sending it.
func (m *SMTPMailer) Build(msg Message) *mail.Message {
	out := mail.NewMessage()
	out.SetHeader("From", m.from)
	out.SetHeader("To", msg.To...)
	out.SetHeader("Subject", msg.Subject)
	out.SetBody("text/html", msg.HTML)
	return out
}

// Send implements Sender.
func (m *SMTPMailer) Send(msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}
	if err := m.dialer.DialAndSend(m.Build(msg)); err != nil {
		return fmt.Errorf("send mail to %v: %w", msg.To, err)
	}
	return nil
}

// NopSender discards messages; used when mail delivery is disabled.
type NopSender struct{}

// Send implements Sender.
func (NopSender) Send(Message) error { return nil }
