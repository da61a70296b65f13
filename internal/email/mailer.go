package email

import (
	"context"
	"fmt"
	"regexp"

	"gopkg.in/gomail.v2"

	"github.com/foodles/order-api/internal/config"
)

// addressPattern is deliberately loose: local part, "@", domain with a dot.
// Real deliverability is decided by the transport.
var addressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidAddress reports whether an address is syntactically plausible.
func ValidAddress(addr string) bool {
	return addressPattern.MatchString(addr)
}

// Sender delivers one HTML message to one recipient. An error means the
// transport did not accept the message, including server-side rejection of
// the recipient address.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Mailer is the SMTP-backed Sender.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// Verify opens and closes an SMTP connection to confirm the transport is
// reachable at startup.
func (m *Mailer) Verify() error {
	closer, err := m.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp verification failed: %w", err)
	}
	return closer.Close()
}
