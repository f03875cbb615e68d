package mailer

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/shopit-dev/shopit-backend/config"
	"github.com/shopit-dev/shopit-backend/pkg/logger"
)

// Message is a single out-of-band notification to a user
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers messages over an external channel (email). A returned
// error means delivery failed and callers may roll back dependent state.
type Notifier interface {
	Send(msg Message) error
}

// SMTPNotifier sends mail through an SMTP relay
type SMTPNotifier struct {
	cfg config.SMTPConfig
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) Send(msg Message) error {
	if n.cfg.Host == "" || n.cfg.FromEmail == "" {
		return fmt.Errorf("smtp config missing")
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("empty recipient")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.cfg.FromEmail, n.cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.User, n.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("Email sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
