package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"FlowScope/internal/config"
	"FlowScope/internal/model"
)

// EmailNotifier delivers alert notifications as HTML mail over SMTP. It
// implements the model.Notifier interface.
type EmailNotifier struct {
	cfg  config.SMTPConfig
	auth smtp.Auth
}

// NewEmailNotifier builds a notifier from the SMTP settings. When the
// config carries a subject prefix it is prepended to every message.
func NewEmailNotifier(cfg config.SMTPConfig) model.Notifier {
	return &EmailNotifier{
		cfg:  cfg,
		auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
	}
}

// Send delivers one HTML message to the configured recipient list.
func (n *EmailNotifier) Send(subject, body string) error {
	to := splitRecipients(n.cfg.To)
	if len(to) == 0 {
		return fmt.Errorf("no alert recipients configured")
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	msg := buildMessage(n.cfg.From, to, n.subject(subject), body)
	if err := smtp.SendMail(addr, n.auth, n.cfg.From, to, msg); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

func (n *EmailNotifier) subject(s string) string {
	if n.cfg.SubjectPrefix == "" {
		return s
	}
	return n.cfg.SubjectPrefix + " " + s
}

// splitRecipients parses the comma-separated recipient list from the
// config, dropping surrounding whitespace and empty entries.
func splitRecipients(list string) []string {
	var out []string
	for _, addr := range strings.Split(list, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// buildMessage assembles the wire form of the mail with an HTML content
// type, CRLF line endings per RFC 5322.
func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: ")
	b.WriteString(from)
	b.WriteString("\r\nTo: ")
	b.WriteString(strings.Join(to, ", "))
	b.WriteString("\r\nSubject: ")
	b.WriteString(subject)
	b.WriteString("\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
