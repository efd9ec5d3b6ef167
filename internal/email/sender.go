// Package email delivers plain-text messages through an SMTP relay.
package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers a plain-text message to one or more recipients.
type Sender interface {
	Send(to []string, subject, body string) error
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Send writes a single RFC 5322 message and submits it via SMTP.
// PLAIN auth is used only when credentials are configured, so a local
// relay without auth works in dev.
func (s *SMTPSender) Send(to []string, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.FromName, s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := s.Host + ":" + s.Port
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	return smtp.SendMail(addr, auth, s.From, to, []byte(msg.String()))
}
