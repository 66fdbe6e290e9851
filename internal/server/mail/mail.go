// Package mail sends the account confirmation messages.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/dmitrijs2005/diary/internal/logging"
)

// Sender delivers one plain text message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

var sendMail = smtp.SendMail

// SMTPSender relays through an SMTP server without authentication, which is
// what a local MTA or a dev catcher expects.
type SMTPSender struct {
	addr string
	from string
}

func NewSMTPSender(addr, from string) *SMTPSender {
	return &SMTPSender{addr: addr, from: from}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("invalid header value")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)

	if err := sendMail(s.addr, nil, s.from, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used when no
// SMTP server is configured.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.log.Info(ctx, "mail not sent, no smtp server configured", "to", to, "subject", subject, "body", body)
	return nil
}

// ConfirmationMessage returns subject and body of the mail sent after
// registration.
func ConfirmationMessage(link string) (string, string) {
	return "Email confirmation",
		"Hi! Please follow the link to confirm your email address: " + link + "\n"
}
