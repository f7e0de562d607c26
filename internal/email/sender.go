package email

import (
	"context"
	"fmt"
	"net/smtp"
)

// Message is the wire shape handed to the mail transport
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a single message and reports failure once per call;
// nothing here retries.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail over authenticated SMTP
type SMTPSender struct {
	host     string
	port     string
	user     string
	password string
}

func NewSMTPSender(host, port, user, password string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	raw := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		msg.From, msg.To, msg.Subject, msg.HTML,
	))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, msg.From, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}
