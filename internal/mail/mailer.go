// Package mail sends transactional email through Resend's SMTP relay.
package mail

import (
	"context"
	"errors"
	"sync"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer returns nil when no password (Resend API key) is configured.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	if password == "" {
		return nil
	}
	d := gomail.NewDialer(host, port, username, password)
	d.SSL = port == 465
	return &SMTPMailer{dialer: d, from: from}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, html string) error {
	if to == "" {
		return errors.New("mail: empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	return m.dialer.DialAndSend(msg)
}

type NopMailer struct{}

func (NopMailer) Send(context.Context, string, string, string) error { return nil }

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Outbox collects messages instead of sending them.
type Outbox struct {
	mu   sync.Mutex
	Sent []Message
}

func (o *Outbox) Send(_ context.Context, to, subject, html string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Sent = append(o.Sent, Message{To: to, Subject: subject, HTML: html})
	return nil
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Sent)
}
