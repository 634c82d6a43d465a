package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"studio-storefront/internal/config"

	"gopkg.in/gomail.v2"
)

var ErrMailNotConfigured = errors.New("mail transport not configured")

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type MailMessage struct {
	To          []string
	ReplyTo     string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

type MailClient interface {
	Send(ctx context.Context, msg MailMessage) error
}

type mailClientImpl struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailClient(mailCfg *config.Mail) MailClient {
	from := mailCfg.From
	if from == "" {
		from = mailCfg.Username
	}
	var dialer *gomail.Dialer
	if mailCfg.Username != "" && mailCfg.Password != "" {
		dialer = gomail.NewDialer(mailCfg.Host, mailCfg.Port, mailCfg.Username, mailCfg.Password)
	}
	return &mailClientImpl{dialer: dialer, from: from}
}

// Send delivers msg over SMTP. gomail has no context support, so the dial
// runs in its own goroutine and ctx only bounds how long the caller waits.
func (c *mailClientImpl) Send(ctx context.Context, msg MailMessage) error {
	if c.dialer == nil {
		return ErrMailNotConfigured
	}

	m := buildMessage(c.from, msg)

	done := make(chan error, 1)
	go func() {
		done <- c.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

func buildMessage(from string, msg MailMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To...)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}

	for _, a := range msg.Attachments {
		data := a.Data
		m.Attach(a.Name,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}
	return m
}
