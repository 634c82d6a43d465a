package client

import (
	"bytes"
	"context"
	"testing"

	"studio-storefront/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	m := buildMessage("studio@example.com", MailMessage{
		To:      []string{"karatedesignscn@gmail.com"},
		ReplyTo: "kenji@example.com",
		Subject: "New order",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
		Attachments: []Attachment{
			{Name: "work-order.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")},
		},
	})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "From: studio@example.com")
	assert.Contains(t, raw, "To: karatedesignscn@gmail.com")
	assert.Contains(t, raw, "Reply-To: kenji@example.com")
	assert.Contains(t, raw, "Subject: New order")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, `filename="work-order.pdf"`)
	assert.Contains(t, raw, "application/pdf")
}

func TestMailClient_NotConfigured(t *testing.T) {
	c := NewMailClient(&config.Mail{Host: "smtp.example.com", Port: 587})

	err := c.Send(context.Background(), MailMessage{To: []string{"a@b.c"}, Subject: "x", Text: "y"})
	assert.ErrorIs(t, err, ErrMailNotConfigured)
}

func TestMailClient_HonoursContext(t *testing.T) {
	// 192.0.2.0/24 is reserved for documentation and never answers
	c := NewMailClient(&config.Mail{Host: "192.0.2.1", Port: 2525, Username: "u", Password: "p"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Send(ctx, MailMessage{To: []string{"a@b.c"}, Subject: "x", Text: "y"})
	assert.ErrorIs(t, err, context.Canceled)
}
