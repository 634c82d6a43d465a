// Package notifier renders and sends the operator notification and the
// customer confirmation for a paid order. Delivery is best effort: failures
// are logged and reported in the Result, never returned.
package notifier

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"strings"
	texttemplate "text/template"
	"time"

	"studio-storefront/internal/client"
	"studio-storefront/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const defaultTimeout = 10 * time.Second

type Mailer interface {
	Send(ctx context.Context, msg client.MailMessage) error
}

type Options struct {
	BusinessAddress string
	BaseURL         string
	Timeout         time.Duration
}

// Result reports what happened to each message.
type Result struct {
	OperatorSent    bool     `json:"operatorSent"`
	CustomerSent    bool     `json:"customerSent"`
	CustomerSkipped bool     `json:"customerSkipped,omitempty"`
	Errors          []string `json:"errors,omitempty"`
}

type Notifier struct {
	mailer Mailer
	opts   Options
	log    *slog.Logger
	html   *htmltemplate.Template
	text   *texttemplate.Template
}

func New(mailer Mailer, opts Options, log *slog.Logger) (*Notifier, error) {
	if log == nil {
		log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}

	return &Notifier{
		mailer: mailer,
		opts:   opts,
		log:    log,
		html:   html,
		text:   text,
	}, nil
}

func (n *Notifier) NotifyOperator(ctx context.Context, order *model.DecodedOrder) Result {
	var res Result
	log := n.log.With("session_id", order.SessionID, "mail", "operator")
	view := newOrderView(order, n.opts.BaseURL)

	msg := client.MailMessage{
		To:      []string{n.opts.BusinessAddress},
		ReplyTo: order.CustomerEmail,
		Subject: operatorSubject(view),
	}
	if err := n.render(&msg, "operator", view); err != nil {
		log.Error("render notification", "error", err)
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	pdf, err := renderWorkOrder(view)
	if err != nil {
		// the mail still goes out without the attachment
		log.Error("render work order", "error", err)
		res.Errors = append(res.Errors, err.Error())
	} else {
		msg.Attachments = append(msg.Attachments, client.Attachment{
			Name:        workOrderFilename(order.SessionID),
			ContentType: "application/pdf",
			Data:        pdf,
		})
	}

	if err := n.send(ctx, msg); err != nil {
		log.Error("send order notification", "error", err)
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	log.Info("order notification sent", "to", n.opts.BusinessAddress)
	res.OperatorSent = true
	return res
}

func (n *Notifier) ConfirmCustomer(ctx context.Context, order *model.DecodedOrder) Result {
	var res Result
	log := n.log.With("session_id", order.SessionID, "mail", "customer")

	if strings.TrimSpace(order.CustomerEmail) == "" {
		log.Warn("no customer email, skipping confirmation")
		res.CustomerSkipped = true
		return res
	}

	view := newOrderView(order, n.opts.BaseURL)
	msg := client.MailMessage{
		To:      []string{order.CustomerEmail},
		ReplyTo: n.opts.BusinessAddress,
		Subject: "Order Confirmation - " + view.ServiceSummary,
	}
	if err := n.render(&msg, "customer", view); err != nil {
		log.Error("render confirmation", "error", err)
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	if err := n.send(ctx, msg); err != nil {
		log.Error("send customer confirmation", "error", err)
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	log.Info("customer confirmation sent")
	res.CustomerSent = true
	return res
}

func (n *Notifier) render(msg *client.MailMessage, name string, view orderView) error {
	var html, text bytes.Buffer
	if err := n.html.ExecuteTemplate(&html, name+".html", view); err != nil {
		return fmt.Errorf("render %s html: %w", name, err)
	}
	if err := n.text.ExecuteTemplate(&text, name+".txt", view); err != nil {
		return fmt.Errorf("render %s text: %w", name, err)
	}
	msg.HTML = html.String()
	msg.Text = text.String()
	return nil
}

func (n *Notifier) send(ctx context.Context, msg client.MailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, n.opts.Timeout)
	defer cancel()
	return n.mailer.Send(ctx, msg)
}

func operatorSubject(v orderView) string {
	return fmt.Sprintf("New Order: %s - %s", v.ServiceSummary, v.CustomerName)
}
