package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"studio-storefront/internal/config"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	// WebhookTolerance is how old a signed webhook timestamp may be.
	WebhookTolerance = 300 * time.Second

	EventCheckoutSessionCompleted = "checkout.session.completed"
	PaymentStatusPaid             = "paid"
)

var (
	// ErrGatewayUnavailable covers missing credentials, transport failures,
	// provider outages and an open circuit. Callers may retry later.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrSessionNotFound    = errors.New("checkout session not found")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
)

// allowedShippingCountries are the destinations offered at checkout.
var allowedShippingCountries = []string{
	"US", "CA", "GB", "DE", "FR", "IT", "ES", "NL", "BE", "CH", "AT", "DK", "SE",
	"NO", "FI", "PT", "GR", "TR", "CN", "JP", "KR", "IN", "AU", "NZ", "RU", "UA",
	"PL", "CZ", "RO", "BG", "HR", "SI", "ME", "AL", "MK", "RS", "BA", "CY",
}

type CheckoutClient interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int
}

type CreateSessionRequest struct {
	Metadata      map[string]string
	LineItems     []LineItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	Status          string            `json:"status"`
	PaymentStatus   string            `json:"payment_status"`
	CustomerEmail   string            `json:"customer_email"`
	AmountTotal     int64             `json:"amount_total"`
	Currency        string            `json:"currency"`
	Metadata        map[string]string `json:"metadata"`
	Created         int64             `json:"created"`
	CustomerDetails *struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"customer_details,omitempty"`
}

// Email prefers the address the customer confirmed on the payment page.
func (s *CheckoutSession) Email() string {
	if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
		return s.CustomerDetails.Email
	}
	return s.CustomerEmail
}

type WebhookEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSession decodes the event object as a checkout session.
func (e *WebhookEvent) CheckoutSession() (*CheckoutSession, error) {
	var s CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &s); err != nil {
		return nil, fmt.Errorf("decode event object: %w", err)
	}
	return &s, nil
}

type stripeClientImpl struct {
	sessions      session.Client
	secretKey     string
	webhookSecret string
	currency      string
	breaker       *gobreaker.CircuitBreaker[*stripe.CheckoutSession]
}

func NewStripeClient(stripeCfg *config.Stripe, log *slog.Logger) CheckoutClient {
	if log == nil {
		log = slog.Default()
	}
	currency := stripeCfg.Currency
	if currency == "" {
		currency = "eur"
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient: &http.Client{
			Timeout: stripeCfg.Timeout,
		},
		LeveledLogger: slogLeveled{log: log.With("component", "stripe")},
		// retries are the caller's decision, the breaker tracks outages
		MaxNetworkRetries: stripe.Int64(0),
	}
	if stripeCfg.BaseApiURL != "" {
		backendCfg.URL = stripe.String(strings.TrimRight(stripeCfg.BaseApiURL, "/"))
	}

	return &stripeClientImpl{
		sessions: session.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: stripeCfg.SecretKey,
		},
		secretKey:     stripeCfg.SecretKey,
		webhookSecret: stripeCfg.WebhookSecret,
		currency:      currency,
		breaker: gobreaker.NewCircuitBreaker[*stripe.CheckoutSession](gobreaker.Settings{
			Name:        "stripe",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// only outages trip the breaker, not rejected requests
			IsSuccessful: func(err error) bool {
				return err == nil || !errors.Is(err, ErrGatewayUnavailable)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

func (c *stripeClientImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(allowedShippingCountries),
		},
		AutomaticTax: &stripe.CheckoutSessionAutomaticTaxParams{
			Enabled: stripe.Bool(false),
		},
		InvoiceCreation: &stripe.CheckoutSessionInvoiceCreationParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	for _, item := range req.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Description != "" {
			product.Description = stripe.String(item.Description)
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(c.currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := c.call(func() (*stripe.CheckoutSession, error) {
		return c.sessions.New(params)
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return fromStripe(s), nil
}

func (c *stripeClientImpl) RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := c.call(func() (*stripe.CheckoutSession, error) {
		return c.sessions.Get(sessionID, params)
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	return fromStripe(s), nil
}

// call runs fn behind the breaker and maps provider errors onto ours.
func (c *stripeClientImpl) call(fn func() (*stripe.CheckoutSession, error)) (*stripe.CheckoutSession, error) {
	if c.secretKey == "" {
		return nil, fmt.Errorf("%w: secret key not configured", ErrGatewayUnavailable)
	}

	s, err := c.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		s, err := fn()
		if err != nil {
			return nil, mapStripeError(err)
		}
		return s, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return s, err
}

func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		// transport failures never reach the API
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	code := stripeErr.HTTPStatusCode
	switch {
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrSessionNotFound, stripeErr.Msg)
	case code == http.StatusUnauthorized,
		code == http.StatusForbidden,
		code == http.StatusTooManyRequests,
		code >= 500:
		return fmt.Errorf("%w: stripe error %d: %s", ErrGatewayUnavailable, code, stripeErr.Msg)
	default:
		return fmt.Errorf("stripe error %d: %s", code, stripeErr.Msg)
	}
}

func fromStripe(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		CustomerEmail: s.CustomerEmail,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
		Created:       s.Created,
	}
	if d := s.CustomerDetails; d != nil {
		out.CustomerDetails = &struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		}{Email: d.Email, Name: d.Name}
	}
	return out
}

// VerifyWebhook checks the Stripe-Signature header against the raw payload.
// Events are accepted whatever API version the endpoint is pinned to.
func (c *stripeClientImpl) VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	if c.webhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", ErrGatewayUnavailable)
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, c.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                WebhookTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	event := &WebhookEvent{
		ID:      ev.ID,
		Type:    string(ev.Type),
		Created: ev.Created,
	}
	if ev.Data != nil {
		event.Data.Object = ev.Data.Raw
	}
	return event, nil
}

// slogLeveled routes the SDK's own logging into slog. The SDK traces every
// request at info, which is demoted to debug here.
type slogLeveled struct {
	log *slog.Logger
}

func (l slogLeveled) Debugf(format string, v ...interface{}) { l.log.Debug(fmt.Sprintf(format, v...)) }
func (l slogLeveled) Infof(format string, v ...interface{})  { l.log.Debug(fmt.Sprintf(format, v...)) }
func (l slogLeveled) Warnf(format string, v ...interface{})  { l.log.Warn(fmt.Sprintf(format, v...)) }
func (l slogLeveled) Errorf(format string, v ...interface{}) { l.log.Error(fmt.Sprintf(format, v...)) }
