package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"studio-storefront/internal/client"
	"studio-storefront/internal/codec"
	"studio-storefront/internal/model"
	"studio-storefront/internal/notifier"
	"studio-storefront/internal/repository"
)

const notifyTimeout = 2 * time.Minute

type OrderNotifier interface {
	NotifyOperator(ctx context.Context, order *model.DecodedOrder) notifier.Result
	ConfirmCustomer(ctx context.Context, order *model.DecodedOrder) notifier.Result
}

// NotificationKind names one of the two messages sent for a paid order.
type NotificationKind string

const (
	NotifyOperator NotificationKind = "operator"
	NotifyCustomer NotificationKind = "customer"
)

type CheckoutResult struct {
	SessionID string   `json:"sessionId"`
	URL       string   `json:"url"`
	Warnings  []string `json:"warnings,omitempty"`
}

type CheckoutService interface {
	CreateCheckout(ctx context.Context, sessionKey string, customer codec.Customer) (*CheckoutResult, error)
	Confirm(ctx context.Context, sessionKey, checkoutSessionID string) (*model.DecodedOrder, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	// SendNotification sends one message for a paid session, at most once.
	SendNotification(ctx context.Context, checkoutSessionID string, kind NotificationKind) (notifier.Result, error)
	// Wait blocks until dispatched notifications finish or ctx is done.
	Wait(ctx context.Context) error
}

type checkoutServiceImpl struct {
	checkoutClient client.CheckoutClient
	carts          CartService
	codec          *codec.Codec
	eventRepo      repository.EventRepository
	notifier       OrderNotifier
	baseURL        string
	log            *slog.Logger
	// run executes notification work off the request path.
	run      func(func())
	inflight sync.WaitGroup
}

type CheckoutOption func(*checkoutServiceImpl)

// WithRunner replaces the goroutine used for notification dispatch.
func WithRunner(run func(func())) CheckoutOption {
	return func(s *checkoutServiceImpl) { s.run = run }
}

func NewCheckoutService(
	checkoutClient client.CheckoutClient,
	carts CartService,
	codec *codec.Codec,
	eventRepo repository.EventRepository,
	notifier OrderNotifier,
	baseURL string,
	log *slog.Logger,
	opts ...CheckoutOption,
) CheckoutService {
	if log == nil {
		log = slog.Default()
	}
	s := &checkoutServiceImpl{
		checkoutClient: checkoutClient,
		carts:          carts,
		codec:          codec,
		eventRepo:      eventRepo,
		notifier:       notifier,
		baseURL:        strings.TrimRight(baseURL, "/"),
		log:            log,
		run:            func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateCustomer(c codec.Customer) error {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(c.SocialPlatform) == "" {
		missing = append(missing, "social platform")
	}
	if strings.TrimSpace(c.SocialUsername) == "" {
		missing = append(missing, "social username")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return nil
}

func (s *checkoutServiceImpl) CreateCheckout(ctx context.Context, sessionKey string, customer codec.Customer) (*CheckoutResult, error) {
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}

	state := s.carts.Get(ctx, sessionKey)
	if state.IsEmpty {
		return nil, ErrEmptyCart
	}

	encoded := s.codec.Encode(state.Items, customer)

	lineItems := make([]client.LineItem, len(state.Items))
	for i, item := range state.Items {
		lineItems[i] = client.LineItem{
			Name:        item.Service.Name,
			Description: item.Service.Description,
			UnitAmount:  item.Service.Price,
			Quantity:    item.Quantity,
		}
	}

	session, err := s.checkoutClient.CreateSession(ctx, client.CreateSessionRequest{
		Metadata:      encoded.Metadata,
		LineItems:     lineItems,
		CustomerEmail: customer.Email,
		SuccessURL:    s.baseURL + "/order-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.baseURL + "/order?cancelled=true",
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	s.log.Info("checkout session created",
		"session_id", session.ID,
		"lines", len(state.Items),
		"total", encoded.Total,
		"metadata_keys", encoded.KeyCount,
		"dropped_files", encoded.DroppedFiles,
	)

	return &CheckoutResult{
		SessionID: session.ID,
		URL:       session.URL,
		Warnings:  encoded.Warnings,
	}, nil
}

// Confirm loads a paid session for the confirmation page. A paid session
// clears the buyer's cart and triggers the order notification.
func (s *checkoutServiceImpl) Confirm(ctx context.Context, sessionKey, checkoutSessionID string) (*model.DecodedOrder, error) {
	if strings.TrimSpace(checkoutSessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrValidation)
	}

	session, err := s.checkoutClient.RetrieveSession(ctx, checkoutSessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}

	order := s.decode(session)
	if order.PaymentStatus == client.PaymentStatusPaid {
		if sessionKey != "" && s.cartPredates(ctx, sessionKey, session.Created) {
			s.carts.Clear(ctx, sessionKey)
		}
		s.dispatch(order)
	}
	return order, nil
}

// cartPredates reports whether every item in the visitor's cart was added
// before the checkout session was created. A cart started after an earlier
// purchase survives a reload of that purchase's confirmation page.
func (s *checkoutServiceImpl) cartPredates(ctx context.Context, sessionKey string, created int64) bool {
	state := s.carts.Get(ctx, sessionKey)
	if state.IsEmpty {
		return false
	}
	for _, item := range state.Items {
		if item.AddedAt.Unix() > created {
			return false
		}
	}
	return true
}

func (s *checkoutServiceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.checkoutClient.VerifyWebhook(payload, signature)
	if err != nil {
		return fmt.Errorf("verify webhook: %w", err)
	}
	log := s.log.With("event_id", event.ID, "event_type", event.Type)

	first, err := s.eventRepo.Claim(ctx, event.ID, event.Type)
	if err != nil {
		return fmt.Errorf("record webhook event: %w", err)
	}
	if !first {
		log.Info("duplicate webhook event ignored")
		return nil
	}

	switch event.Type {
	case client.EventCheckoutSessionCompleted, "checkout.session.async_payment_succeeded":
		session, err := event.CheckoutSession()
		if err != nil {
			log.Error("decode checkout session from event", "error", err)
			return nil
		}
		order := s.decode(session)
		if order.PaymentStatus != client.PaymentStatusPaid {
			log.Info("checkout completed without payment yet", "payment_status", order.PaymentStatus)
			return nil
		}
		log.Info("order paid", "session_id", order.SessionID, "items", len(order.Items), "total", order.TotalAmount)
		s.dispatch(order)
	default:
		log.Info("unhandled webhook event")
	}
	return nil
}

func (s *checkoutServiceImpl) decode(session *client.CheckoutSession) *model.DecodedOrder {
	order, anomalies := s.codec.Decode(session.Metadata)
	if len(anomalies) > 0 {
		s.log.Warn("order decoded with anomalies", "session_id", session.ID, "anomalies", len(anomalies))
	}
	order.SessionID = session.ID
	order.CustomerEmail = session.Email()
	order.PaymentStatus = session.PaymentStatus
	order.Currency = session.Currency
	if session.AmountTotal > 0 {
		order.TotalAmount = session.AmountTotal
	}
	return order
}

func (s *checkoutServiceImpl) SendNotification(ctx context.Context, checkoutSessionID string, kind NotificationKind) (notifier.Result, error) {
	if kind != NotifyOperator && kind != NotifyCustomer {
		return notifier.Result{}, fmt.Errorf("%w: unknown notification %q", ErrValidation, kind)
	}
	if strings.TrimSpace(checkoutSessionID) == "" {
		return notifier.Result{}, fmt.Errorf("%w: session id is required", ErrValidation)
	}

	session, err := s.checkoutClient.RetrieveSession(ctx, checkoutSessionID)
	if err != nil {
		return notifier.Result{}, fmt.Errorf("retrieve checkout session: %w", err)
	}
	order := s.decode(session)
	if order.PaymentStatus != client.PaymentStatusPaid {
		return notifier.Result{}, fmt.Errorf("%w: payment status %q", ErrNotPaid, order.PaymentStatus)
	}
	return s.deliver(ctx, order, kind)
}

// dispatch sends both messages for an order off the request path. Each
// message goes out once, whichever of the webhook, the confirmation page and
// the notification endpoints gets to it first.
func (s *checkoutServiceImpl) dispatch(order *model.DecodedOrder) {
	s.inflight.Add(1)
	s.run(func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		for _, kind := range []NotificationKind{NotifyOperator, NotifyCustomer} {
			if _, err := s.deliver(ctx, order, kind); err != nil && !errors.Is(err, ErrAlreadySent) {
				s.log.Error("order notification", "session_id", order.SessionID, "kind", kind, "error", err)
			}
		}
	})
}

func (s *checkoutServiceImpl) deliver(ctx context.Context, order *model.DecodedOrder, kind NotificationKind) (notifier.Result, error) {
	log := s.log.With("session_id", order.SessionID, "kind", kind)

	first, err := s.eventRepo.Claim(ctx, "order:"+order.SessionID+":"+string(kind), "order."+string(kind)+"_notified")
	if err != nil {
		return notifier.Result{}, fmt.Errorf("claim %s notification: %w", kind, err)
	}
	if !first {
		log.Debug("order already notified")
		return notifier.Result{}, ErrAlreadySent
	}

	var res notifier.Result
	if kind == NotifyOperator {
		res = s.notifier.NotifyOperator(ctx, order)
	} else {
		res = s.notifier.ConfirmCustomer(ctx, order)
	}
	if len(res.Errors) > 0 {
		log.Warn("order notification incomplete", "errors", res.Errors)
	}
	return res, nil
}

func (s *checkoutServiceImpl) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
