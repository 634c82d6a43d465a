package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"studio-storefront/internal/config"
	"studio-storefront/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

func newTestStripe(t *testing.T, handler http.HandlerFunc) CheckoutClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewStripeClient(&config.Stripe{
		BaseApiURL:    srv.URL,
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test",
		Currency:      "eur",
		Timeout:       2 * time.Second,
	}, logger.Discard())
}

func signed(secret string, payload []byte, at time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	}).Header
}

func TestCreateSession_FormEncoding(t *testing.T) {
	var form url.Values
	c := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		form = r.PostForm
		fmt.Fprint(w, `{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`)
	})

	session, err := c.CreateSession(context.Background(), CreateSessionRequest{
		Metadata: map[string]string{"customerName": "Kenji", "item_0_serviceId": "tournament-poster"},
		LineItems: []LineItem{
			{Name: "Tournament Poster", Description: "2 designs", UnitAmount: 9000, Quantity: 2},
		},
		CustomerEmail: "kenji@example.com",
		SuccessURL:    "http://localhost:8080/order-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "http://localhost:8080/cart",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)

	assert.Equal(t, "payment", form.Get("mode"))
	assert.Equal(t, "card", form.Get("payment_method_types[0]"))
	assert.Equal(t, "eur", form.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "Tournament Poster", form.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "2 designs", form.Get("line_items[0][price_data][product_data][description]"))
	assert.Equal(t, "9000", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "2", form.Get("line_items[0][quantity]"))
	assert.Equal(t, "Kenji", form.Get("metadata[customerName]"))
	assert.Equal(t, "tournament-poster", form.Get("metadata[item_0_serviceId]"))
	assert.Equal(t, "kenji@example.com", form.Get("customer_email"))
	assert.Equal(t, "true", form.Get("invoice_creation[enabled]"))
	assert.Equal(t, "false", form.Get("automatic_tax[enabled]"))
	assert.Equal(t, "US", form.Get("shipping_address_collection[allowed_countries][0]"))
	assert.Equal(t, "CY", form.Get(fmt.Sprintf("shipping_address_collection[allowed_countries][%d]", len(allowedShippingCountries)-1)))
	assert.Contains(t, form.Get("success_url"), "{CHECKOUT_SESSION_ID}")
}

func TestRetrieveSession(t *testing.T) {
	c := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		fmt.Fprint(w, `{
			"id":"cs_test_1","object":"checkout.session","payment_status":"paid","status":"complete",
			"customer_email":"a@b.c","customer_details":{"email":"real@b.c","name":"Kenji"},
			"amount_total":18000,"currency":"eur","created":1760000000,"metadata":{"totalItems":"1"}
		}`)
	})

	s, err := c.RetrieveSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, s.PaymentStatus)
	assert.Equal(t, "complete", s.Status)
	assert.Equal(t, int64(18000), s.AmountTotal)
	assert.Equal(t, "eur", s.Currency)
	assert.Equal(t, int64(1760000000), s.Created)
	assert.Equal(t, "1", s.Metadata["totalItems"])
	assert.Equal(t, "real@b.c", s.Email())
}

func TestRetrieveSession_NotFound(t *testing.T) {
	c := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"No such checkout.session"}}`)
	})

	_, err := c.RetrieveSession(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NotErrorIs(t, err, ErrGatewayUnavailable)

	_, err = c.RetrieveSession(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGatewayUnavailable(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests, http.StatusBadGateway} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			c := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
				fmt.Fprint(w, `{"error":{"type":"api_error","message":"nope"}}`)
			})
			_, err := c.CreateSession(context.Background(), CreateSessionRequest{})
			assert.ErrorIs(t, err, ErrGatewayUnavailable)
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	c := NewStripeClient(&config.Stripe{BaseApiURL: srv.URL, SecretKey: "sk_test_123", Timeout: time.Second}, logger.Discard())

	_, err := c.RetrieveSession(context.Background(), "cs_1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestBadRequestIsNotUnavailable(t *testing.T) {
	c := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"Invalid integer"}}`)
	})

	_, err := c.CreateSession(context.Background(), CreateSessionRequest{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGatewayUnavailable)
	assert.Contains(t, err.Error(), "Invalid integer")
}

func TestMissingSecretKey(t *testing.T) {
	c := NewStripeClient(&config.Stripe{BaseApiURL: "http://127.0.0.1:1"}, logger.Discard())

	_, err := c.CreateSession(context.Background(), CreateSessionRequest{})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCircuitOpensAfterRepeatedOutages(t *testing.T) {
	var calls atomic.Int32
	c := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":{"type":"api_error","message":"down"}}`)
	})

	for i := 0; i < 5; i++ {
		_, err := c.RetrieveSession(context.Background(), "cs_1")
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
	}
	_, err := c.RetrieveSession(context.Background(), "cs_1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.Equal(t, int32(5), calls.Load(), "open breaker must not reach the provider")
}

func TestVerifyWebhook(t *testing.T) {
	c := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {})
	now := time.Now()
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","api_version":"2020-08-27",` +
		`"data":{"object":{"id":"cs_1","object":"checkout.session","metadata":{"totalItems":"0"}}}}`)

	event, err := c.VerifyWebhook(payload, signed("whsec_test", payload, now))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventCheckoutSessionCompleted, event.Type)

	session, err := event.CheckoutSession()
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "0", session.Metadata["totalItems"])

	cases := map[string]string{
		"wrong secret": signed("whsec_other", payload, now),
		"stale":        signed("whsec_test", payload, now.Add(-10*time.Minute)),
		"garbage":      "not-a-signature",
		"empty":        "",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.VerifyWebhook(payload, header)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}

	tampered := append([]byte{}, payload...)
	tampered[10] = 'X'
	_, err = c.VerifyWebhook(tampered, signed("whsec_test", payload, now))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhook_AcceptsAnyV1(t *testing.T) {
	c := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {})
	now := time.Now()
	payload := []byte(`{"id":"evt_2","object":"event","type":"payment_intent.created"}`)

	valid := webhook.ComputeSignature(now, payload, "whsec_test")
	header := fmt.Sprintf("t=%d,v1=deadbeef,v0=abc,v1=%x", now.Unix(), valid)

	_, err := c.VerifyWebhook(payload, header)
	assert.NoError(t, err)
}

func TestVerifyWebhook_NoSecret(t *testing.T) {
	c := NewStripeClient(&config.Stripe{SecretKey: "sk"}, logger.Discard())

	_, err := c.VerifyWebhook([]byte(`{}`), "t=1,v1=00")
	assert.True(t, errors.Is(err, ErrGatewayUnavailable))
}
