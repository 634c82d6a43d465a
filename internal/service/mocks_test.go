package service

import (
	"context"
	"sync"

	"studio-storefront/internal/cart"
	"studio-storefront/internal/client"
	"studio-storefront/internal/model"
	"studio-storefront/internal/notifier"
)

// MockCheckoutClient implements client.CheckoutClient for testing.
type MockCheckoutClient struct {
	CreateSessionFunc   func(ctx context.Context, req client.CreateSessionRequest) (*client.CheckoutSession, error)
	RetrieveSessionFunc func(ctx context.Context, id string) (*client.CheckoutSession, error)
	VerifyWebhookFunc   func(payload []byte, header string) (*client.WebhookEvent, error)
}

func (m *MockCheckoutClient) CreateSession(ctx context.Context, req client.CreateSessionRequest) (*client.CheckoutSession, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, req)
	}
	return &client.CheckoutSession{ID: "cs_test_default", URL: "https://checkout.example.com/cs_test_default"}, nil
}

func (m *MockCheckoutClient) RetrieveSession(ctx context.Context, id string) (*client.CheckoutSession, error) {
	if m.RetrieveSessionFunc != nil {
		return m.RetrieveSessionFunc(ctx, id)
	}
	return nil, client.ErrSessionNotFound
}

func (m *MockCheckoutClient) VerifyWebhook(payload []byte, header string) (*client.WebhookEvent, error) {
	if m.VerifyWebhookFunc != nil {
		return m.VerifyWebhookFunc(payload, header)
	}
	return nil, client.ErrInvalidSignature
}

// memoryEvents implements repository.EventRepository for testing.
type memoryEvents struct {
	mu     sync.Mutex
	claims map[string]string
	err    error
}

func newMemoryEvents() *memoryEvents {
	return &memoryEvents{claims: make(map[string]string)}
}

func (m *memoryEvents) Claim(_ context.Context, id, typ string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.claims[id]; ok {
		return false, nil
	}
	m.claims[id] = typ
	return true, nil
}

// recordingNotifier implements OrderNotifier for testing.
type recordingNotifier struct {
	mu        sync.Mutex
	orders    []*model.DecodedOrder
	customers []*model.DecodedOrder
}

func (r *recordingNotifier) NotifyOperator(_ context.Context, order *model.DecodedOrder) notifier.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order)
	return notifier.Result{OperatorSent: true}
}

func (r *recordingNotifier) ConfirmCustomer(_ context.Context, order *model.DecodedOrder) notifier.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = append(r.customers, order)
	return notifier.Result{CustomerSent: true}
}

// count reports operator notifications.
func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *recordingNotifier) confirmations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.customers)
}

// blockingNotifier holds operator notifications until release is closed.
type blockingNotifier struct {
	recordingNotifier
	release chan struct{}
}

func (b *blockingNotifier) NotifyOperator(ctx context.Context, order *model.DecodedOrder) notifier.Result {
	<-b.release
	return b.recordingNotifier.NotifyOperator(ctx, order)
}

// memoryPersistence implements cart.Persistence for testing.
type memoryPersistence struct {
	mu      sync.Mutex
	records map[string]cart.Record
}

func newMemoryPersistence() *memoryPersistence {
	return &memoryPersistence{records: make(map[string]cart.Record)}
}

func (m *memoryPersistence) Load(_ context.Context, key string) (*cart.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok {
		return nil, cart.ErrRecordNotFound
	}
	return &rec, nil
}

func (m *memoryPersistence) Save(_ context.Context, key string, rec cart.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = rec
	return nil
}

func (m *memoryPersistence) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

func (m *memoryPersistence) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[key]
	return ok
}
