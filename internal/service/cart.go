package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"studio-storefront/internal/cart"
	"studio-storefront/internal/catalog"
	"studio-storefront/internal/model"
)

// CartService keeps one cart.Store per browsing session.
type CartService interface {
	Get(ctx context.Context, sessionKey string) cart.State
	AddItem(ctx context.Context, sessionKey, serviceID string, quantity int) (cart.State, error)
	UpdateQuantity(ctx context.Context, sessionKey, itemID string, quantity int) (cart.State, error)
	RemoveItem(ctx context.Context, sessionKey, itemID string) (cart.State, error)
	SetPreferences(ctx context.Context, sessionKey, itemID string, partial map[string]string) (cart.State, error)
	SetFiles(ctx context.Context, sessionKey, itemID string, files []model.UploadedFile) (cart.State, error)
	AddSectionFiles(ctx context.Context, sessionKey, itemID string, section int, files []model.UploadedFile) (cart.State, error)
	RemoveSectionFile(ctx context.Context, sessionKey, itemID string, section, fileIndex int) (cart.State, error)
	Clear(ctx context.Context, sessionKey string) cart.State
	EvictIdle(idle time.Duration) int
}

type sessionEntry struct {
	store    *cart.Store
	lastUsed time.Time
}

type cartServiceImpl struct {
	catalog     *catalog.Catalog
	persistence cart.Persistence
	ttl         time.Duration
	log         *slog.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewCartService(
	catalog *catalog.Catalog,
	persistence cart.Persistence,
	ttl time.Duration,
	log *slog.Logger,
) CartService {
	if log == nil {
		log = slog.Default()
	}
	return &cartServiceImpl{
		catalog:     catalog,
		persistence: persistence,
		ttl:         ttl,
		log:         log,
		now:         time.Now,
		sessions:    make(map[string]*sessionEntry),
	}
}

// store returns the session's store, loading it from persistence on first
// use.
func (s *cartServiceImpl) store(ctx context.Context, sessionKey string) *cart.Store {
	s.mu.Lock()
	entry, ok := s.sessions[sessionKey]
	if !ok {
		st := cart.NewStore(sessionKey, s.persistence,
			cart.WithTTL(s.ttl),
			cart.WithLogger(s.log),
		)
		st.Subscribe(s.logState(sessionKey))
		entry = &sessionEntry{store: st}
		s.sessions[sessionKey] = entry
	}
	entry.lastUsed = s.now()
	s.mu.Unlock()

	entry.store.Load(ctx)
	return entry.store
}

func (s *cartServiceImpl) logState(sessionKey string) func(cart.State) {
	return func(st cart.State) {
		s.log.Debug("cart updated",
			"cart_key", sessionKey,
			"lines", len(st.Items),
			"item_count", st.ItemCount,
			"total", st.Total,
		)
	}
}

func (s *cartServiceImpl) Get(ctx context.Context, sessionKey string) cart.State {
	return s.store(ctx, sessionKey).State()
}

func (s *cartServiceImpl) AddItem(ctx context.Context, sessionKey, serviceID string, quantity int) (cart.State, error) {
	svc, ok := s.catalog.GetByID(serviceID)
	if !ok {
		return s.Get(ctx, sessionKey), fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
	}
	return s.store(ctx, sessionKey).AddItem(ctx, svc, quantity)
}

func (s *cartServiceImpl) UpdateQuantity(ctx context.Context, sessionKey, itemID string, quantity int) (cart.State, error) {
	return s.store(ctx, sessionKey).UpdateQuantity(ctx, itemID, quantity)
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, sessionKey, itemID string) (cart.State, error) {
	return s.store(ctx, sessionKey).RemoveItem(ctx, itemID)
}

func (s *cartServiceImpl) SetPreferences(ctx context.Context, sessionKey, itemID string, partial map[string]string) (cart.State, error) {
	return s.store(ctx, sessionKey).SetPreferences(ctx, itemID, partial)
}

func (s *cartServiceImpl) SetFiles(ctx context.Context, sessionKey, itemID string, files []model.UploadedFile) (cart.State, error) {
	return s.store(ctx, sessionKey).SetFiles(ctx, itemID, files)
}

func (s *cartServiceImpl) AddSectionFiles(ctx context.Context, sessionKey, itemID string, section int, files []model.UploadedFile) (cart.State, error) {
	return s.store(ctx, sessionKey).AddSectionFiles(ctx, itemID, section, files)
}

func (s *cartServiceImpl) RemoveSectionFile(ctx context.Context, sessionKey, itemID string, section, fileIndex int) (cart.State, error) {
	return s.store(ctx, sessionKey).RemoveSectionFile(ctx, itemID, section, fileIndex)
}

// Clear empties the session's cart and forgets its store.
func (s *cartServiceImpl) Clear(ctx context.Context, sessionKey string) cart.State {
	st := s.store(ctx, sessionKey).Clear(ctx)

	s.mu.Lock()
	delete(s.sessions, sessionKey)
	s.mu.Unlock()

	return st
}

// EvictIdle drops in-memory stores unused for longer than idle. Their carts
// stay in persistence and are reloaded on the next request.
func (s *cartServiceImpl) EvictIdle(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, entry := range s.sessions {
		if entry.lastUsed.Before(cutoff) {
			delete(s.sessions, key)
			evicted++
		}
	}
	return evicted
}
