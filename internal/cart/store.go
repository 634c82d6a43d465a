package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"studio-storefront/internal/catalog"
	"studio-storefront/internal/model"
)

const DefaultTTL = 7 * 24 * time.Hour

type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
)

// State is what observers and callers see. Total, ItemCount and IsEmpty
// are always rebuilt from Items.
type State struct {
	Status    Status               `json:"status"`
	Items     []model.CartLineItem `json:"items"`
	Total     int64                `json:"total"`
	ItemCount int                  `json:"itemCount"`
	IsEmpty   bool                 `json:"isEmpty"`
}

func newState(c Cart) State {
	items := c.clone().Items
	if items == nil {
		items = []model.CartLineItem{}
	}
	return State{
		Status:    StatusReady,
		Items:     items,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
		IsEmpty:   c.IsEmpty(),
	}
}

// Record is the persisted shape of a cart.
type Record struct {
	Items     []model.CartLineItem `json:"items"`
	ExpiresAt time.Time            `json:"expiresAt"`
}

// Persistence is the durable key-value store behind a Store.
type Persistence interface {
	Load(ctx context.Context, key string) (*Record, error)
	Save(ctx context.Context, key string, record Record) error
	Delete(ctx context.Context, key string) error
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// Store owns the cart of one browsing session. Mutations run under a mutex,
// so observers see states in mutation order; observers must not call back
// into the store.
type Store struct {
	key         string
	persistence Persistence
	ttl         time.Duration
	now         func() time.Time
	log         *slog.Logger

	mu           sync.Mutex
	loaded       bool
	cart         Cart
	observers    map[int]func(State)
	nextObserver int
}

func NewStore(key string, persistence Persistence, opts ...Option) *Store {
	s := &Store{
		key:         key,
		persistence: persistence,
		ttl:         DefaultTTL,
		now:         time.Now,
		log:         slog.Default(),
		observers:   make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("cart_key", key)
	return s
}

// Load reads the persisted cart on first use. Later calls return the
// in-memory state.
func (s *Store) Load(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked(ctx)
	return newState(s.cart)
}

// State returns the current state without touching persistence.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return State{Status: StatusLoading, Items: []model.CartLineItem{}, IsEmpty: true}
	}
	return newState(s.cart)
}

func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Store) AddItem(ctx context.Context, service model.ServiceOffering, quantity int) (State, error) {
	return s.apply(ctx, "add_item", func(c Cart) (Cart, error) {
		return AddItem(c, service, quantity, s.now())
	})
}

func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) (State, error) {
	return s.apply(ctx, "update_quantity", func(c Cart) (Cart, error) {
		return UpdateQuantity(c, itemID, quantity)
	})
}

func (s *Store) RemoveItem(ctx context.Context, itemID string) (State, error) {
	return s.apply(ctx, "remove_item", func(c Cart) (Cart, error) {
		return RemoveItem(c, itemID), nil
	})
}

func (s *Store) SetPreferences(ctx context.Context, itemID string, partial map[string]string) (State, error) {
	return s.apply(ctx, "set_preferences", func(c Cart) (Cart, error) {
		return SetPreferences(c, itemID, partial), nil
	})
}

func (s *Store) SetFiles(ctx context.Context, itemID string, files []model.UploadedFile) (State, error) {
	return s.apply(ctx, "set_files", func(c Cart) (Cart, error) {
		return SetFiles(c, itemID, files), nil
	})
}

func (s *Store) AddSectionFiles(ctx context.Context, itemID string, section int, files []model.UploadedFile) (State, error) {
	return s.apply(ctx, "add_section_files", func(c Cart) (Cart, error) {
		return AddSectionFiles(c, itemID, section, files)
	})
}

func (s *Store) RemoveSectionFile(ctx context.Context, itemID string, section, fileIndex int) (State, error) {
	return s.apply(ctx, "remove_section_file", func(c Cart) (Cart, error) {
		return RemoveSectionFile(c, itemID, section, fileIndex)
	})
}

// Clear drops the persisted record and resets to the empty cart. Used both
// for abandoning a cart and for cleanup after payment.
func (s *Store) Clear(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistence.Delete(ctx, s.key); err != nil {
		s.log.Error("delete persisted cart", "error", err)
	}
	s.loaded = true
	s.cart = Cart{}

	st := newState(s.cart)
	s.notifyLocked(st)
	return st
}

func (s *Store) apply(ctx context.Context, op string, fn func(Cart) (Cart, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked(ctx)

	next, err := fn(s.cart)
	if err != nil {
		return newState(s.cart), err
	}
	s.cart = next

	record := Record{
		Items:     next.clone().Items,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	if err := s.persistence.Save(ctx, s.key, record); err != nil {
		// the in-memory cart stays authoritative for this session
		s.log.Error("persist cart", "op", op, "error", err)
	}

	st := newState(next)
	s.notifyLocked(st)
	return st, nil
}

func (s *Store) loadLocked(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	s.cart = Cart{}

	rec, err := s.persistence.Load(ctx, s.key)
	if errors.Is(err, ErrRecordNotFound) {
		return
	}
	if err != nil {
		s.log.Error("load persisted cart", "error", err)
		return
	}

	if !rec.ExpiresAt.IsZero() && rec.ExpiresAt.Before(s.now()) {
		s.log.Info("persisted cart expired", "expires_at", rec.ExpiresAt)
		s.discardLocked(ctx)
		return
	}
	if !validRecord(rec) {
		s.log.Warn("persisted cart is malformed, discarding")
		s.discardLocked(ctx)
		return
	}

	s.cart = Cart{Items: rec.Items}
}

func (s *Store) discardLocked(ctx context.Context) {
	if err := s.persistence.Delete(ctx, s.key); err != nil {
		s.log.Error("delete persisted cart", "error", err)
	}
}

func (s *Store) notifyLocked(st State) {
	for _, fn := range s.observers {
		fn(st)
	}
}

func validRecord(rec *Record) bool {
	for _, item := range rec.Items {
		if item.ID == "" ||
			item.ServiceID == "" ||
			!catalog.Validate(item.Service) ||
			item.Quantity < model.MinQuantity ||
			item.Quantity > model.MaxQuantity {
			return false
		}
	}
	return true
}
