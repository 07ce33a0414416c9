package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/restroline/order-gateway/internal/order/domain"
)

var (
	ErrMissingID         = errors.New("order id missing")
	ErrNotFound          = errors.New("order not found")
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Store is the single source of truth for orders. Every mutation persists
// the full order set to the shared slot before it is visible in memory, so
// a failed write never leaves the two views disagreeing.
type Store struct {
	log  *slog.Logger
	slot Slot

	mu        sync.RWMutex
	byID      map[string]domain.Order
	insertion []string
}

func NewStore(log *slog.Logger, slot Slot) *Store {
	return &Store{
		log:  log,
		slot: slot,
		byID: make(map[string]domain.Order),
	}
}

// Load seeds the in-memory map from the slot. Called once at startup.
func (s *Store) Load(ctx context.Context) error {
	payload, err := s.slot.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(payload)
}

// Run reconciles the in-memory map whenever the slot changes from any
// context. Blocks until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.slot.Changes():
			s.resync(ctx)
		}
	}
}

func (s *Store) resync(ctx context.Context) {
	payload, err := s.slot.Load(ctx)
	if err != nil {
		s.log.Error("order slot read failed, keeping current state", "err", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replaceLocked(payload); err != nil {
		s.log.Error("order slot resync failed, keeping current state", "err", err)
	}
}

// replaceLocked swaps in the persisted order set wholesale: last persisted
// value wins per id. Malformed payloads leave the current state untouched.
func (s *Store) replaceLocked(payload []byte) error {
	if len(payload) == 0 {
		s.byID = make(map[string]domain.Order)
		s.insertion = nil
		return nil
	}
	var orders []domain.Order
	if err := json.Unmarshal(payload, &orders); err != nil {
		return err
	}
	byID := make(map[string]domain.Order, len(orders))
	insertion := make([]string, 0, len(orders))
	for _, o := range orders {
		if _, dup := byID[o.ID]; !dup {
			insertion = append(insertion, o.ID)
		}
		byID[o.ID] = o
	}
	s.byID = byID
	s.insertion = insertion
	return nil
}

// persistLocked writes the candidate set to the slot and commits it to
// memory only on success.
func (s *Store) persistLocked(ctx context.Context, byID map[string]domain.Order, insertion []string) error {
	orders := make([]domain.Order, 0, len(insertion))
	for _, id := range insertion {
		orders = append(orders, byID[id])
	}
	payload, err := json.Marshal(orders)
	if err != nil {
		s.log.Error("order set marshal failed", "err", err)
		return err
	}
	if err := s.slot.Store(ctx, payload); err != nil {
		s.log.Error("order slot write failed", "err", err)
		return err
	}
	s.byID = byID
	s.insertion = insertion
	return nil
}

// Add inserts or replaces the record keyed by id. Orders are validated
// upstream; presence of an id is the only requirement here.
func (s *Store) Add(ctx context.Context, o domain.Order) error {
	if o.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	insertion := s.insertion
	if _, exists := s.byID[o.ID]; !exists {
		insertion = append(append([]string(nil), s.insertion...), o.ID)
	}
	byID := maps.Clone(s.byID)
	byID[o.ID] = o
	return s.persistLocked(ctx, byID, insertion)
}

// UpdateStatus moves an order through the status graph and bumps
// updated-at. Unknown ids and disallowed transitions are reported as
// sentinel errors and leave the store untouched; callers are free to
// ignore them.
func (s *Store) UpdateStatus(ctx context.Context, orderID string, next domain.OrderStatus) (domain.Order, domain.OrderStatus, error) {
	if !next.Valid() {
		return domain.Order{}, "", ErrUnknownStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[orderID]
	if !ok {
		s.log.Warn("status update for unknown order", "order_id", orderID, "status", next)
		return domain.Order{}, "", ErrNotFound
	}
	if !current.Status.CanTransitionTo(next) {
		s.log.Warn("status transition rejected", "order_id", orderID, "from", current.Status, "to", next)
		return domain.Order{}, "", ErrInvalidTransition
	}

	prev := current.Status
	updated := current
	updated.Status = next
	updated.UpdatedAt = time.Now().UTC()

	byID := maps.Clone(s.byID)
	byID[orderID] = updated
	if err := s.persistLocked(ctx, byID, s.insertion); err != nil {
		return domain.Order{}, "", err
	}
	return updated, prev, nil
}

// All returns every order, most recent first. Equal timestamps keep
// insertion order.
func (s *Store) All() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.Order, 0, len(s.insertion))
	for _, id := range s.insertion {
		orders = append(orders, s.byID[id])
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

func (s *Store) ForUser(userID string) []domain.Order {
	all := s.All()
	mine := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	return mine
}

// Get is a point lookup; absence is a valid result, not an error.
func (s *Store) Get(orderID string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byID[orderID]
	return o, ok
}

// Clear empties the store and persists the empty set. Destructive and
// irreversible; the caller is expected to gate it behind a confirmation.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx, make(map[string]domain.Order), nil)
}
