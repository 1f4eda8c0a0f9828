package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
)

var (
	_ ports.UnitOfWork = (*Store)(nil)
	_ ports.Repository = (*txRepository)(nil)
)

// Store is an in-memory order table with unit-of-work semantics: writes are
// staged per unit of work and applied atomically on commit, guarded by the
// aggregate version.
type Store struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
}

func NewStore() *Store {
	return &Store{orders: map[uuid.UUID]*domain.Order{}}
}

// Do runs fn in a unit of work and commits its staged writes if fn succeeds.
func (s *Store) Do(ctx context.Context, fn func(tx ports.Tx) error) error {
	if fn == nil {
		return nil
	}
	tx := &memTx{store: s, staged: map[uuid.UUID]*stagedWrite{}}
	if err := fn(tx); err != nil {
		return err
	}
	if err := s.commit(tx); err != nil {
		return err
	}
	hookCtx := context.WithoutCancel(ctx)
	for _, hook := range tx.hooks {
		hook(hookCtx)
	}
	return nil
}

func (s *Store) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, write := range tx.staged {
		current, exists := s.orders[id]
		switch {
		case write.baseVersion == 0 && exists:
			return ports.ErrConflict
		case write.baseVersion > 0 && (!exists || current.Version != write.baseVersion):
			if !exists && write.order == nil {
				return ports.ErrNotFound
			}
			return ports.ErrConflict
		}
	}
	for id, write := range tx.staged {
		if write.order == nil {
			delete(s.orders, id)
			continue
		}
		s.orders[id] = write.order
	}
	return nil
}

// Get returns a copy of a committed order.
func (s *Store) Get(id uuid.UUID) (*domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	return order.Clone(), true
}

// Snapshot returns copies of all committed orders, newest first.
func (s *Store) Snapshot() []*domain.Order {
	s.mu.RLock()
	list := make([]*domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		list = append(list, order.Clone())
	}
	s.mu.RUnlock()
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID.String() < list[j].ID.String()
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// Reset drops every order.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = map[uuid.UUID]*domain.Order{}
}

// stagedWrite is a pending upsert, or a delete when order is nil. baseVersion
// is the committed version the write was based on; zero means insert.
type stagedWrite struct {
	order       *domain.Order
	baseVersion int64
}

type memTx struct {
	store  *Store
	staged map[uuid.UUID]*stagedWrite
	hooks  []func(context.Context)
}

func (t *memTx) Orders() ports.Repository { return &txRepository{tx: t} }

func (t *memTx) AfterCommit(hook func(ctx context.Context)) {
	if hook != nil {
		t.hooks = append(t.hooks, hook)
	}
}

type txRepository struct {
	tx *memTx
}

func (r *txRepository) Save(_ context.Context, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	base := order.Version
	if prior, ok := r.tx.staged[order.ID]; ok {
		if prior.order == nil {
			return ports.ErrNotFound
		}
		base = prior.baseVersion
	}
	order.Version++
	r.tx.staged[order.ID] = &stagedWrite{order: order.Clone(), baseVersion: base}
	return nil
}

func (r *txRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	if write, ok := r.tx.staged[id]; ok {
		if write.order == nil {
			return nil, ports.ErrNotFound
		}
		return write.order.Clone(), nil
	}
	order, ok := r.tx.store.Get(id)
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order, nil
}

func (r *txRepository) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	base := current.Version
	if prior, ok := r.tx.staged[id]; ok {
		base = prior.baseVersion
	}
	r.tx.staged[id] = &stagedWrite{baseVersion: base}
	return nil
}
