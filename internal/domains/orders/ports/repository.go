package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrConflict signals a lost optimistic-concurrency race; the caller may retry from a fresh read.
	ErrConflict = errors.New("order was modified concurrently")
)

// Repository persists order aggregates together with their items.
type Repository interface {
	// Save inserts a never-persisted order (Version 0) or updates an existing one
	// guarded by its Version. On success the order's Version is advanced.
	Save(ctx context.Context, order *domain.Order) error
	// GetByID loads an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// Delete removes an order and its items.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Tx is the scope handed to a unit of work body.
type Tx interface {
	Orders() Repository
	// AfterCommit registers a hook that runs only if the unit of work commits.
	AfterCommit(hook func(ctx context.Context))
}

// UnitOfWork runs fn atomically. A non-nil error from fn rolls back every write
// and discards registered hooks.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Tx) error) error
}
