package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
)

// Service orchestrates the order write use cases. Every command runs in its own
// unit of work; the summary refresh is requested only after a successful commit.
type Service struct {
	uow       ports.UnitOfWork
	refresher ports.RefreshScheduler
}

// Option configures the Service.
type Option func(*Service)

// WithRefreshScheduler sets the scheduler notified after each committed command.
func WithRefreshScheduler(scheduler ports.RefreshScheduler) Option {
	return func(s *Service) {
		s.refresher = scheduler
	}
}

func NewService(uow ports.UnitOfWork, opts ...Option) *Service {
	s := &Service{uow: uow}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder validates and persists a new PENDING order and returns its id.
func (s *Service) CreateOrder(ctx context.Context, input types.CreateOrderInput) (uuid.UUID, error) {
	if len(input.Items) == 0 {
		return uuid.Nil, mapError(domain.ErrNoItems)
	}
	items := make([]*domain.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		item, err := domain.NewOrderItem(line.Product, line.Quantity, line.UnitPrice)
		if err != nil {
			return uuid.Nil, mapError(err)
		}
		items = append(items, item)
	}
	order, err := domain.NewOrder(input.CustomerName, items)
	if err != nil {
		return uuid.Nil, mapError(err)
	}
	err = s.uow.Do(ctx, func(tx ports.Tx) error {
		if err := tx.Orders().Save(ctx, order); err != nil {
			return err
		}
		tx.AfterCommit(s.requestRefresh)
		return nil
	})
	if err != nil {
		return uuid.Nil, mapError(err)
	}
	return order.ID, nil
}

// UpdateOrderStatus moves an order along its lifecycle.
func (s *Service) UpdateOrderStatus(ctx context.Context, input types.UpdateOrderStatusInput) error {
	if !input.NewStatus.IsValid() {
		return mapError(fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidArgument, input.NewStatus))
	}
	return s.mutate(ctx, input.OrderID, func(order *domain.Order) error {
		return order.TransitionTo(input.NewStatus)
	})
}

// RemoveOrderItem drops a line from an order. Removing the last line is
// rejected and nothing is persisted.
func (s *Service) RemoveOrderItem(ctx context.Context, input types.RemoveOrderItemInput) error {
	return s.mutate(ctx, input.OrderID, func(order *domain.Order) error {
		order.RemoveItem(input.ItemID)
		if !order.HasItems() {
			return domain.ErrLastItem
		}
		return nil
	})
}

// DeleteOrder removes an order and its items.
func (s *Service) DeleteOrder(ctx context.Context, id types.OrderIdentifier) error {
	err := s.uow.Do(ctx, func(tx ports.Tx) error {
		if err := tx.Orders().Delete(ctx, id.ID); err != nil {
			return err
		}
		tx.AfterCommit(s.requestRefresh)
		return nil
	})
	return mapError(err)
}

// mutate loads the order, applies change and saves it in one unit of work.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, change func(order *domain.Order) error) error {
	if id == uuid.Nil {
		return mapError(fmt.Errorf("%w: order id is required", domain.ErrInvalidArgument))
	}
	err := s.uow.Do(ctx, func(tx ports.Tx) error {
		repo := tx.Orders()
		order, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := change(order); err != nil {
			return err
		}
		if err := repo.Save(ctx, order); err != nil {
			return err
		}
		tx.AfterCommit(s.requestRefresh)
		return nil
	})
	return mapError(err)
}

func (s *Service) requestRefresh(ctx context.Context) {
	if s.refresher != nil {
		s.refresher.RequestRefresh(ctx)
	}
}

var _ ports.Service = (*Service)(nil)
