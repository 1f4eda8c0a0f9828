package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
)

// Service exposes the order write use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, input types.CreateOrderInput) (uuid.UUID, error)
	UpdateOrderStatus(ctx context.Context, input types.UpdateOrderStatusInput) error
	RemoveOrderItem(ctx context.Context, input types.RemoveOrderItemInput) error
	DeleteOrder(ctx context.Context, id types.OrderIdentifier) error
}
