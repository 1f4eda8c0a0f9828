package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
)

// ItemInput describes one line of a new order.
type ItemInput struct {
	Product   string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreateOrderInput carries the data needed to place an order.
type CreateOrderInput struct {
	CustomerName string
	Items        []ItemInput
}

type UpdateOrderStatusInput struct {
	OrderID   uuid.UUID
	NewStatus domain.Status
}

type RemoveOrderItemInput struct {
	OrderID uuid.UUID
	ItemID  uuid.UUID
}

// OrderIdentifier addresses a single order.
type OrderIdentifier struct {
	ID uuid.UUID
}
