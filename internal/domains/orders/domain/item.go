package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a line of an order. OrderID is a plain back-reference to the owning order.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Product   string
	Quantity  int
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}

// NewOrderItem validates and constructs an unattached item.
func NewOrderItem(product string, quantity int, unitPrice decimal.Decimal) (*OrderItem, error) {
	// Checked before rounding so sub-cent negatives are not rounded to zero.
	if unitPrice.IsNegative() {
		return nil, ErrNegativePrice
	}
	item := &OrderItem{
		ID:        uuid.New(),
		Product:   strings.TrimSpace(product),
		Quantity:  quantity,
		UnitPrice: unitPrice.Round(MoneyScale),
		CreatedAt: now(),
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate enforces item invariants.
func (i *OrderItem) Validate() error {
	if i == nil {
		return ErrNilItem
	}
	if i.Product == "" {
		return ErrEmptyProduct
	}
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// Subtotal is unit price times quantity.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i *OrderItem) clone() *OrderItem {
	c := *i
	return &c
}
