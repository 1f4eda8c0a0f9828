package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for monetary amounts.
const MoneyScale = 2

var (
	// DiscountThreshold is the subtotal an order must strictly exceed to earn the discount.
	DiscountThreshold = decimal.RequireFromString("500.00")
	// DiscountPercentage applied above the threshold.
	DiscountPercentage = decimal.RequireFromString("10.00")

	hundred = decimal.NewFromInt(100)
)

var now = func() time.Time { return time.Now().UTC() }

// Order models the purchase order aggregate. Items are owned by the order and
// are only reachable through its methods.
type Order struct {
	ID           uuid.UUID
	CustomerName string
	Status       Status
	Discount     decimal.Decimal
	TotalAmount  decimal.Decimal
	// Version is the optimistic concurrency token; zero means never persisted.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time

	items []*OrderItem
}

// NewOrder validates and constructs a PENDING order with its totals computed.
func NewOrder(customerName string, items []*OrderItem) (*Order, error) {
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return nil, ErrEmptyCustomerName
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	ts := now()
	order := &Order{
		ID:           uuid.New(),
		CustomerName: customerName,
		Status:       StatusPending,
		Discount:     decimal.Zero,
		TotalAmount:  decimal.Zero,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	for _, item := range items {
		if err := order.AddItem(item); err != nil {
			return nil, err
		}
	}
	order.Recalculate()
	return order, nil
}

// Rehydrate rebuilds an aggregate from persisted state without re-running creation rules.
func Rehydrate(id uuid.UUID, customerName string, status Status, discount, total decimal.Decimal, version int64, createdAt, updatedAt time.Time, items []*OrderItem) *Order {
	order := &Order{
		ID:           id,
		CustomerName: customerName,
		Status:       status,
		Discount:     discount,
		TotalAmount:  total,
		Version:      version,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		items:        make([]*OrderItem, 0, len(items)),
	}
	for _, item := range items {
		if item == nil {
			continue
		}
		c := item.clone()
		c.OrderID = id
		order.items = append(order.items, c)
	}
	return order
}

// AddItem attaches a validated item and points its back-reference at this order.
// Totals are not recomputed; call Recalculate when done mutating.
func (o *Order) AddItem(item *OrderItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	item.OrderID = o.ID
	o.items = append(o.items, item)
	return nil
}

// RemoveItem drops the item with the given id, if present, and recalculates.
// Removing the last item is allowed here; callers check HasItems afterwards.
func (o *Order) RemoveItem(itemID uuid.UUID) bool {
	removed := false
	kept := o.items[:0]
	for _, item := range o.items {
		if item.ID == itemID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	for i := len(kept); i < len(o.items); i++ {
		o.items[i] = nil
	}
	o.items = kept
	o.Recalculate()
	return removed
}

// Recalculate derives discount and total from the current items.
func (o *Order) Recalculate() {
	subtotal := o.Subtotal()
	if subtotal.GreaterThan(DiscountThreshold) {
		o.Discount = DiscountPercentage
		reduction := subtotal.Mul(DiscountPercentage).Div(hundred).Round(MoneyScale)
		o.TotalAmount = subtotal.Sub(reduction)
	} else {
		o.Discount = decimal.Zero
		o.TotalAmount = subtotal
	}
	o.UpdatedAt = now()
}

// TransitionTo moves the order along the lifecycle or returns a *TransitionError.
func (o *Order) TransitionTo(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return &TransitionError{From: o.Status, To: target}
	}
	o.Status = target
	o.UpdatedAt = now()
	return nil
}

func (o *Order) HasItems() bool { return len(o.items) > 0 }

// Items returns a copy of the order lines.
func (o *Order) Items() []*OrderItem {
	out := make([]*OrderItem, 0, len(o.items))
	for _, item := range o.items {
		out = append(out, item.clone())
	}
	return out
}

// Subtotal sums the line subtotals.
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (o *Order) ItemCount() int { return len(o.items) }

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.items = o.Items()
	return &c
}
