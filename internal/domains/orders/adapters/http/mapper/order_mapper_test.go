package mapper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-cqrs/internal/shared/projection"
)

func ptr[T any](v T) *T { return &v }

func TestToUpdateStatusInput(t *testing.T) {
	id := uuid.New()
	input, err := ToUpdateStatusInput(UpdateStatusRequest{OrderID: id, NewStatus: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, id, input.OrderID)
	assert.Equal(t, domain.StatusShipped, input.NewStatus)

	_, err = ToUpdateStatusInput(UpdateStatusRequest{OrderID: id, NewStatus: "LOST"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestToSummaryQuery_Defaults(t *testing.T) {
	filter, page, err := ToSummaryQuery(SummaryQuery{})
	require.NoError(t, err)
	assert.Empty(t, filter.Statuses)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, projection.DefaultPageSize, page.Size)
	assert.True(t, page.SortDesc)
}

func TestToSummaryQuery_ParsesAll(t *testing.T) {
	filter, page, err := ToSummaryQuery(SummaryQuery{
		Status:   ptr([]string{"pending,confirmed", "SHIPPED"}),
		Customer: ptr("  maria "),
		Page:     ptr(2),
		Size:     ptr(5),
		Sort:     ptr("asc"),
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{domain.StatusPending, domain.StatusConfirmed, domain.StatusShipped}, filter.Statuses)
	assert.Equal(t, "maria", filter.Customer)
	assert.Equal(t, projection.PageRequest{Page: 2, Size: 5, SortDesc: false}, page)
}

func TestToSummaryQuery_Rejects(t *testing.T) {
	cases := []SummaryQuery{
		{Status: ptr([]string{"LOST"})},
		{Page: ptr(-1)},
		{Page: ptr(projection.MaxPage + 1), Size: ptr(projection.MaxPageSize)},
		{Size: ptr(0)},
		{Size: ptr(projection.MaxPageSize + 1)},
		{Sort: ptr("sideways")},
	}
	for _, q := range cases {
		_, _, err := ToSummaryQuery(q)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	}
}

func TestFromSummaryPage_RendersMoneyWithTwoDecimals(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()
	page := projection.Page[types.OrderSummary]{
		Items: []types.OrderSummary{{
			OrderID:           id,
			CustomerName:      "Maria",
			Status:            domain.StatusPending,
			Discount:          decimal.NewFromInt(10),
			TotalItems:        2,
			Subtotal:          decimal.NewFromInt(3800),
			TotalWithDiscount: decimal.NewFromInt(3420),
			CreatedAt:         created,
			UpdatedAt:         created,
		}},
		Page:       0,
		Size:       20,
		TotalItems: 21,
	}

	dto := FromSummaryPage(page)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, id.String(), dto.Items[0].OrderID)
	assert.Equal(t, "10.00", dto.Items[0].Discount)
	assert.Equal(t, "3800.00", dto.Items[0].Subtotal)
	assert.Equal(t, "3420.00", dto.Items[0].TotalWithDiscount)
	assert.Equal(t, 2, dto.TotalPages)
}

func TestToCreateOrderInput(t *testing.T) {
	input := ToCreateOrderInput(CreateOrderRequest{
		CustomerName: "Maria",
		Items:        []OrderItemRequest{{Product: "Pen", Quantity: 2, UnitPrice: decimal.RequireFromString("1.50")}},
	})
	assert.Equal(t, "Maria", input.CustomerName)
	require.Len(t, input.Items, 1)
	assert.Equal(t, "Pen", input.Items[0].Product)
	assert.Equal(t, 2, input.Items[0].Quantity)
	assert.Equal(t, "1.50", input.Items[0].UnitPrice.StringFixed(2))
}

func TestFromOrderWithItems(t *testing.T) {
	assert.Equal(t, OrderWithItems{}, FromOrderWithItems(nil))

	itemID := uuid.New()
	dto := FromOrderWithItems(&types.OrderWithItems{
		Order: types.OrderDetail{OrderID: uuid.New(), CustomerName: "Maria", Status: domain.StatusConfirmed, TotalAmount: decimal.RequireFromString("20")},
		Items: []types.OrderItemView{{ItemID: itemID, Product: "Pen", Quantity: 2, UnitPrice: decimal.RequireFromString("10"), Subtotal: decimal.RequireFromString("20")}},
	})
	assert.Equal(t, "CONFIRMED", dto.Order.Status)
	assert.Equal(t, "20.00", dto.Order.TotalAmount)
	assert.Equal(t, "0.00", dto.Order.Discount)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, itemID.String(), dto.Items[0].ItemID)
	assert.Equal(t, "10.00", dto.Items[0].UnitPrice)
}
