package orderserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-orders-cqrs/internal/shared/errors"
)

// OrderCommandsAPI wires HTTP transport with the order write service.
type OrderCommandsAPI struct {
	service   ports.Service
	responder *apierrors.ChainedResponder
}

// NewOrderCommandsAPI creates an OrderCommandsAPI. A nil responder uses the default problem mapping.
func NewOrderCommandsAPI(service ports.Service, responder *apierrors.ChainedResponder) OrderCommandsAPI {
	return OrderCommandsAPI{service: service, responder: responderOrDefault(responder)}
}

// Post /api/orders
// Create a new order
func (api *OrderCommandsAPI) CreateOrder(c *gin.Context) {
	var payload ordermapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	id, err := api.service.CreateOrder(c.Request.Context(), ordermapper.ToCreateOrderInput(payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Header("Location", "/api/orders/query/"+id.String())
	c.JSON(http.StatusCreated, ordermapper.CreateOrderResponse{OrderID: id.String()})
}

// Patch /api/orders/status
// Move an order to a new status
func (api *OrderCommandsAPI) UpdateOrderStatus(c *gin.Context) {
	var payload ordermapper.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input, err := ordermapper.ToUpdateStatusInput(payload)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	if err := api.service.UpdateOrderStatus(c.Request.Context(), input); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete /api/orders/items
// Remove one item from an order
func (api *OrderCommandsAPI) RemoveOrderItem(c *gin.Context) {
	var payload ordermapper.RemoveItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	if err := api.service.RemoveOrderItem(c.Request.Context(), ordermapper.ToRemoveItemInput(payload)); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete /api/orders/:orderId
// Delete an order and its items
func (api *OrderCommandsAPI) DeleteOrder(c *gin.Context) {
	id, ok := parseOrderIDParam(c)
	if !ok {
		return
	}
	if err := api.service.DeleteOrder(c.Request.Context(), types.OrderIdentifier{ID: id}); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
