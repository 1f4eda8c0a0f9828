/*
 * Orders API
 *
 * Order commands and order summary queries.
 */

package orderserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the order routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc is the default handler for not yet implemented routes.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

type ApiHandleFunctions struct {
	// Routes for the order commands part of the API
	OrderCommandsAPI OrderCommandsAPI
	// Routes for the order queries part of the API
	OrderQueriesAPI OrderQueriesAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"CreateOrder",
			http.MethodPost,
			"/api/orders",
			handleFunctions.OrderCommandsAPI.CreateOrder,
		},
		{
			"UpdateOrderStatus",
			http.MethodPatch,
			"/api/orders/status",
			handleFunctions.OrderCommandsAPI.UpdateOrderStatus,
		},
		{
			"RemoveOrderItem",
			http.MethodDelete,
			"/api/orders/items",
			handleFunctions.OrderCommandsAPI.RemoveOrderItem,
		},
		{
			"DeleteOrder",
			http.MethodDelete,
			"/api/orders/:orderId",
			handleFunctions.OrderCommandsAPI.DeleteOrder,
		},
		{
			"ListViewSummaries",
			http.MethodGet,
			"/api/orders/view",
			handleFunctions.OrderQueriesAPI.ListViewSummaries,
		},
		{
			"GetViewSummary",
			http.MethodGet,
			"/api/orders/view/:orderId",
			handleFunctions.OrderQueriesAPI.GetViewSummary,
		},
		{
			"ListLiveSummaries",
			http.MethodGet,
			"/api/orders/query/list",
			handleFunctions.OrderQueriesAPI.ListLiveSummaries,
		},
		{
			"ReportByStatus",
			http.MethodGet,
			"/api/orders/query/report/by-status",
			handleFunctions.OrderQueriesAPI.ReportByStatus,
		},
		{
			"GetLiveSummary",
			http.MethodGet,
			"/api/orders/query/:orderId",
			handleFunctions.OrderQueriesAPI.GetLiveSummary,
		},
		{
			"GetOrderWithItems",
			http.MethodGet,
			"/api/orders/query/:orderId/items",
			handleFunctions.OrderQueriesAPI.GetOrderWithItems,
		},
	}
}
