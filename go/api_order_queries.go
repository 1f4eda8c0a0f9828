package orderserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	ordermapper "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
	apierrors "github.com/Apurer/go-gin-orders-cqrs/internal/shared/errors"
	"github.com/Apurer/go-gin-orders-cqrs/internal/shared/projection"
)

// OrderQueries is the read side consumed by the query routes.
type OrderQueries interface {
	ListViewSummaries(ctx context.Context, filter types.SummaryFilter, page projection.PageRequest) (projection.Page[types.OrderSummary], error)
	GetViewSummary(ctx context.Context, id uuid.UUID) (*types.OrderSummary, error)
	ListLiveSummaries(ctx context.Context, filter types.SummaryFilter, page projection.PageRequest) (projection.Page[types.OrderSummary], error)
	GetLiveSummary(ctx context.Context, id uuid.UUID) (*types.OrderSummary, error)
	ReportByStatus(ctx context.Context) ([]types.StatusReport, error)
	GetOrderWithItems(ctx context.Context, id uuid.UUID) (*types.OrderWithItems, error)
}

// OrderQueriesAPI serves the eventually consistent view and the live queries.
type OrderQueriesAPI struct {
	queries   OrderQueries
	responder *apierrors.ChainedResponder
}

func NewOrderQueriesAPI(queries OrderQueries, responder *apierrors.ChainedResponder) OrderQueriesAPI {
	return OrderQueriesAPI{queries: queries, responder: responderOrDefault(responder)}
}

type listFunc func(ctx context.Context, filter types.SummaryFilter, page projection.PageRequest) (projection.Page[types.OrderSummary], error)

type getFunc func(ctx context.Context, id uuid.UUID) (*types.OrderSummary, error)

// Get /api/orders/view
// List order summaries from the materialized view
func (api *OrderQueriesAPI) ListViewSummaries(c *gin.Context) {
	api.list(c, api.queries.ListViewSummaries)
}

// Get /api/orders/view/:orderId
// Find an order summary in the materialized view
func (api *OrderQueriesAPI) GetViewSummary(c *gin.Context) {
	api.get(c, api.queries.GetViewSummary)
}

// Get /api/orders/query/list
// List order summaries computed from the write tables
func (api *OrderQueriesAPI) ListLiveSummaries(c *gin.Context) {
	api.list(c, api.queries.ListLiveSummaries)
}

// Get /api/orders/query/:orderId
// Find an order summary computed from the write tables
func (api *OrderQueriesAPI) GetLiveSummary(c *gin.Context) {
	api.get(c, api.queries.GetLiveSummary)
}

// Get /api/orders/query/:orderId/items
// Find an order together with its items
func (api *OrderQueriesAPI) GetOrderWithItems(c *gin.Context) {
	id, ok := parseOrderIDParam(c)
	if !ok {
		return
	}
	result, err := api.queries.GetOrderWithItems(c.Request.Context(), id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromOrderWithItems(result))
}

// Get /api/orders/query/report/by-status
// Order count and revenue per status
func (api *OrderQueriesAPI) ReportByStatus(c *gin.Context) {
	reports, err := api.queries.ReportByStatus(c.Request.Context())
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromStatusReports(reports))
}

func (api *OrderQueriesAPI) list(c *gin.Context, fetch listFunc) {
	params, err := bindSummaryQuery(c)
	if err != nil {
		respondBindError(c, err)
		return
	}
	filter, page, err := ordermapper.ToSummaryQuery(params)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	result, err := fetch(c.Request.Context(), filter, page)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromSummaryPage(result))
}

func (api *OrderQueriesAPI) get(c *gin.Context, fetch getFunc) {
	id, ok := parseOrderIDParam(c)
	if !ok {
		return
	}
	summary, err := fetch(c.Request.Context(), id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromSummary(*summary))
}

func bindSummaryQuery(c *gin.Context) (ordermapper.SummaryQuery, error) {
	var params ordermapper.SummaryQuery
	query := c.Request.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "status", query, &params.Status); err != nil {
		return params, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "customer", query, &params.Customer); err != nil {
		return params, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &params.Page); err != nil {
		return params, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "size", query, &params.Size); err != nil {
		return params, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "sort", query, &params.Sort); err != nil {
		return params, err
	}
	return params, nil
}
