//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-gin-orders-cqrs/test/pact"

	orderserver "github.com/Apurer/go-gin-orders-cqrs/go"
	ordersmemory "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application"
	orderdomain "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestOrdersProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateOrdersBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateOrderExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedOrder(t, uuid.MustParse(pacttest.ExistingOrderID))
			}
			return nil, nil
		},
		pacttest.StateOrderMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

type inlineRefresh struct {
	rebuilder ports.ViewRebuilder
}

func (r inlineRefresh) RequestRefresh(ctx context.Context) { _ = r.rebuilder.Rebuild(ctx) }

type contractProviderApp struct {
	store  *ordersmemory.Store
	view   *ordersmemory.SummaryView
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	store := ordersmemory.NewStore()
	view := ordersmemory.NewSummaryView(store)
	service := ordersobs.New(ordersapp.NewService(store, ordersapp.WithRefreshScheduler(inlineRefresh{view})))
	queries := ordersapp.NewQueryService(view, ordersmemory.NewLiveReader(store))

	handlers := orderserver.ApiHandleFunctions{
		OrderCommandsAPI: orderserver.NewOrderCommandsAPI(service, nil),
		OrderQueriesAPI:  orderserver.NewOrderQueriesAPI(queries, nil),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router = orderserver.NewRouterWithGinEngine(router, handlers)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{
		store:  store,
		view:   view,
		server: server,
	}
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	a.store.Reset()
	require.NoError(t, a.view.Rebuild(context.Background()))
}

// seedOrder stores the example order under a fixed id so the contract can address it.
func (a *contractProviderApp) seedOrder(t testing.TB, id uuid.UUID) {
	t.Helper()
	notebook, err := orderdomain.NewOrderItem("Notebook", 1, decimal.RequireFromString("3500.00"))
	require.NoError(t, err)
	monitor, err := orderdomain.NewOrderItem("Monitor", 1, decimal.RequireFromString("300.00"))
	require.NoError(t, err)

	created := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	order := orderdomain.Rehydrate(id, pacttest.ExampleCustomer, orderdomain.StatusPending,
		decimal.Zero, decimal.Zero, 0, created, created, []*orderdomain.OrderItem{notebook, monitor})
	order.Recalculate()

	ctx := context.Background()
	require.NoError(t, a.store.Do(ctx, func(tx ports.Tx) error {
		return tx.Orders().Save(ctx, order)
	}))
	require.NoError(t, a.view.Rebuild(ctx))
}
