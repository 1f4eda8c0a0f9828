package orders

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
)

// RefreshOrderSummaryActivityName rebuilds the order summary read model.
const RefreshOrderSummaryActivityName = "orders.activities.RefreshOrderSummary"

// Activities groups activities that maintain the orders read side.
type Activities struct {
	rebuilder ports.ViewRebuilder
}

func NewActivities(rebuilder ports.ViewRebuilder) *Activities {
	return &Activities{rebuilder: rebuilder}
}

// RefreshOrderSummary runs one rebuild. Failures are retried by the workflow's retry policy.
func (a *Activities) RefreshOrderSummary(ctx context.Context) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.rebuilder == nil {
		logger.Error("order summary refresh activity not initialized")
		return errors.New("order summary refresh activity not initialized")
	}
	attempt := activity.GetInfo(ctx).Attempt
	started := time.Now()
	logger.Info("RefreshOrderSummary activity started", "attempt", attempt)
	if err := a.rebuilder.Rebuild(ctx); err != nil {
		logger.Error("RefreshOrderSummary activity failed", "attempt", attempt, "error", err)
		return err
	}
	logger.Info("RefreshOrderSummary activity completed", "attempt", attempt, "durationMs", time.Since(started).Milliseconds())
	return nil
}
