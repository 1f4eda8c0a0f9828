package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	orderactivities "github.com/Apurer/go-gin-orders-cqrs/internal/platform/temporal/activities/orders"
)

// RunOrderSummaryRefreshSequence runs the summary rebuild activity until it succeeds.
func RunOrderSummaryRefreshSequence(ctx workflow.Context) error {
	logger := workflow.GetLogger(ctx)
	refreshOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			// Zero means unlimited: a requested refresh must eventually run.
			MaximumAttempts: 0,
		},
	}
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, refreshOptions), orderactivities.RefreshOrderSummaryActivityName).Get(ctx, nil)
	if err != nil {
		logger.Error("order summary refresh sequence failed", "error", err)
		return err
	}
	logger.Info("order summary refresh sequence completed")
	return nil
}
